// Package values holds the shared leaf parsers: currency strings to floats
// and statement dates to ISO calendar dates.
package values

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// currencyPattern matches things that look like money: optional sign or
// parens, optional symbol, digits with optional separators and decimals.
var currencyPattern = regexp.MustCompile(`^\(?[-+]?\s*[$£€]?\s*\d{1,3}(?:[,.\s]\d{3})*(?:\.\d{1,4})?\)?$|^\(?[-+]?\s*[$£€]?\s*\d+(?:\.\d{1,4})?\)?$`)

// LooksLikeCurrency reports whether a cell plausibly holds a money value.
func LooksLikeCurrency(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return currencyPattern.MatchString(s)
}

// ParseCurrency converts strings like "1,234.56", "-£1,234.56" or "(45.00)"
// to a float64. Parenthesized values are negative. Returns ok=false when the
// string holds no parseable number.
func ParseCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	// Strip currency symbols and grouping noise, including Unicode variants.
	for _, sym := range []string{"$", "£", "€", ",", " ", " "} {
		s = strings.ReplaceAll(s, sym, "")
	}
	if s == "" || s == "-" || s == "+" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// IsSignedCurrency reports whether the cell carries explicit direction:
// a leading sign or accounting parentheses.
func IsSignedCurrency(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return LooksLikeCurrency(s)
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		_, ok := ParseCurrency(s)
		return ok
	}
	return false
}

// dateFormats covers the layouts seen across bank and card exports.
// Ordered: unambiguous layouts first, US-style before day-first.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"01/02/06",
	"1/2/06",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04",
}

// datePattern is a cheap pre-check used by the column classifier.
var datePattern = regexp.MustCompile(`^\s*(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d{1,2}[ -][A-Za-z]{3,9}[ -,]+\d{2,4}|[A-Za-z]{3,9} \d{1,2},? \d{4})`)

// LooksLikeDate reports whether a cell plausibly holds a calendar date.
func LooksLikeDate(s string) bool {
	return datePattern.MatchString(s)
}

// ParseDate converts a statement date cell to an ISO calendar date
// (YYYY-MM-DD). Returns ok=false when no known layout matches.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// RepairScannedAmount fixes common OCR misreads in numeric text before value
// parsing: semicolons and colons standing in for decimal points, and stray
// "NA" tokens appended after amounts.
func RepairScannedAmount(line string) string {
	line = regexp.MustCompile(`(\d);(\s*)(\d)`).ReplaceAllString(line, "$1.$3")
	line = regexp.MustCompile(`(\d):(\d)`).ReplaceAllString(line, "$1.$2")
	line = regexp.MustCompile(`(\d):\s`).ReplaceAllString(line, "$1 ")
	line = regexp.MustCompile(`(\d):$`).ReplaceAllString(line, "$1")
	line = regexp.MustCompile(`\s+NA\b`).ReplaceAllString(line, "")
	return line
}
