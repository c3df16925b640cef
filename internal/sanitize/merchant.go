package sanitize

import (
	"regexp"
	"strings"
)

// UnknownMerchant is the sentinel when nothing survives cleaning.
const UnknownMerchant = "Unknown"

// Transfer idioms collapse to fixed human labels. Ordered: phone-bearing
// variants must win before the bare forms.
var transferIdioms = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`(?i)\b(?:xfer|trnsfr|transfer)\s+to\s+(?:\[PHONE\]|\d{7,})`), "Mobile Payment"},
	{regexp.MustCompile(`(?i)\b(?:xfer|trnsfr|transfer)\s+to\b`), "Payment"},
	{regexp.MustCompile(`(?i)\b(?:xfer|trnsfr|transfer)\s+from\s+(?:\[PHONE\]|\d{7,})`), "Mobile Transfer"},
	{regexp.MustCompile(`(?i)\b(?:xfer|trnsfr|transfer)\s+from\b`), "Incoming Transfer"},
	{regexp.MustCompile(`(?i)^\s*(?:xfer|trnsfr|transfer)\s*$`), "Transfer"},
}

// Payment-mode and rail prefixes peeled off the front of a description.
var (
	paymentModePrefix = regexp.MustCompile(`(?i)^(?:pos|purchase|card(?:\s+payment)?|visa|mastercard|debit(?:\s+card)?|credit(?:\s+card)?|chk|checkcard|contactless|recurring)\b[\s:*-]*`)
	railPrefix        = regexp.MustCompile(`(?i)^(?:ach|wire|zelle|venmo|paypal|cashapp|sq|tst|eft|bill\s?pay|direct\s?(?:debit|deposit))\b[\s:*/-]*`)
	achJobCode        = regexp.MustCompile(`(?i)\b(?:ppd|ccd|web|arc|tel|pop)\s?(?:id)?:?\b`)
)

var (
	embeddedDate    = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?\b|\b\d{4}-\d{2}-\d{2}\b`)
	embeddedDecimal = regexp.MustCompile(`\b\d+\.\d+\b`)
	storeNumber     = regexp.MustCompile(`(?i)\b(?:store|str|no|unit)\s?#?\s?\d+\b|#\s?\d+\b`)
	bareNumber      = regexp.MustCompile(`\b\d{2,}\b`)
	legalSuffix     = regexp.MustCompile(`(?i)[\s,]+(?:inc|llc|ltd|corp|co)\.?\s*$`)
	trailingState   = regexp.MustCompile(`(?i)\s+(?:` + usStates + `)\s*$`)
	punctRun        = regexp.MustCompile(`[*._,:;/\\-]+`)
)

// Merchant reduces a sanitized description to a canonical counterparty
// label. Returns "Unknown" when nothing survives.
func (s *Sanitizer) Merchant(description string) string {
	text := s.removeCustomTerms(description, false)

	for _, idiom := range transferIdioms {
		if idiom.pattern.MatchString(text) {
			s.report.MerchantCleanups++
			return idiom.label
		}
	}

	before := text
	// Peel stacked prefixes: "POS DEBIT ACH PAYPAL" style descriptions
	// carry both a payment mode and a rail marker.
	for {
		next := railPrefix.ReplaceAllString(paymentModePrefix.ReplaceAllString(text, ""), "")
		next = strings.TrimSpace(next)
		if next == text {
			break
		}
		text = next
	}

	text = achJobCode.ReplaceAllString(text, " ")
	text = embeddedDate.ReplaceAllString(text, " ")
	text = embeddedDecimal.ReplaceAllString(text, " ")
	text = storeNumber.ReplaceAllString(text, " ")
	text = bareNumber.ReplaceAllString(text, " ")
	text = trailingState.ReplaceAllString(text, "")
	text = legalSuffix.ReplaceAllString(text, "")
	text = punctRun.ReplaceAllString(text, " ")
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))

	if text != strings.TrimSpace(before) {
		s.report.MerchantCleanups++
	}
	if text == "" {
		return UnknownMerchant
	}
	return TitleCase(text)
}
