// Package extractor turns statement files (PDF, spreadsheet, delimited
// text) into the grid shape the engine consumes: ordered rows of string
// cells, row 0 the header. It sits outside the pure core and is the only
// place that touches the filesystem for input.
package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText reads a PDF and returns the text of each page. It tries
// row-structured extraction first and falls back to plain text. Garbage
// output (custom font encodings, scanned images) is detected and rejected
// rather than passed downstream.
func ExtractPDFText(filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	pages = extractByPlainText(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	return nil, fmt.Errorf("no readable text could be extracted; the PDF may be image-based or use custom font encodings")
}

// FromPDF extracts a PDF into a grid. Lines are split into cells on tab
// characters or runs of two-plus spaces, which is how layout-preserving
// extraction renders columns.
func FromPDF(filePath string) ([][]string, error) {
	pages, err := ExtractPDFText(filePath)
	if err != nil {
		return nil, err
	}

	var grid [][]string
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			grid = append(grid, splitColumns(line))
		}
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("PDF contained no table-like text")
	}
	return grid, nil
}

var columnGap = regexp.MustCompile(`\t|\s{2,}`)

func splitColumns(line string) []string {
	parts := columnGap.Split(line, -1)
	cells := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByPlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages
}

// statementWords are terms that appear in virtually all bank statements.
// Extraction output containing none of them is treated as garbage.
var statementWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "transfer",
	"opening", "closing", "deposit", "withdrawal",
}

// isReadableText requires enough text, a high readable-ASCII ratio, and at
// least one recognizable statement word. Identity-encoded fonts produce
// output that passes length checks but fails both of the latter.
func isReadableText(pages []string) bool {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
				strings.ContainsRune(`.,-/:;()'"$%&@#!?+=*`, r)) {
				readable++
			}
			if r == '£' || r == '€' {
				readable++
			}
		}
	}
	if total <= 50 || float64(readable)/float64(total) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range statementWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}
