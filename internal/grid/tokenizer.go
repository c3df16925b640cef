// Package grid turns raw delimited text into the rectangular cell grid the
// rest of the pipeline consumes.
package grid

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// candidate delimiters, in detection preference order.
var delimiters = []rune{',', ';', '\t', '|'}

// DetectDelimiter picks the delimiter that appears most often on the first
// non-empty line. Defaults to comma when nothing stands out.
func DetectDelimiter(text string) rune {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "\uFEFF"))
		if line == "" {
			continue
		}
		best := ','
		bestCount := 0
		for _, d := range delimiters {
			if n := strings.Count(line, string(d)); n > bestCount {
				bestCount = n
				best = d
			}
		}
		return best
	}
	return ','
}

// Tokenize splits delimited text into rows of cells, honoring quoted fields
// and embedded line breaks. Ragged rows are preserved; shaping happens later.
func Tokenize(text string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = DetectDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	return rows, nil
}
