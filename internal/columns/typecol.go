package columns

import (
	"regexp"
	"strings"
)

// Type-column acceptance requires multiple strong matches; a single stray
// "debit" in a description column is not enough.
const typeColumnMinScore = 3.0

var typeWordPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(typeVocabulary))
	for _, w := range typeVocabulary {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}()

// DetectTypeColumn finds a free-text transaction-type column by scoring how
// many sampled values match known debit/credit vocabulary. Exact matches
// count full weight, embedded word-boundary matches half. Returns the column
// index and true only when the best score clears the minimum.
func DetectTypeColumn(rows [][]string) (int, bool) {
	if len(rows) < 2 {
		return 0, false
	}
	width := len(rows[0])
	bestCol, bestScore := -1, 0.0

	for col := 0; col < width; col++ {
		score := 0.0
		sampled := 0
		for i := 1; i < len(rows) && sampled < SampleLimit; i++ {
			if col >= len(rows[i]) {
				continue
			}
			cell := strings.TrimSpace(rows[i][col])
			sampled++
			if cell == "" {
				continue
			}
			lower := strings.ToLower(cell)
			exact := false
			for _, w := range typeVocabulary {
				if lower == w {
					score++
					exact = true
					break
				}
			}
			if exact {
				continue
			}
			for _, p := range typeWordPatterns {
				if p.MatchString(cell) {
					score += 0.5
					break
				}
			}
		}
		if score > bestScore {
			bestScore = score
			bestCol = col
		}
	}

	if bestCol < 0 || bestScore < typeColumnMinScore {
		return 0, false
	}
	return bestCol, true
}

// DirectionForTypeValue maps a type-column cell to a money direction:
// -1 expense, +1 income, 0 unknown.
func DirectionForTypeValue(cell string) int {
	lower := strings.ToLower(strings.TrimSpace(cell))
	switch {
	case lower == "":
		return 0
	case containsWord(lower, "credit", "deposit", "refund", "cr", "crd", "interest"):
		return 1
	case containsWord(lower, "debit", "withdrawal", "purchase", "payment", "fee", "dr", "dbt"):
		return -1
	}
	return 0
}

func containsWord(haystack string, words ...string) bool {
	for _, w := range words {
		if haystack == w {
			return true
		}
		if regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`).MatchString(haystack) {
			return true
		}
	}
	return false
}
