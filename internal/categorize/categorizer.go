// Package categorize assigns spending categories with a fixed, ordered rule
// table. No ML, no learning: every assignment is deterministic, first match
// wins, and every row gets a category.
package categorize

import (
	"regexp"
	"strings"
)

// Rule is one pattern in the ordered table.
type Rule struct {
	Pattern    *regexp.Regexp
	Category   string
	Confidence float64
}

// Result is the assigned category for one transaction.
type Result struct {
	Category   string
	Confidence float64
}

// FallbackCategory catches everything no rule matched.
const (
	FallbackCategory   = "Other"
	FallbackConfidence = 0.4
)

// Categorizer evaluates the rule table top to bottom.
type Categorizer struct {
	rules []Rule
}

// New returns a categorizer with the default rule table.
func New() *Categorizer {
	return &Categorizer{rules: defaultRules}
}

// NewWithRules prepends custom rules ahead of the default table, so user
// rules always win.
func NewWithRules(custom []Rule) *Categorizer {
	rules := make([]Rule, 0, len(custom)+len(defaultRules))
	rules = append(rules, custom...)
	rules = append(rules, defaultRules...)
	return &Categorizer{rules: rules}
}

// Categorize matches against the concatenation of the raw description, the
// cleaned description, and the merchant, case-folded. The raw text is
// included on purpose: redaction can destroy the very keywords that carry
// category signal.
func (c *Categorizer) Categorize(rawDescription, cleanDescription, merchant string) Result {
	haystack := strings.ToLower(rawDescription + " " + cleanDescription + " " + merchant)
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(haystack) {
			return Result{Category: rule.Category, Confidence: rule.Confidence}
		}
	}
	return Result{Category: FallbackCategory, Confidence: FallbackConfidence}
}
