// Package sanitize removes personally identifying content from transaction
// descriptions and reduces them to canonical merchant labels. Every transform
// is a pure, ordered string rewrite; re-running a transform on its own output
// changes nothing further.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/finsafe/statement-anonymizer/internal/models"
)

// Redaction kinds reported per run.
const (
	KindCard     = "card"
	KindSSN      = "ssn"
	KindEmail    = "email"
	KindPhone    = "phone"
	KindURL      = "url"
	KindAddress  = "address"
	KindZip      = "zip"
	KindName     = "name"
	KindLocation = "location"
)

type piiPattern struct {
	kind        string
	pattern     *regexp.Regexp
	placeholder string
}

// piiPatterns run in this exact order; card before zip matters because card
// removal consumes the long digit runs zip would otherwise chew on.
var piiPatterns = []piiPattern{
	{KindCard, regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`), "[CARD]"},
	{KindSSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN]"},
	{KindEmail, regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), "[EMAIL]"},
	{KindPhone, regexp.MustCompile(`\b(?:\+?1[ .-]?)?\(?\d{3}\)?[ .-]\d{3}[ .-]\d{4}\b`), "[PHONE]"},
	{KindURL, regexp.MustCompile(`\bhttps?://[^\s]+|\bwww\.[^\s]+`), "[URL]"},
	{KindAddress, regexp.MustCompile(`\b\d{1,5} [A-Za-z][A-Za-z ]{1,30}\b(?:St|Street|Ave|Avenue|Blvd|Boulevard|Rd|Road|Dr|Drive|Ln|Lane|Ct|Court|Pl|Place|Way)\b\.?`), "[ADDRESS]"},
	{KindZip, regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`), "[ZIP]"},
}

// Transaction-ID shapes: labeled reference codes, long hex runs, store
// number markers, bare long digit runs.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:ref|reference|conf|confirmation|trace|auth|txn|id)[:# ]\s*[A-Za-z0-9-]{4,}\b`),
	regexp.MustCompile(`\b[a-fA-F0-9]{10,}\b`),
	regexp.MustCompile(`#\s?\d{2,}\b`),
	regexp.MustCompile(`\b\d{6,}\b`),
}

// namePattern is best-effort: two title-cased words in a row. It runs on
// title-cased text, so requiring lowercase tails keeps it off all-caps
// placeholder tokens like [NAME], and the stoplist below keeps it from
// eating ordinary transaction vocabulary.
var namePattern = regexp.MustCompile(`\b([A-Z][a-z]+) ([A-Z][a-z]+)\b`)

var nameStoplist = map[string]bool{
	"card": true, "payment": true, "purchase": true, "transfer": true,
	"debit": true, "credit": true, "deposit": true, "withdrawal": true,
	"online": true, "mobile": true, "store": true, "point": true,
	"sale": true, "bank": true, "fee": true, "interest": true,
	"direct": true, "standing": true, "order": true, "cash": true,
	"balance": true, "atm": true, "check": true, "wire": true,
	"incoming": true, "service": true, "charge": true, "monthly": true,
}

var usStates = "AL|AK|AZ|AR|CA|CO|CT|DE|FL|GA|HI|ID|IL|IN|IA|KS|KY|LA|ME|MD|MA|MI|MN|MS|MO|MT|NE|NV|NH|NJ|NM|NY|NC|ND|OH|OK|OR|PA|RI|SC|SD|TN|TX|UT|VT|VA|WA|WV|WI|WY"

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:` + usStates + `)\b`),
	regexp.MustCompile(`(?i)\b(?:USA|United States|United Kingdom|Canada)\b`),
}

var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s_[A-Za-z]{1,2}\b`),
	regexp.MustCompile(`[|\\]+`),
	regexp.MustCompile(`(?:^|\s)/+(?:\s|$)`),
}

// railPrefixPattern strips processor markers that prefix card descriptions.
var railPrefixPattern = regexp.MustCompile(`(?i)^(?:SQ \*|TST\*\s?|PY \*|PAYPAL \*|PP\*\s?|CKCD\s|POS\s|DDA\s)`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitizer applies the ordered redaction pipeline for one run, accumulating
// counts into the run's shared report.
type Sanitizer struct {
	opts        models.Options
	report      *models.RemovalReport
	customTerms []*regexp.Regexp
}

// New builds a sanitizer for one pipeline run. The report is mutated in
// place by every call; it must not be shared across concurrent runs.
func New(opts models.Options, report *models.RemovalReport) *Sanitizer {
	s := &Sanitizer{opts: opts, report: report}
	for _, term := range opts.CustomTerms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		s.customTerms = append(s.customTerms, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(term)))
	}
	return s
}

// CleanDescription runs the full redaction pipeline over one raw cell.
func (s *Sanitizer) CleanDescription(raw string) string {
	text := raw

	text = s.removeCustomTerms(text, true)

	if s.opts.MaskPII {
		for _, p := range piiPatterns {
			text = s.replaceCounted(text, p.pattern, p.placeholder, p.kind)
		}
	}

	for _, p := range idPatterns {
		matches := p.FindAllStringIndex(text, -1)
		if len(matches) > 0 {
			s.report.TransactionIDs += len(matches)
			text = p.ReplaceAllString(text, " ")
		}
	}

	if s.opts.FuzzLocations {
		for _, p := range locationPatterns {
			text = s.replaceCounted(text, p, "[LOCATION]", KindLocation)
		}
	}

	for _, p := range noisePatterns {
		text = p.ReplaceAllString(text, " ")
	}
	text = railPrefixPattern.ReplaceAllString(strings.TrimSpace(text), "")
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	text = TitleCase(text)

	// Scrub names last, on the title-cased form: the scrubber then sees the
	// same casing it produces, so a second pass finds nothing new to eat.
	if s.opts.ScrubNames {
		text = s.scrubNames(text)
	}
	return text
}

func (s *Sanitizer) removeCustomTerms(text string, count bool) string {
	for _, p := range s.customTerms {
		matches := p.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		if count {
			s.report.CustomTerms += len(matches)
		}
		text = p.ReplaceAllString(text, " ")
	}
	return text
}

func (s *Sanitizer) replaceCounted(text string, p *regexp.Regexp, placeholder, kind string) string {
	matches := p.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	s.report.Count(kind, len(matches))
	return p.ReplaceAllString(text, placeholder)
}

func (s *Sanitizer) scrubNames(text string) string {
	return namePattern.ReplaceAllStringFunc(text, func(m string) string {
		parts := namePattern.FindStringSubmatch(m)
		if nameStoplist[strings.ToLower(parts[1])] || nameStoplist[strings.ToLower(parts[2])] {
			return m
		}
		s.report.Count(KindName, 1)
		return "[NAME]"
	})
}

// TitleCase capitalizes each word, leaving placeholder tokens like [CARD]
// untouched so repeated sanitization is a no-op.
func TitleCase(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if strings.HasPrefix(w, "[") {
			continue
		}
		runes := []rune(strings.ToLower(w))
		for j, r := range runes {
			if r >= 'a' && r <= 'z' {
				runes[j] = r - ('a' - 'A')
				break
			}
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
