// Package format renders a sanitized transaction set as text. Rendering is
// pure: the input set is never mutated, and the same set with the same
// options always produces the same bytes.
package format

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/finsafe/statement-anonymizer/internal/models"
)

// Encoding selects the output shape.
type Encoding string

const (
	EncodingTabular   Encoding = "tabular"
	EncodingDelimited Encoding = "delimited"
	EncodingMarkdown  Encoding = "markdown"
	EncodingNarrative Encoding = "narrative"
)

// DetailLevel selects which fields each row carries. Levels are cumulative.
type DetailLevel string

const (
	DetailMinimal  DetailLevel = "minimal"  // date, description, amount
	DetailStandard DetailLevel = "standard" // + merchant
	DetailDetailed DetailLevel = "detailed" // + category
	DetailDebug    DetailLevel = "debug"    // + type, provenance, confidence
)

// Options control one render. The zero value means tabular/standard with no
// row limit.
type Options struct {
	Encoding      Encoding
	Detail        DetailLevel
	MaxRows       int
	HighlightTerm string
}

// Render produces text for the transaction set.
func Render(txns []models.SanitizedTransaction, opts Options) (string, error) {
	if opts.Encoding == "" {
		opts.Encoding = EncodingTabular
	}
	if opts.Detail == "" {
		opts.Detail = DetailStandard
	}

	rows := txns
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
	}

	switch opts.Encoding {
	case EncodingTabular:
		return renderTabular(rows, opts), nil
	case EncodingDelimited:
		return renderDelimited(rows, opts)
	case EncodingMarkdown:
		return renderMarkdown(rows, opts), nil
	case EncodingNarrative:
		return renderNarrative(rows), nil
	default:
		return "", fmt.Errorf("unknown output encoding %q", opts.Encoding)
	}
}

func headerFields(detail DetailLevel) []string {
	fields := []string{"Date", "Description", "Amount"}
	switch detail {
	case DetailStandard:
		fields = append(fields, "Merchant")
	case DetailDetailed:
		fields = append(fields, "Merchant", "Category")
	case DetailDebug:
		fields = append(fields, "Merchant", "Category", "Type", "Source", "Confidence")
	}
	return fields
}

func rowFields(t models.SanitizedTransaction, detail DetailLevel) []string {
	fields := []string{t.Date, t.Description, fmt.Sprintf("%.2f", t.Amount)}
	switch detail {
	case DetailStandard:
		fields = append(fields, t.Merchant)
	case DetailDetailed:
		fields = append(fields, t.Merchant, t.Category)
	case DetailDebug:
		fields = append(fields, t.Merchant, t.Category, t.Type,
			string(t.InferenceSource), fmt.Sprintf("%.2f", t.CategoryConfidence))
	}
	return fields
}

// highlight wraps matches of the term in >>markers<< so they stand out in
// plain text output. Case-insensitive on whole cells only.
func highlight(fields []string, term string) []string {
	if term == "" {
		return fields
	}
	lower := strings.ToLower(term)
	out := make([]string, len(fields))
	for i, f := range fields {
		if strings.Contains(strings.ToLower(f), lower) {
			out[i] = ">>" + f + "<<"
		} else {
			out[i] = f
		}
	}
	return out
}

func renderTabular(rows []models.SanitizedTransaction, opts Options) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headerFields(opts.Detail), "\t"))
	for _, t := range rows {
		fmt.Fprintln(w, strings.Join(highlight(rowFields(t, opts.Detail), opts.HighlightTerm), "\t"))
	}
	w.Flush()
	return buf.String()
}

func renderDelimited(rows []models.SanitizedTransaction, opts Options) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headerFields(opts.Detail)); err != nil {
		return "", err
	}
	for _, t := range rows {
		if err := w.Write(rowFields(t, opts.Detail)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderMarkdown(rows []models.SanitizedTransaction, opts Options) string {
	var sb strings.Builder
	header := headerFields(opts.Detail)
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, t := range rows {
		fields := highlight(rowFields(t, opts.Detail), opts.HighlightTerm)
		for i, f := range fields {
			fields[i] = strings.ReplaceAll(f, "|", "\\|")
		}
		sb.WriteString("| " + strings.Join(fields, " | ") + " |\n")
	}
	return sb.String()
}
