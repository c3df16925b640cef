// Package engine is the core pipeline: a pure function from a rectangular
// grid of text cells to a sanitized transaction set plus diagnostics. The
// engine performs no I/O; concurrent runs over different inputs are safe
// because no state crosses invocations.
package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/finsafe/statement-anonymizer/internal/categorize"
	"github.com/finsafe/statement-anonymizer/internal/columns"
	"github.com/finsafe/statement-anonymizer/internal/dialect"
	"github.com/finsafe/statement-anonymizer/internal/grid"
	"github.com/finsafe/statement-anonymizer/internal/models"
	"github.com/finsafe/statement-anonymizer/internal/sanitize"
	"github.com/finsafe/statement-anonymizer/internal/values"
)

// ErrTooFewRows is returned when the grid has no data rows to process.
var ErrTooFewRows = errors.New("need at least a header row and one data row")

// Pipeline holds the run-independent collaborators. The zero value is not
// usable; construct with New.
type Pipeline struct {
	categorizer *categorize.Categorizer
}

// New returns a pipeline with the default category rule table.
func New() *Pipeline {
	return &Pipeline{categorizer: categorize.New()}
}

// NewWithCategorizer lets callers prepend custom category rules.
func NewWithCategorizer(c *categorize.Categorizer) *Pipeline {
	return &Pipeline{categorizer: c}
}

// Process tokenizes delimited text into a grid and runs the full pipeline.
func (p *Pipeline) Process(rawText string, opts models.Options) (*models.SanitizedResult, error) {
	rows, err := grid.Tokenize(rawText)
	if err != nil {
		return nil, err
	}
	return p.ProcessRows(rows, opts)
}

// ProcessRows runs the full pipeline over a raw grid. Row 0 is the header.
// Input-shape problems (too few rows, no date column, no monetary column)
// abort with a descriptive error; per-row problems are tallied and skipped.
func (p *Pipeline) ProcessRows(rows [][]string, opts models.Options) (*models.SanitizedResult, error) {
	run, err := p.run(rows, opts)
	if err != nil {
		return nil, err
	}
	return &models.SanitizedResult{
		RunID:        uuid.NewString(),
		Transactions: run.transactions,
		Columns:      run.analyses,
		Decision:     run.decision,
		Report:       run.report,
		Skipped:      run.skipped,
	}, nil
}

// runState is everything one pipeline invocation accumulates.
type runState struct {
	analyses     []models.ColumnAnalysis
	decision     models.DirectionDecision
	report       *models.RemovalReport
	skipped      map[string]int
	transactions []models.SanitizedTransaction
}

func (p *Pipeline) run(raw [][]string, opts models.Options) (*runState, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: got %d rows", ErrTooFewRows, len(raw))
	}

	shaped := grid.Shape(raw)
	analyses := columns.Classify(shaped, opts.RoleHints)

	if typeCol, ok := columns.DetectTypeColumn(shaped); ok {
		if !isMonetaryOrDate(analyses[typeCol].Role) {
			analyses[typeCol].Role = models.RoleType
		}
	}

	roles := models.NewRoleMap(analyses)
	if err := columns.Validate(roles); err != nil {
		return nil, err
	}

	dateCol, _ := roles.Col(models.RoleDate)
	descCol, hasDesc := roles.Col(models.RoleDescription)
	amountCol, hasAmount := roles.Col(models.RoleAmount)
	balanceCol, hasBalance := roles.Col(models.RoleBalance)
	debitCol, hasDebit := roles.Col(models.RoleDebit)
	creditCol, hasCredit := roles.Col(models.RoleCredit)
	typeCol, hasType := roles.Col(models.RoleType)

	order := dialect.InferRowOrder(column(shaped, dateCol))
	signedSample := hasAmount && hasSignedSample(shaped, amountCol)

	balanceMatch := 0.0
	if hasBalance && hasAmount {
		balances, amounts := pairedNumericColumns(shaped, balanceCol, amountCol)
		_, balanceMatch = dialect.CheckOrientation(balances, amounts)
	}

	decision := dialect.Decide(dialect.Signals{
		HasSplit:     hasDebit && hasCredit,
		HasType:      hasType,
		HasAmount:    hasAmount,
		HasBalance:   hasBalance,
		SignedSample: signedSample,
		BalanceMatch: balanceMatch,
	}, order)

	report := models.NewRemovalReport()
	san := sanitize.New(opts, report)
	tracker := newBalanceTracker(order)

	state := &runState{
		analyses: analyses,
		decision: decision,
		report:   report,
		skipped:  make(map[string]int),
	}

	for i := 1; i < len(shaped); i++ {
		row := shaped[i]
		if len(raw[i]) < 2 {
			state.skipped[models.SkipShortRow]++
			continue
		}

		rawDesc := ""
		if hasDesc {
			rawDesc = row[descCol]
		}

		// Summary rows still anchor the balance walk before being skipped:
		// an opening-balance line is exactly where the walk should start.
		if isSummaryRow(rawDesc) {
			if hasBalance {
				if bal, ok := values.ParseCurrency(row[balanceCol]); ok {
					tracker.observe(bal)
				}
			}
			state.skipped[models.SkipSummaryRow]++
			continue
		}

		isoDate, ok := values.ParseDate(row[dateCol])
		if !ok {
			// Keep the balance walk anchored even when the row is unusable.
			if hasBalance {
				if bal, parsed := values.ParseCurrency(row[balanceCol]); parsed {
					tracker.observe(bal)
				}
			}
			state.skipped[models.SkipBadDate]++
			continue
		}

		amount, source := 0.0, models.SourceFallback
		outlierDelta := false

		// Balance movement is the most reliable signal when present; the
		// explicit-column strategies only apply when it yields nothing.
		if hasBalance {
			if bal, parsed := values.ParseCurrency(row[balanceCol]); parsed {
				var accepted bool
				var delta float64
				delta, accepted, outlierDelta = tracker.observe(bal)
				if accepted {
					amount, source = delta, models.SourceBalance
				}
			}
		}

		if amount == 0 && hasDebit && hasCredit {
			if credit, parsed := values.ParseCurrency(row[creditCol]); parsed && credit != 0 {
				amount, source = abs(credit), models.SourceExplicit
			} else if debit, parsed := values.ParseCurrency(row[debitCol]); parsed && debit != 0 {
				amount, source = -abs(debit), models.SourceExplicit
			}
		}

		if amount == 0 && hasAmount {
			if v, parsed := values.ParseCurrency(row[amountCol]); parsed && v != 0 {
				amount, source = p.resolveSingleAmount(row, v, typeCol, hasType, signedSample, rawDesc)
			}
		}

		if amount == 0 {
			if outlierDelta {
				state.skipped[models.SkipImplausibleRow]++
			} else {
				state.skipped[models.SkipZeroAmount]++
			}
			continue
		}

		cleanDesc := san.CleanDescription(rawDesc)
		merchant := san.Merchant(cleanDesc)
		cat := p.categorizer.Categorize(rawDesc, cleanDesc, merchant)

		amount = round2(amount)
		state.transactions = append(state.transactions, models.SanitizedTransaction{
			Date:               isoDate,
			Merchant:           merchant,
			Description:        cleanDesc,
			Category:           cat.Category,
			CategoryConfidence: cat.Confidence,
			Amount:             amount,
			Type:               models.TypeForAmount(amount),
			InferenceSource:    source,
		})
	}

	return state, nil
}

// resolveSingleAmount decides direction for a lone amount column. A type
// column overrides the raw sign while preserving magnitude. Without one,
// columns that show signs are trusted as-is; unsigned columns fall back to
// description keywords, then to expense.
func (p *Pipeline) resolveSingleAmount(row []string, v float64, typeCol int, hasType, signedSample bool, rawDesc string) (float64, models.InferenceSource) {
	if hasType {
		if dir := columns.DirectionForTypeValue(row[typeCol]); dir != 0 {
			return float64(dir) * abs(v), models.SourceExplicit
		}
	}
	if signedSample {
		return v, models.SourceExplicit
	}
	if v < 0 {
		return v, models.SourceExplicit
	}
	if dir := directionFromDescription(rawDesc); dir != 0 {
		return float64(dir) * abs(v), models.SourceDescription
	}
	// Unsigned, unlabeled amounts are overwhelmingly charges.
	return -abs(v), models.SourceFallback
}

// debitKeywords flag descriptions that clearly name an outflow or inflow.
var (
	outflowKeywords = []string{
		"card payment", "direct debit", "withdrawal", "purchase", "payment to",
		"standing order", "pos ", "atm ", "fee", "charge", "debit",
	}
	inflowKeywords = []string{
		"deposit", "refund", "payroll", "salary", "interest earned",
		"credit from", "payment from", "reversal",
	}
)

func directionFromDescription(desc string) int {
	lower := strings.ToLower(desc)
	for _, kw := range inflowKeywords {
		if strings.Contains(lower, kw) {
			return 1
		}
	}
	for _, kw := range outflowKeywords {
		if strings.Contains(lower, kw) {
			return -1
		}
	}
	return 0
}

func isMonetaryOrDate(role models.ColumnRole) bool {
	switch role {
	case models.RoleDate, models.RoleAmount, models.RoleBalance, models.RoleDebit, models.RoleCredit:
		return true
	}
	return false
}

func hasSignedSample(rows [][]string, col int) bool {
	for i := 1; i < len(rows) && i <= columns.SampleLimit; i++ {
		if col < len(rows[i]) && values.IsSignedCurrency(rows[i][col]) {
			return true
		}
	}
	return false
}

func column(rows [][]string, col int) []string {
	out := make([]string, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if col < len(rows[i]) {
			out = append(out, rows[i][col])
		}
	}
	return out
}

// pairedNumericColumns returns parsed values for rows where both cells
// parse, so the two sequences stay row-aligned. A row with only one
// parseable cell would shift the sequences against each other and skew
// the orientation diagnostic.
func pairedNumericColumns(rows [][]string, colA, colB int) ([]float64, []float64) {
	a := make([]float64, 0, len(rows)-1)
	b := make([]float64, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if colA >= len(rows[i]) || colB >= len(rows[i]) {
			continue
		}
		va, okA := values.ParseCurrency(rows[i][colA])
		vb, okB := values.ParseCurrency(rows[i][colB])
		if okA && okB {
			a = append(a, va)
			b = append(b, vb)
		}
	}
	return a, b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
