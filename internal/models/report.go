package models

// RowOrder is the inferred chronological direction of rows in file order.
type RowOrder string

const (
	OrderAscending  RowOrder = "asc"
	OrderDescending RowOrder = "desc"
	OrderUnknown    RowOrder = "unknown"
)

// Strategy names the dominant money-direction signal for a grid.
type Strategy string

const (
	StrategySplit    Strategy = "split"
	StrategyType     Strategy = "type"
	StrategySigned   Strategy = "signed"
	StrategyBalance  Strategy = "balance"
	StrategyFallback Strategy = "fallback"
)

// DirectionDecision is diagnostic only; it never rewrites emitted transactions.
type DirectionDecision struct {
	Strategy   Strategy `json:"strategy"`
	RowOrder   RowOrder `json:"rowOrder"`
	Confidence float64  `json:"confidence"`
}

// RemovalReport counts what sanitization removed, by kind. It is created once
// per run, mutated in place during sanitization, and read-only afterwards.
type RemovalReport struct {
	Redactions       map[string]int `json:"redactions"` // redaction kind -> count
	TransactionIDs   int            `json:"transactionIds"`
	MerchantCleanups int            `json:"merchantCleanups"`
	CustomTerms      int            `json:"customTerms"`
}

// NewRemovalReport returns an empty report ready to accumulate counts.
func NewRemovalReport() *RemovalReport {
	return &RemovalReport{Redactions: make(map[string]int)}
}

// Count adds n removals of the given redaction kind.
func (r *RemovalReport) Count(kind string, n int) {
	if n > 0 {
		r.Redactions[kind] += n
	}
}

// Total returns the sum of all pattern redactions.
func (r *RemovalReport) Total() int {
	total := 0
	for _, n := range r.Redactions {
		total += n
	}
	return total
}

// Skip reasons tallied for rows the pipeline drops without raising.
const (
	SkipShortRow       = "short_row"
	SkipBadDate        = "bad_date"
	SkipZeroAmount     = "zero_amount"
	SkipSummaryRow     = "suspect_balance_row"
	SkipImplausibleRow = "implausible_delta"
)

// SanitizedResult is the full output of one pipeline run.
type SanitizedResult struct {
	RunID        string                 `json:"runId"`
	Transactions []SanitizedTransaction `json:"transactions"`
	Columns      []ColumnAnalysis       `json:"columns"`
	Decision     DirectionDecision      `json:"decision"`
	Report       *RemovalReport         `json:"report"`
	Skipped      map[string]int         `json:"skipped"` // skip reason -> row count
}

// PreflightReport is a dry-run summary over a bounded sample. It carries no
// transactions so callers can preview impact before committing.
type PreflightReport struct {
	RunID       string            `json:"runId"`
	SampledRows int               `json:"sampledRows"`
	Columns     []ColumnAnalysis  `json:"columns"`
	Decision    DirectionDecision `json:"decision"`
	Planned     *RemovalReport    `json:"planned"`
	Skipped     map[string]int    `json:"skipped"`
}
