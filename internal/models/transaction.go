package models

// InferenceSource records which signal produced a transaction's signed amount.
type InferenceSource string

const (
	SourceExplicit    InferenceSource = "explicit"
	SourceBalance     InferenceSource = "derived_from_balance"
	SourceDescription InferenceSource = "derived_from_desc"
	SourceFallback    InferenceSource = "fallback"
)

// SanitizedTransaction is one privacy-safe transaction in the output set.
// Fields are plain and mutable on purpose: downstream consumers are allowed
// to keep editing Merchant/Description after the pipeline returns.
type SanitizedTransaction struct {
	Date               string          `json:"date"` // ISO calendar date, YYYY-MM-DD
	Merchant           string          `json:"merchant"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	CategoryConfidence float64         `json:"categoryConfidence"`
	Amount             float64         `json:"amount"` // negative=expense, positive=income, never zero
	Type               string          `json:"type"`   // "expense" or "income", always sign(Amount)
	InferenceSource    InferenceSource `json:"inferenceSource"`
}

// TypeForAmount returns the income/expense label matching the sign of amount.
func TypeForAmount(amount float64) string {
	if amount > 0 {
		return "income"
	}
	return "expense"
}
