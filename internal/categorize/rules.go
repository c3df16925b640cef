package categorize

import "regexp"

func rule(pattern, category string, confidence float64) Rule {
	return Rule{
		Pattern:    regexp.MustCompile(`(?i)` + pattern),
		Category:   category,
		Confidence: confidence,
	}
}

// defaultRules is the ordered table: named subscriptions, then income
// signals, then fees and banking, then spending domains, most specific
// first. Order is behavior; do not sort.
var defaultRules = []Rule{
	// Named subscription services.
	rule(`netflix|spotify|hulu|disney\+|hbo|paramount\+|youtube premium|apple\.com/bill|amazon prime|audible|icloud`, "Subscriptions", 0.9),

	// Income.
	rule(`payroll|direct dep|salary|paycheck|wages`, "Income", 0.85),
	rule(`dividend|interest (?:earned|payment)|investment|brokerage`, "Investment Income", 0.8),
	rule(`refund|reversal|cash ?back|rebate`, "Refunds", 0.75),

	// Fees and banking.
	rule(`\bfee\b|service charge|overdraft|\bnsf\b|maintenance charge`, "Fees", 0.8),
	rule(`loan|mortgage|card payment|autopay|installment`, "Debt Payment", 0.7),
	rule(`zelle|venmo|paypal|cash ?app|transfer|wire|\bach\b`, "Transfers", 0.65),
	rule(`\batm\b|cash withdrawal|cash deposit`, "Cash", 0.7),

	// Spending domains.
	rule(`grocer|supermarket|whole foods|trader joe|kroger|safeway|aldi|wegmans|food lion`, "Groceries", 0.75),
	rule(`rent|landlord|apartment|property mgmt|\bhoa\b`, "Housing", 0.75),
	rule(`amazon|walmart|target|costco|best buy|ebay|etsy`, "Shopping", 0.7),
	rule(`restaurant|cafe|coffee|starbucks|mcdonald|chipotle|pizza|doordash|grubhub|uber eats|bakery|diner`, "Dining", 0.7),
	rule(`\buber\b|\blyft\b|transit|metro|parking|toll|amtrak|airline|airways`, "Transport", 0.7),
	rule(`shell|chevron|exxon|\bbp\b|sunoco|fuel|gas station|petrol`, "Fuel", 0.7),
	rule(`electric|water bill|utility|utilities|internet|comcast|xfinity|verizon|t-mobile|at&t|sewer|trash`, "Utilities", 0.7),
	rule(`insurance|geico|allstate|progressive|state farm|premium due`, "Insurance", 0.7),
	rule(`pharmacy|\bcvs\b|walgreens|clinic|medical|dental|doctor|hospital|optical`, "Healthcare", 0.7),
	rule(`tuition|university|college|school|course|udemy|coursera`, "Education", 0.65),
	rule(`subscription|membership|monthly plan`, "Subscriptions", 0.6),
}
