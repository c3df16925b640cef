package models

// Options controls sanitization behavior for one pipeline run.
type Options struct {
	// CustomTerms are user-supplied strings removed case-insensitively
	// before any pattern redaction runs.
	CustomTerms []string

	// MaskPII enables the card/SSN/email/phone/URL/address/zip patterns.
	MaskPII bool

	// ScrubNames replaces capitalized-word pairs with a name placeholder.
	ScrubNames bool

	// FuzzLocations replaces state/country tokens with a location placeholder.
	FuzzLocations bool

	// RoleHints seeds the classifier with a remembered dialect mapping.
	// Purely a caching hint; classification still runs and wins on conflict.
	RoleHints map[int]ColumnRole
}

// DefaultOptions masks PII but leaves the lossier name/location scrubbing off.
func DefaultOptions() Options {
	return Options{MaskPII: true}
}

// PreflightOptions bounds the dry run.
type PreflightOptions struct {
	Options
	SampleSize int // rows to inspect; <=0 means DefaultSampleSize
}

// DefaultSampleSize matches the classifier's content sample bound.
const DefaultSampleSize = 25
