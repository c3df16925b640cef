package engine

import (
	"github.com/google/uuid"

	"github.com/finsafe/statement-anonymizer/internal/grid"
	"github.com/finsafe/statement-anonymizer/internal/models"
)

// Preflight tokenizes delimited text and dry-runs the pipeline over a
// bounded sample.
func (p *Pipeline) Preflight(rawText string, opts models.PreflightOptions) (*models.PreflightReport, error) {
	rows, err := grid.Tokenize(rawText)
	if err != nil {
		return nil, err
	}
	return p.PreflightRows(rows, opts)
}

// PreflightRows runs the full pipeline over the header plus at most
// SampleSize data rows and reports what a real run would do: detected
// columns, the direction decision, planned redaction counts, and skip
// tallies. No transaction content leaves a preflight. Because it is the
// same code over a prefix of the input, every planned count is bounded
// above by the full run's count.
func (p *Pipeline) PreflightRows(rows [][]string, opts models.PreflightOptions) (*models.PreflightReport, error) {
	sample := opts.SampleSize
	if sample <= 0 {
		sample = models.DefaultSampleSize
	}

	limit := len(rows)
	if limit > sample+1 {
		limit = sample + 1
	}

	run, err := p.run(rows[:limit], opts.Options)
	if err != nil {
		return nil, err
	}

	return &models.PreflightReport{
		RunID:       uuid.NewString(),
		SampledRows: limit - 1,
		Columns:     run.analyses,
		Decision:    run.decision,
		Planned:     run.report,
		Skipped:     run.skipped,
	}, nil
}
