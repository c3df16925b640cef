// Package columns scores raw statement columns against the roles the
// pipeline understands: date, amount, balance, debit, credit, description,
// type, metadata. Detection is deterministic; the same grid always yields
// the same classification.
package columns

import (
	"regexp"
	"strings"

	"github.com/finsafe/statement-anonymizer/internal/models"
	"github.com/finsafe/statement-anonymizer/internal/values"
)

// SampleLimit bounds how many data rows feed content scoring.
const SampleLimit = 25

// Empirically tuned scoring policy. Changing any of these changes detection
// behavior on real exports; they are pinned by tests.
const (
	headerScore     = 5.0 // strong header keyword hit
	weakHeaderScore = 1.5 // id/ref/code metadata hint
	contentScale    = 3.0 // content-density contribution
	hintScore       = 2.0 // remembered-dialect seed

	denseNumericCutoff  = 0.70
	denserNumericCutoff = 0.85
	descTextCutoff      = 0.60
	idSuppressCutoff    = 0.50

	continuityLooseRatio   = 0.50
	continuityLooseDensity = 0.60
	continuityTightRatio   = 0.25
	continuityTightDensity = 0.70
	continuityBonus        = 2.5

	positionalBalanceScore = 100.0
)

var (
	idTokenPattern = regexp.MustCompile(`^(?:[A-Z0-9]{8,}|[0-9]{6,}|[a-f0-9]{10,})$`)
	alphaToken     = regexp.MustCompile(`^[A-Za-z]{6,}$`)
)

// typeVocabulary are values a free-text transaction-type column takes.
var typeVocabulary = []string{
	"debit", "credit", "withdrawal", "deposit", "refund", "payment",
	"purchase", "transfer", "fee", "interest", "dr", "cr", "dbt", "crd",
}

type headerRule struct {
	role     models.ColumnRole
	keywords []string
	score    float64
}

var amountKeywords = []string{"amount", "amt", "value", "sum"}

// headerRules map header substrings to roles, strongest signals first.
var headerRules = []headerRule{
	{models.RoleDate, []string{"date", "time", "posted"}, headerScore},
	{models.RoleDescription, []string{"desc", "memo", "narrat", "detail", "particular", "payee"}, headerScore},
	{models.RoleBalance, []string{"bal"}, headerScore},
	{models.RoleDebit, []string{"debit", "withdr", "paid out", "money out"}, headerScore},
	{models.RoleCredit, []string{"credit", "deposit", "paid in", "money in"}, headerScore},
	{models.RoleType, []string{"type", "dr/cr"}, headerScore - 1},
	{models.RoleAmount, amountKeywords, headerScore},
	{models.RoleMetadata, []string{"id", "ref", "code", "number", "no."}, weakHeaderScore},
}

// columnStats are the sampled content signals for one column.
type columnStats struct {
	samples    []string
	nonEmpty   int
	numeric    int
	signed     int
	dates      int
	longAlpha  int
	idTokens   int
	typeHits   int
	numbers    []float64 // parsed numeric samples, in row order
	firstValue string
}

// Classify assigns a role to every column of a shaped grid. Row 0 is the
// header. Hints seed scores from a remembered dialect mapping but never
// override fresh evidence.
func Classify(rows [][]string, hints map[int]models.ColumnRole) []models.ColumnAnalysis {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	width := len(header)

	stats := make([]columnStats, width)
	scores := make([]map[models.ColumnRole]float64, width)
	for col := 0; col < width; col++ {
		stats[col] = sampleColumn(rows, col)
		scores[col] = scoreColumn(header[col], stats[col], hints[col])
	}

	applyPositionalBalance(scores, stats, width)

	analyses := make([]models.ColumnAnalysis, width)
	for col := 0; col < width; col++ {
		role, conf := resolve(scores[col], stats[col])
		analyses[col] = models.ColumnAnalysis{
			Index:      col,
			Header:     strings.TrimSpace(header[col]),
			Role:       role,
			Confidence: conf,
			Sample:     stats[col].firstValue,
		}
	}

	reclassifyWeakSplit(analyses, header)
	confirmSplitPair(analyses, rows, stats)
	reclassifyTrailingBalance(analyses, stats)

	return analyses
}

func sampleColumn(rows [][]string, col int) columnStats {
	var st columnStats
	for i := 1; i < len(rows) && len(st.samples) < SampleLimit; i++ {
		if col >= len(rows[i]) {
			continue
		}
		cell := strings.TrimSpace(rows[i][col])
		st.samples = append(st.samples, cell)
		if cell == "" {
			continue
		}
		st.nonEmpty++
		if st.firstValue == "" {
			st.firstValue = cell
		}
		if values.LooksLikeDate(cell) {
			if _, ok := values.ParseDate(cell); ok {
				st.dates++
			}
		}
		if values.LooksLikeCurrency(cell) {
			if v, ok := values.ParseCurrency(cell); ok {
				st.numeric++
				st.numbers = append(st.numbers, v)
				if values.IsSignedCurrency(cell) {
					st.signed++
				}
			}
		}
		lower := strings.ToLower(cell)
		for _, word := range strings.Fields(cell) {
			if alphaToken.MatchString(word) {
				st.longAlpha++
				break
			}
		}
		if idTokenPattern.MatchString(cell) {
			st.idTokens++
		}
		for _, tv := range typeVocabulary {
			if lower == tv {
				st.typeHits++
				break
			}
		}
	}
	return st
}

func scoreColumn(header string, st columnStats, hint models.ColumnRole) map[models.ColumnRole]float64 {
	scores := make(map[models.ColumnRole]float64)
	h := strings.ToLower(strings.TrimSpace(header))

	for _, rule := range headerRules {
		for _, kw := range rule.keywords {
			if strings.Contains(h, kw) {
				scores[rule.role] += rule.score
				break
			}
		}
	}
	if hint != "" && hint != models.RoleUnknown {
		scores[hint] += hintScore
	}
	if st.nonEmpty == 0 {
		return scores
	}

	n := float64(st.nonEmpty)
	dateDensity := float64(st.dates) / n
	numericDensity := float64(st.numeric) / n
	textDensity := float64(st.longAlpha) / n
	idDensity := float64(st.idTokens) / n
	typeDensity := float64(st.typeHits) / n

	scores[models.RoleDate] += contentScale * dateDensity
	scores[models.RoleAmount] += contentScale * numericDensity
	scores[models.RoleDescription] += contentScale * textDensity
	scores[models.RoleMetadata] += contentScale * idDensity * 0.7
	scores[models.RoleType] += contentScale * typeDensity

	if numericDensity >= denseNumericCutoff {
		scores[models.RoleAmount]++
	}
	if numericDensity >= denserNumericCutoff {
		scores[models.RoleAmount]++
	}
	if textDensity >= descTextCutoff && idDensity < idSuppressCutoff {
		scores[models.RoleDescription] += 1.5
	}
	if idDensity >= idSuppressCutoff {
		scores[models.RoleDescription] *= 0.3
	}

	// Continuity: running balances move little between rows relative to
	// their magnitude, amounts do not. The signal favors balance but stays
	// bounded, and it yields outright to stronger amount evidence: explicit
	// signs on the values, or an amount-style header.
	if ratio, ok := deltaRatio(st.numbers); ok && st.signed == 0 && !headerSaysAmount(h) {
		if (ratio < continuityLooseRatio && numericDensity >= continuityLooseDensity) ||
			(ratio < continuityTightRatio && numericDensity >= continuityTightDensity) {
			scores[models.RoleBalance] += contentScale*numericDensity + continuityBonus
		}
	}

	return scores
}

func headerSaysAmount(h string) bool {
	for _, kw := range amountKeywords {
		if strings.Contains(h, kw) {
			return true
		}
	}
	return false
}

// deltaRatio returns mean |successive delta| divided by mean |value|.
func deltaRatio(nums []float64) (float64, bool) {
	if len(nums) < 3 {
		return 0, false
	}
	var magSum, deltaSum float64
	for i, v := range nums {
		magSum += abs(v)
		if i > 0 {
			deltaSum += abs(v - nums[i-1])
		}
	}
	meanMag := magSum / float64(len(nums))
	if meanMag == 0 {
		return 0, false
	}
	meanDelta := deltaSum / float64(len(nums)-1)
	return meanDelta / meanMag, true
}

// applyPositionalBalance force-classifies the rightmost column as balance
// when it is at least half numeric and half populated. "Balance is last" is
// the dominant convention even with occasional blank cells.
func applyPositionalBalance(scores []map[models.ColumnRole]float64, stats []columnStats, width int) {
	last := width - 1
	if last < 0 {
		return
	}
	st := stats[last]
	if len(st.samples) == 0 {
		return
	}
	half := float64(len(st.samples)) / 2
	if float64(st.numeric) >= half && float64(st.nonEmpty) >= half {
		scores[last][models.RoleBalance] = positionalBalanceScore
	}
}

func resolve(scores map[models.ColumnRole]float64, st columnStats) (models.ColumnRole, float64) {
	if st.nonEmpty == 0 {
		return models.RoleUnknown, 0
	}
	best := models.RoleUnknown
	var bestScore, total float64
	// Fixed iteration order keeps ties deterministic.
	for _, role := range []models.ColumnRole{
		models.RoleDate, models.RoleAmount, models.RoleBalance, models.RoleDebit,
		models.RoleCredit, models.RoleDescription, models.RoleType, models.RoleMetadata,
	} {
		s := scores[role]
		if s > 0 {
			total += s
		}
		if s > bestScore {
			bestScore = s
			best = role
		}
	}
	if bestScore <= 0 {
		return models.RoleUnknown, 0
	}
	conf := bestScore / total
	if conf > 1 {
		conf = 1
	}
	return best, conf
}

// reclassifyWeakSplit turns an amount column into debit or credit when the
// header carries the opposing keyword, catching "Debit Amount" style headers
// where the amount keyword out-scored the direction keyword.
func reclassifyWeakSplit(analyses []models.ColumnAnalysis, header []string) {
	for i := range analyses {
		if analyses[i].Role != models.RoleAmount {
			continue
		}
		h := strings.ToLower(header[i])
		switch {
		case strings.Contains(h, "debit") || strings.Contains(h, "withdr") || strings.Contains(h, "out"):
			analyses[i].Role = models.RoleDebit
		case strings.Contains(h, "credit") || strings.Contains(h, "deposit") || strings.Contains(h, " in"):
			analyses[i].Role = models.RoleCredit
		}
	}
}

// confirmSplitPair verifies a debit/credit pair is genuine: in a real split
// layout no single row populates both columns. A failed check demotes both
// back to amount. With two unlabeled numeric columns that pass the check,
// the higher credit-keyword column becomes credit and the other debit,
// breaking ties toward the more populated column and defaulting to debit.
func confirmSplitPair(analyses []models.ColumnAnalysis, rows [][]string, stats []columnStats) {
	debitIdx, creditIdx := -1, -1
	for i := range analyses {
		switch analyses[i].Role {
		case models.RoleDebit:
			debitIdx = i
		case models.RoleCredit:
			creditIdx = i
		}
	}
	if debitIdx < 0 || creditIdx < 0 {
		return
	}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if debitIdx >= len(row) || creditIdx >= len(row) {
			continue
		}
		_, dOK := values.ParseCurrency(row[debitIdx])
		_, cOK := values.ParseCurrency(row[creditIdx])
		if dOK && cOK {
			// Both populated on one row: not a split pair.
			analyses[debitIdx].Role = models.RoleAmount
			analyses[creditIdx].Role = models.RoleAmount
			return
		}
	}
	// Genuine pair. When the keyword evidence ties, the busier column is
	// usually the debit side of a consumer statement.
	if analyses[debitIdx].Confidence == analyses[creditIdx].Confidence &&
		stats[creditIdx].nonEmpty > stats[debitIdx].nonEmpty {
		analyses[debitIdx].Role, analyses[creditIdx].Role = models.RoleCredit, models.RoleDebit
	}
}

// reclassifyTrailingBalance is the post-hoc pass for grids whose last column
// was classified amount despite being densely numeric: the trailing position
// makes balance the better reading.
func reclassifyTrailingBalance(analyses []models.ColumnAnalysis, stats []columnStats) {
	last := len(analyses) - 1
	if last < 0 || analyses[last].Role != models.RoleAmount {
		return
	}
	st := stats[last]
	if st.nonEmpty == 0 {
		return
	}
	if float64(st.numeric)/float64(st.nonEmpty) >= denseNumericCutoff {
		for i := 0; i < last; i++ {
			if analyses[i].Role == models.RoleAmount || analyses[i].Role == models.RoleDebit || analyses[i].Role == models.RoleCredit {
				analyses[last].Role = models.RoleBalance
				return
			}
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
