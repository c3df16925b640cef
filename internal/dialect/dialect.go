// Package dialect infers the conventions a statement export uses: the
// chronological direction of rows and which signal decides money direction.
package dialect

import (
	"github.com/finsafe/statement-anonymizer/internal/models"
	"github.com/finsafe/statement-anonymizer/internal/values"
)

// minDatesForOrder is the smallest number of parseable dates that can
// establish a row order.
const minDatesForOrder = 3

// DeltaTolerance is the float slack when matching reconstructed balance
// deltas against observed amounts.
const DeltaTolerance = 0.05

// InferRowOrder counts strictly increasing vs strictly decreasing adjacent
// date pairs, ignoring unparsable cells. Ties and all-equal sequences yield
// unknown; otherwise the majority wins.
func InferRowOrder(dateCells []string) models.RowOrder {
	var dates []string
	for _, cell := range dateCells {
		if iso, ok := values.ParseDate(cell); ok {
			dates = append(dates, iso)
		}
	}
	if len(dates) < minDatesForOrder {
		return models.OrderUnknown
	}
	asc, desc := 0, 0
	for i := 1; i < len(dates); i++ {
		switch {
		case dates[i] > dates[i-1]:
			asc++
		case dates[i] < dates[i-1]:
			desc++
		}
	}
	switch {
	case asc > desc:
		return models.OrderAscending
	case desc > asc:
		return models.OrderDescending
	default:
		return models.OrderUnknown
	}
}

// Signals summarizes what the classifier found, for the strategy decision.
type Signals struct {
	HasSplit     bool // debit and credit columns form a confirmed pair
	HasType      bool
	HasAmount    bool
	HasBalance   bool
	SignedSample bool    // amount column showed signed or parenthesized values
	BalanceMatch float64 // orientation match rate in [0,1], 0 when unchecked
}

// Decide picks the dominant declared direction strategy, highest priority
// first. The decision is diagnostic; the engine's per-row resolution order
// is fixed independently.
func Decide(sig Signals, order models.RowOrder) models.DirectionDecision {
	d := models.DirectionDecision{RowOrder: order}
	switch {
	case sig.HasSplit:
		d.Strategy = models.StrategySplit
		d.Confidence = 1.0
	case sig.HasType && sig.HasAmount:
		d.Strategy = models.StrategyType
		d.Confidence = 0.95
	case sig.SignedSample:
		d.Strategy = models.StrategySigned
		d.Confidence = 0.9
	case sig.HasBalance:
		d.Strategy = models.StrategyBalance
		// Scale with how well reconstructed deltas matched known amounts.
		d.Confidence = 0.6 + 0.35*sig.BalanceMatch
	default:
		d.Strategy = models.StrategyFallback
		d.Confidence = 0.3
	}
	return d
}

// Orientation of balance deltas relative to file order.
type Orientation int

const (
	OrientationForward Orientation = iota // current - previous
	OrientationReverse                    // previous - current
)

// CheckOrientation tests both delta hypotheses against same-row amounts and
// reports whichever matches more pairs, with its match rate. Balances and
// amounts are parallel sequences; rows missing either value must already be
// filtered out by the caller.
func CheckOrientation(balances, amounts []float64) (Orientation, float64) {
	n := len(balances)
	if len(amounts) < n {
		n = len(amounts)
	}
	if n < 2 {
		return OrientationForward, 0
	}
	forward, reverse, pairs := 0, 0, 0
	for i := 1; i < n; i++ {
		delta := balances[i] - balances[i-1]
		amt := amounts[i]
		pairs++
		if withinTolerance(delta, amt) {
			forward++
		}
		if withinTolerance(-delta, amt) {
			reverse++
		}
	}
	if pairs == 0 {
		return OrientationForward, 0
	}
	if reverse > forward {
		return OrientationReverse, float64(reverse) / float64(pairs)
	}
	return OrientationForward, float64(forward) / float64(pairs)
}

func withinTolerance(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= DeltaTolerance
}
