package engine

import (
	"regexp"
	"sort"

	"github.com/finsafe/statement-anonymizer/internal/models"
)

// Reconciliation policy. These bounds are tuned against real statement
// exports; tests pin them.
const (
	maxDeltaHistory   = 15     // rolling window of recent |delta| observations
	outlierMultiplier = 50.0   // reject deltas this many times the rolling median...
	outlierFloor      = 2500.0 // ...but only when they also exceed this absolute floor
	minBalanceDelta   = 0.01   // movements at or below this are not transactions
)

// summaryRowPattern matches statement bookkeeping rows that carry a balance
// but no transaction: opening/closing lines and carried-forward markers.
var summaryRowPattern = regexp.MustCompile(`(?i)\b(?:opening|closing|beginning|ending)\s+balance\b|\bbalance\s+(?:brought|carried)\s+forward\b`)

func isSummaryRow(description string) bool {
	return summaryRowPattern.MatchString(description)
}

// balanceTracker walks rows in file order and derives signed amounts from
// successive balance movement. It is deliberately sequential state: the
// engine cannot process rows out of file order.
type balanceTracker struct {
	order   models.RowOrder
	prev    float64
	hasPrev bool
	history []float64
}

func newBalanceTracker(order models.RowOrder) *balanceTracker {
	return &balanceTracker{order: order}
}

// observe feeds the tracker the current row's balance and returns the signed
// amount implied by balance movement, when one is both present and
// plausible. The anchor always advances to the current balance, even when
// the delta is rejected, so later deltas stay tied to file order. The third
// return reports a rejection caused by the outlier guard specifically.
func (t *balanceTracker) observe(balance float64) (delta float64, accepted, rejected bool) {
	defer func() {
		t.prev = balance
		t.hasPrev = true
	}()

	if !t.hasPrev {
		return 0, false, false
	}

	delta = balance - t.prev
	if t.order == models.OrderDescending {
		// Previous in file order is chronologically the later state, so
		// money flow is the negation of the raw file-order difference.
		delta = -delta
	}

	mag := abs(delta)
	if mag <= minBalanceDelta {
		return 0, false, false
	}
	if t.implausible(mag) {
		return 0, false, true
	}

	t.push(mag)
	return delta, true, false
}

// implausible guards against one-off statement artifacts (summary subtotals,
// interleaved account sections) skewing the output: a delta is rejected when
// it dwarfs the recent rolling median and clears the absolute floor.
func (t *balanceTracker) implausible(magnitude float64) bool {
	median, ok := t.rollingMedian()
	if !ok {
		return false
	}
	return magnitude > outlierMultiplier*median && magnitude > outlierFloor
}

func (t *balanceTracker) rollingMedian() (float64, bool) {
	if len(t.history) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), t.history...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, true
	}
	return sorted[mid], true
}

func (t *balanceTracker) push(magnitude float64) {
	t.history = append(t.history, magnitude)
	if len(t.history) > maxDeltaHistory {
		t.history = t.history[1:]
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
