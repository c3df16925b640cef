package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finsafe/statement-anonymizer/internal/models"
)

const repeatMerchantMin = 3

// monthStats is everything the narrative needs about one calendar month,
// derived arithmetically from the sanitized set.
type monthStats struct {
	month          string // "2024-03"
	income         float64
	expense        float64 // positive magnitude
	spendByName    map[string]float64
	countByName    map[string]int
	largestInflow  models.SanitizedTransaction
	largestOutflow models.SanitizedTransaction
	spendDays      map[string]bool
}

// renderNarrative groups transactions by calendar month and writes a prose
// summary per month.
func renderNarrative(txns []models.SanitizedTransaction) string {
	if len(txns) == 0 {
		return "No transactions to summarize.\n"
	}

	byMonth := make(map[string]*monthStats)
	for _, t := range txns {
		if len(t.Date) < 7 {
			continue
		}
		key := t.Date[:7]
		m := byMonth[key]
		if m == nil {
			m = &monthStats{
				month:       key,
				spendByName: make(map[string]float64),
				countByName: make(map[string]int),
				spendDays:   make(map[string]bool),
			}
			byMonth[key] = m
		}
		m.countByName[t.Merchant]++
		if t.Amount > 0 {
			m.income += t.Amount
			if t.Amount > m.largestInflow.Amount {
				m.largestInflow = t
			}
		} else {
			m.expense += -t.Amount
			m.spendByName[t.Merchant] += -t.Amount
			m.spendDays[t.Date] = true
			if m.largestOutflow.Amount == 0 || t.Amount < m.largestOutflow.Amount {
				m.largestOutflow = t
			}
		}
	}

	months := make([]string, 0, len(byMonth))
	for k := range byMonth {
		months = append(months, k)
	}
	sort.Strings(months)

	var sb strings.Builder
	for _, key := range months {
		writeMonth(&sb, byMonth[key])
	}
	return sb.String()
}

func writeMonth(sb *strings.Builder, m *monthStats) {
	fmt.Fprintf(sb, "## %s\n", m.month)
	fmt.Fprintf(sb, "Income %.2f, expenses %.2f, net %+.2f.\n", m.income, m.expense, m.income-m.expense)

	if top := topSpenders(m.spendByName, 3); len(top) > 0 {
		parts := make([]string, len(top))
		for i, s := range top {
			parts[i] = fmt.Sprintf("%s (%.2f)", s.name, s.total)
		}
		fmt.Fprintf(sb, "Top spending: %s.\n", strings.Join(parts, ", "))
	}

	if m.largestInflow.Amount > 0 {
		fmt.Fprintf(sb, "Largest inflow: %.2f from %s on %s.\n",
			m.largestInflow.Amount, m.largestInflow.Merchant, m.largestInflow.Date)
	}
	if m.largestOutflow.Amount < 0 {
		fmt.Fprintf(sb, "Largest outflow: %.2f to %s on %s.\n",
			-m.largestOutflow.Amount, m.largestOutflow.Merchant, m.largestOutflow.Date)
	}

	if days := len(m.spendDays); days > 0 {
		fmt.Fprintf(sb, "Spending on %d day(s), averaging %.2f per active day.\n",
			days, m.expense/float64(days))
	}

	if repeats := repeatMerchants(m.countByName); len(repeats) > 0 {
		fmt.Fprintf(sb, "Recurring merchants: %s.\n", strings.Join(repeats, ", "))
	}
	sb.WriteString("\n")
}

type spender struct {
	name  string
	total float64
}

func topSpenders(byName map[string]float64, n int) []spender {
	out := make([]spender, 0, len(byName))
	for name, total := range byName {
		out = append(out, spender{name, total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].total != out[j].total {
			return out[i].total > out[j].total
		}
		return out[i].name < out[j].name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func repeatMerchants(counts map[string]int) []string {
	out := make([]string, 0)
	for name, n := range counts {
		if n >= repeatMerchantMin {
			out = append(out, fmt.Sprintf("%s (%dx)", name, n))
		}
	}
	sort.Strings(out)
	return out
}
