package models

// ColumnRole classifies what a raw statement column holds.
type ColumnRole string

const (
	RoleDate        ColumnRole = "date"
	RoleAmount      ColumnRole = "amount"
	RoleBalance     ColumnRole = "balance"
	RoleDebit       ColumnRole = "debit"
	RoleCredit      ColumnRole = "credit"
	RoleDescription ColumnRole = "description"
	RoleType        ColumnRole = "type"
	RoleMetadata    ColumnRole = "metadata"
	RoleUnknown     ColumnRole = "unknown"
)

// ColumnAnalysis is the classification result for a single column index.
type ColumnAnalysis struct {
	Index      int        `json:"index"`
	Header     string     `json:"header"`
	Role       ColumnRole `json:"role"`
	Confidence float64    `json:"confidence"` // 0..1
	Sample     string     `json:"sample"`     // one representative cell value
}

// RoleMap resolves roles to column indices. "Column not found" is a checked
// state, not a sentinel index.
type RoleMap struct {
	columns map[ColumnRole]int
}

// NewRoleMap builds a RoleMap from per-column analyses. When a role matches
// multiple columns, the first (leftmost) wins, except description where the
// highest-confidence column wins.
func NewRoleMap(analyses []ColumnAnalysis) RoleMap {
	m := RoleMap{columns: make(map[ColumnRole]int)}
	best := make(map[ColumnRole]float64)
	for _, a := range analyses {
		if a.Role == RoleUnknown {
			continue
		}
		if _, ok := m.columns[a.Role]; !ok {
			m.columns[a.Role] = a.Index
			best[a.Role] = a.Confidence
			continue
		}
		if a.Role == RoleDescription && a.Confidence > best[a.Role] {
			m.columns[a.Role] = a.Index
			best[a.Role] = a.Confidence
		}
	}
	return m
}

// Col returns the column index for a role and whether it exists.
func (m RoleMap) Col(role ColumnRole) (int, bool) {
	idx, ok := m.columns[role]
	return idx, ok
}

// Has reports whether any column carries the role.
func (m RoleMap) Has(role ColumnRole) bool {
	_, ok := m.columns[role]
	return ok
}

// HasMonetary reports whether any money-bearing column was found.
func (m RoleMap) HasMonetary() bool {
	return m.Has(RoleAmount) || m.Has(RoleDebit) || m.Has(RoleCredit) || m.Has(RoleBalance)
}

// Roles returns the set of assigned roles, for error messages and diagnostics.
func (m RoleMap) Roles() []ColumnRole {
	out := make([]ColumnRole, 0, len(m.columns))
	for _, r := range []ColumnRole{
		RoleDate, RoleAmount, RoleBalance, RoleDebit, RoleCredit,
		RoleDescription, RoleType, RoleMetadata,
	} {
		if m.Has(r) {
			out = append(out, r)
		}
	}
	return out
}
