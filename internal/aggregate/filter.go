package aggregate

import (
	"strings"

	"lifedash/internal/core"
)

// All disables a type or vehicle filter.
const All = "all"

// TransactionFilter selects transactions by type, free text and month.
// Empty fields match everything.
type TransactionFilter struct {
	Type   string // income, expense or all
	Search string // matched against description and category
	Month  string // YYYY-MM
}

// Match reports whether t passes every predicate of f. A transaction whose
// date is not DD/MM/YYYY is not excluded by the month predicate.
func (f TransactionFilter) Match(t core.Transaction) bool {
	if typ := strings.TrimSpace(f.Type); typ != "" && !strings.EqualFold(typ, All) {
		if !strings.EqualFold(string(t.Type), typ) {
			return false
		}
	}
	if !containsFold(f.Search, t.Description, t.Category) {
		return false
	}
	if month := strings.TrimSpace(f.Month); month != "" {
		if ym, ok := core.YearMonth(t.Date); ok && ym != month {
			return false
		}
	}
	return true
}

// Apply returns the transactions matching f, in order.
func (f TransactionFilter) Apply(txs []core.Transaction) []core.Transaction {
	return filter(txs, f.Match)
}

// FuelFilter selects fuel entries by vehicle and free text.
type FuelFilter struct {
	Vehicle string // Car, Bike or all
	Search  string // matched against serial and vehicle type
}

func (f FuelFilter) Match(e core.FuelEntry) bool {
	if v := strings.TrimSpace(f.Vehicle); v != "" && !strings.EqualFold(v, All) {
		if !strings.EqualFold(string(e.VehicleType), v) {
			return false
		}
	}
	return containsFold(f.Search, e.SerialNo, string(e.VehicleType))
}

func (f FuelFilter) Apply(entries []core.FuelEntry) []core.FuelEntry {
	return filter(entries, f.Match)
}

// DreamFilter selects dreams by free text over name, id and description.
type DreamFilter struct {
	Search string
}

func (f DreamFilter) Match(d core.Dream) bool {
	return containsFold(f.Search, d.DreamName, d.DreamID, d.Description)
}

func (f DreamFilter) Apply(dreams []core.Dream) []core.Dream {
	return filter(dreams, f.Match)
}

// containsFold reports whether any field contains needle, ignoring case.
// An empty needle matches.
func containsFold(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
