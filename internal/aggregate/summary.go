// Package aggregate computes the figures shown on the finance, fuel, dream
// and dashboard views. Every function is pure: it reads the records it is
// given and never mutates them.
package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"lifedash/internal/core"
)

const (
	// TopCategories is how many expense categories the breakdown keeps.
	TopCategories = 5
	// TrendMonths is how many month buckets the trend keeps.
	TrendMonths = 6
)

var hundred = decimal.NewFromInt(100)

// FinanceSummary totals an already filtered transaction list.
func FinanceSummary(txs []core.Transaction) core.FinanceSummary {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch {
		case t.Type.IsIncome():
			income = income.Add(t.Amount)
		case t.Type.IsExpense():
			expense = expense.Add(t.Amount)
		}
	}
	return core.FinanceSummary{
		TotalIncome:       income,
		TotalExpense:      expense,
		NetBalance:        income.Sub(expense),
		TotalTransactions: len(txs),
	}
}

// CategoryBreakdown sums expenses per category and returns the n largest,
// largest first. Categories past n are dropped. Equal totals keep the order
// in which their category first appeared.
func CategoryBreakdown(txs []core.Transaction, n int) []core.CategoryAmount {
	var out []core.CategoryAmount
	index := make(map[string]int)
	for _, t := range txs {
		if !t.Type.IsExpense() {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategoryAmount{Name: t.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Amount.GreaterThan(out[b].Amount)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MonthlyTrend groups transactions into MM/YYYY buckets in the order each
// bucket is first seen and returns the last n of them. Any type other than
// income counts as expense. Dates that are not DD/MM/YYYY are skipped.
func MonthlyTrend(txs []core.Transaction, n int) []core.MonthTotals {
	var out []core.MonthTotals
	index := make(map[string]int)
	for _, t := range txs {
		bucket, ok := core.MonthBucket(t.Date)
		if !ok {
			continue
		}
		i, seen := index[bucket]
		if !seen {
			i = len(out)
			index[bucket] = i
			out = append(out, core.MonthTotals{Month: bucket, Income: decimal.Zero, Expense: decimal.Zero})
		}
		if t.Type.IsIncome() {
			out[i].Income = out[i].Income.Add(t.Amount)
		} else {
			out[i].Expense = out[i].Expense.Add(t.Amount)
		}
	}
	if n >= 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// WithAverages returns a copy of entries, in arrival order, with AverageKM
// set from the closest earlier entry of the same vehicle type.
func WithAverages(entries []core.FuelEntry) []core.FuelEntry {
	out := make([]core.FuelEntry, len(entries))
	for i, e := range entries {
		e.AverageKM = AverageKM(entries, i)
		out[i] = e
	}
	return out
}

// AverageKM is the distance per litre for entries[i]: the meter delta from
// the previous entry with the same vehicle type divided by the litres filled,
// rounded to two places. It is not valid for the first entry of a vehicle,
// for a meter that did not increase, or when no litres were recorded.
func AverageKM(entries []core.FuelEntry, i int) decimal.NullDecimal {
	if i <= 0 || i >= len(entries) {
		return decimal.NullDecimal{}
	}
	cur := entries[i]
	for j := i - 1; j >= 0; j-- {
		prev := entries[j]
		if prev.VehicleType != cur.VehicleType {
			continue
		}
		delta := cur.MeterNo.Sub(prev.MeterNo)
		if !delta.IsPositive() || !cur.Liter.IsPositive() {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(delta.DivRound(cur.Liter, 2))
	}
	return decimal.NullDecimal{}
}

// VehicleSummary sums price and litres per vehicle over every entry.
func VehicleSummary(entries []core.FuelEntry) core.VehicleSummary {
	s := core.VehicleSummary{
		Car:         core.VehicleTotals{Price: decimal.Zero, Liter: decimal.Zero},
		Bike:        core.VehicleTotals{Price: decimal.Zero, Liter: decimal.Zero},
		TotalLiters: decimal.Zero,
		Entries:     len(entries),
	}
	for _, e := range entries {
		s.TotalLiters = s.TotalLiters.Add(e.Liter)
		switch {
		case strings.EqualFold(string(e.VehicleType), string(core.Car)):
			s.Car.Price = s.Car.Price.Add(e.Price)
			s.Car.Liter = s.Car.Liter.Add(e.Liter)
		case strings.EqualFold(string(e.VehicleType), string(core.Bike)):
			s.Bike.Price = s.Bike.Price.Add(e.Price)
			s.Bike.Liter = s.Bike.Liter.Add(e.Liter)
		}
	}
	return s
}

// DreamProgress collects the contributions made towards d.
func DreamProgress(d core.Dream, contributions []core.DreamContribution) core.DreamProgress {
	saved := decimal.Zero
	mine := make([]core.DreamContribution, 0)
	for _, c := range contributions {
		if c.DreamID != d.DreamID {
			continue
		}
		saved = saved.Add(c.AddAmount)
		mine = append(mine, c)
	}

	remaining := d.TotalCost.Sub(saved)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	percent := decimal.Zero
	if d.TotalCost.IsPositive() {
		percent = saved.Div(d.TotalCost).Mul(hundred)
		if percent.GreaterThan(hundred) {
			percent = hundred
		}
		percent = percent.Round(1)
	}

	return core.DreamProgress{
		Dream:         d,
		Saved:         saved,
		Remaining:     remaining,
		Percent:       percent,
		Contributions: mine,
	}
}

// SavedByDream sums contributions per dream id.
func SavedByDream(contributions []core.DreamContribution) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, c := range contributions {
		out[c.DreamID] = out[c.DreamID].Add(c.AddAmount)
	}
	return out
}

// DreamsSummary counts dreams and totals their targets. Contributions may
// be nil, leaving TotalSaved at zero.
func DreamsSummary(dreams []core.Dream, contributions []core.DreamContribution) core.DreamsSummary {
	s := core.DreamsSummary{
		TotalDreams: len(dreams),
		TotalTarget: decimal.Zero,
		TotalSaved:  decimal.Zero,
	}
	ids := make(map[string]struct{}, len(dreams))
	for _, d := range dreams {
		s.TotalTarget = s.TotalTarget.Add(d.TotalCost)
		ids[d.DreamID] = struct{}{}
	}
	for _, c := range contributions {
		if _, ok := ids[c.DreamID]; ok {
			s.TotalSaved = s.TotalSaved.Add(c.AddAmount)
		}
	}
	return s
}

// DashboardView is the combined summary page.
type DashboardView struct {
	Finance      core.FinanceSummary   `json:"finance"`
	Categories   []core.CategoryAmount `json:"categories"`
	Trend        []core.MonthTotals    `json:"trend"`
	Fuel         core.VehicleSummary   `json:"fuel"`
	Dreams       core.DreamsSummary    `json:"dreams"`
	Transactions []core.Transaction    `json:"recentTransactions"`
}

// recentLimit caps the transactions listed on the dashboard.
const recentLimit = 5

// Dashboard builds the summary page from full, unfiltered lists.
func Dashboard(txs []core.Transaction, fuel []core.FuelEntry, dreams []core.Dream) DashboardView {
	recent := txs
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return DashboardView{
		Finance:      FinanceSummary(txs),
		Categories:   CategoryBreakdown(txs, TopCategories),
		Trend:        MonthlyTrend(txs, TrendMonths),
		Fuel:         VehicleSummary(fuel),
		Dreams:       DreamsSummary(dreams, nil),
		Transactions: append([]core.Transaction(nil), recent...),
	}
}
