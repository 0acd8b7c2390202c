package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an expense total aggregated by category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthTotals holds income and expense sums for one MM/YYYY bucket.
type MonthTotals struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// FinanceSummary is the headline figure set for a filtered transaction list.
type FinanceSummary struct {
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	TotalExpense      decimal.Decimal `json:"totalExpense"`
	NetBalance        decimal.Decimal `json:"netBalance"`
	TotalTransactions int             `json:"totalTransactions"`
}

// VehicleTotals sums price and fuel for one vehicle type.
type VehicleTotals struct {
	Price decimal.Decimal `json:"price"`
	Liter decimal.Decimal `json:"liter"`
}

// VehicleSummary covers every fuel entry regardless of active filters.
type VehicleSummary struct {
	Car         VehicleTotals   `json:"car"`
	Bike        VehicleTotals   `json:"bike"`
	TotalLiters decimal.Decimal `json:"totalLiters"`
	Entries     int             `json:"entries"`
}

// DreamProgress is the savings state of one dream.
type DreamProgress struct {
	Dream         Dream               `json:"dream"`
	Saved         decimal.Decimal     `json:"saved"`
	Remaining     decimal.Decimal     `json:"remaining"`
	Percent       decimal.Decimal     `json:"percent"` // capped at 100, one decimal
	Contributions []DreamContribution `json:"contributions"`
}

// DreamsSummary aggregates the dream list.
type DreamsSummary struct {
	TotalDreams int             `json:"totalDreams"`
	TotalTarget decimal.Decimal `json:"totalTarget"`
	TotalSaved  decimal.Decimal `json:"totalSaved"`
}
