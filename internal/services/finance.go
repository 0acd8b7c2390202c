package services

import (
	"context"
	"fmt"
	"time"

	"lifedash/internal/aggregate"
	"lifedash/internal/core"
	"lifedash/internal/normalize"
	"lifedash/internal/sheets"
)

// FinanceListing is a filtered transaction list with its summary figures.
type FinanceListing struct {
	Transactions []core.Transaction    `json:"transactions"`
	Summary      core.FinanceSummary   `json:"summary"`
	Categories   []core.CategoryAmount `json:"categories"`
	Trend        []core.MonthTotals    `json:"trend"`
}

// FinanceService manages the Daily sheet.
type FinanceService struct {
	list *syncedList[core.Transaction]
	norm *normalize.Normalizer
	now  func() time.Time
}

func NewFinanceService(store sheets.Store, sheet string, norm *normalize.Normalizer, recorder WriteRecorder) *FinanceService {
	return &FinanceService{
		list: newSyncedList(DomainFinance, sheet, store,
			func(t core.Transaction) string { return t.SerialNo },
			norm.Transactions, recorder),
		norm: norm,
		now:  time.Now,
	}
}

// List refreshes the sheet and returns the transactions matching f. The
// category breakdown covers the filtered list; the monthly trend covers
// every transaction.
func (s *FinanceService) List(ctx context.Context, f aggregate.TransactionFilter) (FinanceListing, error) {
	all, err := s.list.refresh(ctx)
	if err != nil {
		return FinanceListing{}, err
	}
	return s.listing(all, f), nil
}

// cached returns the listing built from the last successful fetch.
func (s *FinanceService) cached(f aggregate.TransactionFilter) FinanceListing {
	return s.listing(s.list.snapshot(), f)
}

func (s *FinanceService) listing(all []core.Transaction, f aggregate.TransactionFilter) FinanceListing {
	filtered := f.Apply(all)
	return FinanceListing{
		Transactions: filtered,
		Summary:      aggregate.FinanceSummary(filtered),
		Categories:   aggregate.CategoryBreakdown(filtered, aggregate.TopCategories),
		Trend:        aggregate.MonthlyTrend(all, aggregate.TrendMonths),
	}
}

// Create validates d and writes it through the optimistic list.
func (s *FinanceService) Create(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("invalid transaction: %w", err)
	}
	now := s.now().In(s.norm.Location())
	pending := s.norm.PendingTransaction(d, newTempKey())
	return s.list.write(ctx, pending, normalize.TransactionInsert(d, now), normalize.ConfirmTransaction)
}

// Busy reports whether a transaction write is in flight.
func (s *FinanceService) Busy() bool {
	return s.list.coll.Busy()
}
