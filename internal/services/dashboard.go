package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"lifedash/internal/aggregate"
	"lifedash/internal/core"
	"lifedash/internal/reconcile"
)

// DashboardService builds the summary page from the three main sheets.
type DashboardService struct {
	finance *FinanceService
	fuel    *FuelService
	dreams  *DreamService
}

func NewDashboardService(finance *FinanceService, fuel *FuelService, dreams *DreamService) *DashboardService {
	return &DashboardService{finance: finance, fuel: fuel, dreams: dreams}
}

// Summary fetches transactions, fuel entries and dreams in parallel. If any
// fetch fails no list is updated and no partial view is returned.
func (s *DashboardService) Summary(ctx context.Context) (aggregate.DashboardView, error) {
	var (
		txSeq, fuelSeq, dreamSeq reconcile.Seq
		txs                      []core.Transaction
		fuel                     []core.FuelEntry
		dreams                   []core.Dream
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txSeq, txs, err = s.finance.list.fetch(gctx)
		return err
	})
	g.Go(func() (err error) {
		fuelSeq, fuel, err = s.fuel.list.fetch(gctx)
		return err
	})
	g.Go(func() (err error) {
		dreamSeq, dreams, err = s.dreams.dreams.fetch(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return aggregate.DashboardView{}, err
	}

	s.finance.list.apply(ctx, txSeq, txs)
	s.fuel.list.apply(ctx, fuelSeq, fuel)
	s.dreams.dreams.apply(ctx, dreamSeq, dreams)

	return aggregate.Dashboard(
		s.finance.list.snapshot(),
		s.fuel.list.snapshot(),
		s.dreams.dreams.snapshot(),
	), nil
}
