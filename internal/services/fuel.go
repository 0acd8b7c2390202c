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

// FuelListing is a filtered fuel log with per-vehicle totals. Averages are
// computed over the full log before filtering; totals ignore the filter.
type FuelListing struct {
	Entries []core.FuelEntry    `json:"entries"`
	Summary core.VehicleSummary `json:"summary"`
}

// FuelService manages the Fuel Trackers sheet.
type FuelService struct {
	list *syncedList[core.FuelEntry]
	norm *normalize.Normalizer
	now  func() time.Time
}

func NewFuelService(store sheets.Store, sheet string, norm *normalize.Normalizer, recorder WriteRecorder) *FuelService {
	return &FuelService{
		list: newSyncedList(DomainFuel, sheet, store,
			func(e core.FuelEntry) string { return e.SerialNo },
			norm.FuelEntries, recorder),
		norm: norm,
		now:  time.Now,
	}
}

func (s *FuelService) List(ctx context.Context, f aggregate.FuelFilter) (FuelListing, error) {
	all, err := s.list.refresh(ctx)
	if err != nil {
		return FuelListing{}, err
	}
	return FuelListing{
		Entries: f.Apply(aggregate.WithAverages(all)),
		Summary: aggregate.VehicleSummary(all),
	}, nil
}

func (s *FuelService) Create(ctx context.Context, d core.FuelDraft) (core.FuelEntry, error) {
	if err := d.Validate(); err != nil {
		return core.FuelEntry{}, fmt.Errorf("invalid fuel entry: %w", err)
	}
	d.VehicleType, _ = core.ParseVehicleType(string(d.VehicleType))
	now := s.now().In(s.norm.Location())
	pending := s.norm.PendingFuel(d, newTempKey(), now)
	return s.list.write(ctx, pending, normalize.FuelInsert(d, now), normalize.ConfirmFuel)
}

func (s *FuelService) Busy() bool {
	return s.list.coll.Busy()
}
