package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifedash/internal/aggregate"
	"lifedash/internal/core"
	"lifedash/internal/normalize"
	"lifedash/internal/reconcile"
	"lifedash/internal/sheets"
	"lifedash/internal/sheets/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seed() map[string][][]any {
	return map[string][][]any{
		sheets.SheetFinance: {
			{"Timestamp", "Serial", "Type", "Amount", "Category", "Description", "Date"},
			{"01/01/2024 10:00:00", "IN-001", "income", "100", "Salary", "", "01/01/2024"},
			{"02/01/2024 10:00:00", "IN-002", "income", "200", "Bonus", "", "02/01/2024"},
			{"03/01/2024 10:00:00", "EX-001", "expense", "50", "Food", "lunch", "03/01/2024"},
		},
		sheets.SheetFuel: {
			{"Timestamp", "Serial", "Vehicle", "Price", "Meter", "Liter"},
			{"t", "CA-001", "Car", "500", "1000", "5"},
			{"t", "CA-002", "Car", "500", "1050", "5"},
		},
		sheets.SheetDreams: {
			{"Timestamp", "Serial", "Dream ID", "Name", "Cost", "Start", "End", "Description"},
			{"t", "SN-001", "DN-001", "Bike", "1000", "01/01/2024", "01/06/2024", ""},
		},
		sheets.SheetDreamTracker: {
			{"Timestamp", "Serial", "Dream ID", "Name", "Amount", "Remarks"},
			{"t", "SN-001", "DN-001", "Bike", "250", ""},
		},
	}
}

// scriptedStore wraps a store and lets a test fail or hold inserts and fetches.
type scriptedStore struct {
	sheets.Store
	insertErr error
	noSerial  bool
	fetchErr  map[string]error
	hold      chan struct{}
	entered   chan struct{}
}

func (s *scriptedStore) FetchRows(ctx context.Context, sheet string) ([][]any, error) {
	if err := s.fetchErr[sheet]; err != nil {
		return nil, err
	}
	return s.Store.FetchRows(ctx, sheet)
}

func (s *scriptedStore) InsertRow(ctx context.Context, sheet string, req sheets.InsertRequest) (sheets.InsertResult, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.hold != nil {
		<-s.hold
	}
	if s.insertErr != nil {
		return sheets.InsertResult{}, s.insertErr
	}
	res, err := s.Store.InsertRow(ctx, sheet, req)
	if s.noSerial {
		res.Serial, res.SerialNo = "", ""
	}
	return res, err
}

type eventLog struct {
	mu     sync.Mutex
	events []WriteEvent
	err    error
}

func (l *eventLog) RecordWrite(_ context.Context, ev WriteEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return l.err
}

func (l *eventLog) states() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.State
	}
	return out
}

func newStore() *scriptedStore {
	return &scriptedStore{Store: memory.New(seed()).WithLocation(time.UTC), fetchErr: map[string]error{}}
}

func txDraft() core.TransactionDraft {
	return core.TransactionDraft{Type: "expense", Amount: dec("20"), Category: "Fuel", Date: "2024-01-05"}
}

func TestFinanceListSummarizesFetchedRows(t *testing.T) {
	svc := NewFinanceService(newStore(), sheets.SheetFinance, normalize.New(time.UTC), nil)

	got, err := svc.List(context.Background(), aggregate.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, got.Transactions, 3)
	assert.True(t, got.Summary.TotalIncome.Equal(dec("300")))
	assert.True(t, got.Summary.TotalExpense.Equal(dec("50")))
	assert.True(t, got.Summary.NetBalance.Equal(dec("250")))
	assert.Equal(t, 3, got.Summary.TotalTransactions)

	filtered, err := svc.List(context.Background(), aggregate.TransactionFilter{Type: "expense"})
	require.NoError(t, err)
	assert.Len(t, filtered.Transactions, 1)
	assert.Len(t, filtered.Trend, 1, "trend ignores the filter")
}

func TestFinanceCreateConfirmsWithServerSerial(t *testing.T) {
	events := &eventLog{}
	svc := NewFinanceService(newStore(), sheets.SheetFinance, normalize.New(time.UTC), events)
	ctx := context.Background()
	_, err := svc.List(ctx, aggregate.TransactionFilter{})
	require.NoError(t, err)

	tx, err := svc.Create(ctx, txDraft())
	require.NoError(t, err)
	assert.Equal(t, "EX-002", tx.SerialNo)
	assert.Equal(t, "05/01/2024", tx.Date)
	assert.False(t, tx.Pending)

	cached := svc.cached(aggregate.TransactionFilter{})
	require.Len(t, cached.Transactions, 4)
	assert.Equal(t, "EX-002", cached.Transactions[0].SerialNo)
	for _, c := range cached.Transactions {
		assert.False(t, core.IsTempKey(c.SerialNo))
	}

	assert.Equal(t, []string{"pending", "confirmed"}, events.states())
	assert.True(t, core.IsTempKey(events.events[0].Key))
	assert.Equal(t, "EX-002", events.events[1].ServerKey)

	// the next fetch contains the row once
	again, err := svc.List(ctx, aggregate.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, again.Transactions, 4)
}

func TestFinanceCreateRollsBackOnStoreFailure(t *testing.T) {
	store := newStore()
	events := &eventLog{}
	svc := NewFinanceService(store, sheets.SheetFinance, normalize.New(time.UTC), events)
	ctx := context.Background()
	before, err := svc.List(ctx, aggregate.TransactionFilter{})
	require.NoError(t, err)

	store.insertErr = &sheets.StoreError{Kind: sheets.KindLogical, Sheet: sheets.SheetFinance, Err: sheets.ErrStoreFailure}
	_, err = svc.Create(ctx, txDraft())
	require.Error(t, err)
	assert.True(t, sheets.IsLogical(err))

	after := svc.cached(aggregate.TransactionFilter{})
	assert.Equal(t, before.Transactions, after.Transactions)
	assert.False(t, svc.Busy())
	assert.Equal(t, []string{"pending", "rolled_back"}, events.states())
	assert.NotEmpty(t, events.events[1].Error)
}

func TestFinanceCreateRejectsInvalidDraft(t *testing.T) {
	svc := NewFinanceService(newStore(), sheets.SheetFinance, normalize.New(time.UTC), nil)
	d := txDraft()
	d.Amount = decimal.Zero
	_, err := svc.Create(context.Background(), d)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestConcurrentWriteIsRefusedWhileBusy(t *testing.T) {
	store := newStore()
	store.hold = make(chan struct{})
	store.entered = make(chan struct{}, 1)
	svc := NewFinanceService(store, sheets.SheetFinance, normalize.New(time.UTC), nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Create(ctx, txDraft())
		done <- err
	}()
	<-store.entered

	snap := svc.cached(aggregate.TransactionFilter{}).Transactions
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Pending)
	assert.True(t, svc.Busy())

	_, err := svc.Create(ctx, txDraft())
	assert.ErrorIs(t, err, reconcile.ErrBusy)

	close(store.hold)
	require.NoError(t, <-done)
	assert.False(t, svc.Busy())
}

func TestWriteWithoutServerSerialRollsBack(t *testing.T) {
	store := newStore()
	store.noSerial = true
	events := &eventLog{}
	svc := NewFinanceService(store, sheets.SheetFinance, normalize.New(time.UTC), events)
	ctx := context.Background()
	_, err := svc.List(ctx, aggregate.TransactionFilter{})
	require.NoError(t, err)

	_, err = svc.Create(ctx, txDraft())
	require.Error(t, err)
	var se *sheets.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, sheets.KindDecode, se.Kind)
	assert.Equal(t, []string{"pending", "rolled_back"}, events.states())

	for _, tx := range svc.cached(aggregate.TransactionFilter{}).Transactions {
		assert.False(t, core.IsTempKey(tx.ID), "no temp key left behind")
	}
	assert.Len(t, svc.cached(aggregate.TransactionFilter{}).Transactions, 3)
	assert.False(t, svc.Busy())
}

func TestRecorderFailureDoesNotFailWrite(t *testing.T) {
	events := &eventLog{err: errors.New("journal down")}
	svc := NewFinanceService(newStore(), sheets.SheetFinance, normalize.New(time.UTC), events)
	_, err := svc.Create(context.Background(), txDraft())
	assert.NoError(t, err)
}

func TestRecordersJoinErrors(t *testing.T) {
	ok := &eventLog{}
	bad := &eventLog{err: errors.New("boom")}
	err := Recorders{ok, nil, bad}.RecordWrite(context.Background(), WriteEvent{Key: "k"})
	assert.EqualError(t, err, "boom")
	assert.Len(t, ok.events, 1)
}

func TestFuelListComputesAverages(t *testing.T) {
	svc := NewFuelService(newStore(), sheets.SheetFuel, normalize.New(time.UTC), nil)
	ctx := context.Background()

	got, err := svc.List(ctx, aggregate.FuelFilter{})
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.False(t, got.Entries[0].AverageKM.Valid)
	assert.Equal(t, "10", got.Entries[1].AverageKM.Decimal.String())
	assert.True(t, got.Summary.Car.Price.Equal(dec("1000")))

	e, err := svc.Create(ctx, core.FuelDraft{VehicleType: core.Bike, Price: dec("100"), MeterNo: dec("300"), Liter: dec("2")})
	require.NoError(t, err)
	assert.Equal(t, "BI-001", e.SerialNo)

	bikes, err := svc.List(ctx, aggregate.FuelFilter{Vehicle: "bike"})
	require.NoError(t, err)
	require.Len(t, bikes.Entries, 1)
	assert.Equal(t, 3, bikes.Summary.Entries)
}

func TestFuelCreateCanonicalizesVehicleType(t *testing.T) {
	store := newStore()
	svc := NewFuelService(store, sheets.SheetFuel, normalize.New(time.UTC), nil)
	ctx := context.Background()

	e, err := svc.Create(ctx, core.FuelDraft{VehicleType: "car", Price: dec("500"), MeterNo: dec("1100"), Liter: dec("5")})
	require.NoError(t, err)
	assert.Equal(t, core.Car, e.VehicleType)
	assert.Equal(t, "CA-003", e.SerialNo)

	rows, err := store.Store.FetchRows(ctx, sheets.SheetFuel)
	require.NoError(t, err)
	assert.Equal(t, "Car", rows[len(rows)-1][2])

	got, err := svc.List(ctx, aggregate.FuelFilter{Vehicle: "car"})
	require.NoError(t, err)
	var added *core.FuelEntry
	for i := range got.Entries {
		if got.Entries[i].SerialNo == "CA-003" {
			added = &got.Entries[i]
		}
	}
	require.NotNil(t, added)
	require.True(t, added.AverageKM.Valid)
	assert.Equal(t, "10.00", added.AverageKM.Decimal.StringFixed(2))
}

func TestDreamFlow(t *testing.T) {
	svc := NewDreamService(newStore(), sheets.SheetDreams, sheets.SheetDreamTracker, normalize.New(time.UTC), nil)
	ctx := context.Background()

	list, err := svc.List(ctx, aggregate.DreamFilter{})
	require.NoError(t, err)
	require.Len(t, list.Dreams, 1)
	assert.True(t, list.Saved["DN-001"].Equal(dec("250")))

	d, err := svc.Create(ctx, core.DreamDraft{Name: "Trip", TotalCost: dec("500"), StartDate: "2024-02-01", EndDate: "2024-08-01"})
	require.NoError(t, err)
	assert.Equal(t, "DN-002", d.DreamID)
	assert.Equal(t, "SN-002", d.SerialNo)

	c, err := svc.Contribute(ctx, core.ContributionDraft{DreamID: "DN-002", Amount: dec("125")})
	require.NoError(t, err)
	assert.Equal(t, "Trip", c.DreamName)
	assert.Equal(t, "SN-002", c.SerialNo)

	p, err := svc.Progress(ctx, "DN-002")
	require.NoError(t, err)
	assert.True(t, p.Saved.Equal(dec("125")))
	assert.Equal(t, "25", p.Percent.String())
	assert.Len(t, p.Contributions, 1)

	_, err = svc.Progress(ctx, "DN-404")
	assert.ErrorIs(t, err, ErrDreamNotFound)
}

func TestDashboardIsAllOrNothing(t *testing.T) {
	store := newStore()
	norm := normalize.New(time.UTC)
	finance := NewFinanceService(store, sheets.SheetFinance, norm, nil)
	fuel := NewFuelService(store, sheets.SheetFuel, norm, nil)
	dreams := NewDreamService(store, sheets.SheetDreams, sheets.SheetDreamTracker, norm, nil)
	dash := NewDashboardService(finance, fuel, dreams)
	ctx := context.Background()

	v, err := dash.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, v.Finance.NetBalance.Equal(dec("250")))
	assert.Equal(t, 1, v.Dreams.TotalDreams)
	assert.Equal(t, 2, v.Fuel.Entries)

	store.fetchErr[sheets.SheetFuel] = &sheets.StoreError{Kind: sheets.KindTransport, Sheet: sheets.SheetFuel}
	store.Store.InsertRow(ctx, sheets.SheetFinance, normalize.TransactionInsert(txDraft(), time.Now()))

	_, err = dash.Summary(ctx)
	require.Error(t, err)
	assert.True(t, sheets.IsTransport(err))
	assert.Len(t, finance.cached(aggregate.TransactionFilter{}).Transactions, 3, "finance list untouched")
}
