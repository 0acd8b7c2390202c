package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lifedash/internal/core"
	"lifedash/internal/reconcile"
	"lifedash/internal/sheets"
)

// syncedList binds one sheet to its reconciled in-memory collection.
type syncedList[T any] struct {
	domain   string
	sheet    string
	store    sheets.Store
	coll     *reconcile.Collection[T]
	key      func(T) string
	parse    func([][]any) []T
	recorder WriteRecorder
}

func newSyncedList[T any](domain, sheet string, store sheets.Store, key func(T) string, parse func([][]any) []T, recorder WriteRecorder) *syncedList[T] {
	return &syncedList[T]{
		domain:   domain,
		sheet:    sheet,
		store:    store,
		coll:     reconcile.New(key),
		key:      key,
		parse:    parse,
		recorder: recorder,
	}
}

// fetch reads and parses the sheet without touching the collection.
func (l *syncedList[T]) fetch(ctx context.Context) (reconcile.Seq, []T, error) {
	seq := l.coll.BeginFetch()
	rows, err := l.store.FetchRows(ctx, l.sheet)
	if err != nil {
		return seq, nil, fmt.Errorf("fetch %s: %w", l.sheet, err)
	}
	return seq, l.parse(rows), nil
}

// apply stores a fetched result unless a newer one was applied already.
func (l *syncedList[T]) apply(ctx context.Context, seq reconcile.Seq, recs []T) {
	if !l.coll.ApplyFetch(seq, recs) {
		slog.DebugContext(ctx, "Discarded stale fetch",
			"sheet", l.sheet,
			"seq", uint64(seq))
	}
}

// refresh fetches the sheet and returns the reconciled list. On error the
// current list is left as it was.
func (l *syncedList[T]) refresh(ctx context.Context) ([]T, error) {
	seq, recs, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}
	l.apply(ctx, seq, recs)
	return l.coll.Snapshot(), nil
}

func (l *syncedList[T]) snapshot() []T {
	return l.coll.Snapshot()
}

// write runs one optimistic insert: pending goes to the head of the list,
// then is either confirmed with the store's answer or rolled back.
func (l *syncedList[T]) write(ctx context.Context, pending T, req sheets.InsertRequest, confirm func(T, sheets.InsertResult) T) (T, error) {
	var zero T

	tk, err := l.coll.Submit(pending)
	if err != nil {
		return zero, err
	}
	record(ctx, l.recorder, l.event(tk.Key, reconcile.Pending, "", nil))

	res, err := l.store.InsertRow(ctx, l.sheet, req)
	if err != nil {
		return zero, l.rollback(ctx, tk, err)
	}

	rec := confirm(pending, res)
	if core.IsTempKey(l.key(rec)) {
		return zero, l.rollback(ctx, tk, &sheets.StoreError{
			Kind:    sheets.KindDecode,
			Sheet:   l.sheet,
			Action:  req.Action,
			Message: "insert response carried no serial",
		})
	}
	if err := l.coll.Confirm(tk, rec); err != nil {
		return zero, fmt.Errorf("confirm %s: %w", tk.Key, err)
	}
	serverKey := l.key(rec)
	record(ctx, l.recorder, l.event(tk.Key, reconcile.Confirmed, serverKey, nil))
	slog.InfoContext(ctx, "Write confirmed",
		"domain", l.domain,
		"sheet", l.sheet,
		"key", serverKey)
	return rec, nil
}

func (l *syncedList[T]) event(key string, state reconcile.State, serverKey string, err error) WriteEvent {
	ev := WriteEvent{
		Key:       key,
		Domain:    l.domain,
		Sheet:     l.sheet,
		State:     state.String(),
		ServerKey: serverKey,
		At:        time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

// newTempKey returns a unique temporary key for a pending record.
func newTempKey() string {
	return core.TempKeyPrefix + uuid.NewString()
}

// rollback withdraws the pending record for tk after a failed insert.
func (l *syncedList[T]) rollback(ctx context.Context, tk reconcile.Ticket, cause error) error {
	if err := l.coll.Rollback(tk); err != nil {
		slog.ErrorContext(ctx, "Failed to roll back pending record",
			"key", tk.Key,
			"error", err)
	}
	record(ctx, l.recorder, l.event(tk.Key, reconcile.RolledBack, "", cause))
	slog.WarnContext(ctx, "Write rolled back",
		"domain", l.domain,
		"sheet", l.sheet,
		"key", tk.Key,
		"error", cause)
	return fmt.Errorf("insert into %s: %w", l.sheet, cause)
}
