package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lifedash/internal/services"
)

// JournalStore is what the worker needs from the write journal.
type JournalStore interface {
	RecordWrite(ctx context.Context, ev services.WriteEvent) error
	Unresolved(ctx context.Context) ([]services.WriteEvent, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the maintenance schedule of the journal worker.
type Config struct {
	// CleanupInterval is how often old events are pruned (default: 1h)
	CleanupInterval time.Duration

	// Retention is how long events are kept (default: 30 days)
	Retention time.Duration

	// UnresolvedAfter is how old a pending event must be before it is
	// reported as unresolved (default: 5m)
	UnresolvedAfter time.Duration
}

func DefaultConfig() Config {
	return Config{
		CleanupInterval: time.Hour,
		Retention:       30 * 24 * time.Hour,
		UnresolvedAfter: 5 * time.Minute,
	}
}

// JournalWorker stores consumed write events and keeps the journal tidy.
type JournalWorker struct {
	journal JournalStore
	config  Config
	now     func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewJournalWorker(journal JournalStore, config Config) *JournalWorker {
	def := DefaultConfig()
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.Retention <= 0 {
		config.Retention = def.Retention
	}
	if config.UnresolvedAfter <= 0 {
		config.UnresolvedAfter = def.UnresolvedAfter
	}
	return &JournalWorker{journal: journal, config: config, now: time.Now}
}

// HandleWriteEvent stores one consumed event.
func (w *JournalWorker) HandleWriteEvent(ctx context.Context, ev services.WriteEvent) error {
	if err := w.journal.RecordWrite(ctx, ev); err != nil {
		return fmt.Errorf("record %s %s: %w", ev.Key, ev.State, err)
	}
	slog.DebugContext(ctx, "Recorded write event",
		"key", ev.Key,
		"domain", ev.Domain,
		"state", ev.State)
	return nil
}

// Start begins the maintenance loop. Returns an error if already running.
func (w *JournalWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("journal worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Journal worker started",
		"cleanup_interval", w.config.CleanupInterval,
		"retention", w.config.Retention)
	return nil
}

// Stop signals the loop and waits for it to finish or ctx to end.
func (w *JournalWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Journal worker stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Journal worker stop timed out")
		return ctx.Err()
	}
}

func (w *JournalWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.Maintain(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Maintain(ctx)
		}
	}
}

// Maintain prunes expired events and logs writes that never resolved.
func (w *JournalWorker) Maintain(ctx context.Context) {
	now := w.now()

	n, err := w.journal.Prune(ctx, now.Add(-w.config.Retention))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to prune write journal", "error", err)
	} else if n > 0 {
		slog.InfoContext(ctx, "Pruned write journal", "deleted", n)
	}

	open, err := w.journal.Unresolved(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list unresolved writes", "error", err)
		return
	}
	for _, ev := range open {
		if now.Sub(ev.At) < w.config.UnresolvedAfter {
			continue
		}
		slog.WarnContext(ctx, "Write never resolved, check the sheet for a duplicate or missing row",
			"key", ev.Key,
			"domain", ev.Domain,
			"sheet", ev.Sheet,
			"since", ev.At)
	}
}
