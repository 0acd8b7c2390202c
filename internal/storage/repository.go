package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"lifedash/internal/services"
)

// Journal records every optimistic write step in SQLite.
type Journal struct {
	db *sql.DB
}

var _ services.WriteRecorder = (*Journal)(nil)

// OpenJournal opens or creates the database at dbPath and migrates it.
func OpenJournal(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Ping checks the database is reachable.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// RecordWrite stores ev. A repeated (key, state) pair is ignored, so a
// redelivered message is recorded once.
func (j *Journal) RecordWrite(ctx context.Context, ev services.WriteEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	res, err := j.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO write_events
			(event_key, domain, sheet, state, server_key, error, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Key, ev.Domain, ev.Sheet, ev.State, ev.ServerKey, ev.Error, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert write event: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "Duplicate write event ignored",
			"key", ev.Key,
			"state", ev.State)
	}
	return nil
}

// ListFilter narrows List. Zero fields match everything.
type ListFilter struct {
	Domain string
	State  string
	Limit  int
}

const defaultListLimit = 100

// List returns recorded events, newest first.
func (j *Journal) List(ctx context.Context, f ListFilter) ([]services.WriteEvent, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT event_key, domain, sheet, state, server_key, error, occurred_at
		FROM write_events
		WHERE (? = '' OR domain = ?)
		  AND (? = '' OR state = ?)
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`,
		f.Domain, f.Domain, f.State, f.State, limit)
	if err != nil {
		return nil, fmt.Errorf("query write events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Unresolved returns pending events that never reached a final state, such
// as writes interrupted by a restart.
func (j *Journal) Unresolved(ctx context.Context) ([]services.WriteEvent, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT p.event_key, p.domain, p.sheet, p.state, p.server_key, p.error, p.occurred_at
		FROM write_events p
		WHERE p.state = 'pending'
		  AND NOT EXISTS (
			SELECT 1 FROM write_events f
			WHERE f.event_key = p.event_key AND f.state != 'pending'
		  )
		ORDER BY p.occurred_at`)
	if err != nil {
		return nil, fmt.Errorf("query unresolved writes: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Prune deletes events that occurred before cutoff.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		`DELETE FROM write_events WHERE occurred_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune write events: %w", err)
	}
	return res.RowsAffected()
}

func scanEvents(rows *sql.Rows) ([]services.WriteEvent, error) {
	var out []services.WriteEvent
	for rows.Next() {
		var (
			ev services.WriteEvent
			ms int64
		)
		if err := rows.Scan(&ev.Key, &ev.Domain, &ev.Sheet, &ev.State, &ev.ServerKey, &ev.Error, &ms); err != nil {
			return nil, fmt.Errorf("scan write event: %w", err)
		}
		ev.At = time.UnixMilli(ms).UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate write events: %w", err)
	}
	return out, nil
}
