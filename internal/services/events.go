package services

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Domains a write can belong to.
const (
	DomainFinance      = "finance"
	DomainDream        = "dream"
	DomainContribution = "contribution"
	DomainFuel         = "fuel"
)

// WriteEvent describes one step of an optimistic write.
type WriteEvent struct {
	Key       string    `json:"key"`
	Domain    string    `json:"domain"`
	Sheet     string    `json:"sheet"`
	State     string    `json:"state"`
	ServerKey string    `json:"server_key,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// WriteRecorder receives write events. Implementations must be safe for
// concurrent use.
type WriteRecorder interface {
	RecordWrite(ctx context.Context, ev WriteEvent) error
}

// Recorders fans an event out to every recorder and joins their errors.
type Recorders []WriteRecorder

func (rs Recorders) RecordWrite(ctx context.Context, ev WriteEvent) error {
	var errs []error
	for _, r := range rs {
		if r == nil {
			continue
		}
		if err := r.RecordWrite(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// record hands ev to r. Failures are logged and never reach the caller.
func record(ctx context.Context, r WriteRecorder, ev WriteEvent) {
	if r == nil {
		return
	}
	if err := r.RecordWrite(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to record write event",
			"key", ev.Key,
			"domain", ev.Domain,
			"state", ev.State,
			"error", err)
	}
}
