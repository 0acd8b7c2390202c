// Package reconcile keeps an ordered record list in step with the store
// while local writes are in flight.
//
// A submitted record is shown at the head of the list straight away under
// a temporary key. When the store answers it is either replaced in place by
// the confirmed record or removed. Only one write per collection may be
// outstanding at a time.
//
// Fetches are sequenced: each fetch takes a number from BeginFetch and its
// result is applied only if no later fetch has been applied already.
package reconcile

import (
	"errors"
	"sync"
)

var (
	ErrBusy          = errors.New("a write is already in progress")
	ErrUnknownTicket = errors.New("unknown or already resolved write")
)

// State of a submitted record.
type State int

const (
	Pending State = iota
	Confirmed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// Ticket identifies one submitted record until it is resolved.
type Ticket struct {
	Key string
}

// Seq numbers fetches issued against a collection.
type Seq uint64

type Collection[T any] struct {
	mu    sync.Mutex
	key   func(T) string
	items []T

	busy    bool
	pending map[string]struct{}
	// confirmed keys mapped to the last fetch issued when they were confirmed;
	// a fetch issued no later than that may not contain them yet
	confirmed map[string]Seq

	issued  Seq
	applied Seq
	loaded  bool
}

// New returns an empty collection. key must return the identity a record
// has in the store (serial or dream id), or its temporary key while pending.
func New[T any](key func(T) string) *Collection[T] {
	return &Collection[T]{
		key:       key,
		pending:   make(map[string]struct{}),
		confirmed: make(map[string]Seq),
	}
}

// Submit puts rec at the head of the list in Pending state.
func (c *Collection[T]) Submit(rec T) (Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return Ticket{}, ErrBusy
	}
	k := c.key(rec)
	c.busy = true
	c.pending[k] = struct{}{}
	c.items = append([]T{rec}, c.items...)
	return Ticket{Key: k}, nil
}

// Confirm replaces the pending record with rec at the same position. When a
// fetch already delivered rec, the pending record is dropped instead.
func (c *Collection[T]) Confirm(t Ticket, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, err := c.resolve(t)
	if err != nil {
		return err
	}
	if j := c.indexOf(c.key(rec)); j >= 0 && j != idx {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	} else {
		c.items[idx] = rec
	}
	c.confirmed[c.key(rec)] = c.issued
	return nil
}

// Rollback removes the pending record, restoring the list as it was.
func (c *Collection[T]) Rollback(t Ticket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, err := c.resolve(t)
	if err != nil {
		return err
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return nil
}

func (c *Collection[T]) resolve(t Ticket) (int, error) {
	if _, ok := c.pending[t.Key]; !ok {
		return -1, ErrUnknownTicket
	}
	idx := c.indexOf(t.Key)
	delete(c.pending, t.Key)
	c.busy = false
	if idx < 0 {
		return -1, ErrUnknownTicket
	}
	return idx, nil
}

func (c *Collection[T]) indexOf(key string) int {
	for i, it := range c.items {
		if c.key(it) == key {
			return i
		}
	}
	return -1
}

// Busy reports whether a write is outstanding.
func (c *Collection[T]) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// BeginFetch issues the sequence number for a new fetch.
func (c *Collection[T]) BeginFetch() Seq {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// ApplyFetch replaces the list with recs unless a later fetch was already
// applied. Pending records stay at the head, as do records confirmed after
// seq was issued that recs does not contain yet. It reports whether recs
// was applied.
func (c *Collection[T]) ApplyFetch(seq Seq, recs []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.applied {
		return false
	}
	c.applied = seq
	c.loaded = true

	fetched := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		fetched[c.key(r)] = struct{}{}
	}

	head := make([]T, 0, len(c.pending))
	for _, it := range c.items {
		k := c.key(it)
		if _, ok := c.pending[k]; ok {
			head = append(head, it)
			continue
		}
		if at, ok := c.confirmed[k]; ok && at >= seq {
			if _, seen := fetched[k]; !seen {
				head = append(head, it)
			}
		}
	}
	for k, at := range c.confirmed {
		if at < seq {
			delete(c.confirmed, k)
		}
	}

	items := make([]T, 0, len(head)+len(recs))
	items = append(items, head...)
	items = append(items, recs...)
	c.items = items
	return true
}

// Loaded reports whether any fetch has been applied.
func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Snapshot returns a copy of the current ordered list.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Len returns the number of records, pending ones included.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
