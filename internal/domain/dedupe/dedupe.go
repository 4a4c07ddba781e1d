// Package dedupe tracks completion event IDs so each event folds into a
// worker's record at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen event IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. It returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set so the event can be
	// retried. Only used when an event was recorded but could not be
	// enqueued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper keeps seen IDs in a map. In bounded mode a circular
// buffer of insertion order backs FIFO eviction; unbounded mode is map-only.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper. The default capacity is
// 50000 event IDs.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		if len(d.ring) < d.maxSize {
			d.ring = append(d.ring, id)
		} else {
			// Full ring: overwriting the oldest slot is the eviction.
			victim := d.ring[d.next]
			if _, ok := d.seen[victim]; ok {
				delete(d.seen, victim)
				d.size.Add(-1)
			}
			d.ring[d.next] = id
			d.next = (d.next + 1) % d.maxSize
		}
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
	// The ring slot is left stale; overwriting it later is a no-op evict.
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
