// Package dedupe suppresses duplicate deliveries of inbound chat updates.
package dedupe

import (
	"context"
	"sync"
)

// DefaultMaxSize is the number of delivery ids remembered by default.
const DefaultMaxSize = 10000

// Deduper records seen delivery ids so each update is handled at most once.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if
	// not, in one atomic step.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a redelivery is accepted again. Used when an
	// update was recorded but could not be queued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// ring remembers the most recent maxSize ids; the oldest is evicted first.
type ring struct {
	mu    sync.Mutex
	seen  map[string]int // id -> slot
	slots []string
	next  int
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	o := options{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &ring{
		seen:  make(map[string]int, o.maxSize),
		slots: make([]string, o.maxSize),
	}
}

func (r *ring) SeenAndRecord(_ context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; ok {
		return true
	}

	if old := r.slots[r.next]; old != "" {
		if slot, ok := r.seen[old]; ok && slot == r.next {
			delete(r.seen, old)
		}
	}
	r.slots[r.next] = id
	r.seen[id] = r.next
	r.next = (r.next + 1) % len(r.slots)
	return false
}

func (r *ring) Unrecord(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slot, ok := r.seen[id]; ok {
		delete(r.seen, id)
		r.slots[slot] = ""
	}
}

func (r *ring) Size() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.seen))
}
