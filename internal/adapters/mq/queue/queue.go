// Package queue defines the contract for enqueuing and consuming events.
//
// The in-memory queue is split into lanes. An event's lane is chosen by its
// user id, so a single consumer per lane sees every event of a user in
// arrival order and never concurrently with another event of that user.
package queue

import (
	"context"
	"sync"

	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultLaneCapacity = 1024
	defaultLanes        = 16
)

// Event represents the payload type flowing through the queue.
type Event = model.Event

// Queue provides non-blocking enqueue and per-lane channel dequeue.
type Queue interface {
	// Enqueue adds an event to its user's lane.
	// Returns false if the lane is full or the queue is closed.
	Enqueue(ctx context.Context, e Event) bool

	// Lane returns the receive side of lane i. It is closed by Close.
	Lane(i int) <-chan Event

	// Lanes returns the number of lanes.
	Lanes() int

	// Len returns the current number of queued events across lanes.
	Len(ctx context.Context) int

	// Close stops accepting events and closes every lane.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using one buffered channel per lane.
type InMemoryQueue struct {
	lanes    int
	capacity int
	chans    []chan Event

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		lanes:    defaultLanes,
		capacity: defaultLaneCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.chans = make([]chan Event, q.lanes)
	for i := range q.chans {
		q.chans[i] = make(chan Event, q.capacity)
	}

	metrics.UpdateQueueCapacity(q.lanes * q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// LaneFor returns the lane index for user.
func (q *InMemoryQueue) LaneFor(user model.UserID) int {
	return int(uint64(user) % uint64(q.lanes))
}

// Enqueue adds an event to its lane without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordEventDropped("queue_closed")
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.chans[q.LaneFor(e.UserID)] <- e:
		metrics.UpdateQueueSize(q.len())
		return true
	case <-ctx.Done():
		metrics.RecordEventDropped("context_cancelled")
		return false
	default:
		metrics.RecordEventDropped("queue_full")
		metrics.RecordErrorByComponent("queue", "lane_full")
		return false
	}
}

// Lane returns the receive side of lane i.
func (q *InMemoryQueue) Lane(i int) <-chan Event { return q.chans[i] }

// Lanes returns the number of lanes.
func (q *InMemoryQueue) Lanes() int { return q.lanes }

func (q *InMemoryQueue) len() int {
	n := 0
	for _, c := range q.chans {
		n += len(c)
	}
	return n
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := q.len()
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue. Events already queued stay
// readable until their lane drains.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	for _, c := range q.chans {
		close(c)
	}
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
