package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the buffered capacity of each lane.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithLanes sets the number of lanes. All events of one user land on the
// same lane.
func WithLanes(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.lanes = n
		}
	}
}
