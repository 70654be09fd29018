// Package worker runs the consumers that drain queue lanes into a handler.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/logger"
	"github.com/okian/tutorbot/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultHandlerTimeout = 30 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.Event

// Handler processes one event. Errors are logged and counted; the worker
// keeps going.
type Handler interface {
	Handle(ctx context.Context, e Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, e Event) error { return f(ctx, e) } //nolint:gocritic // hugeParam: Event is passed by value for channel semantics

// Queue defines how workers receive events.
type Queue interface {
	Lane(i int) <-chan Event
	Lanes() int
}

// Worker processes events from one lane.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the lane closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining its lane.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for one lane.
type InMemoryWorker struct {
	lane    <-chan Event
	handler Handler
	name    string
	timeout time.Duration

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once

	logger logger.Logger
}

// NewInMemoryWorker creates a worker consuming lane.
func NewInMemoryWorker(lane <-chan Event, handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		lane:     lane,
		handler:  handler,
		name:     "worker",
		timeout:  defaultHandlerTimeout,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-w.lane:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing event",
					logger.String("event_id", event.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.once.Do(func() { close(w.shutdown) })
}

// processEvent handles a single event under the handler timeout.
func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) (err error) { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			metrics.RecordErrorByComponent("worker", "panic")
		}
		if err != nil {
			metrics.RecordWorkerError()
		}
	}()

	if err := w.handler.Handle(ctx, event); err != nil {
		return fmt.Errorf("handle event %s: %w", event.ID, err)
	}
	return nil
}

// Pool runs one worker per queue lane.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool with one worker per lane of q. Options apply to
// every worker.
func NewPool(q Queue, handler Handler, opts ...Option) *Pool {
	pool := &Pool{
		workers: make([]*InMemoryWorker, q.Lanes()),
		queue:   q,
		logger:  logger.Nop(),
	}

	probe := &InMemoryWorker{logger: pool.logger}
	for _, opt := range opts {
		opt(probe)
	}
	pool.logger = probe.logger.Named("worker-pool")

	for i := range pool.workers {
		workerOpts := append([]Option{}, opts...)
		workerOpts = append(workerOpts, WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q.Lane(i), handler, workerOpts...)
	}

	metrics.UpdateWorkerCount(len(pool.workers))
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for every lane to drain. Workers still
// busy when ctx (or the pool timeout) expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			w.stop()
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
