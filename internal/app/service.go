// Package service wires the rate limiter, session store and mini-game
// engine behind the chat transport. Inbound events are deduplicated,
// partitioned by user onto queue lanes and handled by one worker per lane,
// so events of one user never run concurrently.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/tutorbot/internal/adapters/completion"
	eventqueue "github.com/okian/tutorbot/internal/adapters/mq/queue"
	workerpool "github.com/okian/tutorbot/internal/adapters/mq/worker"
	"github.com/okian/tutorbot/internal/adapters/repository"
	"github.com/okian/tutorbot/internal/domain/dedupe"
	"github.com/okian/tutorbot/internal/domain/game"
	"github.com/okian/tutorbot/internal/domain/library"
	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/internal/domain/ratelimit"
	"github.com/okian/tutorbot/pkg/logger"
	"github.com/okian/tutorbot/pkg/metrics"
)

// Transport is the outbound side of the chat platform.
type Transport interface {
	Send(ctx context.Context, chatID int64, r model.Reply) error
	// Notify answers a button press, optionally with a short toast.
	Notify(ctx context.Context, callbackID, text string) error
	Typing(ctx context.Context, chatID int64) error
	SendDocument(ctx context.Context, chatID int64, path, filename, caption string) error
}

// Optional maintenance hooks of the default backends.
type (
	recordSweeper interface {
		Sweep(ctx context.Context) int
		Len() int
	}
	sessionSweeper interface {
		Sweep(ctx context.Context, idle time.Duration) int
	}
)

// Service handles chat events for the tutoring bot.
type Service struct {
	mu sync.RWMutex

	// Core components
	limiter   ratelimit.Limiter
	sessions  repository.Store
	engine    *game.Engine
	catalog   *library.Catalog
	transport Transport
	provider  completion.Provider

	// Created by Start
	deduper    dedupe.Deduper
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	maxMessageLength int
	handlerTimeout   time.Duration
	sweepInterval    time.Duration
	sessionIdleTTL   time.Duration

	// State
	started   bool
	stopCh    chan struct{}
	sweepDone chan struct{}

	logger logger.Logger
}

// New constructs a Service. Transport and completion provider must be set
// with options before Start.
func New(opts ...Option) *Service {
	s := &Service{
		limiter:          ratelimit.NewMemory(),
		sessions:         repository.NewSessions(),
		engine:           game.NewEngine(game.DefaultContent(), game.NewSampler(uint64(time.Now().UnixNano()))),
		catalog:          library.Empty(),
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        4096,
		dedupeSize:       dedupe.DefaultMaxSize,
		maxMessageLength: 4096,
		handlerTimeout:   45 * time.Second,
		sweepInterval:    time.Minute,
		sessionIdleTTL:   7 * 24 * time.Hour,
		logger:           logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the queue and workers and launches the sweeper.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.transport == nil {
		return fmt.Errorf("%w: transport", ErrMissingDependency)
	}
	if s.provider == nil {
		return fmt.Errorf("%w: completion provider", ErrMissingDependency)
	}

	s.logger.Info(ctx, "starting tutor service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithLanes(s.workerCount),
		eventqueue.WithCapacity(max(1, s.queueSize/s.workerCount)),
	)
	s.workerPool = workerpool.NewPool(s.eventQueue, s,
		workerpool.WithLogger(s.logger),
		workerpool.WithTimeout(s.handlerTimeout),
	)
	// Workers outlive ctx; Stop drains the lanes before they exit.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.stopCh = make(chan struct{})
	s.sweepDone = make(chan struct{})
	if s.sweepInterval > 0 {
		go s.sweepLoop(ctx, s.stopCh, s.sweepDone)
	} else {
		close(s.sweepDone)
	}

	s.started = true
	s.logger.Info(ctx, "tutor service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("rateLimit", s.limiter.Cap()),
		logger.Duration("rateWindow", s.limiter.Window()),
	)

	return nil
}

// Stop drains the queue, stops the workers and the sweeper.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping tutor service...")

	err := s.workerPool.Shutdown(ctx)
	close(s.stopCh)
	<-s.sweepDone

	s.started = false
	s.logger.Info(ctx, "tutor service stopped")
	return err
}

// Submit deduplicates e and queues it on its user's lane. It reports false
// when the event was a duplicate or could not be queued.
func (s *Service) Submit(ctx context.Context, e model.Event) bool { //nolint:gocritic // hugeParam: Event is passed by value like the queue
	s.mu.RLock()
	started, deduper, q := s.started, s.deduper, s.eventQueue
	s.mu.RUnlock()

	if !started {
		metrics.RecordEventDropped("not_started")
		return false
	}
	metrics.RecordEventReceived(string(e.Kind))

	if e.ID != "" && deduper.SeenAndRecord(ctx, e.ID) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event skipped", logger.String("eventID", e.ID))
		return false
	}

	if !q.Enqueue(ctx, e) {
		if e.ID != "" {
			deduper.Unrecord(ctx, e.ID)
		}
		s.logger.Warn(ctx, "event dropped",
			logger.String("eventID", e.ID),
			logger.Int64("user", int64(e.UserID)),
		)
		return false
	}
	return true
}

func (s *Service) sweepLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(s.sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep drops rate records with no live timestamp and sessions idle for
// longer than the session TTL. It returns how many of each were removed.
// Backends without a sweep hook are skipped.
func (s *Service) Sweep(ctx context.Context) (records, sessions int) {
	if rs, ok := s.limiter.(recordSweeper); ok {
		records = rs.Sweep(ctx)
		metrics.RecordSwept("rate_records", records)
		metrics.UpdateRateLimitRecords(rs.Len())
	}
	if ss, ok := s.sessions.(sessionSweeper); ok && s.sessionIdleTTL > 0 {
		sessions = ss.Sweep(ctx, s.sessionIdleTTL)
	}
	if records > 0 || sessions > 0 {
		s.logger.Debug(ctx, "swept idle state",
			logger.Int("records", records),
			logger.Int("sessions", sessions),
		)
	}
	return records, sessions
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"dedupeSize":       s.dedupeSize,
		"rateLimit":        s.limiter.Cap(),
		"rateWindowMs":     s.limiter.Window().Milliseconds(),
		"activeSessions":   s.sessions.Count(ctx),
		"maxMessageLength": s.maxMessageLength,
	}
	if rs, ok := s.limiter.(recordSweeper); ok {
		stats["rateRecords"] = rs.Len()
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateActiveSessions(s.sessions.Count(ctx))
	}

	return stats
}
