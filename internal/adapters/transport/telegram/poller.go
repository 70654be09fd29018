package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/logger"
	"github.com/okian/tutorbot/pkg/metrics"
)

// Sink accepts converted events. Submit reports false when the event was
// dropped (duplicate or back pressure).
type Sink interface {
	Submit(ctx context.Context, e model.Event) bool
}

type updateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Poller drives getUpdates long polling into a sink.
type Poller struct {
	src     updateSource
	sink    Sink
	timeout time.Duration
	log     logger.Logger
	offset  int64
}

// NewPoller returns a poller reading from c.
func NewPoller(c *Client, sink Sink, timeout time.Duration, log logger.Logger) *Poller {
	return newPoller(c, sink, timeout, log)
}

func newPoller(src updateSource, sink Sink, timeout time.Duration, log logger.Logger) *Poller {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Poller{src: src, sink: sink, timeout: timeout, log: log}
}

// Run polls until ctx is done. Transport failures back off exponentially.
func (p *Poller) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		if ctx.Err() != nil {
			return nil
		}
		updates, err := p.src.GetUpdates(ctx, p.offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			wait := backoff
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				wait = apiErr.RetryAfter
			}
			p.log.Warn(ctx, "getUpdates failed", logger.Error(err), logger.Duration("retry_in", wait))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff
		p.dispatch(ctx, updates)
	}
}

func (p *Poller) dispatch(ctx context.Context, updates []Update) {
	for _, u := range updates {
		if u.UpdateID >= p.offset {
			p.offset = u.UpdateID + 1
		}
		e, ok := ToEvent(u)
		if !ok {
			metrics.RecordEventDropped("unsupported")
			continue
		}
		p.sink.Submit(ctx, e)
	}
}
