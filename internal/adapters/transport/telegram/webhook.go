package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/logger"
	"github.com/okian/tutorbot/pkg/metrics"
)

// SecretHeader carries the secret registered with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxUpdateSize = 1 << 20

// Webhook receives pushed updates.
type Webhook struct {
	sink   Sink
	secret string
	log    logger.Logger
}

// NewWebhook returns a handler submitting updates to sink. An empty secret
// disables the header check.
func NewWebhook(sink Sink, secret string, log logger.Logger) *Webhook {
	if log == nil {
		log = logger.Nop()
	}
	return &Webhook{sink: sink, secret: secret, log: log}
}

func (h *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.secret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.log.Warn(r.Context(), "webhook secret mismatch")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	var u Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateSize)).Decode(&u); err != nil {
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}

	if e, ok := ToEvent(u); ok {
		h.sink.Submit(r.Context(), e)
	} else {
		metrics.RecordEventDropped("unsupported")
	}

	// Telegram retries anything but 2xx, so dropped updates are still acked.
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

var _ Sink = SinkFunc(nil)

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e model.Event) bool

// Submit calls f.
func (f SinkFunc) Submit(ctx context.Context, e model.Event) bool { return f(ctx, e) }
