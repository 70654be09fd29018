package telegram

import (
	"net/http"

	"github.com/okian/tutorbot/pkg/logger"
)

type options struct {
	baseURL string
	httpc   *http.Client
	log     logger.Logger
}

// Option configures the client.
type Option func(*options)

// WithAPIURL points the client at a different Bot API server.
func WithAPIURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpc = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
