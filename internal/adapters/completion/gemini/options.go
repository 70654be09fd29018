package gemini

import (
	"time"

	"github.com/okian/tutorbot/pkg/logger"
)

type options struct {
	model       string
	timeout     time.Duration
	temperature float32
	log         logger.Logger
}

// Option configures the provider.
type Option func(*options)

// WithModel selects the Gemini model.
func WithModel(name string) Option {
	return func(o *options) {
		if name != "" {
			o.model = name
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *options) { o.temperature = t }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
