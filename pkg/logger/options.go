package logger

import "io"

// Output formats accepted by WithFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type options struct {
	format string
	writer io.Writer
	source bool
}

// Option configures Init.
type Option func(*options)

// WithFormat selects the record encoding ("text" or "json").
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithWriter redirects log output.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithSource toggles the "source" caller field.
func WithSource(enabled bool) Option {
	return func(o *options) { o.source = enabled }
}
