package dedupe

type options struct {
	maxSize int
}

// Option applies a configuration option to the in-memory deduper.
type Option func(*options)

// WithMaxSize sets how many ids are remembered. Non-positive values keep
// the default.
func WithMaxSize(maxSize int) Option {
	return func(o *options) {
		if maxSize > 0 {
			o.maxSize = maxSize
		}
	}
}
