package bmp

// An Option configures how a Bitmap is decoded and transformed.
type Option func(*options)

type options struct {
	mode    EqualizeMode
	lenient bool
	workers int
}

func newOptions(opts []Option) options {
	o := options{
		mode:    PerChannel,
		workers: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithEqualizeMode selects the equalization mode used by Bitmap.Equalize.
// The default is PerChannel.
func WithEqualizeMode(m EqualizeMode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithLenient makes a short pixel region decode with zeroed missing bytes
// instead of failing with a TruncatedError.
func WithLenient(lenient bool) Option {
	return func(o *options) {
		o.lenient = lenient
	}
}

// WithWorkers sets how many row spans the histogram scan and the transforms
// process concurrently. Values below 2 keep everything on one goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}
