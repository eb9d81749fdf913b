package meshindex

import (
	"runtime"

	"go.uber.org/zap"
)

// DefaultEpsilon is the triangle-ray epsilon used unless an adaptive or
// explicit value is requested.
const DefaultEpsilon = 1e-6

// Option configures index construction.
type Option func(*options)

type options struct {
	adaptiveEpsilon bool
	epsilon         float64
	logger          *zap.Logger
	parallelism     int
}

func defaultOptions() options {
	return options{
		epsilon:     DefaultEpsilon,
		logger:      zap.NewNop(),
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// WithAdaptiveEpsilon derives the triangle-ray epsilon from the mean edge
// length of the mesh instead of using a fixed value.
func WithAdaptiveEpsilon(enabled bool) Option {
	return func(o *options) {
		o.adaptiveEpsilon = enabled
	}
}

// WithEpsilon sets a fixed triangle-ray epsilon. Non-positive values are ignored.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		if eps > 0 {
			o.epsilon = eps
		}
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithParallelism limits the number of goroutines used while preparing
// triangle bounds. Values below 1 mean serial.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}
