package engine

import (
	"time"

	"github.com/joeycumines/logiface"
)

// options holds configuration assembled from a slice of Option values.
// Grounded on the teacher's loopOptions/LoopOption functional-options
// pattern (eventloop/options.go).
type options struct {
	iterationCapMultiplier int
	logger                 *logiface.Logger[*Event]
	now                    func() time.Time
	metricsEnabled         bool
}

// Option configures a Loop at construction time.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithIterationCapMultiplier overrides the propagation loop's iteration
// cap multiplier (spec.md §4.5 step 4c default: 32× the number of nodes
// dirtied at tick start). Tests that want to exercise CycleWithoutProgress
// without constructing thousands of nodes can lower this.
func WithIterationCapMultiplier(n int) Option {
	return optionFunc(func(o *options) {
		if n > 0 {
			o.iterationCapMultiplier = n
		}
	})
}

// WithLogger installs a structured logger. The engine logs tick
// boundaries, scope finalization, and fatal diagnostics through it
// (ambient: see SPEC_FULL.md "Logging").
func WithLogger(l *logiface.Logger[*Event]) Option {
	return optionFunc(func(o *options) { o.logger = l })
}

// WithClock installs a time source. The Loop stores it but never reads it:
// nothing in the engine consults wall time, and tick ordering never
// depends on it (spec.md §4.5: ticks are a logical counter).
func WithClock(now func() time.Time) Option {
	return optionFunc(func(o *options) { o.now = now })
}

// WithMetrics enables the loop's ambient tick-count/dirty-count counters,
// mirroring the teacher's WithMetrics toggle.
func WithMetrics(enabled bool) Option {
	return optionFunc(func(o *options) { o.metricsEnabled = enabled })
}

func resolveOptions(opts []Option) *options {
	cfg := &options{
		iterationCapMultiplier: 32,
		now:                    time.Now,
		logger:                 defaultLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}
