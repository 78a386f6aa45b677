package stencil

import (
	"log/slog"

	"github.com/gogpu/stencil/internal/engine"
)

// StrategyKind selects the execution model of a Session.
type StrategyKind = engine.Kind

// Execution strategies.
const (
	// StrategyShared runs static row ranges on a worker pool over one buffer.
	StrategyShared = engine.KindShared

	// StrategySerial runs everything on the calling goroutine.
	StrategySerial = engine.KindSerial

	// StrategyDistributed splits the image into block rows with halo
	// exchange between execution units.
	StrategyDistributed = engine.KindDistributed
)

// ParseStrategy resolves "shared", "serial" or "distributed".
func ParseStrategy(name string) (StrategyKind, error) {
	return engine.ParseKind(name)
}

// DefaultMaxPixels is the default pixel limit for loaded images.
const DefaultMaxPixels = 1 << 28

// Option configures a Session during creation.
// Use functional options to customize Session behavior.
//
// Example:
//
//	// Default shared-memory execution
//	s, _ := stencil.NewSession()
//
//	// Four distributed units
//	s, _ := stencil.NewSession(
//	    stencil.WithStrategy(stencil.StrategyDistributed),
//	    stencil.WithUnits(4),
//	)
type Option func(*options)

// options holds optional configuration for Session creation.
type options struct {
	strategy  StrategyKind
	workers   int
	units     int
	maxPixels int
	logger    *slog.Logger
}

// defaultOptions returns the default session options.
func defaultOptions() options {
	return options{
		strategy:  StrategyShared,
		workers:   0, // GOMAXPROCS
		units:     0, // GOMAXPROCS
		maxPixels: DefaultMaxPixels,
	}
}

// WithStrategy sets the execution strategy.
func WithStrategy(k StrategyKind) Option {
	return func(o *options) {
		o.strategy = k
	}
}

// WithWorkers sets the worker count for StrategyShared.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithUnits sets the execution unit count for StrategyDistributed.
// Zero or negative means GOMAXPROCS.
func WithUnits(n int) Option {
	return func(o *options) {
		o.units = n
	}
}

// WithMaxPixels sets the largest image, in pixels, the session will load.
// Zero or negative disables the limit.
func WithMaxPixels(n int) Option {
	return func(o *options) {
		o.maxPixels = n
	}
}

// WithLogger sets the logger for session lifecycle messages. If not set,
// the package logger from Logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
