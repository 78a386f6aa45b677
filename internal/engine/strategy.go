// Package engine implements the execution models of the stencil engine.
//
// A Strategy owns the working image between Load and the next Load and
// runs stencil operators and reductions on it. Three strategies are
// provided and all of them produce bit-identical pixels:
//
//   - Serial runs everything on the calling goroutine. It is the
//     reference the other two are tested against.
//   - Shared cuts each operation into static row ranges run by a
//     persistent worker pool over the single image buffer.
//   - Distributed splits the image into block rows, one per unit, each
//     unit holding its own buffer with halo rows, and keeps the halos
//     consistent by message passing after every operation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/gogpu/stencil/internal/filter"
	"github.com/gogpu/stencil/internal/image"
	"github.com/gogpu/stencil/internal/reduce"
)

var (
	// ErrNotLoaded is returned when an operation runs before Load.
	ErrNotLoaded = errors.New("engine: no image loaded")

	// ErrNotGrayscale is returned by the reductions for multi-channel images.
	ErrNotGrayscale = errors.New("engine: single-channel image required")

	// ErrCoordination is returned when a distributed unit fails to complete
	// a communication step. The distributed state is undefined afterwards.
	ErrCoordination = errors.New("engine: coordination failure")

	// ErrUnknownKind is returned when a strategy name is not recognized.
	ErrUnknownKind = errors.New("engine: unknown strategy")
)

// Kind selects an execution model.
type Kind uint8

const (
	// KindShared is shared-memory data parallelism over one buffer.
	KindShared Kind = iota

	// KindSerial is single-goroutine execution.
	KindSerial

	// KindDistributed is block-row execution with halo exchange.
	KindDistributed
)

var kindNames = [...]string{
	KindShared:      "shared",
	KindSerial:      "serial",
	KindDistributed: "distributed",
}

// String returns the strategy name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind resolves a strategy name such as "distributed".
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Strategy runs the stencil and reduction operations on a loaded image.
//
// Operations are strictly sequenced: each returns only after its buffer
// swap and, for Distributed, its halo exchange have completed. A Strategy
// is not safe for concurrent use.
//
// Cancelling the context of a distributed operation fails it with
// ErrCoordination and leaves the strategy unusable.
type Strategy interface {
	// Kind reports the execution model.
	Kind() Kind

	// Load makes img the working image. The caller keeps the *Image and
	// may change its selection between operations; pixels must only be
	// read through the image after Sync.
	Load(ctx context.Context, img *image.Image) error

	// Apply runs op over the interior of the image's selection and swaps
	// the buffers.
	Apply(ctx context.Context, op filter.Op) error

	// Histogram returns the combined histogram of the whole image.
	Histogram(ctx context.Context) (reduce.Histogram, error)

	// Equalize remaps every pixel through the table derived from the
	// combined histogram.
	Equalize(ctx context.Context) error

	// Sync brings the image's pixel buffer up to date.
	Sync(ctx context.Context) error

	// Barrier returns once every execution unit is idle.
	Barrier(ctx context.Context) error

	// Close releases workers and buffers. The image is left as of the last
	// Sync.
	Close() error
}

// Config holds construction parameters shared by all strategies.
type Config struct {
	// Workers is the worker count for Shared. 0 means GOMAXPROCS.
	Workers int

	// Units is the unit count for Distributed. 0 means GOMAXPROCS.
	Units int

	// Pool supplies scratch and block buffers. nil means the default pool.
	Pool *image.Pool
}

// New creates the strategy of the given kind.
func New(kind Kind, cfg Config) (Strategy, error) {
	if cfg.Pool == nil {
		cfg.Pool = image.DefaultPool()
	}
	var s Strategy
	switch kind {
	case KindSerial:
		s = NewSerial()
	case KindShared:
		s = NewShared(cfg.Workers)
	case KindDistributed:
		units := cfg.Units
		if units <= 0 {
			units = runtime.GOMAXPROCS(0)
		}
		s = NewDistributed(units, cfg.Pool)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	slogger().Info("strategy selected", "strategy", kind.String(),
		"workers", cfg.Workers, "units", cfg.Units)
	return s, nil
}

// effectiveSpan returns the pixels an operator may write: the selection
// minus the one-pixel border of the image, in image coordinates.
func effectiveSpan(img *image.Image) filter.Span {
	r := img.Selection().Interior(img.Width(), img.Height())
	if r.Empty() {
		return filter.Span{}
	}
	return filter.Span{X0: r.X1, X1: r.X2, Y0: r.Y1, Y1: r.Y2}
}
