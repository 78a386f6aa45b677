package stencil

import (
	"errors"

	"github.com/gogpu/stencil/internal/engine"
	"github.com/gogpu/stencil/internal/filter"
	"github.com/gogpu/stencil/internal/image"
	"github.com/gogpu/stencil/internal/reduce"
)

// Invalid requests. The session is left unchanged.
var (
	// ErrNoImage is returned when an operation needs an image and none is
	// loaded.
	ErrNoImage = errors.New("stencil: no image loaded")

	// ErrInvalidSelection is returned for a selection that is empty after
	// swapping reversed corners, or that exceeds the image.
	ErrInvalidSelection = image.ErrInvalidSelection

	// ErrInvalidBins is returned when a histogram bin count does not
	// divide 256.
	ErrInvalidBins = reduce.ErrInvalidBins

	// ErrInvalidStars is returned when a histogram star scale is not
	// positive.
	ErrInvalidStars = reduce.ErrInvalidStars

	// ErrNeedGrayscale is returned by Histogram and Equalize on a
	// multi-channel image.
	ErrNeedGrayscale = errors.New("stencil: single-channel image required")

	// ErrNeedColor is returned by Apply on a single-channel image.
	ErrNeedColor = errors.New("stencil: color image required")

	// ErrUnknownKernel is returned for an unrecognized kernel name.
	ErrUnknownKernel = filter.ErrUnknownKernel

	// ErrUnknownSequence is returned for an unrecognized bench sequence.
	ErrUnknownSequence = filter.ErrUnknownSequence

	// ErrInvalidIterations is returned when a bench iteration count is not
	// positive.
	ErrInvalidIterations = errors.New("stencil: iterations must be positive")
)

// ErrTooLarge is returned when an image would exceed the configured pixel
// limit. The check happens before any allocation, so the loaded image is
// left intact.
var ErrTooLarge = image.ErrTooLarge

// Fatal errors.
var (
	// ErrCoordination is returned when distributed execution units fail to
	// complete a halo exchange or reduction.
	ErrCoordination = engine.ErrCoordination

	// ErrSessionBroken is returned by every operation after a fatal error.
	ErrSessionBroken = errors.New("stencil: session broken by earlier failure")
)

// IsFatal reports whether err ends the session: a coordination failure, or
// an attempt to use a session already broken by one.
func IsFatal(err error) bool {
	return errors.Is(err, ErrCoordination) || errors.Is(err, ErrSessionBroken)
}
