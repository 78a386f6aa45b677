package filter

import "math"

// Plane is a view of an interleaved 8-bit pixel buffer.
type Plane struct {
	// Pix holds rows of Stride bytes.
	Pix []byte

	// Stride is the number of bytes per row (width * Channels).
	Stride int

	// Channels is the number of interleaved samples per pixel.
	Channels int
}

// Span is the half-open rectangle [X0,X1) x [Y0,Y1) of pixels an operator
// writes, in buffer coordinates. The source must contain row Y0-1, row Y1,
// column X0-1 and column X1.
type Span struct {
	X0, X1, Y0, Y1 int
}

// Empty reports whether the span covers no pixels.
func (s Span) Empty() bool {
	return s.X0 >= s.X1 || s.Y0 >= s.Y1
}

// Rows returns the span restricted to rows [Y0+start, Y0+end), which is
// how a worker's index range maps onto a span.
func (s Span) Rows(start, end int) Span {
	s.Y1 = s.Y0 + end
	s.Y0 += start
	return s
}

// Height returns the number of rows in the span.
func (s Span) Height() int {
	if s.Y1 < s.Y0 {
		return 0
	}
	return s.Y1 - s.Y0
}

// ClampRound converts a real sample to 8 bits: values below 0 become 0,
// values above 255 become 255, anything else is rounded half away from
// zero.
func ClampRound(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
