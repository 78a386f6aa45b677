// Package filter implements the 3x3 stencil operators of the engine:
// convolution with a fixed coefficient table and the Sobel gradient
// magnitude.
//
// Operators read a stable source Plane and write a separate destination
// Plane over a Span given in buffer coordinates. They never touch pixels
// outside the span, so callers may run disjoint spans concurrently and may
// pass either a whole image or a halo block with a row offset.
//
// The value written for a pixel depends only on its 3x3 source
// neighborhood and the operator: results are bit-identical regardless of
// how the span is split across workers or execution units.
package filter
