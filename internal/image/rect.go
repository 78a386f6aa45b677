package image

import "fmt"

// Rect is a half-open pixel rectangle [X1,X2) x [Y1,Y2).
type Rect struct {
	X1, Y1, X2, Y2 int
}

// R is shorthand for Rect{x1, y1, x2, y2}.
func R(x1, y1, x2, y2 int) Rect {
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Dx returns the rectangle width.
func (r Rect) Dx() int { return r.X2 - r.X1 }

// Dy returns the rectangle height.
func (r Rect) Dy() int { return r.Y2 - r.Y1 }

// Empty reports whether the rectangle contains no pixels.
func (r Rect) Empty() bool {
	return r.X1 >= r.X2 || r.Y1 >= r.Y2
}

// Area returns the number of pixels in the rectangle, or 0 if empty.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Dx() * r.Dy()
}

// Canon returns the rectangle with reversed corners swapped so that
// X1 <= X2 and Y1 <= Y2.
func (r Rect) Canon() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// In reports whether r is non-empty and lies entirely inside a
// width x height image.
func (r Rect) In(width, height int) bool {
	return !r.Empty() && r.X1 >= 0 && r.Y1 >= 0 && r.X2 <= width && r.Y2 <= height
}

// Intersect returns the largest rectangle contained by both r and s.
// The result may be empty.
func (r Rect) Intersect(s Rect) Rect {
	r.X1 = max(r.X1, s.X1)
	r.Y1 = max(r.Y1, s.Y1)
	r.X2 = min(r.X2, s.X2)
	r.Y2 = min(r.Y2, s.Y2)
	return r
}

// Interior returns r with the one-pixel global border of a
// width x height image removed. Stencil operators never write border
// pixels, so this is the region they actually update.
func (r Rect) Interior(width, height int) Rect {
	return r.Intersect(Rect{X1: 1, Y1: 1, X2: width - 1, Y2: height - 1})
}

// String formats the rectangle as "x1 y1 x2 y2".
func (r Rect) String() string {
	return fmt.Sprintf("%d %d %d %d", r.X1, r.Y1, r.X2, r.Y2)
}
