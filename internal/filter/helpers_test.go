package filter

import "math/rand/v2"

// Test helper functions shared across filter tests.

// newPlane creates a w x h plane with the given channel count filled with v.
func newPlane(w, h, ch int, v byte) Plane {
	pix := make([]byte, w*h*ch)
	for i := range pix {
		pix[i] = v
	}
	return Plane{Pix: pix, Stride: w * ch, Channels: ch}
}

// randomPlane creates a plane with pseudo-random samples from a fixed seed.
func randomPlane(w, h, ch int, seed uint64) Plane {
	p := newPlane(w, h, ch, 0)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range p.Pix {
		p.Pix[i] = byte(rng.IntN(256))
	}
	return p
}

// clonePlane returns a deep copy of p.
func clonePlane(p Plane) Plane {
	pix := make([]byte, len(p.Pix))
	copy(pix, p.Pix)
	return Plane{Pix: pix, Stride: p.Stride, Channels: p.Channels}
}

// at returns the sample at (x, y, c).
func (p Plane) at(x, y, c int) byte {
	return p.Pix[y*p.Stride+x*p.Channels+c]
}

// set writes the sample at (x, y, c).
func (p Plane) set(x, y, c int, v byte) {
	p.Pix[y*p.Stride+x*p.Channels+c] = v
}

// interior returns the span covering every non-border pixel of a w x h plane.
func interior(w, h int) Span {
	return Span{X0: 1, X1: w - 1, Y0: 1, Y1: h - 1}
}
