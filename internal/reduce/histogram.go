package reduce

import (
	"math"
)

// Levels is the number of distinct 8-bit intensities.
const Levels = 256

// Histogram counts pixels per intensity value.
type Histogram [Levels]int

// Tally adds every sample of pix to h. pix must be single-channel data.
func (h *Histogram) Tally(pix []byte) {
	for _, v := range pix {
		h[v]++
	}
}

// TallyRows adds rows [y0,y1) of a single-channel buffer with the given
// stride, counting only the first width samples of each row.
func (h *Histogram) TallyRows(pix []byte, stride, width, y0, y1 int) {
	for y := y0; y < y1; y++ {
		h.Tally(pix[y*stride : y*stride+width])
	}
}

// Merge adds other into h bin by bin.
func (h *Histogram) Merge(other *Histogram) {
	for i := range h {
		h[i] += other[i]
	}
}

// Total returns the number of pixels counted.
func (h *Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// CDF returns the running cumulative sum of h.
func (h *Histogram) CDF() [Levels]int {
	var cdf [Levels]int
	run := 0
	for i, c := range h {
		run += c
		cdf[i] = run
	}
	return cdf
}

// LUT maps every intensity to its replacement.
type LUT [Levels]uint8

// EqualizeLUT builds the equalization table for h over area pixels:
// v maps to round(255 * cdf[v] / area), clamped to [0,255]. h must be the
// combined histogram of the whole image. A non-positive area yields the
// identity table.
func EqualizeLUT(h *Histogram, area int) LUT {
	var lut LUT
	if area <= 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}
	cdf := h.CDF()
	for v, c := range cdf {
		nv := 255 * float64(c) / float64(area)
		switch {
		case nv < 0:
			lut[v] = 0
		case nv > 255:
			lut[v] = 255
		default:
			lut[v] = uint8(math.Round(nv))
		}
	}
	return lut
}

// Remap replaces every sample of pix with its table entry.
func (l *LUT) Remap(pix []byte) {
	for i, v := range pix {
		pix[i] = l[v]
	}
}

// RemapRows applies the table to rows [y0,y1) of a single-channel buffer.
func (l *LUT) RemapRows(pix []byte, stride, width, y0, y1 int) {
	for y := y0; y < y1; y++ {
		l.Remap(pix[y*stride : y*stride+width])
	}
}
