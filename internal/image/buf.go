package image

import (
	"errors"
	"math"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the channel count is not 1 or 3.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrInvalidSelection is returned when a selection is empty or exceeds
	// the image bounds.
	ErrInvalidSelection = errors.New("image: invalid selection")

	// ErrTooLarge is returned when an image would exceed the pixel limit.
	ErrTooLarge = errors.New("image: image too large")
)

// Image is the pixel store: an 8-bit raster with 1 or 3 interleaved
// channels, held in a DoubleBuffer, plus the active selection.
//
// The selection always satisfies 0 <= X1 < X2 <= width and
// 0 <= Y1 < Y2 <= height. It covers the whole image after creation and
// after Crop.
//
// Thread safety: Image is owned by a single goroutine between operations.
// Operators running inside one operation may write disjoint ranges of the
// scratch buffer concurrently.
type Image struct {
	width  int
	height int
	format Format
	buf    *DoubleBuffer
	sel    Rect
}

// New creates a zeroed image with the given dimensions and format.
func New(width, height int, format Format) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	if err := CheckLimit(format, width, height, 0); err != nil {
		return nil, err
	}
	return newImage(width, height, format, make([]byte, format.ImageBytes(width, height))), nil
}

// FromPixels creates an image that takes ownership of pix.
// pix must hold at least width*height*channels bytes; extra bytes are dropped.
func FromPixels(width, height int, format Format, pix []byte) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	if err := CheckLimit(format, width, height, 0); err != nil {
		return nil, err
	}
	need := format.ImageBytes(width, height)
	if len(pix) < need {
		return nil, ErrDataTooSmall
	}
	return newImage(width, height, format, pix[:need]), nil
}

func newImage(width, height int, format Format, pix []byte) *Image {
	return &Image{
		width:  width,
		height: height,
		format: format,
		buf:    NewDoubleBuffer(pix, nil),
		sel:    Rect{X2: width, Y2: height},
	}
}

// Width returns the image width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image) Height() int { return m.height }

// Format returns the pixel format.
func (m *Image) Format() Format { return m.format }

// Channels returns the number of interleaved channels (1 or 3).
func (m *Image) Channels() int { return m.format.Channels() }

// Stride returns the number of bytes in one row.
func (m *Image) Stride() int { return m.format.RowBytes(m.width) }

// Area returns width*height.
func (m *Image) Area() int { return m.width * m.height }

// Bounds returns the rectangle covering the whole image.
func (m *Image) Bounds() Rect {
	return Rect{X2: m.width, Y2: m.height}
}

// Pix returns the current pixel buffer.
// The slice is replaced by every stencil operation; do not retain it.
func (m *Image) Pix() []byte {
	return m.buf.Front()
}

// Buffers returns the image's double buffer for stencil operators.
func (m *Image) Buffers() *DoubleBuffer {
	return m.buf
}

// Row returns the current bytes of row y, or nil if y is out of range.
func (m *Image) Row(y int) []byte {
	if y < 0 || y >= m.height {
		return nil
	}
	stride := m.Stride()
	return m.buf.Front()[y*stride : (y+1)*stride]
}

// At returns the sample of channel c at (x, y). It panics if out of range.
func (m *Image) At(x, y, c int) uint8 {
	return m.buf.Front()[(y*m.width+x)*m.Channels()+c]
}

// Set writes the sample of channel c at (x, y). It panics if out of range.
func (m *Image) Set(x, y, c int, v uint8) {
	m.buf.Front()[(y*m.width+x)*m.Channels()+c] = v
}

// Selection returns the active selection.
func (m *Image) Selection() Rect {
	return m.sel
}

// SelectAll resets the selection to the whole image.
func (m *Image) SelectAll() {
	m.sel = m.Bounds()
}

// Select sets the selection. Reversed corners are swapped first; the
// result must be non-empty and inside the image or ErrInvalidSelection is
// returned and the selection is left unchanged.
func (m *Image) Select(r Rect) error {
	r = r.Canon()
	if !r.In(m.width, m.height) {
		return ErrInvalidSelection
	}
	m.sel = r
	return nil
}

// Crop reallocates the image to the extent of the current selection and
// resets the selection to the whole new image.
func (m *Image) Crop() {
	sel := m.sel
	ch := m.Channels()
	stride := m.Stride()
	rowBytes := sel.Dx() * ch

	pix := make([]byte, rowBytes*sel.Dy())
	src := m.buf.Front()
	for y := range sel.Dy() {
		off := (sel.Y1+y)*stride + sel.X1*ch
		copy(pix[y*rowBytes:(y+1)*rowBytes], src[off:off+rowBytes])
	}

	m.buf.Release()
	m.width = sel.Dx()
	m.height = sel.Dy()
	m.buf = NewDoubleBuffer(pix, nil)
	m.SelectAll()
}

// Clone creates a deep copy of the image, including its selection.
func (m *Image) Clone() *Image {
	pix := make([]byte, m.buf.Len())
	copy(pix, m.buf.Front())
	c := newImage(m.width, m.height, m.format, pix)
	c.sel = m.sel
	return c
}

// Release returns the pixel buffers to the pool. The image must not be
// used afterwards.
func (m *Image) Release() {
	m.buf.Release()
}

// CheckLimit returns ErrTooLarge if width*height exceeds maxPixels, or if
// the buffer size width*height*channels does not fit in an int. A maxPixels
// of 0 or less disables only the pixel limit. Width and height must be
// positive.
func CheckLimit(format Format, width, height, maxPixels int) error {
	if width > math.MaxInt/height/format.Channels() {
		return ErrTooLarge
	}
	if maxPixels > 0 && width*height > maxPixels {
		return ErrTooLarge
	}
	return nil
}
