package halo

import (
	"fmt"

	"github.com/gogpu/stencil/internal/image"
	"github.com/gogpu/stencil/internal/parallel"
)

// Block is one unit's share of the image: the owned rows of Part framed by
// a top and a bottom halo row, held in a double buffer so stencil operators
// can read the current rows while writing fresh ones.
//
// A Block whose Part owns no rows holds no storage.
type Block struct {
	// Part is the range of global rows owned by the unit.
	Part parallel.Block

	// Width is the image width in pixels.
	Width int

	// Height is the global image height, used to detect the bottom edge.
	Height int

	// Format is the pixel format shared by all units.
	Format image.Format

	buf *image.DoubleBuffer
}

// NewBlock allocates the local buffer for part of a width x height image.
// The pixel contents are zero until loaded.
func NewBlock(part parallel.Block, width, height int, format image.Format, pool *image.Pool) *Block {
	b := &Block{Part: part, Width: width, Height: height, Format: format}
	if part.Empty() {
		return b
	}
	if pool == nil {
		pool = image.DefaultPool()
	}
	n := (part.Rows + 2) * b.Stride()
	front := pool.Get(n)
	clear(front)
	b.buf = image.NewDoubleBuffer(front, pool)
	return b
}

// Stride returns the number of bytes per row.
func (b *Block) Stride() int {
	return b.Format.RowBytes(b.Width)
}

// Rows returns the number of owned rows.
func (b *Block) Rows() int {
	return b.Part.Rows
}

// Empty reports whether the unit owns no rows.
func (b *Block) Empty() bool {
	return b.Part.Empty()
}

// Buffers returns the block's double buffer, or nil for an empty block.
func (b *Block) Buffers() *image.DoubleBuffer {
	return b.buf
}

// Pix returns the current local buffer including both halo rows.
func (b *Block) Pix() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf.Front()
}

// Row returns local row ly of the current buffer: 0 is the top halo,
// 1..Rows are owned, Rows+1 is the bottom halo.
func (b *Block) Row(ly int) []byte {
	s := b.Stride()
	return b.Pix()[ly*s : (ly+1)*s]
}

// Local converts global row gy to its local row index.
func (b *Block) Local(gy int) int {
	return gy - b.Part.Start + 1
}

// Owned returns the owned rows of the current buffer, without halos.
func (b *Block) Owned() []byte {
	if b.buf == nil {
		return nil
	}
	s := b.Stride()
	return b.Pix()[s : (b.Part.Rows+1)*s]
}

// SetOwned copies src, which must hold exactly the owned rows, into the
// current buffer. Halo rows are left stale until the next Exchange.
func (b *Block) SetOwned(src []byte) error {
	if want := b.Part.Rows * b.Stride(); len(src) != want {
		return fmt.Errorf("halo: %v: got %d bytes, want %d", b.Part, len(src), want)
	}
	copy(b.Owned(), src)
	return nil
}

// HasUp reports whether a unit above owns the row adjacent to this block.
func (b *Block) HasUp() bool {
	return b.Part.Rank > 0 && !b.Part.Empty()
}

// HasDown reports whether a unit below owns the row adjacent to this block.
// Units with no rows only ever follow the last unit with rows, so the bottom
// edge is where the owned rows end at the image height.
func (b *Block) HasDown() bool {
	return !b.Part.Empty() && b.Part.End() < b.Height
}

// Release returns the block's storage to its pool.
func (b *Block) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}
