package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/stencil/internal/filter"
	"github.com/gogpu/stencil/internal/halo"
	"github.com/gogpu/stencil/internal/image"
	"github.com/gogpu/stencil/internal/parallel"
	"github.com/gogpu/stencil/internal/reduce"
)

// layout is the image geometry broadcast from the root on Load.
type layout struct {
	width, height int
	format        image.Format
}

// Distributed runs every operation as a group of execution units, one
// goroutine per unit, each owning a halo.Block of rows. Units only share
// data through the communicator. Rank 0 is the root: it alone reads and
// writes the caller's image, scattering rows on Load and gathering them on
// Sync.
//
// If any unit fails, the group's context is cancelled, every other unit
// abandons its pending communication, and the operation returns
// ErrCoordination. The strategy refuses further work after that.
type Distributed struct {
	units  int
	comm   *halo.Comm
	pool   *image.Pool
	blocks []*halo.Block
	img    *image.Image
	geom   layout
	broken error
}

// NewDistributed creates a distributed strategy with the given number of
// units. If units is 0 or negative, 1 is used.
func NewDistributed(units int, pool *image.Pool) *Distributed {
	if units <= 0 {
		units = 1
	}
	if pool == nil {
		pool = image.DefaultPool()
	}
	return &Distributed{
		units:  units,
		comm:   halo.NewComm(units),
		pool:   pool,
		blocks: make([]*halo.Block, units),
	}
}

// Kind implements Strategy.
func (d *Distributed) Kind() Kind { return KindDistributed }

// Units returns the number of execution units.
func (d *Distributed) Units() int { return d.units }

// Blocks returns the row partition of the current image.
func (d *Distributed) Blocks() []parallel.Block {
	parts := make([]parallel.Block, 0, d.units)
	for _, b := range d.blocks {
		if b != nil {
			parts = append(parts, b.Part)
		}
	}
	return parts
}

// run executes fn on every unit concurrently and waits for all of them.
// The first failure cancels the others.
func (d *Distributed) run(ctx context.Context, op string, fn func(ctx context.Context, ep *halo.Endpoint) error) error {
	if d.broken != nil {
		return d.broken
	}
	g, gctx := errgroup.WithContext(ctx)
	for r := range d.units {
		ep := d.comm.Endpoint(r)
		g.Go(func() error {
			if err := fn(gctx, ep); err != nil {
				return fmt.Errorf("unit %d: %w", r, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		d.broken = fmt.Errorf("%w: %s: %w", ErrCoordination, op, err)
		slogger().Error("distributed operation failed", "op", op, "err", err)
		return d.broken
	}
	return nil
}

// Load scatters the image's rows to the units and fills every halo.
func (d *Distributed) Load(ctx context.Context, img *image.Image) error {
	d.releaseBlocks()
	d.img = img

	err := d.run(ctx, "load", func(ctx context.Context, ep *halo.Endpoint) error {
		var parts [][]byte
		var meta any
		if ep.Rank() == 0 {
			g := layout{width: img.Width(), height: img.Height(), format: img.Format()}
			meta = g
			parts = splitRows(img.Pix(), img.Stride(), parallel.Blocks(g.height, ep.Size()))
		}
		v, err := ep.Bcast(ctx, meta)
		if err != nil {
			return err
		}
		g, ok := v.(layout)
		if !ok {
			return fmt.Errorf("%w: layout payload %T", halo.ErrMismatch, v)
		}

		part := parallel.Partition(g.height, ep.Size(), ep.Rank())
		b := halo.NewBlock(part, g.width, g.height, g.format, d.pool)
		d.blocks[ep.Rank()] = b

		owned, err := ep.Scatter(ctx, parts)
		if err != nil {
			return err
		}
		if err := b.SetOwned(owned); err != nil {
			return err
		}
		return halo.Exchange(ctx, ep, b)
	})
	if err != nil {
		return err
	}
	d.geom = layout{width: img.Width(), height: img.Height(), format: img.Format()}
	slogger().Debug("image distributed", "units", d.units, "blocks", fmt.Sprint(d.Blocks()))
	return nil
}

// splitRows cuts pix into the owned rows of each block.
func splitRows(pix []byte, stride int, blocks []parallel.Block) [][]byte {
	parts := make([][]byte, len(blocks))
	for i, b := range blocks {
		parts[i] = pix[b.Start*stride : b.End()*stride]
	}
	return parts
}

// Apply runs op on every unit's owned rows inside the effective selection,
// swaps each unit's buffers, then exchanges halos.
func (d *Distributed) Apply(ctx context.Context, op filter.Op) error {
	if d.img == nil {
		return ErrNotLoaded
	}
	span := effectiveSpan(d.img)
	if span.Empty() {
		slogger().Debug("empty effective selection", "op", op.String())
		return nil
	}

	return d.run(ctx, op.String(), func(ctx context.Context, ep *halo.Endpoint) error {
		b := d.blocks[ep.Rank()]
		if b.Empty() {
			return nil
		}
		y0 := max(span.Y0, b.Part.Start)
		y1 := min(span.Y1, b.Part.End())
		if y0 < y1 {
			buf := b.Buffers()
			src := filter.Plane{Pix: buf.Front(), Stride: b.Stride(), Channels: b.Format.Channels()}
			dst := src
			dst.Pix = buf.Prepare()
			rows := filter.Span{X0: span.X0, X1: span.X1, Y0: b.Local(y0), Y1: b.Local(y1)}
			op.Apply(dst, src, rows)
			buf.Swap()
		}
		return halo.Exchange(ctx, ep, b)
	})
}

// tally counts the unit's owned pixels and combines the tables of all
// units. Every unit returns the global histogram.
func (d *Distributed) tally(ctx context.Context, ep *halo.Endpoint) (reduce.Histogram, error) {
	var h reduce.Histogram
	b := d.blocks[ep.Rank()]
	h.Tally(b.Owned())
	err := ep.Allreduce(ctx, &h)
	return h, err
}

// Histogram implements Strategy.
func (d *Distributed) Histogram(ctx context.Context) (reduce.Histogram, error) {
	var out reduce.Histogram
	if d.img == nil {
		return out, ErrNotLoaded
	}
	if !d.geom.format.IsGrayscale() {
		return out, ErrNotGrayscale
	}
	err := d.run(ctx, "histogram", func(ctx context.Context, ep *halo.Endpoint) error {
		h, err := d.tally(ctx, ep)
		if err == nil && ep.Rank() == 0 {
			out = h
		}
		return err
	})
	return out, err
}

// Equalize implements Strategy. Each unit derives the table from the
// global histogram, never from its own rows alone.
func (d *Distributed) Equalize(ctx context.Context) error {
	if d.img == nil {
		return ErrNotLoaded
	}
	if !d.geom.format.IsGrayscale() {
		return ErrNotGrayscale
	}
	area := d.geom.width * d.geom.height
	return d.run(ctx, "equalize", func(ctx context.Context, ep *halo.Endpoint) error {
		h, err := d.tally(ctx, ep)
		if err != nil {
			return err
		}
		lut := reduce.EqualizeLUT(&h, area)
		b := d.blocks[ep.Rank()]
		lut.Remap(b.Owned())
		return halo.Exchange(ctx, ep, b)
	})
}

// Sync gathers every unit's owned rows into the image at the root.
func (d *Distributed) Sync(ctx context.Context) error {
	if d.img == nil {
		return ErrNotLoaded
	}
	img := d.img
	return d.run(ctx, "gather", func(ctx context.Context, ep *halo.Endpoint) error {
		parts, err := ep.Gather(ctx, d.blocks[ep.Rank()].Owned())
		if err != nil || ep.Rank() != 0 {
			return err
		}
		pix := img.Pix()
		off := 0
		for _, p := range parts {
			off += copy(pix[off:], p)
		}
		if off != len(pix) {
			return fmt.Errorf("%w: gathered %d bytes, want %d", halo.ErrMismatch, off, len(pix))
		}
		return nil
	})
}

// Barrier implements Strategy.
func (d *Distributed) Barrier(ctx context.Context) error {
	return d.run(ctx, "barrier", func(ctx context.Context, ep *halo.Endpoint) error {
		return ep.Barrier(ctx)
	})
}

// Close releases every unit's block.
func (d *Distributed) Close() error {
	d.releaseBlocks()
	d.img = nil
	return nil
}

func (d *Distributed) releaseBlocks() {
	for i, b := range d.blocks {
		if b != nil {
			b.Release()
			d.blocks[i] = nil
		}
	}
}
