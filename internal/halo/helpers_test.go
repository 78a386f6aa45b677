package halo

import (
	"context"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/stencil/internal/image"
	"github.com/gogpu/stencil/internal/parallel"
)

// runUnits runs fn once per rank of a fresh communicator, each on its own
// goroutine, and returns the per-rank errors along with the first one.
func runUnits(units int, fn func(ctx context.Context, ep *Endpoint) error) ([]error, error) {
	comm := NewComm(units)
	errs := make([]error, units)
	g, ctx := errgroup.WithContext(context.Background())
	for r := range units {
		g.Go(func() error {
			errs[r] = fn(ctx, comm.Endpoint(r))
			return errs[r]
		})
	}
	return errs, g.Wait()
}

// randomRows returns h rows of the given stride filled from a fixed seed.
func randomRows(h, stride int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	pix := make([]byte, h*stride)
	for i := range pix {
		pix[i] = byte(rng.IntN(256))
	}
	return pix
}

// loadBlocks builds one block per unit and fills its owned rows from pix.
func loadBlocks(pix []byte, width, height, units int, format image.Format) []*Block {
	stride := format.RowBytes(width)
	blocks := make([]*Block, units)
	for r, part := range parallel.Blocks(height, units) {
		b := NewBlock(part, width, height, format, image.NewPool(0))
		if !part.Empty() {
			_ = b.SetOwned(pix[part.Start*stride : part.End()*stride])
		}
		blocks[r] = b
	}
	return blocks
}
