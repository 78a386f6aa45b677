package engine

import (
	"context"
	"sync"

	"github.com/gogpu/stencil/internal/filter"
	"github.com/gogpu/stencil/internal/image"
	"github.com/gogpu/stencil/internal/reduce"
)

// rangeFunc runs fn over [0, n), possibly split into contiguous ranges run
// concurrently, and returns when every range is done.
type rangeFunc func(n int, fn func(start, end int))

// sequential runs the whole range on the calling goroutine.
func sequential(n int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}

// local implements the operations of the strategies that work on the
// image's own buffer. Serial and Shared differ only in how rows are run.
type local struct {
	img     *image.Image
	forEach rangeFunc
}

func (l *local) Load(_ context.Context, img *image.Image) error {
	l.img = img
	return nil
}

func (l *local) Apply(_ context.Context, op filter.Op) error {
	if l.img == nil {
		return ErrNotLoaded
	}
	span := effectiveSpan(l.img)
	if span.Empty() {
		slogger().Debug("empty effective selection", "op", op.String())
		return nil
	}

	buf := l.img.Buffers()
	src := filter.Plane{Pix: buf.Front(), Stride: l.img.Stride(), Channels: l.img.Channels()}
	dst := src
	dst.Pix = buf.Prepare()

	l.forEach(span.Height(), func(start, end int) {
		op.Apply(dst, src, span.Rows(start, end))
	})
	buf.Swap()
	return nil
}

func (l *local) Histogram(_ context.Context) (reduce.Histogram, error) {
	var total reduce.Histogram
	if l.img == nil {
		return total, ErrNotLoaded
	}
	if !l.img.Format().IsGrayscale() {
		return total, ErrNotGrayscale
	}

	var mu sync.Mutex
	pix, stride, width := l.img.Pix(), l.img.Stride(), l.img.Width()
	l.forEach(l.img.Height(), func(start, end int) {
		var part reduce.Histogram
		part.TallyRows(pix, stride, width, start, end)

		mu.Lock()
		total.Merge(&part)
		mu.Unlock()
	})
	return total, nil
}

func (l *local) Equalize(ctx context.Context) error {
	h, err := l.Histogram(ctx)
	if err != nil {
		return err
	}
	lut := reduce.EqualizeLUT(&h, l.img.Area())

	pix, stride, width := l.img.Pix(), l.img.Stride(), l.img.Width()
	l.forEach(l.img.Height(), func(start, end int) {
		lut.RemapRows(pix, stride, width, start, end)
	})
	return nil
}

func (l *local) Sync(context.Context) error {
	if l.img == nil {
		return ErrNotLoaded
	}
	return nil
}

func (l *local) Barrier(context.Context) error {
	return nil
}
