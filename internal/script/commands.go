package script

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/stencil"
)

func (in *Interpreter) load(ctx context.Context, args []string) error {
	p, err := path(args)
	if err != nil {
		return err
	}
	if err := in.session.Load(ctx, p); err != nil {
		if stencil.IsFatal(err) {
			return err
		}
		return &ioError{msg: "Failed to load " + p, err: err}
	}
	in.println("Loaded " + p)
	return nil
}

func (in *Interpreter) save(ctx context.Context, args []string) error {
	p, err := path(args)
	if err != nil {
		return err
	}
	if err := in.session.Save(ctx, p); err != nil {
		if stencil.IsFatal(err) || !in.session.Loaded() {
			return err
		}
		return &ioError{msg: "Failed to save " + p, err: err}
	}
	in.println("Saved " + p)
	return nil
}

func (in *Interpreter) export(ctx context.Context, args []string) error {
	p, err := path(args)
	if err != nil {
		return err
	}
	if err := in.session.Export(ctx, p); err != nil {
		if stencil.IsFatal(err) || !in.session.Loaded() {
			return err
		}
		return &ioError{msg: "Failed to export " + p, err: err}
	}
	in.println("Exported " + p)
	return nil
}

func (in *Interpreter) sel(args []string) error {
	if len(args) == 1 && args[0] == "ALL" {
		if err := in.session.SelectAll(); err != nil {
			return err
		}
		in.println("Selected ALL")
		return nil
	}
	v, err := ints(args, 4)
	if err != nil {
		return err
	}
	if err := in.session.Select(v[0], v[1], v[2], v[3]); err != nil {
		return err
	}
	info, _ := in.session.Info()
	r := info.Selection
	fmt.Fprintf(in.out, "Selected %d %d %d %d\n", r.X1, r.Y1, r.X2, r.Y2)
	return nil
}

func (in *Interpreter) crop(ctx context.Context) error {
	if err := in.session.Crop(ctx); err != nil {
		return err
	}
	in.println("Image cropped")
	return nil
}

func (in *Interpreter) apply(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errInvalidCommand
	}
	if !in.session.Loaded() {
		return stencil.ErrNoImage
	}
	k, err := stencil.ParseKernel(args[0])
	if err != nil {
		return err
	}
	if err := in.session.Apply(ctx, k); err != nil {
		return err
	}
	in.println("APPLY " + k.String() + " done")
	return nil
}

func (in *Interpreter) sobel(ctx context.Context) error {
	if err := in.session.Sobel(ctx); err != nil {
		return err
	}
	in.println("APPLY SOBEL done")
	return nil
}

func (in *Interpreter) histogram(ctx context.Context, args []string) error {
	v, err := ints(args, 2)
	if err != nil {
		return err
	}
	bins, err := in.session.Histogram(ctx, v[0], v[1])
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, bin := range bins {
		fmt.Fprintf(&b, "%d\t|\t%s\n", bin.Stars, strings.Repeat("*", bin.Stars))
	}
	if _, err := io.WriteString(in.out, b.String()); err != nil {
		return &ioError{msg: "Failed to write histogram", err: err}
	}
	return nil
}

func (in *Interpreter) equalize(ctx context.Context) error {
	if err := in.session.Equalize(ctx); err != nil {
		return err
	}
	in.println("Equalize done")
	return nil
}

func (in *Interpreter) bench(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errInvalidCommand
	}
	v, err := ints(args[:1], 1)
	if err != nil {
		return err
	}
	seq, err := stencil.ParseSequence(args[1])
	if err != nil {
		return err
	}
	res, err := in.session.Bench(ctx, v[0], seq)
	if err != nil {
		return err
	}
	in.printer.Fprintf(in.out, "BENCH %s iters=%d time=%.6f sec (%.0f px/s)\n",
		seq.String(), res.Iters, res.Elapsed.Seconds(), res.PixelsPerSecond())
	return nil
}
