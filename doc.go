// Package stencil provides a parallel stencil image-processing engine for
// 8-bit grayscale and RGB rasters.
//
// # Overview
//
// A Session holds one image and an active selection. Operations apply 3x3
// convolution kernels (edge, sharpen, box blur, Gaussian blur) and the
// Sobel gradient magnitude to the selection, compute a 256-bin histogram,
// and equalize intensities. Every result is bit-identical regardless of
// the execution strategy or the degree of parallelism.
//
// # Quick Start
//
//	import "github.com/gogpu/stencil"
//
//	s, err := stencil.NewSession(stencil.WithStrategy(stencil.StrategyDistributed))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	ctx := context.Background()
//	if err := s.Load(ctx, "in.ppm"); err != nil {
//	    return err
//	}
//	_ = s.Select(10, 10, 200, 120)
//	_ = s.Apply(ctx, stencil.KernelGaussianBlur)
//	_ = s.Sobel(ctx)
//	return s.Save(ctx, "out.ppm")
//
// # Strategies
//
//   - StrategyShared (default): a worker pool runs static row ranges over
//     one buffer.
//   - StrategySerial: everything runs on the calling goroutine.
//   - StrategyDistributed: the image is split into block rows, one per
//     execution unit; units keep halo rows consistent by message passing.
//
// # Borders
//
// Stencil operators never write the one-pixel border of the image. A
// selection touching the border is processed only on its interior part,
// and a selection lying entirely on the border is a no-op.
//
// # Errors
//
// Invalid requests (bad selection, bin count, channel count, unknown kernel
// or sequence) and I/O failures leave the session unchanged. A
// coordination failure between distributed units is fatal: IsFatal reports
// it, and the session refuses further work.
package stencil

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
