package stencil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/stencil/internal/engine"
	"github.com/gogpu/stencil/internal/filter"
	"github.com/gogpu/stencil/internal/image"
	"github.com/gogpu/stencil/internal/reduce"
)

// Kernel identifies a predefined 3x3 convolution kernel.
type Kernel = filter.KernelID

// Predefined kernels.
const (
	KernelEdge         = filter.KernelEdge
	KernelSharpen      = filter.KernelSharpen
	KernelBlur         = filter.KernelBlur
	KernelGaussianBlur = filter.KernelGaussianBlur
)

// ParseKernel resolves a kernel name such as "GAUSSIAN_BLUR".
func ParseKernel(name string) (Kernel, error) {
	return filter.ParseKernel(name)
}

// KernelNames returns the names accepted by ParseKernel.
func KernelNames() []string { return filter.KernelNames() }

// Rect is a half-open pixel rectangle [X1,X2) x [Y1,Y2).
type Rect = image.Rect

// Bin is one row of a rendered histogram.
type Bin = reduce.Bin

// Info describes the loaded image.
type Info struct {
	Width     int
	Height    int
	Channels  int
	Selection Rect
}

// Session is an editing context: at most one loaded image, its selection,
// and the execution strategy operations run on.
//
// Operations are strictly sequential. A Session is not safe for concurrent
// use.
//
// The context passed to an operation is not a soft cancel. Under the
// distributed strategy, cancelling it while units are communicating aborts
// the operation with ErrCoordination, and the session is broken for good:
// every later call returns ErrSessionBroken, and the image must be reloaded
// in a new Session. The serial and shared strategies never block and ignore
// the context.
type Session struct {
	opts     options
	log      *slog.Logger
	strategy engine.Strategy
	img      *image.Image
	broken   error
}

// NewSession creates a session with no image loaded.
func NewSession(opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	st, err := engine.New(o.strategy, engine.Config{Workers: o.workers, Units: o.units})
	if err != nil {
		return nil, fmt.Errorf("stencil: %w", err)
	}
	return &Session{opts: o, log: log, strategy: st}, nil
}

// Strategy returns the execution strategy in use.
func (s *Session) Strategy() StrategyKind {
	return s.strategy.Kind()
}

// Close releases the image and stops the strategy's workers.
func (s *Session) Close() error {
	err := s.strategy.Close()
	if s.img != nil {
		s.img.Release()
		s.img = nil
	}
	return err
}

// Loaded reports whether an image is loaded.
func (s *Session) Loaded() bool {
	return s.img != nil
}

// Info describes the loaded image.
func (s *Session) Info() (Info, error) {
	if s.img == nil {
		return Info{}, ErrNoImage
	}
	return Info{
		Width:     s.img.Width(),
		Height:    s.img.Height(),
		Channels:  s.img.Channels(),
		Selection: s.img.Selection(),
	}, nil
}

// ready checks that the session can run an operation.
func (s *Session) ready(needImage bool) error {
	if s.broken != nil {
		return fmt.Errorf("%w: %w", ErrSessionBroken, s.broken)
	}
	if needImage && s.img == nil {
		return ErrNoImage
	}
	return nil
}

// fail records err and returns it. Coordination failures break the
// session; everything else is a rejected request.
func (s *Session) fail(op string, err error) error {
	if errors.Is(err, ErrCoordination) {
		s.broken = err
		s.log.Error("coordination failure", "op", op, "err", err)
		return err
	}
	s.log.Warn("request rejected", "op", op, "err", err)
	return err
}

// Load reads a PGM, PPM, BMP or TIFF file and makes it the current image.
// On failure the previous image and selection are kept.
func (s *Session) Load(ctx context.Context, path string) error {
	if err := s.ready(false); err != nil {
		return err
	}
	img, err := image.Load(path, s.opts.maxPixels)
	if err != nil {
		return s.fail("load", err)
	}
	return s.install(ctx, img, path)
}

// LoadBytes decodes an in-memory image and makes it the current image.
func (s *Session) LoadBytes(ctx context.Context, data []byte) error {
	if err := s.ready(false); err != nil {
		return err
	}
	img, err := image.LoadBytes(data, s.opts.maxPixels)
	if err != nil {
		return s.fail("load", err)
	}
	return s.install(ctx, img, "<memory>")
}

func (s *Session) install(ctx context.Context, img *image.Image, source string) error {
	if err := s.strategy.Load(ctx, img); err != nil {
		img.Release()
		return s.fail("load", err)
	}
	if s.img != nil {
		s.img.Release()
	}
	s.img = img
	s.log.Info("image loaded", "source", source,
		"width", img.Width(), "height", img.Height(), "format", img.Format().String(),
		"strategy", s.strategy.Kind().String())
	return nil
}

// Save writes the current image as binary PGM (grayscale) or PPM (color).
func (s *Session) Save(ctx context.Context, path string) error {
	if err := s.sync(ctx, "save"); err != nil {
		return err
	}
	if err := image.Save(path, s.img); err != nil {
		return s.fail("save", err)
	}
	return nil
}

// Export writes the current image in the format named by the extension of
// path: .bmp, .tif/.tiff, or .pgm/.ppm/.pnm.
func (s *Session) Export(ctx context.Context, path string) error {
	if err := s.sync(ctx, "export"); err != nil {
		return err
	}
	if err := image.Export(path, s.img); err != nil {
		return s.fail("export", err)
	}
	return nil
}

// Pixels returns a copy of the current pixel buffer, rows top to bottom with
// interleaved channels.
func (s *Session) Pixels(ctx context.Context) ([]byte, error) {
	if err := s.sync(ctx, "pixels"); err != nil {
		return nil, err
	}
	out := make([]byte, len(s.img.Pix()))
	copy(out, s.img.Pix())
	return out, nil
}

func (s *Session) sync(ctx context.Context, op string) error {
	if err := s.ready(true); err != nil {
		return err
	}
	if err := s.strategy.Sync(ctx); err != nil {
		return s.fail(op, err)
	}
	return nil
}

// SelectAll resets the selection to the whole image.
func (s *Session) SelectAll() error {
	if err := s.ready(true); err != nil {
		return err
	}
	s.img.SelectAll()
	return nil
}

// Select sets the selection to [x1,x2) x [y1,y2). Reversed corners are
// swapped; an empty or out-of-bounds rectangle is rejected and the previous
// selection kept.
func (s *Session) Select(x1, y1, x2, y2 int) error {
	if err := s.ready(true); err != nil {
		return err
	}
	if err := s.img.Select(image.R(x1, y1, x2, y2)); err != nil {
		return s.fail("select", fmt.Errorf("%w: %d %d %d %d", err, x1, y1, x2, y2))
	}
	return nil
}

// Crop shrinks the image to the selection and selects the whole result.
func (s *Session) Crop(ctx context.Context) error {
	if err := s.sync(ctx, "crop"); err != nil {
		return err
	}
	s.img.Crop()
	if err := s.strategy.Load(ctx, s.img); err != nil {
		return s.fail("crop", err)
	}
	s.log.Debug("image cropped", "width", s.img.Width(), "height", s.img.Height())
	return nil
}

// Apply convolves the selection with a predefined kernel. Kernels apply to
// color images only.
func (s *Session) Apply(ctx context.Context, k Kernel) error {
	if err := s.ready(true); err != nil {
		return err
	}
	if !k.Valid() {
		return s.fail("apply", fmt.Errorf("%w: %v", ErrUnknownKernel, k))
	}
	if s.img.Format().IsGrayscale() {
		return s.fail("apply", ErrNeedColor)
	}
	return s.run(ctx, filter.ConvolveOp(k))
}

// Sobel replaces the selection with its Sobel gradient magnitude.
func (s *Session) Sobel(ctx context.Context) error {
	if err := s.ready(true); err != nil {
		return err
	}
	return s.run(ctx, filter.SobelOp())
}

func (s *Session) run(ctx context.Context, op filter.Op) error {
	if err := s.strategy.Apply(ctx, op); err != nil {
		return s.fail(op.String(), err)
	}
	return nil
}

// Histogram folds the intensity histogram of the whole image into bins
// groups and scales each to at most stars marks. bins must divide 256 and
// the image must be single-channel.
func (s *Session) Histogram(ctx context.Context, stars, bins int) ([]Bin, error) {
	if err := s.ready(true); err != nil {
		return nil, err
	}
	if !s.img.Format().IsGrayscale() {
		return nil, s.fail("histogram", ErrNeedGrayscale)
	}
	if bins <= 0 || reduce.Levels%bins != 0 {
		return nil, s.fail("histogram", fmt.Errorf("%w: %d", ErrInvalidBins, bins))
	}
	if stars <= 0 {
		return nil, s.fail("histogram", fmt.Errorf("%w: %d", ErrInvalidStars, stars))
	}

	h, err := s.strategy.Histogram(ctx)
	if err != nil {
		return nil, s.fail("histogram", err)
	}
	return reduce.Group(&h, stars, bins)
}

// Equalize spreads the intensities of a single-channel image over the full
// range using the cumulative histogram of the whole image.
func (s *Session) Equalize(ctx context.Context) error {
	if err := s.ready(true); err != nil {
		return err
	}
	if !s.img.Format().IsGrayscale() {
		return s.fail("equalize", ErrNeedGrayscale)
	}
	if err := s.strategy.Equalize(ctx); err != nil {
		return s.fail("equalize", err)
	}
	return nil
}
