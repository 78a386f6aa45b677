package stencil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// =============================================================================
// Helpers
// =============================================================================

// netpbm builds a binary PGM/PPM file. A nil pix is filled with a pattern.
func netpbm(magic string, ch, w, h int, pix []byte) []byte {
	if pix == nil {
		pix = make([]byte, w*h*ch)
		for i := range pix {
			pix[i] = byte(i*37 + 11)
		}
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n%d %d\n255\n", magic, w, h)
	buf.Write(pix)
	return buf.Bytes()
}

func pgm(w, h int, pix []byte) []byte { return netpbm("P5", 1, w, h, pix) }
func ppm(w, h int, pix []byte) []byte { return netpbm("P6", 3, w, h, pix) }

var allStrategies = []StrategyKind{StrategySerial, StrategyShared, StrategyDistributed}

func newSession(t *testing.T, k StrategyKind, data []byte) *Session {
	t.Helper()
	s, err := NewSession(WithStrategy(k), WithWorkers(3), WithUnits(3))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if data != nil {
		if err := s.LoadBytes(context.Background(), data); err != nil {
			t.Fatalf("LoadBytes() error = %v", err)
		}
	}
	return s
}

func pixels(t *testing.T, s *Session) []byte {
	t.Helper()
	pix, err := s.Pixels(context.Background())
	if err != nil {
		t.Fatalf("Pixels() error = %v", err)
	}
	return pix
}

// =============================================================================
// Selection and crop
// =============================================================================

func TestSession_CropScenario(t *testing.T) {
	for _, k := range allStrategies {
		s := newSession(t, k, pgm(4, 4, nil))
		before := pixels(t, s)

		if err := s.Select(1, 1, 3, 3); err != nil {
			t.Fatalf("%v: Select() error = %v", k, err)
		}
		if err := s.Crop(context.Background()); err != nil {
			t.Fatalf("%v: Crop() error = %v", k, err)
		}

		info, _ := s.Info()
		if info.Width != 2 || info.Height != 2 {
			t.Errorf("%v: size = %dx%d, want 2x2", k, info.Width, info.Height)
		}
		if want := (Rect{X1: 0, Y1: 0, X2: 2, Y2: 2}); info.Selection != want {
			t.Errorf("%v: selection = %v, want %v", k, info.Selection, want)
		}
		want := []byte{before[5], before[6], before[9], before[10]}
		if diff := cmp.Diff(want, pixels(t, s)); diff != "" {
			t.Errorf("%v: cropped pixels mismatch:\n%s", k, diff)
		}
	}
}

func TestSession_SelectInvalidKeepsSelection(t *testing.T) {
	s := newSession(t, StrategySerial, pgm(5, 4, nil))
	if err := s.Select(1, 1, 3, 3); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	tests := []struct{ x1, y1, x2, y2 int }{
		{0, 0, 6, 4},
		{2, 2, 2, 3},
		{-1, 0, 2, 2},
		{0, 0, 5, 5},
	}
	for _, tt := range tests {
		err := s.Select(tt.x1, tt.y1, tt.x2, tt.y2)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("Select(%v) error = %v, want ErrInvalidSelection", tt, err)
		}
	}
	info, _ := s.Info()
	if info.Selection != (Rect{X1: 1, Y1: 1, X2: 3, Y2: 3}) {
		t.Errorf("selection changed to %v", info.Selection)
	}
}

func TestSession_SelectSwapsReversedCorners(t *testing.T) {
	s := newSession(t, StrategySerial, pgm(5, 4, nil))
	if err := s.Select(4, 3, 1, 0); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	info, _ := s.Info()
	if info.Selection != (Rect{X1: 1, Y1: 0, X2: 4, Y2: 3}) {
		t.Errorf("selection = %v, want 1 0 4 3", info.Selection)
	}
	_ = s.SelectAll()
	info, _ = s.Info()
	if info.Selection != (Rect{X2: 5, Y2: 4}) {
		t.Errorf("SelectAll() selection = %v", info.Selection)
	}
}

// =============================================================================
// Filters
// =============================================================================

func TestSession_ApplyRejectsGrayscale(t *testing.T) {
	s := newSession(t, StrategyShared, pgm(4, 4, nil))
	before := pixels(t, s)
	if err := s.Apply(context.Background(), KernelBlur); !errors.Is(err, ErrNeedColor) {
		t.Errorf("Apply() error = %v, want ErrNeedColor", err)
	}
	if diff := cmp.Diff(before, pixels(t, s)); diff != "" {
		t.Errorf("rejected Apply modified pixels:\n%s", diff)
	}
}

func TestSession_ApplyUnknownKernel(t *testing.T) {
	s := newSession(t, StrategyShared, ppm(4, 4, nil))
	if err := s.Apply(context.Background(), Kernel(77)); !errors.Is(err, ErrUnknownKernel) {
		t.Errorf("Apply() error = %v, want ErrUnknownKernel", err)
	}
	if _, err := ParseKernel("EMBOSS"); !errors.Is(err, ErrUnknownKernel) {
		t.Errorf("ParseKernel() error = %v, want ErrUnknownKernel", err)
	}
}

func TestSession_StrategiesAgree(t *testing.T) {
	ctx := context.Background()
	run := func(k StrategyKind) []byte {
		s := newSession(t, k, ppm(13, 11, nil))
		_ = s.Select(2, 1, 12, 9)
		for _, id := range []Kernel{KernelGaussianBlur, KernelSharpen, KernelEdge, KernelBlur} {
			if err := s.Apply(ctx, id); err != nil {
				t.Fatalf("%v: Apply(%v) error = %v", k, id, err)
			}
		}
		if err := s.Sobel(ctx); err != nil {
			t.Fatalf("%v: Sobel() error = %v", k, err)
		}
		return pixels(t, s)
	}
	want := run(StrategySerial)
	for _, k := range []StrategyKind{StrategyShared, StrategyDistributed} {
		if diff := cmp.Diff(want, run(k)); diff != "" {
			t.Errorf("%v differs from serial:\n%s", k, diff)
		}
	}
}

func TestSession_NoImage(t *testing.T) {
	s := newSession(t, StrategySerial, nil)
	ctx := context.Background()
	checks := map[string]error{
		"select":   s.Select(0, 0, 1, 1),
		"all":      s.SelectAll(),
		"crop":     s.Crop(ctx),
		"apply":    s.Apply(ctx, KernelBlur),
		"sobel":    s.Sobel(ctx),
		"equalize": s.Equalize(ctx),
		"save":     s.Save(ctx, filepath.Join(t.TempDir(), "x.pgm")),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrNoImage) {
			t.Errorf("%s error = %v, want ErrNoImage", name, err)
		}
	}
	if s.Loaded() {
		t.Error("Loaded() = true")
	}
}

// =============================================================================
// Reductions
// =============================================================================

func TestSession_Histogram(t *testing.T) {
	// 4 pixels of 0, 2 of 128, 2 of 255.
	pix := []byte{0, 0, 0, 0, 128, 128, 255, 255}
	for _, k := range allStrategies {
		s := newSession(t, k, pgm(4, 2, pix))
		bins, err := s.Histogram(context.Background(), 10, 2)
		if err != nil {
			t.Fatalf("%v: Histogram() error = %v", k, err)
		}
		if len(bins) != 2 || bins[0].Count != 4 || bins[1].Count != 4 {
			t.Fatalf("%v: bins = %+v", k, bins)
		}
		if bins[0].Stars != 10 || bins[1].Stars != 10 {
			t.Errorf("%v: stars = %d, %d, want 10, 10", k, bins[0].Stars, bins[1].Stars)
		}
	}
}

func TestSession_HistogramErrors(t *testing.T) {
	ctx := context.Background()
	gray := newSession(t, StrategyShared, pgm(4, 4, nil))
	for _, bins := range []int{0, 3, 300} {
		if _, err := gray.Histogram(ctx, 5, bins); !errors.Is(err, ErrInvalidBins) {
			t.Errorf("Histogram(bins=%d) error = %v, want ErrInvalidBins", bins, err)
		}
	}
	if _, err := gray.Histogram(ctx, 0, 4); !errors.Is(err, ErrInvalidStars) {
		t.Errorf("Histogram(stars=0) error = %v, want ErrInvalidStars", err)
	}

	color := newSession(t, StrategyShared, ppm(4, 4, nil))
	if _, err := color.Histogram(ctx, 5, 4); !errors.Is(err, ErrNeedGrayscale) {
		t.Errorf("Histogram(color) error = %v, want ErrNeedGrayscale", err)
	}
	if err := color.Equalize(ctx); !errors.Is(err, ErrNeedGrayscale) {
		t.Errorf("Equalize(color) error = %v, want ErrNeedGrayscale", err)
	}
}

func TestSession_EqualizeAgrees(t *testing.T) {
	pix := make([]byte, 9*7)
	for i := range pix {
		pix[i] = byte(40 + i%30)
	}
	var want []byte
	for _, k := range allStrategies {
		s := newSession(t, k, pgm(9, 7, pix))
		if err := s.Equalize(context.Background()); err != nil {
			t.Fatalf("%v: Equalize() error = %v", k, err)
		}
		got := pixels(t, s)
		if want == nil {
			want = got
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%v equalize differs from serial:\n%s", k, diff)
		}
	}
	if want[len(want)-1] == pix[len(pix)-1] && want[0] == pix[0] {
		t.Error("equalize left the extremes unchanged")
	}
}

// =============================================================================
// I/O
// =============================================================================

func TestSession_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	data := ppm(6, 5, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ppm")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		t.Fatal(err)
	}

	for _, k := range allStrategies {
		s := newSession(t, k, nil)
		if err := s.Load(ctx, in); err != nil {
			t.Fatalf("%v: Load() error = %v", k, err)
		}
		out := filepath.Join(dir, fmt.Sprintf("out-%v.ppm", k))
		if err := s.Save(ctx, out); err != nil {
			t.Fatalf("%v: Save() error = %v", k, err)
		}
		got, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("%v: saved file differs from input", k)
		}
	}
}

func TestSession_LoadFailureKeepsImage(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, StrategyDistributed, pgm(4, 3, nil))
	before := pixels(t, s)

	if err := s.Load(ctx, filepath.Join(t.TempDir(), "missing.pgm")); err == nil {
		t.Error("Load(missing) expected error")
	}
	if err := s.LoadBytes(ctx, []byte("P5\n4 3\n255\nxx")); err == nil {
		t.Error("LoadBytes(truncated) expected error")
	}
	if IsFatal(nil) {
		t.Error("IsFatal(nil) = true")
	}
	if diff := cmp.Diff(before, pixels(t, s)); diff != "" {
		t.Errorf("failed load changed the image:\n%s", diff)
	}
}

func TestSession_MaxPixels(t *testing.T) {
	s, err := NewSession(WithMaxPixels(10))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.LoadBytes(context.Background(), pgm(4, 4, nil)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("LoadBytes() error = %v, want ErrTooLarge", err)
	}
	if s.Loaded() {
		t.Error("image loaded despite limit")
	}
}

func TestSession_OverflowingHeaderWithoutLimit(t *testing.T) {
	s, err := NewSession(WithMaxPixels(0), WithStrategy(StrategySerial))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.LoadBytes(ctx, pgm(3, 2, nil)); err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	err = s.LoadBytes(ctx, []byte("P5\n4294967296 4294967296\n255\n"))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("LoadBytes(overflowing header) error = %v, want ErrTooLarge", err)
	}
	if info, err := s.Info(); err != nil || info.Width != 3 || info.Height != 2 {
		t.Errorf("Info() = %+v, %v; want previous 3x2 image", info, err)
	}
	if _, err := s.Histogram(ctx, 10, 16); err != nil {
		t.Errorf("Histogram() after rejected load error = %v", err)
	}
}

func TestSession_Export(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, StrategyShared, ppm(5, 4, nil))
	want := pixels(t, s)
	dir := t.TempDir()

	for _, name := range []string{"a.bmp", "a.tiff"} {
		path := filepath.Join(dir, name)
		if err := s.Export(ctx, path); err != nil {
			t.Fatalf("Export(%s) error = %v", name, err)
		}
		back := newSession(t, StrategySerial, nil)
		if err := back.Load(ctx, path); err != nil {
			t.Fatalf("Load(%s) error = %v", name, err)
		}
		if diff := cmp.Diff(want, pixels(t, back)); diff != "" {
			t.Errorf("%s round trip mismatch:\n%s", name, diff)
		}
	}
}

func TestSession_CancelBreaksDistributed(t *testing.T) {
	s := newSession(t, StrategyDistributed, pgm(6, 9, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Sobel(ctx)
	if !errors.Is(err, ErrCoordination) || !IsFatal(err) {
		t.Fatalf("Sobel(cancelled) error = %v, want fatal ErrCoordination", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sobel(cancelled) error = %v, want it to wrap context.Canceled", err)
	}

	if err := s.Sobel(context.Background()); !errors.Is(err, ErrSessionBroken) {
		t.Errorf("Sobel() after cancel error = %v, want ErrSessionBroken", err)
	}
}

func TestSession_CancelIgnoredBySerial(t *testing.T) {
	s := newSession(t, StrategySerial, pgm(6, 9, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Sobel(ctx); err != nil {
		t.Errorf("Sobel(cancelled) error = %v, want nil", err)
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(fmt.Errorf("op: %w", ErrCoordination)) {
		t.Error("IsFatal(coordination) = false")
	}
	if !IsFatal(ErrSessionBroken) {
		t.Error("IsFatal(broken) = false")
	}
	if IsFatal(ErrInvalidBins) {
		t.Error("IsFatal(invalid bins) = true")
	}
}
