package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestToStdImage(t *testing.T) {
	g, _ := New(2, 2, FormatGray8)
	g.Set(1, 0, 0, 99)
	if gi, ok := g.ToStdImage().(*image.Gray); !ok || gi.GrayAt(1, 0).Y != 99 {
		t.Errorf("ToStdImage(gray) = %T", g.ToStdImage())
	}

	c, _ := New(1, 1, FormatRGB8)
	c.Set(0, 0, 0, 1)
	c.Set(0, 0, 1, 2)
	c.Set(0, 0, 2, 3)
	rgba, ok := c.ToStdImage().(*image.RGBA)
	if !ok {
		t.Fatalf("ToStdImage(rgb) = %T, want *image.RGBA", c.ToStdImage())
	}
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("RGBAAt(0,0) = %v, want {1 2 3 255}", got)
	}
}

func TestFromStdImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 1))
	gray.SetGray(2, 0, color.Gray{Y: 200})
	m := FromStdImage(gray)
	if m.Format() != FormatGray8 || m.At(2, 0, 0) != 200 {
		t.Errorf("FromStdImage(gray) = %v, sample %d", m.Format(), m.At(2, 0, 0))
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	nrgba.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	m = FromStdImage(nrgba)
	if m.Format() != FormatRGB8 || m.At(0, 0, 1) != 20 {
		t.Errorf("FromStdImage(nrgba) = %v, green %d", m.Format(), m.At(0, 0, 1))
	}
}

func TestExport_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, ext := range []string{".bmp", ".tiff"} {
		for _, format := range []Format{FormatGray8, FormatRGB8} {
			t.Run(ext+"/"+format.String(), func(t *testing.T) {
				m, _ := New(4, 3, format)
				for i := range m.Pix() {
					m.Pix()[i] = byte(i * 11)
				}
				path := filepath.Join(dir, format.String()+ext)
				if err := Export(path, m); err != nil {
					t.Fatalf("Export() error = %v", err)
				}
				got, err := Load(path, 0)
				if err != nil {
					t.Fatalf("Load() error = %v", err)
				}
				if got.Format() != format {
					t.Errorf("Load() format = %v, want %v", got.Format(), format)
				}
				if !bytes.Equal(got.Pix(), m.Pix()) {
					t.Errorf("pixels differ after %s round trip", ext)
				}
			})
		}
	}
}

func TestExport_Unsupported(t *testing.T) {
	m, _ := New(1, 1, FormatGray8)
	if err := Export(filepath.Join(t.TempDir(), "x.jpg"), m); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Export(.jpg) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadBytes_Unknown(t *testing.T) {
	if _, err := LoadBytes([]byte("GIF89a"), 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadBytes(gif) error = %v, want ErrUnsupportedFormat", err)
	}
}
