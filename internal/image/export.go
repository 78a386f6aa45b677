package image

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ToStdImage converts the current pixels to a standard library image:
// *image.Gray for grayscale, *image.RGBA (opaque) for RGB.
func (m *Image) ToStdImage() image.Image {
	rect := image.Rect(0, 0, m.width, m.height)
	src := m.Pix()

	if m.format == FormatGray8 {
		g := image.NewGray(rect)
		copy(g.Pix, src)
		return g
	}

	rgba := image.NewRGBA(rect)
	for i, j := 0, 0; i < len(src); i, j = i+3, j+4 {
		rgba.Pix[j] = src[i]
		rgba.Pix[j+1] = src[i+1]
		rgba.Pix[j+2] = src[i+2]
		rgba.Pix[j+3] = 0xff
	}
	return rgba
}

// FromStdImage converts a standard library image into the pixel store.
// Grayscale images (including paletted images with an all-gray palette)
// become FormatGray8; everything else becomes FormatRGB8 with alpha
// discarded.
func FromStdImage(img image.Image) *Image {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	if isGray(img) {
		pix := make([]byte, width*height)
		for y := range height {
			for x := range width {
				pix[y*width+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			}
		}
		return newImage(width, height, FormatGray8, pix)
	}

	pix := make([]byte, width*height*3)
	for y := range height {
		for x := range width {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := (y*width + x) * 3
			pix[off] = uint8(r >> 8)
			pix[off+1] = uint8(g >> 8)
			pix[off+2] = uint8(bl >> 8)
		}
	}
	return newImage(width, height, FormatRGB8, pix)
}

func isGray(img image.Image) bool {
	switch im := img.(type) {
	case *image.Gray:
		return true
	case *image.Paletted:
		for _, c := range im.Palette {
			r, g, b, _ := c.RGBA()
			if r != g || g != b {
				return false
			}
		}
		return true
	}
	return img.ColorModel() == color.GrayModel
}

// Export writes m to path in the lossless format chosen by the file
// extension: ".bmp" or ".tif"/".tiff" (uncompressed), or ".pgm"/".ppm"/
// ".pnm" (netpbm).
func Export(path string, m *Image) error {
	ext := strings.ToLower(filepath.Ext(path))

	var encode func(io.Writer) error
	switch ext {
	case ".bmp":
		encode = func(w io.Writer) error { return bmp.Encode(w, m.ToStdImage()) }
	case ".tif", ".tiff":
		encode = func(w io.Writer) error {
			return tiff.Encode(w, m.ToStdImage(), &tiff.Options{Compression: tiff.Uncompressed})
		}
	case ".pgm", ".ppm", ".pnm":
		return Save(path, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		_ = f.Close()
		return fmt.Errorf("image: encode %s: %w", ext, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("image: write file: %w", err)
	}
	return f.Close()
}

// Load loads an image from path, detecting the encoding from its leading
// bytes: netpbm P5/P6, BMP or TIFF.
func Load(path string, maxPixels int) (*Image, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	return LoadBytes(data, maxPixels)
}

// LoadBytes decodes an in-memory image, detecting the encoding like Load.
func LoadBytes(data []byte, maxPixels int) (*Image, error) {
	switch {
	case bytes.HasPrefix(data, []byte("P5")), bytes.HasPrefix(data, []byte("P6")):
		return Decode(bytes.NewReader(data), maxPixels)
	case bytes.HasPrefix(data, []byte("BM")):
		return decodeStd(data, maxPixels, bmp.DecodeConfig, bmp.Decode, "BMP")
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return decodeStd(data, maxPixels, tiff.DecodeConfig, tiff.Decode, "TIFF")
	default:
		return nil, ErrUnsupportedFormat
	}
}

func decodeStd(
	data []byte,
	maxPixels int,
	config func(io.Reader) (image.Config, error),
	decode func(io.Reader) (image.Image, error),
	name string,
) (*Image, error) {
	cfg, err := config(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image: decode %s: %w", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if err := CheckLimit(FormatRGB8, cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, err
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image: decode %s: %w", name, err)
	}
	return FromStdImage(img), nil
}
