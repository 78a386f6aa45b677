// Package image provides the pixel store for the stencil engine.
//
// An Image owns an 8-bit, row-major, channel-interleaved pixel buffer held
// in a DoubleBuffer, its dimensions and channel count, and the active
// rectangular selection. The package also reads and writes the binary
// netpbm encodings (P5 grayscale, P6 RGB) and exports to uncompressed BMP
// and TIFF.
package image

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatGray8 is 8-bit grayscale (1 byte per pixel, netpbm P5).
	FormatGray8 Format = iota

	// FormatRGB8 is 24-bit RGB (3 bytes per pixel, no alpha, netpbm P6).
	FormatRGB8

	// formatCount is the number of formats (for internal use).
	formatCount
)

// MaxValue is the only sample maximum the pixel store supports.
const MaxValue = 255

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// Channels is the number of color channels (also bytes per pixel).
	Channels int

	// IsGrayscale indicates if this is a grayscale format.
	IsGrayscale bool

	// Magic is the netpbm header token identifying the encoding.
	Magic string
}

// formatInfoTable contains metadata for each format.
var formatInfoTable = [formatCount]FormatInfo{
	FormatGray8: {
		Channels:    1,
		IsGrayscale: true,
		Magic:       "P5",
	},
	FormatRGB8: {
		Channels:    3,
		IsGrayscale: false,
		Magic:       "P6",
	},
}

// FormatForChannels returns the format with the given channel count.
// Only 1 and 3 channels are supported.
func FormatForChannels(channels int) (Format, error) {
	switch channels {
	case 1:
		return FormatGray8, nil
	case 3:
		return FormatRGB8, nil
	default:
		return 0, ErrInvalidFormat
	}
}

// formatForMagic maps a netpbm header token to a format.
func formatForMagic(magic string) (Format, bool) {
	for f := range formatCount {
		if formatInfoTable[f].Magic == magic {
			return f, true
		}
	}
	return 0, false
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// Channels returns the number of color channels.
func (f Format) Channels() int {
	return f.Info().Channels
}

// IsGrayscale returns true if this is a grayscale format.
func (f Format) IsGrayscale() bool {
	return f.Info().IsGrayscale
}

// Magic returns the netpbm header token for the format.
func (f Format) Magic() string {
	return f.Info().Magic
}

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatGray8:
		return "Gray8"
	case FormatRGB8:
		return "RGB8"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes calculates the number of bytes needed for a row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.Channels()
}

// ImageBytes calculates the total number of bytes needed for an image.
func (f Format) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}
