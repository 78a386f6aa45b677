package image

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Netpbm errors.
var (
	// ErrUnsupportedFormat is returned when the header token is not P5 or P6.
	ErrUnsupportedFormat = errors.New("image: unsupported format")

	// ErrBadHeader is returned when the header is missing a field or a
	// field is out of range.
	ErrBadHeader = errors.New("image: malformed header")

	// ErrTruncated is returned when the pixel data is shorter than the
	// header announces.
	ErrTruncated = errors.New("image: truncated pixel data")
)

// maxTokenLen bounds header tokens; longer tokens are malformed.
const maxTokenLen = 64

// Decode reads a binary netpbm image (P5 or P6, maxval <= 255).
// Images with more than maxPixels pixels are refused with ErrTooLarge
// before the pixel buffer is allocated; maxPixels <= 0 means no limit.
func Decode(r io.Reader, maxPixels int) (*Image, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	magic, err := readToken(br)
	if err != nil {
		return nil, err
	}
	format, ok := formatForMagic(magic)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, magic)
	}

	var fields [3]int
	for i := range fields {
		tok, err := readToken(br)
		if err != nil {
			return nil, err
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadHeader, tok)
		}
		fields[i] = v
	}
	width, height, maxval := fields[0], fields[1], fields[2]
	if width <= 0 || height <= 0 || maxval <= 0 || maxval > MaxValue {
		return nil, fmt.Errorf("%w: %dx%d maxval %d", ErrBadHeader, width, height, maxval)
	}
	if err := CheckLimit(format, width, height, maxPixels); err != nil {
		return nil, err
	}

	pix := make([]byte, format.ImageBytes(width, height))
	if _, err := io.ReadFull(br, pix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("image: read pixels: %w", err)
	}
	return newImage(width, height, format, pix), nil
}

// readToken returns the next header token, skipping whitespace and '#'
// comments. The single whitespace byte terminating the token is consumed,
// so after the maxval token the reader is positioned at the pixel data.
func readToken(br *bufio.Reader) (string, error) {
	var c byte
	var err error
	for {
		c, err = br.ReadByte()
		if err != nil {
			return "", headerErr(err)
		}
		if c == '#' {
			if err := skipLine(br); err != nil {
				return "", headerErr(err)
			}
			continue
		}
		if !isSpace(c) {
			break
		}
	}

	tok := []byte{c}
	for {
		c, err = br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", headerErr(err)
		}
		if isSpace(c) {
			break
		}
		if c == '#' {
			if err := skipLine(br); err != nil && !errors.Is(err, io.EOF) {
				return "", headerErr(err)
			}
			break
		}
		if len(tok) >= maxTokenLen {
			return "", ErrBadHeader
		}
		tok = append(tok, c)
	}
	return string(tok), nil
}

// skipLine discards input up to and including the next newline.
func skipLine(br *bufio.Reader) error {
	for {
		_, err := br.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

func headerErr(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrBadHeader
	}
	return fmt.Errorf("image: read header: %w", err)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// Encode writes m as binary netpbm with maxval 255.
func Encode(w io.Writer, m *Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n%d\n", m.format.Magic(), m.width, m.height, MaxValue); err != nil {
		return fmt.Errorf("image: write header: %w", err)
	}
	if _, err := bw.Write(m.Pix()); err != nil {
		return fmt.Errorf("image: write pixels: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("image: write pixels: %w", err)
	}
	return nil
}

// Save writes m to path as binary netpbm.
func Save(path string, m *Image) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := Encode(f, m); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
