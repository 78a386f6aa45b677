// Package script implements the line-oriented command language of the
// stencil editor.
//
// Each input line holds one command and its whitespace-separated
// arguments:
//
//	LOAD <path>
//	SAVE <path>
//	EXPORT <path.bmp|path.tiff>
//	SELECT ALL
//	SELECT <x1> <y1> <x2> <y2>
//	CROP
//	APPLY <EDGE|SHARPEN|BLUR|GAUSSIAN_BLUR>
//	APPLY_SOBEL
//	HISTOGRAM <stars> <bins>
//	EQUALIZE
//	BENCH <iters> <SOBEL|GAUSS_SOBEL|PIPE|EDGE|SHARPEN|BLUR|GAUSSIAN_BLUR>
//	EXIT
//
// Every command prints exactly one status line (HISTOGRAM prints one line
// per bin). Rejected commands print the reason and leave the session
// unchanged; only a fatal session error stops the interpreter.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/stencil"
)

// Interpreter executes commands against a Session and writes their status
// lines to an output stream.
type Interpreter struct {
	session *stencil.Session
	out     io.Writer
	printer *message.Printer
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLanguage sets the language used to format numbers in BENCH reports.
// The default is English.
func WithLanguage(tag language.Tag) Option {
	return func(in *Interpreter) {
		in.printer = message.NewPrinter(tag)
	}
}

// New creates an interpreter over s writing to out.
func New(s *stencil.Session, out io.Writer, opts ...Option) *Interpreter {
	in := &Interpreter{
		session: s,
		out:     out,
		printer: message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run executes commands from r until EXIT, end of input, or a fatal error.
// Blank lines are skipped.
func (in *Interpreter) Run(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		exit, err := in.Exec(ctx, sc.Text())
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("script: read commands: %w", err)
	}
	return nil
}

// Exec executes a single command line. It reports whether the line was
// EXIT, and returns an error only when the session is no longer usable.
func (in *Interpreter) Exec(ctx context.Context, line string) (exit bool, err error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return false, nil
	}
	cmd, args := f[0], f[1:]

	switch cmd {
	case "EXIT":
		return true, nil
	case "LOAD":
		err = in.load(ctx, args)
	case "SAVE":
		err = in.save(ctx, args)
	case "EXPORT":
		err = in.export(ctx, args)
	case "SELECT":
		err = in.sel(args)
	case "CROP":
		err = in.crop(ctx)
	case "APPLY":
		err = in.apply(ctx, args)
	case "APPLY_SOBEL":
		err = in.sobel(ctx)
	case "HISTOGRAM":
		err = in.histogram(ctx, args)
	case "EQUALIZE":
		err = in.equalize(ctx)
	case "BENCH":
		err = in.bench(ctx, args)
	default:
		err = errInvalidCommand
	}

	if err == nil {
		return false, nil
	}
	if stencil.IsFatal(err) {
		in.println("Fatal error: " + err.Error())
		return false, err
	}
	in.println(statusLine(err))
	return false, nil
}

// errInvalidCommand marks malformed commands and arguments.
var errInvalidCommand = errors.New("script: invalid command")

// ioError carries the status line of a failed file operation.
type ioError struct {
	msg string
	err error
}

func (e *ioError) Error() string { return e.msg + ": " + e.err.Error() }
func (e *ioError) Unwrap() error { return e.err }

// statusLine maps a rejected request to its status line.
func statusLine(err error) string {
	var ioe *ioError
	switch {
	case errors.As(err, &ioe):
		return ioe.msg
	case errors.Is(err, stencil.ErrNoImage):
		return "No image loaded"
	case errors.Is(err, stencil.ErrInvalidSelection):
		return "Invalid set of coordinates"
	case errors.Is(err, stencil.ErrNeedGrayscale):
		return "Black and white image needed"
	case errors.Is(err, stencil.ErrNeedColor):
		return "Color image needed"
	case errors.Is(err, stencil.ErrUnknownKernel):
		return "APPLY parameter invalid"
	default:
		return "Invalid command"
	}
}

func (in *Interpreter) println(s string) {
	fmt.Fprintln(in.out, s)
}

// ints parses exactly n integer arguments.
func ints(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, errInvalidCommand
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidCommand, a)
		}
		out[i] = v
	}
	return out, nil
}

func path(args []string) (string, error) {
	if len(args) != 1 {
		return "", errInvalidCommand
	}
	return args[0], nil
}
