package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gogpu/stencil"
)

// globalFlags holds the flags shared by every subcommand.
type globalFlags struct {
	strategy  string
	workers   int
	units     int
	maxPixels int
	logLevel  string
	logFormat string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.strategy, "strategy", "shared", "execution strategy: shared, serial or distributed")
	fs.IntVar(&g.workers, "workers", 0, "worker goroutines for the shared strategy (0 = GOMAXPROCS)")
	fs.IntVar(&g.units, "units", 0, "execution units for the distributed strategy (0 = GOMAXPROCS)")
	fs.IntVar(&g.maxPixels, "max-pixels", stencil.DefaultMaxPixels, "largest image to load, in pixels (0 = no limit)")
	fs.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.StringVar(&g.logFormat, "log-format", "console", "log format: console or json")
}

// app carries the process streams and the configured logger.
type app struct {
	flags  globalFlags
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger
}

// setup configures logging. It runs before every subcommand.
func (a *app) setup() error {
	level, err := zerolog.ParseLevel(a.flags.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q", a.flags.logLevel)
	}
	var w io.Writer
	switch a.flags.logFormat {
	case "console":
		w = zerolog.ConsoleWriter{Out: a.stderr, NoColor: true}
	case "json":
		w = a.stderr
	default:
		return fmt.Errorf("invalid --log-format %q", a.flags.logFormat)
	}
	a.log = zerolog.New(w).Level(level).With().Timestamp().Logger()
	stencil.SetLogger(newSlogLogger(a.log))
	return nil
}

// session creates a session from the global flags.
func (a *app) session() (*stencil.Session, error) {
	kind, err := stencil.ParseStrategy(a.flags.strategy)
	if err != nil {
		return nil, err
	}
	return stencil.NewSession(
		stencil.WithStrategy(kind),
		stencil.WithWorkers(a.flags.workers),
		stencil.WithUnits(a.flags.units),
		stencil.WithMaxPixels(a.flags.maxPixels),
	)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "stencil",
		Short:         "Parallel stencil image editor",
		Long:          "stencil applies 3x3 convolution kernels, Sobel and histogram equalization to PGM/PPM images using serial, shared-memory or distributed execution.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	a.flags.register(root.PersistentFlags())

	root.AddCommand(newRunCmd(a), newBenchCmd(a), newVersionCmd(a))
	return root
}

// execute runs the command tree and reports a failure once on stderr.
func execute(root *cobra.Command, stderr io.Writer) error {
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}
