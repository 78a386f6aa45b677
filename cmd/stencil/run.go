package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/stencil"
	"github.com/gogpu/stencil/internal/script"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [script]",
		Short: "Execute editor commands from a file, or from stdin",
		Long: "Execute editor commands, one per line, from a file or from stdin.\n\n" +
			"APPLY kernels: " + strings.Join(stencil.KernelNames(), ", ") + "\n" +
			"BENCH sequences: " + strings.Join(stencil.SequenceNames(), ", "),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = a.stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			a.log.Debug().Str("strategy", s.Strategy().String()).Msg("interpreter started")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := script.New(s, a.stdout).Run(ctx, in); err != nil {
				a.log.Error().Err(err).Msg("interpreter stopped")
				return err
			}
			return nil
		},
	}
}
