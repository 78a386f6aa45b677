package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/stencil"
)

type benchFlags struct {
	iters    int
	sequence string
	sel      []int
}

func newBenchCmd(a *app) *cobra.Command {
	var f benchFlags
	cmd := &cobra.Command{
		Use:   "bench <image>",
		Short: "Time repeated runs of a kernel sequence on an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := stencil.ParseSequence(f.sequence)
			if err != nil {
				return err
			}
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := s.Load(ctx, args[0]); err != nil {
				return err
			}
			if len(f.sel) > 0 {
				if len(f.sel) != 4 {
					return fmt.Errorf("--select needs 4 values, got %d", len(f.sel))
				}
				if err := s.Select(f.sel[0], f.sel[1], f.sel[2], f.sel[3]); err != nil {
					return err
				}
			}

			res, err := s.Bench(ctx, f.iters, seq)
			if err != nil {
				return err
			}
			p := message.NewPrinter(language.English)
			p.Fprintf(a.stdout, "BENCH %s iters=%d time=%.6f sec\n", seq, res.Iters, res.Elapsed.Seconds())
			p.Fprintf(a.stdout, "  strategy    %s\n", s.Strategy())
			p.Fprintf(a.stdout, "  per iter    %v ± %v\n", res.Mean, res.StdDev)
			p.Fprintf(a.stdout, "  throughput  %.0f px/s\n", res.PixelsPerSecond())
			return nil
		},
	}
	cmd.Flags().IntVarP(&f.iters, "iters", "n", 10, "number of repetitions")
	names := stencil.SequenceNames()
	cmd.Flags().StringVarP(&f.sequence, "sequence", "s", stencil.SeqGaussSobel.String(), "sequence: "+strings.Join(names, ", "))
	cmd.Flags().IntSliceVar(&f.sel, "select", nil, "selection x1,y1,x2,y2 (default whole image)")
	_ = cmd.RegisterFlagCompletionFunc("sequence", cobra.FixedCompletions(names, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}
