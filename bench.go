package stencil

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/gogpu/stencil/internal/filter"
)

// Sequence names a predefined chain of operations for Bench.
type Sequence = filter.Sequence

// Bench sequences.
const (
	SeqSobel        = filter.SeqSobel
	SeqGaussSobel   = filter.SeqGaussSobel
	SeqPipe         = filter.SeqPipe
	SeqEdge         = filter.SeqEdge
	SeqSharpen      = filter.SeqSharpen
	SeqBlur         = filter.SeqBlur
	SeqGaussianBlur = filter.SeqGaussianBlur
)

// ParseSequence resolves a sequence name such as "GAUSS_SOBEL".
func ParseSequence(name string) (Sequence, error) {
	return filter.ParseSequence(name)
}

// SequenceNames returns the names accepted by ParseSequence.
func SequenceNames() []string { return filter.SequenceNames() }

// BenchResult reports the timing of a Bench run.
type BenchResult struct {
	// Sequence is the chain that was repeated.
	Sequence Sequence

	// Iters is the number of repetitions.
	Iters int

	// Elapsed is the wall-clock time of all repetitions, measured between
	// two barriers.
	Elapsed time.Duration

	// Mean and StdDev summarize the per-repetition times.
	Mean   time.Duration
	StdDev time.Duration

	// Pixels is the number of pixels in the image.
	Pixels int
}

// PixelsPerSecond returns the throughput: pixels times operations per
// second of elapsed time.
func (r BenchResult) PixelsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	ops := r.Iters * len(r.Sequence.Ops())
	return float64(r.Pixels) * float64(ops) / r.Elapsed.Seconds()
}

// Bench repeats seq iters times over the current selection and reports the
// elapsed time. All execution units meet at a barrier before the clock
// starts and again before it stops. Unlike Apply, kernels run on images of
// any channel count.
func (s *Session) Bench(ctx context.Context, iters int, seq Sequence) (BenchResult, error) {
	var res BenchResult
	if err := s.ready(true); err != nil {
		return res, err
	}
	if iters <= 0 {
		return res, s.fail("bench", fmt.Errorf("%w: %d", ErrInvalidIterations, iters))
	}
	ops := seq.Ops()
	if ops == nil {
		return res, s.fail("bench", fmt.Errorf("%w: %v", ErrUnknownSequence, seq))
	}

	if err := s.strategy.Barrier(ctx); err != nil {
		return res, s.fail("bench", err)
	}
	laps := make([]float64, iters)
	start := time.Now()
	for i := range iters {
		lap := time.Now()
		for _, op := range ops {
			if err := s.run(ctx, op); err != nil {
				return res, err
			}
		}
		laps[i] = time.Since(lap).Seconds()
	}
	if err := s.strategy.Barrier(ctx); err != nil {
		return res, s.fail("bench", err)
	}
	elapsed := time.Since(start)

	mean, std := stat.MeanStdDev(laps, nil)
	if iters == 1 {
		std = 0
	}
	res = BenchResult{
		Sequence: seq,
		Iters:    iters,
		Elapsed:  elapsed,
		Mean:     seconds(mean),
		StdDev:   seconds(std),
		Pixels:   s.img.Area(),
	}
	s.log.Info("bench finished", "sequence", seq.String(), "iters", iters,
		"elapsed", elapsed, "mean", res.Mean, "stddev", res.StdDev)
	return res, nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
