package filter

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// ErrUnknownSequence is returned when a benchmark sequence name is not
// recognized.
var ErrUnknownSequence = errors.New("filter: unknown sequence")

// OpKind distinguishes the two stencil operators.
type OpKind uint8

const (
	// OpConvolve applies a predefined kernel.
	OpConvolve OpKind = iota

	// OpSobel applies the Sobel gradient magnitude.
	OpSobel
)

// Op is one stencil operation: a convolution with Kernel, or Sobel.
type Op struct {
	Kind   OpKind
	Kernel KernelID
}

// ConvolveOp returns the Op applying kernel id.
func ConvolveOp(id KernelID) Op {
	return Op{Kind: OpConvolve, Kernel: id}
}

// SobelOp returns the Sobel Op.
func SobelOp() Op {
	return Op{Kind: OpSobel}
}

// String implements fmt.Stringer.
func (o Op) String() string {
	if o.Kind == OpSobel {
		return "SOBEL"
	}
	return o.Kernel.String()
}

// Apply runs the operation from src into dst over s.
func (o Op) Apply(dst, src Plane, s Span) {
	if o.Kind == OpSobel {
		Sobel(dst, src, s)
		return
	}
	k := o.Kernel.Kernel()
	Convolve(dst, src, &k, s)
}

// Sequence is a predefined chain of operations repeated by the benchmark
// harness.
type Sequence uint8

const (
	// SeqSobel is Sobel alone.
	SeqSobel Sequence = iota

	// SeqGaussSobel is Gaussian blur followed by Sobel.
	SeqGaussSobel

	// SeqPipe is Gaussian blur, Sobel, then sharpen.
	SeqPipe

	// SeqEdge is the edge kernel alone.
	SeqEdge

	// SeqSharpen is the sharpen kernel alone.
	SeqSharpen

	// SeqBlur is the box blur alone.
	SeqBlur

	// SeqGaussianBlur is the Gaussian blur alone.
	SeqGaussianBlur

	sequenceCount
)

var sequenceNames = [sequenceCount]string{
	SeqSobel:        "SOBEL",
	SeqGaussSobel:   "GAUSS_SOBEL",
	SeqPipe:         "PIPE",
	SeqEdge:         "EDGE",
	SeqSharpen:      "SHARPEN",
	SeqBlur:         "BLUR",
	SeqGaussianBlur: "GAUSSIAN_BLUR",
}

var sequenceOps = [sequenceCount][]Op{
	SeqSobel:        {SobelOp()},
	SeqGaussSobel:   {ConvolveOp(KernelGaussianBlur), SobelOp()},
	SeqPipe:         {ConvolveOp(KernelGaussianBlur), SobelOp(), ConvolveOp(KernelSharpen)},
	SeqEdge:         {ConvolveOp(KernelEdge)},
	SeqSharpen:      {ConvolveOp(KernelSharpen)},
	SeqBlur:         {ConvolveOp(KernelBlur)},
	SeqGaussianBlur: {ConvolveOp(KernelGaussianBlur)},
}

// ParseSequence resolves a benchmark sequence name such as "GAUSS_SOBEL".
func ParseSequence(name string) (Sequence, error) {
	for seq, n := range sequenceNames {
		if n == name {
			return Sequence(seq), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSequence, name)
}

// SequenceNames returns the command names of all benchmark sequences.
func SequenceNames() []string {
	return lo.Map(sequenceNames[:], func(n string, _ int) string { return n })
}

// Ops returns the operations of one repetition, in order.
func (s Sequence) Ops() []Op {
	if s >= sequenceCount {
		return nil
	}
	return sequenceOps[s]
}

// String returns the command name of the sequence.
func (s Sequence) String() string {
	if s >= sequenceCount {
		return fmt.Sprintf("Sequence(%d)", uint8(s))
	}
	return sequenceNames[s]
}
