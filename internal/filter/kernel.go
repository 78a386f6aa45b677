package filter

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// ErrUnknownKernel is returned when a kernel name is not recognized.
var ErrUnknownKernel = errors.New("filter: unknown kernel")

// Kernel is an immutable 3x3 coefficient matrix indexed [row][column].
// Coefficients need not sum to 1.
type Kernel [3][3]float64

// KernelID identifies one of the predefined coefficient tables.
// Names are resolved to a KernelID once, at the command boundary.
type KernelID uint8

const (
	// KernelEdge is the Laplacian-style edge detector (center 8, ring -1).
	KernelEdge KernelID = iota

	// KernelSharpen is the 4-neighbor sharpen kernel (center 5).
	KernelSharpen

	// KernelBlur is the 3x3 box blur (all 1/9).
	KernelBlur

	// KernelGaussianBlur is the 3x3 binomial Gaussian (1 2 1 / 16).
	KernelGaussianBlur

	kernelCount
)

// kernelTable holds the coefficients for each KernelID.
var kernelTable = [kernelCount]Kernel{
	KernelEdge: {
		{-1, -1, -1},
		{-1, 8, -1},
		{-1, -1, -1},
	},
	KernelSharpen: {
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	},
	KernelBlur: {
		{1.0 / 9, 1.0 / 9, 1.0 / 9},
		{1.0 / 9, 1.0 / 9, 1.0 / 9},
		{1.0 / 9, 1.0 / 9, 1.0 / 9},
	},
	KernelGaussianBlur: {
		{1.0 / 16, 2.0 / 16, 1.0 / 16},
		{2.0 / 16, 4.0 / 16, 2.0 / 16},
		{1.0 / 16, 2.0 / 16, 1.0 / 16},
	},
}

var kernelNames = [kernelCount]string{
	KernelEdge:         "EDGE",
	KernelSharpen:      "SHARPEN",
	KernelBlur:         "BLUR",
	KernelGaussianBlur: "GAUSSIAN_BLUR",
}

// Kernels returns all predefined kernel identifiers in declaration order.
func Kernels() []KernelID {
	ids := make([]KernelID, kernelCount)
	for i := range ids {
		ids[i] = KernelID(i)
	}
	return ids
}

// KernelNames returns the command names of all predefined kernels.
func KernelNames() []string {
	return lo.Map(Kernels(), func(id KernelID, _ int) string { return id.String() })
}

// ParseKernel resolves a command name such as "GAUSSIAN_BLUR".
func ParseKernel(name string) (KernelID, error) {
	for id, n := range kernelNames {
		if n == name {
			return KernelID(id), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
}

// Valid reports whether id names a predefined kernel.
func (id KernelID) Valid() bool {
	return id < kernelCount
}

// Kernel returns a copy of the coefficient table for id.
// It panics on an invalid id.
func (id KernelID) Kernel() Kernel {
	return kernelTable[id]
}

// String returns the command name of the kernel.
func (id KernelID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("KernelID(%d)", uint8(id))
	}
	return kernelNames[id]
}
