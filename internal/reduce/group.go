package reduce

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
)

var (
	// ErrInvalidBins is returned when the bin count does not divide 256.
	ErrInvalidBins = errors.New("reduce: bins must be positive and divide 256")

	// ErrInvalidStars is returned when the star scale is not positive.
	ErrInvalidStars = errors.New("reduce: stars must be positive")
)

// Bin is one group of adjacent intensities in a rendered histogram.
type Bin struct {
	// Lo and Hi bound the intensities in the bin, inclusive.
	Lo, Hi int

	// Count is the number of pixels in the bin.
	Count int

	// Stars is Count scaled against the fullest bin.
	Stars int
}

// Group folds h into bins groups of 256/bins adjacent intensities and scales
// each group to at most stars marks: round(count / max * stars), with 0 for
// every bin when the histogram is empty.
func Group(h *Histogram, stars, bins int) ([]Bin, error) {
	if bins <= 0 || Levels%bins != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBins, bins)
	}
	if stars <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStars, stars)
	}

	width := Levels / bins
	sums := lo.Map(lo.Chunk(h[:], width), func(c []int, _ int) int {
		return lo.Sum(c)
	})
	maxCount := lo.Max(sums)

	out := make([]Bin, bins)
	for i, s := range sums {
		out[i] = Bin{Lo: i * width, Hi: (i+1)*width - 1, Count: s}
		if maxCount > 0 {
			out[i].Stars = int(math.RoundToEven(float64(s) / float64(maxCount) * float64(stars)))
		}
	}
	return out, nil
}
