package reduce

import (
	"errors"
	"testing"
)

func TestGroup_InvalidBins(t *testing.T) {
	var h Histogram
	for _, bins := range []int{0, -4, 3, 7, 512} {
		if _, err := Group(&h, 10, bins); !errors.Is(err, ErrInvalidBins) {
			t.Errorf("Group(bins=%d) error = %v, want ErrInvalidBins", bins, err)
		}
	}
}

func TestGroup_InvalidStars(t *testing.T) {
	var h Histogram
	if _, err := Group(&h, 0, 4); !errors.Is(err, ErrInvalidStars) {
		t.Errorf("Group(stars=0) error = %v, want ErrInvalidStars", err)
	}
}

func TestGroup_Scaling(t *testing.T) {
	var h Histogram
	h[0] = 10   // bin 0
	h[63] = 10  // bin 0
	h[64] = 5   // bin 1
	h[200] = 15 // bin 3

	bins, err := Group(&h, 8, 4)
	if err != nil {
		t.Fatalf("Group() error = %v", err)
	}
	tests := []struct {
		lo, hi, count, stars int
	}{
		{0, 63, 20, 8},
		{64, 127, 5, 2},
		{128, 191, 0, 0},
		{192, 255, 15, 6},
	}
	for i, tt := range tests {
		b := bins[i]
		if b.Lo != tt.lo || b.Hi != tt.hi || b.Count != tt.count || b.Stars != tt.stars {
			t.Errorf("bins[%d] = %+v, want {Lo:%d Hi:%d Count:%d Stars:%d}",
				i, b, tt.lo, tt.hi, tt.count, tt.stars)
		}
	}
}

func TestGroup_EmptyHistogram(t *testing.T) {
	var h Histogram
	bins, err := Group(&h, 5, 256)
	if err != nil {
		t.Fatalf("Group() error = %v", err)
	}
	if len(bins) != 256 {
		t.Fatalf("len = %d, want 256", len(bins))
	}
	for i, b := range bins {
		if b.Stars != 0 {
			t.Errorf("bins[%d].Stars = %d, want 0", i, b.Stars)
		}
	}
}
