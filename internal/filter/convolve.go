package filter

import "math"

// sobelX and sobelY are the fixed Sobel gradient masks.
var (
	sobelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]int{
		{1, 2, 1},
		{0, 0, 0},
		{-1, -2, -1},
	}
)

// Convolve writes, for every pixel of s and every channel independently,
//
//	sum over ky,kx in {-1,0,1} of k[ky+1][kx+1] * src[y+ky][x+kx]
//
// clamped and rounded by ClampRound, into dst. dst and src must be
// distinct buffers with the same geometry.
func Convolve(dst, src Plane, k *Kernel, s Span) {
	if s.Empty() {
		return
	}
	ch := src.Channels
	stride := src.Stride

	for y := s.Y0; y < s.Y1; y++ {
		above := src.Pix[(y-1)*stride : y*stride]
		row := src.Pix[y*stride : (y+1)*stride]
		below := src.Pix[(y+1)*stride : (y+2)*stride]
		out := dst.Pix[y*stride : (y+1)*stride]

		for x := s.X0; x < s.X1; x++ {
			for c := range ch {
				i := x*ch + c
				l, r := i-ch, i+ch

				sum := 0.0
				sum += k[0][0] * float64(above[l])
				sum += k[0][1] * float64(above[i])
				sum += k[0][2] * float64(above[r])
				sum += k[1][0] * float64(row[l])
				sum += k[1][1] * float64(row[i])
				sum += k[1][2] * float64(row[r])
				sum += k[2][0] * float64(below[l])
				sum += k[2][1] * float64(below[i])
				sum += k[2][2] * float64(below[r])

				out[i] = ClampRound(sum)
			}
		}
	}
}

// Sobel writes the gradient magnitude round(sqrt(sx*sx + sy*sy)), clamped
// to [0,255], for every pixel of s and every channel independently. sx and
// sy are the integer responses of the horizontal and vertical masks.
func Sobel(dst, src Plane, s Span) {
	if s.Empty() {
		return
	}
	ch := src.Channels
	stride := src.Stride

	for y := s.Y0; y < s.Y1; y++ {
		out := dst.Pix[y*stride : (y+1)*stride]

		for x := s.X0; x < s.X1; x++ {
			for c := range ch {
				sx, sy := 0, 0
				for ky := -1; ky <= 1; ky++ {
					base := (y+ky)*stride + c
					for kx := -1; kx <= 1; kx++ {
						v := int(src.Pix[base+(x+kx)*ch])
						sx += v * sobelX[ky+1][kx+1]
						sy += v * sobelY[ky+1][kx+1]
					}
				}
				mag := math.Sqrt(float64(sx*sx + sy*sy))
				out[x*ch+c] = ClampRound(mag)
			}
		}
	}
}
