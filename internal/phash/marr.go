package phash

import "math"

// MHDigestSize is the fixed byte length of a Marr-Hildreth fingerprint:
// an 8x8 grid of 3x3 block neighborhoods, 9 bits each, 576 bits total.
const MHDigestSize = 72

// mhGrid is the working resolution for the edge response. 31x31 block sums
// of 16x16 pixels are taken from it.
const (
	mhGrid      = 512
	mhBlocks    = 31
	mhBlockSize = 16
)

// MHHash computes the Marr-Hildreth fingerprint of an image. The image is
// normalized to a 512x512 grayscale grid and correlated with a
// Laplacian-of-Gaussian style kernel whose width is controlled by alpha and
// level. The response is summed into 31x31 blocks; each 3x3 block
// neighborhood on a stride-4 grid contributes 9 bits, one per block compared
// against the neighborhood mean.
//
// Alpha and level are run-wide parameters: fingerprints produced with
// different values must never be compared.
func MHHash(p *Pixels, alpha, level float64) ([]byte, error) {
	if p.empty() {
		return nil, &DecodeError{Err: errEmptyImage}
	}

	m := p.grayMatrix(mhGrid, mhGrid, 1.0)
	resp := correlate(m, mhKernel(alpha, level))
	normalizeInPlace(resp)

	var blocks [mhBlocks][mhBlocks]float64
	for by := 0; by < mhBlocks; by++ {
		for bx := 0; bx < mhBlocks; bx++ {
			var sum float64
			for y := by * mhBlockSize; y < (by+1)*mhBlockSize; y++ {
				for x := bx * mhBlockSize; x < (bx+1)*mhBlockSize; x++ {
					sum += resp[y][x]
				}
			}
			blocks[by][bx] = sum
		}
	}

	out := make([]byte, MHDigestSize)
	bit := 0
	for by := 0; by <= mhBlocks-3; by += 4 {
		for bx := 0; bx <= mhBlocks-3; bx += 4 {
			var nb [9]float64
			var mean float64
			i := 0
			for dy := 0; dy < 3; dy++ {
				for dx := 0; dx < 3; dx++ {
					nb[i] = blocks[by+dy][bx+dx]
					mean += nb[i]
					i++
				}
			}
			mean /= 9
			for _, v := range nb {
				if v > mean {
					out[bit>>3] |= 1 << uint(7-bit&7)
				}
				bit++
			}
		}
	}
	return out, nil
}

// NormalizedHammingDistance returns the fraction of differing bits between
// two equal-length byte fingerprints, in [0.0, 1.0]. Unequal lengths are a
// configuration bug and yield a *LengthMismatchError.
func NormalizedHammingDistance(a, b []byte) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, &LengthMismatchError{LenA: len(a), LenB: len(b)}
	}
	diff := 0
	for i := range a {
		diff += popcount8(a[i] ^ b[i])
	}
	return float64(diff) / float64(len(a)*8), nil
}

func popcount8(b byte) int {
	n := 0
	for b != 0 {
		n++
		b &= b - 1
	}
	return n
}

// mhKernel builds the Marr-Hildreth wavelet kernel
// (2 - r^2) * exp(-r^2 / 2) sampled on a grid scaled by alpha^-level.
// With the defaults alpha=2, level=1 the kernel is 17x17.
func mhKernel(alpha, level float64) [][]float64 {
	sigma := int(4 * math.Pow(alpha, level))
	if sigma < 1 {
		sigma = 1
	}
	size := 2*sigma + 1
	scale := math.Pow(alpha, -level)
	k := make([][]float64, size)
	for y := 0; y < size; y++ {
		k[y] = make([]float64, size)
		for x := 0; x < size; x++ {
			xp := scale * float64(x-sigma)
			yp := scale * float64(y-sigma)
			a := xp*xp + yp*yp
			k[y][x] = (2 - a) * math.Exp(-a/2)
		}
	}
	return k
}

// correlate computes the 2-D correlation of a matrix with a kernel, clamping
// samples at the borders.
func correlate(m, kernel [][]float64) [][]float64 {
	h := len(m)
	w := len(m[0])
	kh := len(kernel)
	kw := len(kernel[0])
	cy := kh / 2
	cx := kw / 2

	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			var sum float64
			for ky := 0; ky < kh; ky++ {
				sy := clamp(y+ky-cy, 0, h-1)
				row := m[sy]
				krow := kernel[ky]
				for kx := 0; kx < kw; kx++ {
					sx := clamp(x+kx-cx, 0, w-1)
					sum += row[sx] * krow[kx]
				}
			}
			out[y][x] = sum
		}
	}
	return out
}

// normalizeInPlace rescales a matrix to [0, 1]. A constant matrix becomes
// all zeros.
func normalizeInPlace(m [][]float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, row := range m {
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if hi <= lo {
		for _, row := range m {
			for x := range row {
				row[x] = 0
			}
		}
		return
	}
	span := hi - lo
	for _, row := range m {
		for x := range row {
			row[x] = (row[x] - lo) / span
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
