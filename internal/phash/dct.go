package phash

import (
	"math"
	"math/bits"
	"sort"
)

// dctGrid is the downscale size for the DCT hash. The hash keeps the 8x8
// low-frequency block starting at coefficient (1,1), skipping the DC terms.
const (
	dctGrid = 32
	dctKeep = 8
)

// DCTHash computes the 64-bit DCT perceptual hash of an image: downscale to
// a 32x32 grayscale grid, apply a 2-D discrete cosine transform, threshold
// the 64 low-frequency coefficients against their median. A coefficient
// strictly greater than the median sets its bit.
func DCTHash(p *Pixels) (uint64, error) {
	if p.empty() {
		return 0, &DecodeError{Err: errEmptyImage}
	}

	m := p.grayMatrix(dctGrid, dctGrid, 1.0)
	coeffs := dct2D(m)

	var block [dctKeep * dctKeep]float64
	k := 0
	for y := 1; y <= dctKeep; y++ {
		for x := 1; x <= dctKeep; x++ {
			block[k] = coeffs[y][x]
			k++
		}
	}
	med := median(block[:])

	var hash uint64
	for i, c := range block {
		if c > med {
			hash |= 1 << uint(63-i)
		}
	}
	return hash, nil
}

// HammingDistance counts the differing bits between two 64-bit hashes.
// Range [0, 64]; zero means identical fingerprints.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// dct2D applies a separable orthonormal DCT-II to a square matrix, rows
// first, then columns.
func dct2D(m [][]float64) [][]float64 {
	n := len(m)
	rows := make([][]float64, n)
	for y := 0; y < n; y++ {
		rows[y] = dct1D(m[y])
	}
	out := make([][]float64, n)
	for y := range out {
		out[y] = make([]float64, n)
	}
	col := make([]float64, n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			col[y] = rows[y][x]
		}
		t := dct1D(col)
		for y := 0; y < n; y++ {
			out[y][x] = t[y]
		}
	}
	return out
}

// dct1D computes the orthonormal DCT-II of a vector.
func dct1D(in []float64) []float64 {
	n := len(in)
	out := make([]float64, n)
	scale0 := math.Sqrt(1.0 / float64(n))
	scale := math.Sqrt(2.0 / float64(n))
	for k := 0; k < n; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += in[i] * math.Cos(math.Pi*float64(2*i+1)*float64(k)/float64(2*n))
		}
		if k == 0 {
			out[k] = sum * scale0
		} else {
			out[k] = sum * scale
		}
	}
	return out
}

func median(v []float64) float64 {
	s := make([]float64, len(v))
	copy(s, v)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}
