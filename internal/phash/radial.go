package phash

import (
	"bytes"
	"math"

	"github.com/disintegration/imaging"
)

// RadialDigestSize is the fixed byte length of a radial-variance digest:
// the first 40 DCT coefficients of the projection-variance feature vector.
const RadialDigestSize = 40

// radialGrid is the working resolution for the projections. Fixing it keeps
// the per-image cost bounded and independent of the source resolution.
const radialGrid = 128

// RadialDigest computes the radial-variance digest of an image. The image is
// blurred (sigma), gamma-corrected and reduced to a 128x128 grayscale grid.
// Pixel intensities are projected along `angles` lines through the center
// spanning [0, 180) degrees; the variance of each projection forms a feature
// vector whose first 40 DCT coefficients, scaled into bytes, are the digest.
//
// Sigma, gamma and angles act as the digest's type: digests produced with
// different values must never be compared.
func RadialDigest(p *Pixels, sigma, gamma float64, angles int) ([]byte, error) {
	if p.empty() {
		return nil, &DecodeError{Err: errEmptyImage}
	}
	if angles < RadialDigestSize {
		return nil, &ConfigError{Field: "angles", Reason: "fewer projection angles than digest coefficients"}
	}

	g := imaging.Grayscale(p.img)
	if gamma > 0 && gamma != 1.0 {
		g = imaging.AdjustGamma(g, gamma)
	}
	if sigma > 0 {
		g = imaging.Blur(g, sigma)
	}
	g = imaging.Resize(g, radialGrid, radialGrid, imaging.Lanczos)
	m := lumaPlane(g)

	features := projectionVariances(m, angles)
	standardizeInPlace(features)

	// Plain DCT-II of the feature vector; only the low-frequency coefficients
	// are kept.
	n := len(features)
	coeffs := make([]float64, RadialDigestSize)
	for k := 0; k < RadialDigestSize; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += features[i] * math.Cos(math.Pi*float64(2*i+1)*float64(k)/float64(2*n))
		}
		coeffs[k] = sum
	}

	return quantizeCoeffs(coeffs), nil
}

// projectionVariances samples pixel intensities along one line per angle
// through the image center and returns the variance of each projection.
func projectionVariances(m [][]float64, angles int) []float64 {
	size := len(m)
	center := float64(size-1) / 2
	reach := size / 2

	features := make([]float64, angles)
	for k := 0; k < angles; k++ {
		theta := math.Pi * float64(k) / float64(angles)
		dx := math.Cos(theta)
		dy := math.Sin(theta)

		var sum, sumSq float64
		var n int
		for t := -reach; t <= reach; t++ {
			x := int(math.Round(center + float64(t)*dx))
			y := int(math.Round(center + float64(t)*dy))
			if x < 0 || x >= size || y < 0 || y >= size {
				continue
			}
			v := m[y][x]
			sum += v
			sumSq += v * v
			n++
		}
		if n > 0 {
			mean := sum / float64(n)
			features[k] = sumSq/float64(n) - mean*mean
		}
	}
	return features
}

// standardizeInPlace shifts and scales a vector to zero mean and unit
// variance. A constant vector becomes all zeros.
func standardizeInPlace(v []float64) {
	n := float64(len(v))
	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= n

	var variance float64
	for _, x := range v {
		d := x - mean
		variance += d * d
	}
	variance /= n

	if variance == 0 {
		for i := range v {
			v[i] = 0
		}
		return
	}
	dev := math.Sqrt(variance)
	for i := range v {
		v[i] = (v[i] - mean) / dev
	}
}

// quantizeCoeffs maps coefficients to bytes over their min/max range.
func quantizeCoeffs(coeffs []float64) []byte {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, c := range coeffs {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	out := make([]byte, len(coeffs))
	if hi <= lo {
		return out
	}
	span := hi - lo
	for i, c := range coeffs {
		out[i] = byte(math.Round(255 * (c - lo) / span))
	}
	return out
}

// CrossCorrelationPeak returns the maximum normalized cross-correlation
// between two digests over all cyclic shifts. It is a similarity: higher
// means more similar, with self-correlation equal to 1. Digests of unequal
// length yield a *LengthMismatchError.
//
// A positive threshold lets the scan stop as soon as the peak is known to
// cross it; the match decision is unaffected, only the exact peak value may
// be short of the true maximum. Pass 0 to always compute the true peak.
//
// Degenerate zero-variance digests correlate 1 when byte-identical and 0
// otherwise.
func CrossCorrelationPeak(x, y []byte, threshold float64) (float64, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0, &LengthMismatchError{LenA: len(x), LenB: len(y)}
	}

	devX := make([]float64, n)
	devY := make([]float64, n)
	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += float64(x[i])
		meanY += float64(y[i])
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		devX[i] = float64(x[i]) - meanX
		devY[i] = float64(y[i]) - meanY
		sumX += devX[i] * devX[i]
		sumY += devY[i] * devY[i]
	}
	denom := math.Sqrt(sumX) * math.Sqrt(sumY)
	if denom == 0 {
		if bytes.Equal(x, y) {
			return 1, nil
		}
		return 0, nil
	}

	peak := math.Inf(-1)
	for shift := 0; shift < n; shift++ {
		var num float64
		for i := 0; i < n; i++ {
			j := i + shift
			if j >= n {
				j -= n
			}
			num += devX[i] * devY[j]
		}
		if r := num / denom; r > peak {
			peak = r
		}
		if threshold > 0 && peak >= threshold {
			break
		}
	}
	return peak, nil
}
