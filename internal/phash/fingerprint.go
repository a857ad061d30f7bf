package phash

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Fingerprint is the tagged union of the three fingerprint shapes: a 64-bit
// integer for dct, 72 bytes for mh, 40 bytes for radial. The zero value
// means "no fingerprint". Fingerprints are immutable once created.
type Fingerprint struct {
	algorithm Algorithm
	dct       uint64
	data      []byte
}

// NewDCTFingerprint wraps a 64-bit DCT hash.
func NewDCTFingerprint(h uint64) Fingerprint {
	return Fingerprint{algorithm: AlgorithmDCT, dct: h}
}

// NewMHFingerprint wraps a 72-byte Marr-Hildreth digest.
func NewMHFingerprint(d []byte) (Fingerprint, error) {
	if len(d) != MHDigestSize {
		return Fingerprint{}, &LengthMismatchError{LenA: len(d), LenB: MHDigestSize}
	}
	return Fingerprint{algorithm: AlgorithmMH, data: cloneBytes(d)}, nil
}

// NewRadialFingerprint wraps a 40-byte radial-variance digest.
func NewRadialFingerprint(d []byte) (Fingerprint, error) {
	if len(d) != RadialDigestSize {
		return Fingerprint{}, &LengthMismatchError{LenA: len(d), LenB: RadialDigestSize}
	}
	return Fingerprint{algorithm: AlgorithmRadial, data: cloneBytes(d)}, nil
}

// Compute produces the fingerprint of an image under the configured
// algorithm and tunables.
func Compute(p *Pixels, opts Options) (Fingerprint, error) {
	switch opts.Algorithm {
	case AlgorithmDCT:
		h, err := DCTHash(p)
		if err != nil {
			return Fingerprint{}, err
		}
		return NewDCTFingerprint(h), nil
	case AlgorithmMH:
		d, err := MHHash(p, opts.Alpha, opts.Level)
		if err != nil {
			return Fingerprint{}, err
		}
		return NewMHFingerprint(d)
	case AlgorithmRadial:
		d, err := RadialDigest(p, opts.Sigma, opts.Gamma, opts.Angles)
		if err != nil {
			return Fingerprint{}, err
		}
		return NewRadialFingerprint(d)
	default:
		return Fingerprint{}, &ConfigError{Field: "algorithm", Reason: fmt.Sprintf("unknown algorithm %q", string(opts.Algorithm))}
	}
}

// Algorithm returns the hash family that produced this fingerprint.
func (f Fingerprint) Algorithm() Algorithm { return f.algorithm }

// DCT returns the 64-bit hash of a dct fingerprint.
func (f Fingerprint) DCT() uint64 { return f.dct }

// Bytes returns a copy of the digest of an mh or radial fingerprint.
func (f Fingerprint) Bytes() []byte { return cloneBytes(f.data) }

// IsZero reports whether no fingerprint has been computed.
func (f Fingerprint) IsZero() bool { return f.algorithm == "" }

// String renders the fingerprint as uppercase hex, 16 digits for dct.
func (f Fingerprint) String() string {
	if f.algorithm == AlgorithmDCT {
		return fmt.Sprintf("%016X", f.dct)
	}
	return fmt.Sprintf("%X", f.data)
}

// ParseFingerprint reads back a fingerprint rendered by String. The
// algorithm tag must be supplied alongside, since the blob alone does not
// identify the hash family.
func ParseFingerprint(alg Algorithm, hexhash string) (Fingerprint, error) {
	raw, err := hex.DecodeString(hexhash)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("parse %s fingerprint: %w", alg, err)
	}
	switch alg {
	case AlgorithmDCT:
		if len(raw) != 8 {
			return Fingerprint{}, &LengthMismatchError{LenA: len(raw), LenB: 8}
		}
		return NewDCTFingerprint(binary.BigEndian.Uint64(raw)), nil
	case AlgorithmMH:
		return NewMHFingerprint(raw)
	case AlgorithmRadial:
		return NewRadialFingerprint(raw)
	default:
		return Fingerprint{}, &ConfigError{Field: "algorithm", Reason: fmt.Sprintf("unknown algorithm %q", string(alg))}
	}
}

// Matches reports whether two fingerprints are near-duplicates under the run
// threshold. Comparing fingerprints from different hash families is a
// contract violation and returns an *AlgorithmMismatchError.
func (o Options) Matches(a, b Fingerprint) (bool, error) {
	if a.algorithm != b.algorithm {
		return false, &AlgorithmMismatchError{A: a.algorithm, B: b.algorithm}
	}
	switch a.algorithm {
	case AlgorithmDCT:
		return HammingDistance(a.dct, b.dct) <= int(o.Threshold), nil
	case AlgorithmMH:
		d, err := NormalizedHammingDistance(a.data, b.data)
		if err != nil {
			return false, err
		}
		return d <= o.Threshold, nil
	case AlgorithmRadial:
		peak, err := CrossCorrelationPeak(a.data, b.data, o.Threshold)
		if err != nil {
			return false, err
		}
		return peak >= o.Threshold, nil
	default:
		return false, &ConfigError{Field: "algorithm", Reason: "fingerprint has no algorithm"}
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
