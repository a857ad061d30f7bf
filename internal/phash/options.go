package phash

import "fmt"

// Algorithm identifies a perceptual hash family.
type Algorithm string

const (
	AlgorithmDCT    Algorithm = "dct"
	AlgorithmMH     Algorithm = "mh"
	AlgorithmRadial Algorithm = "radial"
)

// Default thresholds per algorithm. The DCT threshold is a Hamming distance
// in bits, the MH threshold a normalized distance in [0,1], the radial
// threshold a correlation peak in [0,1] (higher = more similar).
const (
	DefaultDCTThreshold    = 10.0
	DefaultMHThreshold     = 0.30
	DefaultRadialThreshold = 0.95
)

// Options are the run-wide hashing parameters. All fingerprints compared
// within one run must come from identical Options.
type Options struct {
	Algorithm Algorithm

	// Threshold semantics depend on Algorithm: maximum Hamming distance for
	// dct, maximum normalized distance for mh, minimum correlation peak for
	// radial. A negative value selects the algorithm's default.
	Threshold float64

	// Marr-Hildreth scale parameters.
	Alpha float64
	Level float64

	// Radial variance parameters.
	Sigma  float64
	Gamma  float64
	Angles int
}

// DefaultOptions returns Options for the given algorithm with the default
// threshold and tunables.
func DefaultOptions(alg Algorithm) Options {
	o := Options{
		Algorithm: alg,
		Threshold: -1,
		Alpha:     2.0,
		Level:     1.0,
		Sigma:     1.0,
		Gamma:     1.0,
		Angles:    180,
	}
	o.Threshold = o.defaultThreshold()
	return o
}

func (o Options) defaultThreshold() float64 {
	switch o.Algorithm {
	case AlgorithmMH:
		return DefaultMHThreshold
	case AlgorithmRadial:
		return DefaultRadialThreshold
	default:
		return DefaultDCTThreshold
	}
}

// Validate checks all options once, up front. It returns a *ConfigError on
// the first invalid value so that no partial work happens under a bad
// configuration.
func (o *Options) Validate() error {
	switch o.Algorithm {
	case AlgorithmDCT, AlgorithmMH, AlgorithmRadial:
	default:
		return &ConfigError{
			Field:  "algorithm",
			Reason: fmt.Sprintf("unknown algorithm %q, expected dct, mh or radial", string(o.Algorithm)),
		}
	}

	if o.Threshold < 0 {
		o.Threshold = o.defaultThreshold()
	}

	switch o.Algorithm {
	case AlgorithmDCT:
		if o.Threshold > 64 {
			return &ConfigError{Field: "threshold", Reason: "dct threshold is a bit distance in [0, 64]"}
		}
	case AlgorithmMH:
		if o.Threshold > 1 {
			return &ConfigError{Field: "threshold", Reason: "mh threshold is a normalized distance in [0.0, 1.0]"}
		}
		if o.Alpha <= 0 {
			return &ConfigError{Field: "alpha", Reason: "must be positive"}
		}
		if o.Level <= 0 {
			return &ConfigError{Field: "level", Reason: "must be positive"}
		}
	case AlgorithmRadial:
		if o.Threshold > 1 {
			return &ConfigError{Field: "threshold", Reason: "radial threshold is a correlation peak in [0.0, 1.0]"}
		}
		if o.Sigma < 0 {
			return &ConfigError{Field: "sigma", Reason: "must not be negative"}
		}
		if o.Gamma <= 0 {
			return &ConfigError{Field: "gamma", Reason: "must be positive"}
		}
		if o.Angles < RadialDigestSize {
			return &ConfigError{
				Field:  "angles",
				Reason: fmt.Sprintf("need at least %d projection angles for a %d-byte digest", RadialDigestSize, RadialDigestSize),
			}
		}
	}

	return nil
}

// ParamsKey returns a canonical string of the tunables that affect the
// fingerprint bits. Fingerprints cached under a different key must not be
// reused.
func (o Options) ParamsKey() string {
	switch o.Algorithm {
	case AlgorithmMH:
		return fmt.Sprintf("alpha=%g,level=%g", o.Alpha, o.Level)
	case AlgorithmRadial:
		return fmt.Sprintf("sigma=%g,gamma=%g,angles=%d", o.Sigma, o.Gamma, o.Angles)
	default:
		return ""
	}
}
