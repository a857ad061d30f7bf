package phash

import "fmt"

// DecodeError reports an image that could not be decoded into usable pixels.
// It is recoverable: the caller excludes the image from grouping and records
// the failure, the rest of the batch proceeds.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LengthMismatchError reports a comparison between fingerprints of unequal
// length. Unequal lengths mean the fingerprints came from different
// algorithms or parameters, so the comparison is a caller bug, not a
// tolerated case.
type LengthMismatchError struct {
	LenA, LenB int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("fingerprint length mismatch: %d vs %d bytes", e.LenA, e.LenB)
}

// AlgorithmMismatchError reports a comparison between fingerprints produced
// by different hash families.
type AlgorithmMismatchError struct {
	A, B Algorithm
}

func (e *AlgorithmMismatchError) Error() string {
	return fmt.Sprintf("cannot compare %s fingerprint with %s fingerprint", e.A, e.B)
}

// ConfigError reports invalid run options. It fails the whole run before any
// hashing starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Reason)
}
