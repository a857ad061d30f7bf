package phash

import (
	"bytes"
	"errors"
	"testing"
)

func TestMHHashShape(t *testing.T) {
	d, err := MHHash(mustPixels(circleImage(128, 128)), 2.0, 1.0)
	if err != nil {
		t.Fatalf("MHHash failed: %v", err)
	}
	if len(d) != MHDigestSize {
		t.Fatalf("digest length = %d, want %d", len(d), MHDigestSize)
	}
}

func TestMHHashDeterministic(t *testing.T) {
	p := mustPixels(checkerImage(128, 128, 32))

	d1, err := MHHash(p, 2.0, 1.0)
	if err != nil {
		t.Fatalf("MHHash failed: %v", err)
	}
	d2, err := MHHash(p, 2.0, 1.0)
	if err != nil {
		t.Fatalf("MHHash failed: %v", err)
	}
	if !bytes.Equal(d1, d2) {
		t.Error("hash not deterministic")
	}

	dist, err := NormalizedHammingDistance(d1, d2)
	if err != nil {
		t.Fatalf("NormalizedHammingDistance failed: %v", err)
	}
	if dist != 0 {
		t.Errorf("self distance = %v, want 0", dist)
	}
}

func TestMHHashDistinguishesImages(t *testing.T) {
	a, err := MHHash(mustPixels(circleImage(128, 128)), 2.0, 1.0)
	if err != nil {
		t.Fatalf("MHHash failed: %v", err)
	}
	b, err := MHHash(mustPixels(checkerImage(128, 128, 32)), 2.0, 1.0)
	if err != nil {
		t.Fatalf("MHHash failed: %v", err)
	}

	dist, err := NormalizedHammingDistance(a, b)
	if err != nil {
		t.Fatalf("NormalizedHammingDistance failed: %v", err)
	}
	if dist <= 0.05 {
		t.Errorf("unrelated images distance = %v, want > 0.05", dist)
	}
}

func TestMHHashEmptyImage(t *testing.T) {
	_, err := MHHash(nil, 2.0, 1.0)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected DecodeError, got %v", err)
	}
}

func TestNormalizedHammingDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []byte
		expected float64
	}{
		{"identical", []byte{0xFF, 0x00}, []byte{0xFF, 0x00}, 0},
		{"opposite", []byte{0xFF}, []byte{0x00}, 1},
		{"half", []byte{0xF0}, []byte{0x0F}, 1},
		{"one bit of sixteen", []byte{0x01, 0x00}, []byte{0x00, 0x00}, 1.0 / 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizedHammingDistance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("distance = %v, want %v", got, tt.expected)
			}
			if got < 0 || got > 1 {
				t.Errorf("distance %v out of [0,1]", got)
			}

			sym, err := NormalizedHammingDistance(tt.b, tt.a)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sym != got {
				t.Errorf("not symmetric: %v vs %v", got, sym)
			}
		})
	}
}

// Comparing a 72-byte and a 40-byte fingerprint must raise, never silently
// truncate.
func TestNormalizedHammingDistanceLengthMismatch(t *testing.T) {
	a := make([]byte, MHDigestSize)
	b := make([]byte, RadialDigestSize)

	_, err := NormalizedHammingDistance(a, b)
	var mismatch *LengthMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected LengthMismatchError, got %v", err)
	}
	if mismatch.LenA != MHDigestSize || mismatch.LenB != RadialDigestSize {
		t.Errorf("mismatch lengths = %d/%d, want %d/%d",
			mismatch.LenA, mismatch.LenB, MHDigestSize, RadialDigestSize)
	}

	if _, err := NormalizedHammingDistance(nil, nil); err == nil {
		t.Error("expected error for empty inputs")
	}
}

func TestMHKernelShape(t *testing.T) {
	k := mhKernel(2.0, 1.0)
	if len(k) != 17 || len(k[0]) != 17 {
		t.Fatalf("kernel size = %dx%d, want 17x17", len(k), len(k[0]))
	}
	// The wavelet peaks at the center.
	center := k[8][8]
	if center != 2.0 {
		t.Errorf("center value = %v, want 2", center)
	}
	for y := range k {
		for x := range k[y] {
			if k[y][x] > center {
				t.Fatalf("kernel value at (%d,%d) exceeds center", x, y)
			}
		}
	}
}
