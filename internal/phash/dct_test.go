package phash

import (
	"errors"
	"image"
	"testing"
)

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		name     string
		hash1    uint64
		hash2    uint64
		expected int
	}{
		{"identical", 0, 0, 0},
		{"one bit", 1, 0, 1},
		{"two bits", 3, 0, 2},
		{"all bits", 0xFFFFFFFFFFFFFFFF, 0, 64},
		{"half bits", 0xAAAAAAAAAAAAAAAA, 0x5555555555555555, 64},
		{"similar", 0x8000000000000000, 0x8000000000000001, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HammingDistance(tt.hash1, tt.hash2)
			if got != tt.expected {
				t.Errorf("HammingDistance(%x, %x) = %d, want %d", tt.hash1, tt.hash2, got, tt.expected)
			}
			if sym := HammingDistance(tt.hash2, tt.hash1); sym != got {
				t.Errorf("HammingDistance not symmetric: %d vs %d", got, sym)
			}
		})
	}
}

func TestDCTHashDeterministic(t *testing.T) {
	p := mustPixels(circleImage(128, 128))

	h1, err := DCTHash(p)
	if err != nil {
		t.Fatalf("DCTHash failed: %v", err)
	}
	h2, err := DCTHash(p)
	if err != nil {
		t.Fatalf("DCTHash failed: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash not deterministic: %016x vs %016x", h1, h2)
	}
	if HammingDistance(h1, h2) != 0 {
		t.Error("self distance must be zero")
	}
}

func TestDCTHashResizeTolerant(t *testing.T) {
	// The same scene at two resolutions should land within the common
	// near-duplicate threshold.
	big, err := DCTHash(mustPixels(circleImage(256, 256)))
	if err != nil {
		t.Fatalf("DCTHash failed: %v", err)
	}
	small, err := DCTHash(mustPixels(circleImage(128, 128)))
	if err != nil {
		t.Fatalf("DCTHash failed: %v", err)
	}

	if d := HammingDistance(big, small); d > 10 {
		t.Errorf("resized image distance = %d, want <= 10", d)
	}
}

func TestDCTHashDistinguishesImages(t *testing.T) {
	a, err := DCTHash(mustPixels(circleImage(256, 256)))
	if err != nil {
		t.Fatalf("DCTHash failed: %v", err)
	}
	b, err := DCTHash(mustPixels(checkerImage(256, 256, 64)))
	if err != nil {
		t.Fatalf("DCTHash failed: %v", err)
	}

	if d := HammingDistance(a, b); d <= 5 {
		t.Errorf("unrelated images distance = %d, want > 5", d)
	}
}

func TestDCTHashEmptyImage(t *testing.T) {
	_, err := DCTHash(nil)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected DecodeError for nil pixels, got %v", err)
	}

	_, err = FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected DecodeError for empty image, got %v", err)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		in       []float64
		expected float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"equal", []float64{5, 5, 5, 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.in); got != tt.expected {
				t.Errorf("median(%v) = %v, want %v", tt.in, got, tt.expected)
			}
		})
	}
}

func TestDCT1DConstantSignal(t *testing.T) {
	// A constant signal concentrates all energy in the DC coefficient.
	in := []float64{4, 4, 4, 4}
	out := dct1D(in)

	if out[0] <= 0 {
		t.Errorf("DC coefficient = %v, want positive", out[0])
	}
	for k := 1; k < len(out); k++ {
		if out[k] > 1e-9 || out[k] < -1e-9 {
			t.Errorf("AC coefficient %d = %v, want 0", k, out[k])
		}
	}
}

func BenchmarkDCTHash(b *testing.B) {
	p := mustPixels(circleImage(256, 256))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DCTHash(p); err != nil {
			b.Fatal(err)
		}
	}
}
