package phash

import (
	"errors"
	"testing"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr string // ConfigError field, empty = valid
	}{
		{"dct defaults", func(o *Options) {}, ""},
		{"unknown algorithm", func(o *Options) { o.Algorithm = "sift" }, "algorithm"},
		{"dct threshold too large", func(o *Options) { o.Threshold = 65 }, "threshold"},
		{"mh defaults", func(o *Options) { o.Algorithm = AlgorithmMH; o.Threshold = -1 }, ""},
		{"mh threshold above one", func(o *Options) { o.Algorithm = AlgorithmMH; o.Threshold = 1.5 }, "threshold"},
		{"mh bad alpha", func(o *Options) { o.Algorithm = AlgorithmMH; o.Threshold = 0.3; o.Alpha = 0 }, "alpha"},
		{"mh bad level", func(o *Options) { o.Algorithm = AlgorithmMH; o.Threshold = 0.3; o.Level = -1 }, "level"},
		{"radial defaults", func(o *Options) { o.Algorithm = AlgorithmRadial; o.Threshold = -1 }, ""},
		{"radial negative sigma", func(o *Options) { o.Algorithm = AlgorithmRadial; o.Threshold = 0.9; o.Sigma = -1 }, "sigma"},
		{"radial bad gamma", func(o *Options) { o.Algorithm = AlgorithmRadial; o.Threshold = 0.9; o.Gamma = 0 }, "gamma"},
		{"radial too few angles", func(o *Options) { o.Algorithm = AlgorithmRadial; o.Threshold = 0.9; o.Angles = 20 }, "angles"},
		{"radial negative angles", func(o *Options) { o.Algorithm = AlgorithmRadial; o.Threshold = 0.9; o.Angles = -180 }, "angles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions(AlgorithmDCT)
			tt.mutate(&opts)

			err := opts.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.wantErr {
				t.Errorf("error field = %s, want %s", cfgErr.Field, tt.wantErr)
			}
		})
	}
}

func TestOptionsDefaultThreshold(t *testing.T) {
	tests := []struct {
		alg      Algorithm
		expected float64
	}{
		{AlgorithmDCT, DefaultDCTThreshold},
		{AlgorithmMH, DefaultMHThreshold},
		{AlgorithmRadial, DefaultRadialThreshold},
	}
	for _, tt := range tests {
		opts := DefaultOptions(tt.alg)
		if opts.Threshold != tt.expected {
			t.Errorf("%s default threshold = %v, want %v", tt.alg, opts.Threshold, tt.expected)
		}

		// A negative threshold resolves to the default during validation.
		opts.Threshold = -1
		if err := opts.Validate(); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if opts.Threshold != tt.expected {
			t.Errorf("%s resolved threshold = %v, want %v", tt.alg, opts.Threshold, tt.expected)
		}
	}
}

func TestOptionsParamsKey(t *testing.T) {
	mh := DefaultOptions(AlgorithmMH)
	radial := DefaultOptions(AlgorithmRadial)

	if mh.ParamsKey() == radial.ParamsKey() {
		t.Error("different algorithms produced the same params key")
	}

	changed := radial
	changed.Angles = 360
	if changed.ParamsKey() == radial.ParamsKey() {
		t.Error("changing angles must change the params key")
	}
}
