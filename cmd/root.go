package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"imagedups/internal/phash"
)

var (
	dbPath    string
	algorithm string
	threshold float64
	workers   int

	mhAlpha      float64
	mhLevel      float64
	radialSigma  float64
	radialGamma  float64
	radialAngles int
)

var rootCmd = &cobra.Command{
	Use:   "imagedups",
	Short: "Find duplicate and visually similar images",
	Long: `imagedups finds duplicate or near-duplicate images in a file collection.

Byte-identical files are detected through their SHA-256 content digest.
Beyond that, one of three perceptual hash algorithms fingerprints every
image, so that copies survive resizing, recompression, cropping, blur,
noise or color shifts:

  dct     64-bit DCT hash, compared by Hamming distance (default)
  mh      Marr-Hildreth edge hash, compared by normalized Hamming distance
  radial  radial-variance digest, compared by peak cross-correlation

Example usage:
  imagedups scan ./photos                  # Scan with the DCT hash
  imagedups scan ./photos -a radial        # Use the radial variance hash
  imagedups list                           # List duplicate groups
  imagedups clean --dry-run                # Preview deletions`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	homeDir, _ := os.UserHomeDir()
	defaultDB := filepath.Join(homeDir, ".imagedups", "hashes.db")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Path to the SQLite fingerprint cache")
	rootCmd.PersistentFlags().StringVarP(&algorithm, "algorithm", "a", "dct", "Perceptual hash algorithm: dct | mh | radial")
	rootCmd.PersistentFlags().Float64VarP(&threshold, "threshold", "t", -1,
		"Match threshold: bit distance for dct, normalized distance for mh, correlation peak for radial (-1 = per-algorithm default)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 8, "Number of parallel workers")

	rootCmd.PersistentFlags().Float64Var(&mhAlpha, "alpha", 2.0, "Marr-Hildreth scale factor")
	rootCmd.PersistentFlags().Float64Var(&mhLevel, "level", 1.0, "Marr-Hildreth scale level")
	rootCmd.PersistentFlags().Float64Var(&radialSigma, "sigma", 1.0, "Radial hash Gaussian blur sigma")
	rootCmd.PersistentFlags().Float64Var(&radialGamma, "gamma", 1.0, "Radial hash gamma correction")
	rootCmd.PersistentFlags().IntVar(&radialAngles, "angles", 180, "Radial hash projection angle count")
}

// runOptions assembles and validates the hashing options once, before any
// work starts.
func runOptions() (phash.Options, error) {
	opts := phash.Options{
		Algorithm: phash.Algorithm(algorithm),
		Threshold: threshold,
		Alpha:     mhAlpha,
		Level:     mhLevel,
		Sigma:     radialSigma,
		Gamma:     radialGamma,
		Angles:    radialAngles,
	}
	if err := opts.Validate(); err != nil {
		return phash.Options{}, err
	}
	return opts, nil
}
