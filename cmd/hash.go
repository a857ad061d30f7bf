package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"imagedups/internal/phash"
	"imagedups/internal/scan"
)

var hashCmd = &cobra.Command{
	Use:   "hash <image> [image...]",
	Short: "Print the fingerprint of one or more images",
	Long: `Compute and print the content digest and perceptual fingerprint of the
given images under the configured algorithm, without touching the database.

Useful for inspecting why two images do or do not group together.

Example:
  imagedups hash photo.jpg
  imagedups hash -a radial a.jpg b.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	opts, err := runOptions()
	if err != nil {
		return err
	}

	hasher := scan.NewHasher(opts)
	failed := false
	for _, path := range args {
		rec, err := hasher.HashFile(path)
		if err != nil {
			failed = true
			var decodeErr *phash.DecodeError
			if errors.As(err, &decodeErr) {
				fmt.Fprintf(os.Stderr, "%s: cannot decode: %v\n", path, decodeErr.Err)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			}
			continue
		}
		fmt.Printf("%s\n", rec.Path)
		fmt.Printf("  Format:      %s (%dx%d)\n", rec.Format, rec.Width, rec.Height)
		fmt.Printf("  Digest:      %s\n", rec.ContentDigest)
		fmt.Printf("  Fingerprint: %s (%s)\n", rec.Fingerprint, opts.Algorithm)
	}
	if failed {
		return fmt.Errorf("some images could not be hashed")
	}
	return nil
}
