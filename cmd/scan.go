package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"imagedups/internal/match"
	"imagedups/internal/models"
	"imagedups/internal/scan"
	"imagedups/internal/storage"
)

var scanNoCache bool

var scanCmd = &cobra.Command{
	Use:   "scan <folder>",
	Short: "Scan a folder for duplicate images",
	Long: `Scan a folder recursively for images and detect duplicates.

The scan will:
1. Find all supported images (jpg, png, gif, webp, bmp, tiff)
2. Compute the content digest and perceptual fingerprint of each image,
   reusing cached fingerprints for unchanged files
3. Group exact and near-duplicates under the configured threshold
4. Store fingerprints and groups in the database for later use

Example:
  imagedups scan ./photos
  imagedups scan ./photos -a mh -t 0.25
  imagedups scan ./photos -a radial --angles 360`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "Recompute all fingerprints, ignore cached ones")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	opts, err := runOptions()
	if err != nil {
		return err
	}

	absFolder, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(absFolder)
	if err != nil {
		return fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", absFolder)
	}

	fmt.Printf("Scanning: %s\n", absFolder)
	fmt.Printf("Algorithm: %s  Threshold: %g\n", opts.Algorithm, opts.Threshold)
	fmt.Printf("Workers: %d\n\n", workers)

	store, err := storage.NewStore(dbPath, opts)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	lastLine := ""
	scanOpts := []scan.Option{
		scan.WithWorkers(workers),
		scan.WithProgress(func(scanned, total int, current string) {
			if lastLine != "" {
				fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
			}
			shortPath := current
			if len(shortPath) > 50 {
				shortPath = "..." + shortPath[len(shortPath)-47:]
			}
			lastLine = fmt.Sprintf("Progress: %d/%d  %s", scanned, total, shortPath)
			fmt.Print(lastLine)
		}),
	}
	if !scanNoCache {
		scanOpts = append(scanOpts, scan.WithCache(store))
	}

	s := scan.NewScanner(opts, scanOpts...)
	records, failures, err := s.ScanFolder(absFolder)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if lastLine != "" {
		fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
	}

	fmt.Printf("Hashed: %d images\n", len(records))
	if len(records) == 0 && len(failures) == 0 {
		fmt.Println("No images found.")
		return nil
	}

	if err := store.SaveRecords(records); err != nil {
		return fmt.Errorf("save fingerprints: %w", err)
	}

	fmt.Println("Finding duplicates...")
	g := match.NewGrouper(opts, match.WithWorkers(workers))
	groups, err := g.Group(records)
	if err != nil {
		return fmt.Errorf("group images: %w", err)
	}

	if err := store.UpdateGroups(groups); err != nil {
		return fmt.Errorf("update groups: %w", err)
	}

	totalDuplicates := 0
	for _, group := range groups {
		totalDuplicates += len(group.Remove)
	}
	result := &models.ScanResult{
		TotalScanned:    len(records),
		TotalGroups:     len(groups),
		TotalDuplicates: totalDuplicates,
		Groups:          groups,
		Failures:        failures,
	}
	store.RecordScan(absFolder, result)

	fmt.Println()
	fmt.Println("=== Scan Complete ===")
	fmt.Printf("Total images:     %d\n", result.TotalScanned)
	fmt.Printf("Duplicate groups: %d\n", result.TotalGroups)
	fmt.Printf("Duplicates found: %d\n", result.TotalDuplicates)

	if len(failures) > 0 {
		fmt.Printf("\nSkipped %d unreadable image(s):\n", len(failures))
		for _, f := range failures {
			fmt.Printf("  %s: %s\n", f.Path, f.Reason)
		}
	}

	if len(groups) > 0 {
		fmt.Println()
		fmt.Println("Run 'imagedups list' to see duplicate groups")
		fmt.Println("Run 'imagedups clean --dry-run' to preview deletions")
	}

	return nil
}
