package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"imagedups/internal/fileutil"
	"imagedups/internal/models"
	"imagedups/internal/storage"
)

var (
	dryRun     bool
	moveTo     string
	permanent  bool
	noConfirm  bool
	groupIDs   []int
	pruneStale bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove or move duplicate images",
	Long: `Remove duplicate images, keeping the highest quality version of each
group found by the last scan.

Options:
  --dry-run     Preview what would be removed without actually removing
  --permanent   Delete files permanently instead of moving to trash
  --move-to     Move duplicates to a specific folder
  --yes         Skip confirmation prompt
  --group       Specify group IDs to clean (can be used multiple times)
  --prune       Also drop cache entries for files no longer on disk

Example:
  imagedups clean                     # Move to trash (default)
  imagedups clean --permanent         # Delete permanently
  imagedups clean --move-to=./backup  # Move to specific folder
  imagedups clean --dry-run           # Preview only
  imagedups clean --group=1 --group=3 # Clean only groups 1 and 3`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without removing")
	cleanCmd.Flags().BoolVar(&permanent, "permanent", false, "Delete permanently instead of moving to trash")
	cleanCmd.Flags().StringVar(&moveTo, "move-to", "", "Move duplicates to this folder")
	cleanCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	cleanCmd.Flags().IntSliceVarP(&groupIDs, "group", "g", nil, "Group IDs to clean (can be specified multiple times)")
	cleanCmd.Flags().BoolVar(&pruneStale, "prune", false, "Also drop cache entries for files no longer on disk")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	opts, err := runOptions()
	if err != nil {
		return err
	}

	store, err := storage.NewStore(dbPath, opts)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if pruneStale {
		pruned, err := store.Prune()
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		if pruned > 0 {
			fmt.Printf("Pruned %d stale cache entries\n", pruned)
		}
	}

	groups, err := store.GetDuplicateGroups()
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	if len(groups) == 0 {
		fmt.Println("No duplicate groups found.")
		return nil
	}

	if len(groupIDs) > 0 {
		wanted := make(map[int]bool)
		for _, id := range groupIDs {
			wanted[id] = true
		}

		var filtered []*models.Group
		for _, group := range groups {
			if wanted[group.ID] {
				filtered = append(filtered, group)
			}
		}

		if len(filtered) == 0 {
			fmt.Printf("No matching groups found for IDs: %v\n", groupIDs)
			fmt.Println("Run 'imagedups list' to see available group IDs.")
			return nil
		}

		groups = filtered
		fmt.Printf("Processing %d selected group(s): %v\n\n", len(groups), groupIDs)
	}

	var toRemove []string
	var totalSize int64
	for _, group := range groups {
		for _, img := range group.Remove {
			if _, err := os.Stat(img.Path); err == nil {
				toRemove = append(toRemove, img.Path)
				totalSize += img.FileSize
			}
		}
	}

	if len(toRemove) == 0 {
		fmt.Println("No files to remove (files may have been already deleted).")
		return nil
	}

	var action string
	switch {
	case moveTo != "":
		action = fmt.Sprintf("move to %s", moveTo)
	case permanent:
		action = "permanently delete"
	default:
		action = "move to trash"
	}

	fmt.Printf("Will %s %d files (%s)\n\n", action, len(toRemove), formatSize(totalSize))

	if dryRun {
		fmt.Println("Files to be removed:")
		for _, path := range toRemove {
			fmt.Printf("  %s\n", path)
		}
		fmt.Println()
		fmt.Println("(Dry run - no files were modified)")
		fmt.Println("Run without --dry-run to actually remove files.")
		return nil
	}

	if !noConfirm {
		fmt.Printf("Are you sure you want to %s %d files? [y/N]: ", action, len(toRemove))
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if moveTo != "" {
		if err := os.MkdirAll(moveTo, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", moveTo, err)
		}
	}

	var processed, failed int
	for _, path := range toRemove {
		var err error
		switch {
		case moveTo != "":
			err = fileutil.MoveFile(path, moveTo)
		case permanent:
			err = os.Remove(path)
		default:
			err = fileutil.MoveToTrash(path)
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to process %s: %v\n", path, err)
			failed++
		} else {
			processed++
			store.DeleteImage(path)
		}
	}

	fmt.Println()
	switch {
	case moveTo != "":
		fmt.Printf("Moved %d files to %s\n", processed, moveTo)
	case permanent:
		fmt.Printf("Permanently deleted %d files\n", processed)
	default:
		fmt.Printf("Moved %d files to trash\n", processed)
	}
	if failed > 0 {
		fmt.Printf("Failed: %d files\n", failed)
	}
	fmt.Printf("Space reclaimed: %s\n", formatSize(totalSize))

	return nil
}
