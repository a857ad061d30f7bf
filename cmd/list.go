package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"imagedups/internal/models"
	"imagedups/internal/storage"
)

var (
	listVerbose bool
	listSummary bool
	listLimit   int
	listOffset  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List duplicate groups from the last scan",
	Long: `Display the duplicate groups recorded by the last scan for the
configured algorithm.

Each group shows:
- Group ID
- Images in the group with their quality scores
- Which image will be kept (highest score) marked with +
- Which images will be removed marked with -

Example:
  imagedups list              # Show first 10 groups (default)
  imagedups list -n 0         # Show all groups
  imagedups list -s           # Summary view (compact)
  imagedups list --offset 10  # Groups 11-20`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "Show detailed image info")
	listCmd.Flags().BoolVarP(&listSummary, "summary", "s", false, "Show summary only (group counts and sizes)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 10, "Limit number of groups to display (0 = all)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Skip first N groups (for pagination)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	opts, err := runOptions()
	if err != nil {
		return err
	}

	store, err := storage.NewStore(dbPath, opts)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	groups, err := store.GetDuplicateGroups()
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	if len(groups) == 0 {
		fmt.Println("No duplicate groups found.")
		fmt.Println("Run 'imagedups scan <folder>' to scan for duplicates.")
		return nil
	}

	totalDuplicates := 0
	var totalSavings int64
	for _, group := range groups {
		for _, img := range group.Remove {
			totalDuplicates++
			totalSavings += img.FileSize
		}
	}

	fmt.Printf("Found %d duplicate groups (%d duplicates, %s reclaimable)\n\n",
		len(groups), totalDuplicates, formatSize(totalSavings))

	totalGroups := len(groups)
	startIdx := listOffset
	if startIdx > len(groups) {
		startIdx = len(groups)
	}
	groups = groups[startIdx:]

	if listLimit > 0 && listLimit < len(groups) {
		groups = groups[:listLimit]
	}

	if len(groups) == 0 {
		fmt.Printf("No groups in range (offset %d exceeds total %d)\n", listOffset, totalGroups)
	} else if listSummary {
		printSummaryTable(groups)
	} else {
		for _, group := range groups {
			printGroup(group, listVerbose)
		}
	}

	endIdx := startIdx + len(groups)
	if len(groups) > 0 {
		fmt.Printf("Showing groups %d-%d of %d\n", startIdx+1, endIdx, totalGroups)
		if endIdx < totalGroups {
			limitArg := ""
			if listLimit > 0 {
				limitArg = fmt.Sprintf(" -n %d", listLimit)
			}
			fmt.Printf("Next page: imagedups list%s --offset %d\n", limitArg, endIdx)
		}
	}

	fmt.Println()
	fmt.Println("Run 'imagedups clean --dry-run' to preview deletions")
	fmt.Println("Run 'imagedups clean' to remove duplicates")

	return nil
}

func printSummaryTable(groups []*models.Group) {
	fmt.Printf("%-8s  %-8s  %-12s  %s\n", "Group", "Images", "Reclaimable", "Keep (best quality)")
	fmt.Println(strings.Repeat("-", 70))

	for _, group := range groups {
		var reclaimable int64
		for _, img := range group.Remove {
			reclaimable += img.FileSize
		}

		keepName := filepath.Base(group.Keep.Path)
		if len(keepName) > 35 {
			keepName = keepName[:32] + "..."
		}

		fmt.Printf("#%-7d  %-8d  %-12s  %s\n",
			group.ID, len(group.Images), formatSize(reclaimable), keepName)
	}
	fmt.Println()
}

func printGroup(group *models.Group, verbose bool) {
	fmt.Printf("Group #%d (%d images)\n", group.ID, len(group.Images))
	fmt.Println(strings.Repeat("-", 60))

	for _, img := range group.Images {
		marker := "-"
		if img.Path == group.Keep.Path {
			marker = "+"
		}

		shortPath := shortenPath(img.Path, 40)

		if verbose {
			fmt.Printf("  %s %s\n", marker, img.Path)
			fmt.Printf("      Resolution: %dx%d  Format: %s  Size: %s\n",
				img.Width, img.Height, strings.ToUpper(img.Format), formatSize(img.FileSize))
			fmt.Printf("      Fingerprint: %s  Score: %.0f\n", img.Fingerprint, img.Score)
		} else {
			fmt.Printf("  %s %-40s  %dx%d  %-4s  %8s  Score: %.0f\n",
				marker, shortPath, img.Width, img.Height,
				strings.ToUpper(img.Format), formatSize(img.FileSize), img.Score)
		}
	}
	fmt.Println()
}

func shortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}

	dir, file := filepath.Split(path)
	if len(file) >= maxLen-3 {
		return "..." + file[len(file)-(maxLen-3):]
	}

	remaining := maxLen - len(file) - 4
	if remaining > 0 && len(dir) > remaining {
		dir = dir[len(dir)-remaining:]
	}
	return "..." + dir + file
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
