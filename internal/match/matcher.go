package match

import (
	"sort"

	"imagedups/internal/models"
)

// buildGroups materializes groups from union-find sets of record indices.
// Only sets with two or more members become groups. Members keep input
// order; groups are ordered by their smallest member index, so output is
// identical across runs and worker counts.
func buildGroups(records []*models.ImageRecord, rootOf func(int) int) []*models.Group {
	members := make(map[int][]*models.ImageRecord)
	var roots []int
	for i, rec := range records {
		root := rootOf(i)
		if _, seen := members[root]; !seen {
			roots = append(roots, root)
		}
		members[root] = append(members[root], rec)
	}

	var groups []*models.Group
	for _, root := range roots {
		imgs := members[root]
		if len(imgs) < 2 {
			continue
		}
		group := &models.Group{
			ID:     len(groups) + 1,
			Images: imgs,
		}
		selectKeepAndRemove(group)
		groups = append(groups, group)
	}
	return groups
}

// selectKeepAndRemove picks the image to keep in a group: highest quality
// score, then largest file, then newest, then path.
func selectKeepAndRemove(group *models.Group) {
	if len(group.Images) == 0 {
		return
	}

	sorted := make([]*models.ImageRecord, len(group.Images))
	copy(sorted, group.Images)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.FileSize != b.FileSize {
			return a.FileSize > b.FileSize
		}
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		return a.Path < b.Path
	})

	group.Keep = sorted[0]
	group.Remove = sorted[1:]

	for _, img := range group.Images {
		img.GroupID = group.ID
	}
}
