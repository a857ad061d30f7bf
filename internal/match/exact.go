package match

import "imagedups/internal/models"

// digestSets collects the indices of records sharing a content digest.
// Records in one set are byte-identical files; they are merged before any
// perceptual comparison runs, and no perceptual metric can split them apart.
func digestSets(records []*models.ImageRecord) [][]int {
	byDigest := make(map[string][]int)
	var order []string
	for i, rec := range records {
		if rec.ContentDigest == "" {
			continue
		}
		if _, seen := byDigest[rec.ContentDigest]; !seen {
			order = append(order, rec.ContentDigest)
		}
		byDigest[rec.ContentDigest] = append(byDigest[rec.ContentDigest], i)
	}

	var sets [][]int
	for _, digest := range order {
		if indices := byDigest[digest]; len(indices) > 1 {
			sets = append(sets, indices)
		}
	}
	return sets
}
