package models

import (
	"time"

	"imagedups/internal/phash"
)

// ImageRecord identifies one source image within a run, together with its
// content digest and perceptual fingerprint. Exactly one fingerprint kind is
// populated per run; the active algorithm is a run parameter, not per-image.
type ImageRecord struct {
	// Index is the position in the input order. Group membership and group
	// order are reported in input order so results are reproducible.
	Index int `json:"index"`

	Path     string    `json:"path"`
	FileSize int64     `json:"file_size"`
	ModTime  time.Time `json:"mod_time"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Format   string    `json:"format"`
	HasExif  bool      `json:"has_exif"`

	// ContentDigest is the hex SHA-256 of the file bytes, used for exact
	// duplicate detection before any perceptual comparison.
	ContentDigest string `json:"content_digest,omitempty"`

	// Fingerprint is write-once: set by the hashing phase, immutable after.
	Fingerprint phash.Fingerprint `json:"-"`

	Score   float64 `json:"score"`
	GroupID int     `json:"group_id,omitempty"`
}

// Group is an ordered set of images believed to be duplicates or
// near-duplicates of each other. Membership is transitive: two members are
// connected through a chain of pairwise matches, not necessarily matched
// directly. Images appear in input order.
type Group struct {
	ID     int            `json:"id"`
	Images []*ImageRecord `json:"images"`
	Keep   *ImageRecord   `json:"keep"`   // highest quality score
	Remove []*ImageRecord `json:"remove"` // the rest
}

// Failure records an image excluded from grouping, typically because it
// could not be decoded.
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ScanResult summarizes one full run.
type ScanResult struct {
	TotalScanned    int       `json:"total_scanned"`
	TotalGroups     int       `json:"total_groups"`
	TotalDuplicates int       `json:"total_duplicates"`
	Groups          []*Group  `json:"groups"`
	Failures        []Failure `json:"failures,omitempty"`
}

// FormatQualityMultiplier returns the quality multiplier for an image format.
func FormatQualityMultiplier(format string) float64 {
	switch format {
	case "png", "tiff", "bmp":
		return 1.2 // lossless
	case "webp":
		return 1.1
	case "jpeg", "jpg":
		return 1.0
	case "gif":
		return 0.9 // limited colors
	default:
		return 1.0
	}
}

// MetadataMultiplier returns the quality multiplier based on EXIF presence.
func MetadataMultiplier(hasExif bool) float64 {
	if hasExif {
		return 1.1
	}
	return 1.0
}

// QualityScore ranks an image within a group: resolution weighted by format
// and metadata. Higher is better.
func QualityScore(r *ImageRecord) float64 {
	resolution := float64(r.Width * r.Height)
	return resolution * FormatQualityMultiplier(r.Format) * MetadataMultiplier(r.HasExif)
}
