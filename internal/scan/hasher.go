package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"imagedups/internal/models"
	"imagedups/internal/phash"
)

// Hasher turns image files into ImageRecords: file metadata, content digest
// and the perceptual fingerprint for the configured algorithm.
type Hasher struct {
	opts phash.Options
}

// NewHasher creates a Hasher for the given, already validated, run options.
func NewHasher(opts phash.Options) *Hasher {
	return &Hasher{opts: opts}
}

// HashFile builds the record for one image, fingerprint included. An
// undecodable image returns a *phash.DecodeError; the caller records it as a
// failure and moves on.
func (h *Hasher) HashFile(path string) (*models.ImageRecord, error) {
	rec, err := h.Describe(path)
	if err != nil {
		return nil, err
	}
	fp, err := h.Fingerprint(path)
	if err != nil {
		return nil, err
	}
	rec.Fingerprint = fp
	return rec, nil
}

// Fingerprint decodes the image and computes its perceptual fingerprint
// under the run options.
func (h *Hasher) Fingerprint(path string) (phash.Fingerprint, error) {
	pixels, err := phash.Decode(path)
	if err != nil {
		return phash.Fingerprint{}, err
	}
	return phash.Compute(pixels, h.opts)
}

// Describe builds the record without computing the perceptual fingerprint,
// for callers that already hold one (cache hits, shared digests).
func (h *Hasher) Describe(path string) (*models.ImageRecord, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	digest, err := ContentDigest(path)
	if err != nil {
		return nil, fmt.Errorf("digest file: %w", err)
	}
	rec := &models.ImageRecord{
		Path:          path,
		FileSize:      stat.Size(),
		ModTime:       stat.ModTime(),
		ContentDigest: digest,
		HasExif:       hasExif(path),
	}
	format, width, height, err := imageConfig(path)
	if err != nil {
		return nil, &phash.DecodeError{Path: path, Err: err}
	}
	rec.Format = format
	rec.Width = width
	rec.Height = height
	rec.Score = models.QualityScore(rec)
	return rec, nil
}

// imageConfig reads the image header for format and dimensions without
// decoding the pixel data.
func imageConfig(path string) (format string, width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, 0, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", 0, 0, err
	}
	return strings.ToLower(format), cfg.Width, cfg.Height, nil
}

// hasExif checks whether an image file carries EXIF metadata.
func hasExif(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, err = exif.Decode(f)
	return err == nil
}

// ContentDigest computes the hex SHA-256 digest of a file. Equal digests
// mean byte-identical files.
func ContentDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsSupportedImage reports whether the path has a recognized image
// extension.
func IsSupportedImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif":
		return true
	default:
		return false
	}
}
