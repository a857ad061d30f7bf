package phash

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"

	// Register decoders beyond the jpeg/png/gif set imaging brings in.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errEmptyImage = errors.New("image has no pixels")

// Pixels is a decoded image ready for hashing. It is immutable: the hash
// functions only ever read from it, so a single Pixels value is safe to hash
// concurrently.
type Pixels struct {
	img image.Image
}

// Decode reads and decodes the image at path, honoring EXIF orientation.
func Decode(path string) (*Pixels, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	p, err := FromImage(img)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: errEmptyImage}
	}
	return p, nil
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) (*Pixels, error) {
	if img == nil || img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		return nil, &DecodeError{Err: errEmptyImage}
	}
	return &Pixels{img: img}, nil
}

// Bounds returns the pixel bounds of the decoded image.
func (p *Pixels) Bounds() image.Rectangle { return p.img.Bounds() }

func (p *Pixels) empty() bool {
	return p == nil || p.img == nil || p.img.Bounds().Dx() <= 0 || p.img.Bounds().Dy() <= 0
}

// grayMatrix converts the image to grayscale, optionally blurs it, resizes
// it to w x h and returns the luma plane as a row-major float matrix.
func (p *Pixels) grayMatrix(w, h int, blurSigma float64) [][]float64 {
	g := imaging.Grayscale(p.img)
	if blurSigma > 0 {
		g = imaging.Blur(g, blurSigma)
	}
	g = imaging.Resize(g, w, h, imaging.Lanczos)
	return lumaPlane(g)
}

// lumaPlane extracts the red channel of a grayscale NRGBA image (R == G == B
// after imaging.Grayscale) as a row-major matrix.
func lumaPlane(g *image.NRGBA) [][]float64 {
	w := g.Bounds().Dx()
	h := g.Bounds().Dy()
	m := make([][]float64, h)
	for y := 0; y < h; y++ {
		row := make([]float64, w)
		off := y * g.Stride
		for x := 0; x < w; x++ {
			row[x] = float64(g.Pix[off+x*4])
		}
		m[y] = row
	}
	return m
}
