package phash

import (
	"image"
	"image/color"
)

// Synthetic fixtures shared by the hash tests. All generators are
// deterministic so hashes can be compared across calls.

// gradientImage has a smooth diagonal luminance ramp.
func gradientImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*255/(w-1) + y*255/(h-1)) / 2)
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// circleImage has a bright disk on a dark background.
func circleImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	r := float64(w) / 3
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			v := uint8(30)
			if dx*dx+dy*dy <= r*r {
				v = 220
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// checkerImage has squares of the given size.
func checkerImage(w, h, square int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(40)
			if (x/square+y/square)%2 == 0 {
				v = 215
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func mustPixels(img image.Image) *Pixels {
	p, err := FromImage(img)
	if err != nil {
		panic(err)
	}
	return p
}
