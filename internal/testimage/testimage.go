// Package testimage generates deterministic sample images: solid fills,
// gradients, checkerboards and Perlin-noise textures. The gen command uses it
// to produce material for trying out the blur tool, and the test suites use
// it for fixtures.
package testimage

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/aquilax/go-perlin"
)

// Solid returns a w x h image filled with c.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Gradient returns a horizontal black-to-white ramp.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if w > 1 {
				v = uint8(x * 255 / (w - 1))
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// Checker returns a checkerboard of the two colors with square cells.
func Checker(w, h, cell int, a, b color.NRGBA) *image.NRGBA {
	if cell < 1 {
		cell = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetNRGBA(x, y, a)
			} else {
				img.SetNRGBA(x, y, b)
			}
		}
	}
	return img
}

// Noise returns a grayscale Perlin-noise texture. scale controls the feature
// frequency (smaller values give finer detail); the same seed always yields
// the same image.
func Noise(w, h int, scale float64, seed int64) *image.NRGBA {
	if scale <= 0 {
		scale = 30.0
	}
	p := perlin.NewPerlin(2.0, 2.0, 3, seed)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			val := p.Noise2D(float64(x)/scale, float64(y)/scale)
			normalized := (val + 1.0) / 2.0
			if normalized < 0 {
				normalized = 0
			}
			if normalized > 1 {
				normalized = 1
			}
			v := uint8(normalized * 255)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// Generate builds a named sample image. Supported kinds: solid, gradient,
// checker, noise.
func Generate(kind string, w, h int, seed int64) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", w, h)
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "solid":
		return Solid(w, h, color.NRGBA{R: 200, G: 80, B: 60, A: 255}), nil
	case "gradient":
		return Gradient(w, h), nil
	case "checker":
		return Checker(w, h, 16,
			color.NRGBA{R: 240, G: 240, B: 240, A: 255},
			color.NRGBA{R: 40, G: 40, B: 40, A: 255},
		), nil
	case "noise":
		return Noise(w, h, 30.0, seed), nil
	default:
		return nil, fmt.Errorf("unknown image kind %q: must be 'solid', 'gradient', 'checker' or 'noise'", kind)
	}
}
