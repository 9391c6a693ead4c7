// Package raster holds the pixel-level primitives shared by the blur engine
// and the CLI: region rectangles, NRGBA conversion and copying.
package raster

import (
	"bytes"
	"image"
	"image/draw"
)

// Region is an axis-aligned rectangle in image pixel coordinates,
// relative to the top-left corner of the image.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FullImage returns a region covering the whole image.
func FullImage(img image.Image) Region {
	b := img.Bounds()
	return Region{X: 0, Y: 0, Width: b.Dx(), Height: b.Dy()}
}

// Clamp normalizes the region against an image of the given dimensions.
// The origin is clamped into [0, width-1] x [0, height-1] and the extent is
// cut so the rectangle never reaches past the image edge. Extents can come
// out zero or negative; callers must treat those as degenerate.
func (r Region) Clamp(width, height int) Region {
	if r.X < 0 {
		r.X = 0
	}
	if r.X > width-1 {
		r.X = width - 1
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.Y > height-1 {
		r.Y = height - 1
	}
	if r.Width > width-r.X {
		r.Width = width - r.X
	}
	if r.Height > height-r.Y {
		r.Height = height - r.Y
	}
	return r
}

// Degenerate reports whether the region is too small to process.
// A 1-pixel-wide selection is deliberately treated the same as an empty one.
func (r Region) Degenerate() bool {
	return r.Width <= 1 || r.Height <= 1
}

// Contains reports whether the pixel (x, y) lies inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// ToNRGBA returns img as a non-premultiplied RGBA image with its origin at
// (0, 0). The input is copied even when it already is an *image.NRGBA, so
// the result is always safe to hand to a concurrent reader.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Clone returns a deep copy of img sharing no pixel storage with it.
func Clone(img *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(img.Bounds())
	copy(dst.Pix, img.Pix)
	return dst
}

// Equal reports whether two images have identical bounds and pixel data.
// Callers use it to tell a real blur result from the fail-safe no-op copy.
func Equal(a, b *image.NRGBA) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Bounds() != b.Bounds() {
		return false
	}
	if a.Stride == b.Stride {
		return bytes.Equal(a.Pix, b.Pix)
	}
	bounds := a.Bounds()
	rowLen := bounds.Dx() * 4
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		ao := a.PixOffset(bounds.Min.X, y)
		bo := b.PixOffset(bounds.Min.X, y)
		if !bytes.Equal(a.Pix[ao:ao+rowLen], b.Pix[bo:bo+rowLen]) {
			return false
		}
	}
	return true
}
