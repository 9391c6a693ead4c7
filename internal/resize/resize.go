// Package resize scales images to a target size, preserving the aspect ratio
// when asked, the way the original resizer did (height derived from width).
package resize

import (
	"fmt"
	"image"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Filter selects the interpolation kernel.
type Filter int

const (
	Nearest Filter = iota
	Bilinear
	CatmullRom
)

func (f Filter) String() string {
	switch f {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case CatmullRom:
		return "catmullrom"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}

// ParseFilter parses a filter name as used on the command line.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	case "catmullrom", "catmull-rom":
		return CatmullRom, nil
	default:
		return 0, fmt.Errorf("unknown filter %q: must be 'nearest', 'bilinear' or 'catmullrom'", s)
	}
}

func (f Filter) scaler() xdraw.Scaler {
	switch f {
	case Nearest:
		return xdraw.NearestNeighbor
	case CatmullRom:
		return xdraw.CatmullRom
	default:
		return xdraw.BiLinear
	}
}

// Options describe one resize. With KeepAspect set, a zero Width or Height is
// derived from the other dimension and the source aspect ratio; when both are
// given the image is fit within the Width x Height box.
type Options struct {
	Width      int
	Height     int
	KeepAspect bool
	Filter     Filter
}

// TargetSize resolves the output dimensions for a source of the given size.
func (o Options) TargetSize(srcW, srcH int) (int, int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, fmt.Errorf("invalid source size %dx%d", srcW, srcH)
	}
	w, h := o.Width, o.Height
	if w <= 0 && h <= 0 {
		return 0, 0, fmt.Errorf("target width or height must be positive")
	}

	if !o.KeepAspect {
		if w <= 0 || h <= 0 {
			return 0, 0, fmt.Errorf("both width and height are required unless keeping aspect ratio")
		}
		return w, h, nil
	}

	aspect := float64(srcW) / float64(srcH)
	switch {
	case w > 0 && h > 0:
		// Fit inside the box.
		if float64(w)/float64(h) > aspect {
			w = int(float64(h) * aspect)
		} else {
			h = int(float64(w) / aspect)
		}
	case w > 0:
		h = int(float64(w) / aspect)
	default:
		w = int(float64(h) * aspect)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h, nil
}

// Resize scales src according to opts into a newly allocated image.
func Resize(src image.Image, opts Options) (*image.NRGBA, error) {
	b := src.Bounds()
	w, h, err := opts.TargetSize(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	opts.Filter.scaler().Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst, nil
}

// Thumbnail scales src to fit within a size x size box, preserving aspect
// ratio, without upscaling images already smaller than the box.
func Thumbnail(src image.Image, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("thumbnail size must be positive")
	}
	b := src.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
		return dst, nil
	}
	return Resize(src, Options{Width: size, Height: size, KeepAspect: true, Filter: CatmullRom})
}
