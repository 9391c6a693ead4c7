package blur

import (
	"testing"

	"github.com/MeKo-Tech/zimage/internal/raster"
	"github.com/MeKo-Tech/zimage/internal/testimage"
)

func TestGaussian_IdentityOutsideRegion(t *testing.T) {
	src := testimage.Checker(40, 40, 4, white, black)
	region := raster.Region{X: 8, Y: 8, Width: 16, Height: 16}

	out := Gaussian(src, region, 2.0)

	if out.Bounds() != src.Bounds() {
		t.Fatalf("Expected bounds %v, got %v", src.Bounds(), out.Bounds())
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if region.Contains(x, y) {
				continue
			}
			if got, want := out.NRGBAAt(x, y), src.NRGBAAt(x, y); got != want {
				t.Fatalf("Pixel outside region changed at (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestGaussian_ChangesInsideRegion(t *testing.T) {
	src := testimage.Checker(40, 40, 4, white, black)
	region := raster.Region{X: 8, Y: 8, Width: 16, Height: 16}

	out := Gaussian(src, region, 2.0)

	changed := false
	for y := region.Y; y < region.Y+region.Height && !changed; y++ {
		for x := region.X; x < region.X+region.Width; x++ {
			if out.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("Gaussian blur left a checkerboard region unchanged")
	}
}

func TestGaussian_UniformFieldStaysUniform(t *testing.T) {
	src := testimage.Solid(20, 20, red)
	out := Gaussian(src, raster.FullImage(src), 3.0)

	// Weighted averaging of a constant field is the constant; allow one
	// count of rounding slack from the float kernel.
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			c := out.NRGBAAt(x, y)
			if absDiff(c.R, red.R) > 1 || absDiff(c.G, red.G) > 1 || absDiff(c.B, red.B) > 1 || absDiff(c.A, red.A) > 1 {
				t.Fatalf("Uniform field disturbed at (%d,%d): %v", x, y, c)
			}
		}
	}
}

func TestGaussian_DegenerateRegionIsNoop(t *testing.T) {
	src := testimage.Gradient(10, 10)
	out := Gaussian(src, raster.Region{X: 0, Y: 0, Width: 1, Height: 1}, 2.0)

	if !raster.Equal(out, src) {
		t.Error("Expected exact copy for degenerate region")
	}
}

func TestGaussian_NonPositiveSigmaUsesDefault(t *testing.T) {
	src := testimage.Checker(30, 30, 3, white, black)

	fromZero := Gaussian(src, raster.FullImage(src), 0)
	fromDefault := Gaussian(src, raster.FullImage(src), DefaultGaussianSigma)

	if !raster.Equal(fromZero, fromDefault) {
		t.Error("Sigma 0 should behave like the default sigma")
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
