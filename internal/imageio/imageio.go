// Package imageio decodes and encodes image files for the CLI. Everything
// past this boundary works on in-memory *image.NRGBA buffers; the blur engine
// itself never touches disk.
package imageio

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/zimage/internal/raster"
)

// DefaultJPEGQuality matches the quality the original editor saved with.
const DefaultJPEGQuality = 90

// SupportedExt reports whether the file extension (with or without leading
// dot, any case) names a format this package can read and write.
func SupportedExt(ext string) bool {
	switch normalizeExt(ext) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	default:
		return false
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Load decodes the image at path into a freshly allocated NRGBA buffer with
// its origin at (0, 0).
func Load(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return raster.ToNRGBA(img), nil
}

// Save encodes img to path, choosing the format from the file extension.
// jpegQuality applies only to JPEG output; pass a non-positive value for the
// default.
func Save(path string, img image.Image, jpegQuality int) error {
	if jpegQuality <= 0 {
		jpegQuality = DefaultJPEGQuality
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	switch normalizeExt(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality})
	case ".gif":
		err = gif.Encode(file, img, nil)
	default:
		file.Close()
		os.Remove(path)
		return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}

	if err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
