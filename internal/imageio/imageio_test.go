package imageio

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/zimage/internal/raster"
	"github.com/MeKo-Tech/zimage/internal/testimage"
)

func TestSupportedExt(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{ext: ".png", want: true},
		{ext: "png", want: true},
		{ext: ".PNG", want: true},
		{ext: ".jpg", want: true},
		{ext: ".jpeg", want: true},
		{ext: ".gif", want: true},
		{ext: ".bmp", want: false},
		{ext: ".txt", want: false},
		{ext: "", want: false},
	}

	for _, tt := range tests {
		if got := SupportedExt(tt.ext); got != tt.want {
			t.Errorf("SupportedExt(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestSaveLoad_PNGRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.png")

	src := testimage.Checker(24, 16, 4,
		color.NRGBA{R: 200, G: 100, B: 50, A: 255},
		color.NRGBA{R: 10, G: 20, B: 30, A: 255},
	)

	if err := Save(path, src, 0); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !raster.Equal(src, loaded) {
		t.Error("PNG roundtrip changed pixel data")
	}
}

func TestSaveLoad_JPEGKeepsDimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")

	src := testimage.Gradient(33, 21)
	if err := Save(path, src, 85); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Bounds() != src.Bounds() {
		t.Errorf("JPEG roundtrip changed bounds: got %v, want %v", loaded.Bounds(), src.Bounds())
	}
}

func TestSave_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	src := testimage.Solid(4, 4, color.NRGBA{A: 255})

	err := Save(filepath.Join(dir, "image.bmp"), src, 0)
	if err == nil {
		t.Fatal("Expected error for unsupported extension")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.png"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoad_NotAnImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.png")
	if err := os.WriteFile(path, []byte("this is not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected decode error")
	}
}
