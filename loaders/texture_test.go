package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checker.png")
	writePNG(t, path)

	img, err := LoadImage(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if img.Name != "checker" {
		t.Errorf("Name = %q, want checker", img.Name)
	}
	if img.Path != path {
		t.Errorf("Path = %q, want %q", img.Path, path)
	}
	if img.Data != nil {
		t.Error("pixels decoded without decode requested")
	}

	img, err = LoadImage(path, true)
	if err != nil {
		t.Fatal(err)
	}
	if img.Data == nil {
		t.Fatal("pixels missing with decode requested")
	}
	if b := img.Data.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("decoded bounds = %v, want 2x2", b)
	}
}

func TestLoadImageMissing(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "nope.png"), true); err == nil {
		t.Error("expected an error for a missing file")
	}
}
