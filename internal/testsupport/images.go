package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// SkinTone is a color that satisfies the scorer's skin-pixel inequality.
var SkinTone = color.NRGBA{R: 200, G: 140, B: 110, A: 255}

// NeutralTone is a color that fails the scorer's skin-pixel inequality.
var NeutralTone = color.NRGBA{R: 40, G: 80, B: 160, A: 255}

// WritePNG writes a width x height PNG filled with the given color.
func WritePNG(t testing.TB, path string, width, height int, fill color.Color) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	writeImage(t, path, img)
}

// WriteCorruptImage writes a file with an image extension but unreadable content.
func WriteCorruptImage(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeImage(t testing.TB, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
