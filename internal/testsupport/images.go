package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// gradient fills an image with a horizontal luminance ramp offset by seed so
// different seeds yield visually distinct pictures.
func gradient(width, height int, seed uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8((x*255/width + int(seed)) % 256)
			img.Set(x, y, color.RGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}
	return img
}

// PNGBytes renders a deterministic test image as PNG data.
func PNGBytes(t testing.TB, seed uint8) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, gradient(64, 48, seed)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WritePNG writes a deterministic test PNG to path.
func WritePNG(t testing.TB, path string, seed uint8) {
	t.Helper()

	WriteFile(t, path, PNGBytes(t, seed))
}

// WritePNGAt writes a deterministic test PNG and stamps its mod time.
func WritePNGAt(t testing.TB, path string, seed uint8, modTime time.Time) {
	t.Helper()

	WriteFile(t, path, PNGBytes(t, seed))
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// WriteJPEG writes a deterministic test JPEG to path.
func WriteJPEG(t testing.TB, path string, seed uint8) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(64, 48, seed), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
