package datasets

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// writeList writes an annotation list with the given lines to path.
func writeList(t *testing.T, path string, lines []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create list %s: %v", path, err)
	}
	defer f.Close()

	for _, l := range lines {
		if _, err := f.WriteString(l + "\n"); err != nil {
			t.Fatalf("failed to write line: %v", err)
		}
	}
}

// frameGray is the gray level written into frame i, so tests can tell
// which frame ended up where.
func frameGray(i int) uint8 {
	return uint8((i % 25) * 10)
}

// writeFrames creates dir with n solid-gray size x size PNG frames named
// frame_0001.png, frame_0002.png, ...
func writeFrames(t *testing.T, dir string, n, size int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create frame dir %s: %v", dir, err)
	}
	for i := range n {
		img := image.NewNRGBA(image.Rect(0, 0, size, size))
		g := frameGray(i)
		for y := range size {
			for x := range size {
				img.Set(x, y, color.NRGBA{R: g, G: g, B: g, A: 255})
			}
		}
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i+1))
		if err := imaging.Save(img, path); err != nil {
			t.Fatalf("failed to save frame %s: %v", path, err)
		}
	}
}

// grayOf returns the red channel of the top-left pixel of img.
func grayOf(img image.Image) uint8 {
	c := color.NRGBAModel.Convert(img.At(img.Bounds().Min.X, img.Bounds().Min.Y)).(color.NRGBA)
	return c.R
}
