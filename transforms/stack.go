package transforms

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Channels is the number of color channels Stack emits (R, G, B).
const Channels = 3

// Stack converts frames of identical size into one float32 buffer shaped
// [len(frames), Channels, height, width], with values scaled to [0, 1].
// Alpha is dropped.
func Stack(frames []image.Image) ([]float32, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to stack")
	}
	b := frames[0].Bounds()
	width, height := b.Dx(), b.Dy()

	buf := make([]float32, 0, len(frames)*Channels*width*height)
	for i, f := range frames {
		if fb := f.Bounds(); fb.Dx() != width || fb.Dy() != height {
			return nil, errors.Errorf("frame %d is %dx%d, expected %dx%d", i, fb.Dx(), fb.Dy(), width, height)
		}
		img := imaging.Clone(f)
		for c := range Channels {
			for y := range height {
				row := img.Pix[y*img.Stride:]
				for x := range width {
					buf = append(buf, float32(row[x*4+c])/255)
				}
			}
		}
	}
	return buf, nil
}
