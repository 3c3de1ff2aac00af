package transforms

import (
	"image"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// maxCropAttempts is how many random area/aspect draws RandomSizedCrop tries
// before falling back to scale + random crop.
const maxCropAttempts = 10

// Resize scales every frame to exactly size x size.
type Resize struct {
	Size int
}

// GroupResize returns a Resize stage.
func GroupResize(size int) *Resize {
	return &Resize{Size: size}
}

// Apply implements GroupTransform.
func (r *Resize) Apply(frames []image.Image) ([]image.Image, error) {
	out := make([]image.Image, len(frames))
	for i, f := range frames {
		out[i] = imaging.Resize(f, r.Size, r.Size, imaging.Linear)
	}
	return out, nil
}

// Scale resizes every frame so its shorter side is Size, keeping the aspect ratio.
type Scale struct {
	Size int
}

// GroupScale returns a Scale stage.
func GroupScale(size int) *Scale {
	return &Scale{Size: size}
}

// Apply implements GroupTransform.
func (s *Scale) Apply(frames []image.Image) ([]image.Image, error) {
	out := make([]image.Image, len(frames))
	for i, f := range frames {
		b := f.Bounds()
		if b.Dx() < b.Dy() {
			out[i] = imaging.Resize(f, s.Size, 0, imaging.Linear)
		} else {
			out[i] = imaging.Resize(f, 0, s.Size, imaging.Linear)
		}
	}
	return out, nil
}

// RandomCrop cuts the same random Size x Size window out of every frame.
type RandomCrop struct {
	Size int
	rng  *lockedRand
}

// GroupRandomCrop returns a RandomCrop stage drawing offsets from rng.
func GroupRandomCrop(size int, rng *rand.Rand) *RandomCrop {
	return &RandomCrop{Size: size, rng: newLockedRand(rng)}
}

// Apply implements GroupTransform.
func (c *RandomCrop) Apply(frames []image.Image) ([]image.Image, error) {
	if len(frames) == 0 {
		return frames, nil
	}
	b := frames[0].Bounds()
	if b.Dx() < c.Size || b.Dy() < c.Size {
		return nil, errors.Errorf("frame %dx%d smaller than crop %d", b.Dx(), b.Dy(), c.Size)
	}

	c.rng.mu.Lock()
	x := c.rng.rng.Intn(b.Dx() - c.Size + 1)
	y := c.rng.rng.Intn(b.Dy() - c.Size + 1)
	c.rng.mu.Unlock()

	return cropAll(frames, image.Rect(x, y, x+c.Size, y+c.Size)), nil
}

// RandomSizedCrop crops a random region covering 8% to 100% of the frame
// area with an aspect ratio between 3/4 and 4/3, then resizes it to
// Size x Size. The region is drawn once per group.
type RandomSizedCrop struct {
	Size int
	rng  *lockedRand

	scale *Scale
	crop  *RandomCrop
}

// GroupRandomSizedCrop returns a RandomSizedCrop stage drawing from rng.
func GroupRandomSizedCrop(size int, rng *rand.Rand) *RandomSizedCrop {
	return newRandomSizedCrop(size, newLockedRand(rng))
}

func newRandomSizedCrop(size int, rng *lockedRand) *RandomSizedCrop {
	return &RandomSizedCrop{
		Size:  size,
		rng:   rng,
		scale: GroupScale(size),
		crop:  &RandomCrop{Size: size, rng: rng},
	}
}

// Apply implements GroupTransform.
func (c *RandomSizedCrop) Apply(frames []image.Image) ([]image.Image, error) {
	if len(frames) == 0 {
		return frames, nil
	}
	b := frames[0].Bounds()

	c.rng.mu.Lock()
	rect, ok := pickSizedCrop(c.rng.rng, b.Dx(), b.Dy())
	c.rng.mu.Unlock()

	if !ok {
		scaled, err := c.scale.Apply(frames)
		if err != nil {
			return nil, err
		}
		return c.crop.Apply(scaled)
	}

	out := cropAll(frames, rect)
	for i, f := range out {
		out[i] = imaging.Resize(f, c.Size, c.Size, imaging.Linear)
	}
	return out, nil
}

// pickSizedCrop draws a crop rectangle in frame coordinates relative to the
// frame origin. ok is false if no draw fit inside a width x height frame.
func pickSizedCrop(rng *rand.Rand, width, height int) (rect image.Rectangle, ok bool) {
	area := float64(width * height)
	for range maxCropAttempts {
		target := (0.08 + 0.92*rng.Float64()) * area
		aspect := 3.0/4.0 + (4.0/3.0-3.0/4.0)*rng.Float64()

		w := int(math.Round(math.Sqrt(target * aspect)))
		h := int(math.Round(math.Sqrt(target / aspect)))
		if rng.Float64() < 0.5 {
			w, h = h, w
		}

		if w > 0 && h > 0 && w <= width && h <= height {
			x := rng.Intn(width - w + 1)
			y := rng.Intn(height - h + 1)
			return image.Rect(x, y, x+w, y+h), true
		}
	}
	return image.Rectangle{}, false
}

// cropAll crops rect, given relative to each frame's origin, out of every frame.
func cropAll(frames []image.Image, rect image.Rectangle) []image.Image {
	out := make([]image.Image, len(frames))
	for i, f := range frames {
		out[i] = imaging.Crop(f, rect.Add(f.Bounds().Min))
	}
	return out
}

// RandomHorizontalFlip mirrors the whole group with probability 0.5.
type RandomHorizontalFlip struct {
	rng *lockedRand
}

// GroupRandomHorizontalFlip returns a RandomHorizontalFlip stage drawing from rng.
func GroupRandomHorizontalFlip(rng *rand.Rand) *RandomHorizontalFlip {
	return newRandomHorizontalFlip(newLockedRand(rng))
}

func newRandomHorizontalFlip(rng *lockedRand) *RandomHorizontalFlip {
	return &RandomHorizontalFlip{rng: rng}
}

// Apply implements GroupTransform.
func (f *RandomHorizontalFlip) Apply(frames []image.Image) ([]image.Image, error) {
	f.rng.mu.Lock()
	flip := f.rng.rng.Intn(2) == 1
	f.rng.mu.Unlock()

	if !flip {
		return frames, nil
	}
	out := make([]image.Image, len(frames))
	for i, img := range frames {
		out[i] = imaging.FlipH(img)
	}
	return out, nil
}
