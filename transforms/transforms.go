// Package transforms holds group image transforms for sampled video frames.
//
// A group is every frame sampled from one video. Random transforms draw
// their parameters once per group so all frames of a video get the same
// crop and flip, keeping the motion between frames intact.
package transforms

import (
	"image"
	"math/rand"
	"sync"

	"github.com/pkg/errors"
)

// Transform turns a group of frames into one flat float32 buffer laid out
// as [frames, channels, height, width].
type Transform interface {
	Apply(frames []image.Image) ([]float32, error)
}

// TransformFunc adapts a function to the Transform interface.
type TransformFunc func(frames []image.Image) ([]float32, error)

// Apply implements Transform.
func (f TransformFunc) Apply(frames []image.Image) ([]float32, error) {
	return f(frames)
}

// GroupTransform maps a group of frames to a new group of frames.
type GroupTransform interface {
	Apply(frames []image.Image) ([]image.Image, error)
}

// Pipeline runs its group stages in order and stacks the result.
type Pipeline struct {
	stages []GroupTransform
}

// Compose builds a Pipeline from the given stages. The stacked output is
// channel-first float32 in [0, 1], see Stack.
func Compose(stages ...GroupTransform) *Pipeline {
	return &Pipeline{stages: stages}
}

// Apply implements Transform.
func (p *Pipeline) Apply(frames []image.Image) ([]float32, error) {
	var err error
	for i, stage := range p.stages {
		frames, err = stage.Apply(frames)
		if err != nil {
			return nil, errors.WithMessagef(err, "transform stage %d", i)
		}
	}
	return Stack(frames)
}

// lockedRand serializes draws from a *rand.Rand shared by several stages,
// which may run from concurrent dataset workers.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(rng *rand.Rand) *lockedRand {
	return &lockedRand{rng: rng}
}

// TrainTransform is the augmentation used for training: a random sized crop
// to size x size followed by a random horizontal flip.
func TrainTransform(size int, rng *rand.Rand) *Pipeline {
	lr := newLockedRand(rng)
	return Compose(newRandomSizedCrop(size, lr), newRandomHorizontalFlip(lr))
}

// TestTransform resizes every frame to size x size, with no randomness.
func TestTransform(size int) *Pipeline {
	return Compose(GroupResize(size))
}
