package datasets

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects how segment start indices are picked.
type Mode int

const (
	// ModeTrain jitters each segment start randomly inside its bucket.
	ModeTrain Mode = iota
	// ModeTest takes the midpoint of each bucket, deterministically.
	ModeTest
)

func (m Mode) String() string {
	switch m {
	case ModeTrain:
		return "train"
	case ModeTest:
		return "test"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps "train" or "test" to its Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "train":
		return ModeTrain, nil
	case "test":
		return ModeTest, nil
	}
	return 0, errors.Wrapf(ErrUnknownMode, "%q", s)
}

// indexSampler returns the segment start indices for one video.
type indexSampler func(rng *rand.Rand, numFrames int) []int

// samplerFor picks the sampler for mode once, so accesses never branch on
// the mode. It returns nil for an unknown mode.
func samplerFor(mode Mode, numSegments, duration int) indexSampler {
	switch mode {
	case ModeTrain:
		return func(rng *rand.Rand, numFrames int) []int {
			return TrainIndices(rng, numFrames, numSegments, duration)
		}
	case ModeTest:
		return func(_ *rand.Rand, numFrames int) []int {
			return TestIndices(numFrames, numSegments, duration)
		}
	}
	return nil
}

// TrainIndices splits the valid start range into numSegments buckets and
// picks a random start inside each one. Videos too short for non-empty
// buckets get sorted random starts over the whole range, and videos with
// no more frames than segments get all-zero starts.
func TrainIndices(rng *rand.Rand, numFrames, numSegments, duration int) []int {
	offsets := make([]int, numSegments)
	span := numFrames - duration + 1
	avg := span / numSegments
	switch {
	case avg > 0:
		for i := range offsets {
			offsets[i] = i*avg + rng.Intn(avg)
		}
	case numFrames > numSegments && span > 0:
		for i := range offsets {
			offsets[i] = rng.Intn(span)
		}
		sort.Ints(offsets)
	}
	return offsets
}

// TestIndices returns the midpoint of each of numSegments equal-width
// buckets over the valid start range, or all zeros when the video is too short.
func TestIndices(numFrames, numSegments, duration int) []int {
	offsets := make([]int, numSegments)
	if numFrames > numSegments+duration-1 {
		tick := float64(numFrames-duration+1) / float64(numSegments)
		for i := range offsets {
			offsets[i] = int(tick/2.0 + tick*float64(i))
		}
	}
	return offsets
}
