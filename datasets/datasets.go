package datasets

import (
	"math/rand"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// This package turns an annotation list of extracted-frame video directories
// into fixed-shape examples suitable for video classification training.
//
// The dataset uses lazy loading - it only stores the parsed annotation
// records and reads frame images from disk when an example is requested.
//
// Layout and intended usage:
//
// VideoDataset
//   - Parses an annotation list once: "<frame dir> <num frames> <label>" per line.
//     Videos with fewer than MinFrames frames are dropped.
//   - Each example picks NumSegments segment start indices (randomly jittered
//     in train mode, bucket midpoints in test mode) and loads Duration
//     consecutive frames at each start.
//   - The frames go through a transforms.Transform which returns a flat
//     float32 buffer, reshaped to [NumSegments*Duration, 3, ImageSize, ImageSize].
//   - Labels are the integer class index from the annotation.
//
// Notes on gomlx tensors:
//   - Examples are returned as contiguous float32 buffers with shape
//     metadata. VideoBatchFlat.ToGomlxTensors converts a batch into gomlx
//     tensors, and VideoDataset.Yield does so for gomlx training loops.

// Sentinel errors returned (wrapped) by this package. Use errors.Is to test for them.
var (
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrUnknownMode         = errors.New("unknown sampling mode")
	ErrMalformedAnnotation = errors.New("malformed annotation line")
	ErrMissingFrame        = errors.New("frame not found")
	ErrTransformShape      = errors.New("transform output has wrong size")
)

// Dataset is implemented by VideoDataset so it can interact with GoMLX
// training loops and the batching helpers in this package.
type Dataset interface {
	Len() int
	Example(i int) (*Sample, error)
	ExampleWithRand(i int, rng *rand.Rand) (*Sample, error)
	Batch(indices []int) (inputs [][]float32, labels []int, err error)
	Shuffle(seed int64)

	// To implement gomlx's train.Dataset interface
	Name() string
	Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error)
	Reset()
}
