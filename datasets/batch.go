package datasets

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gopjrt/dtypes"
)

// Sample is one loaded example: Frames images of Channels x Height x Width,
// flattened frame-major into Buf, and the video's label.
type Sample struct {
	Buf      []float32
	Frames   int
	Channels int
	Height   int
	Width    int
	Label    int
}

// Shape returns the gomlx shape of the sample: [Frames, Channels, Height, Width].
func (s *Sample) Shape() shapes.Shape {
	return shapes.Make(dtypes.Float32, s.Frames, s.Channels, s.Height, s.Width)
}

// ToGomlxTensor converts the sample buffer into a gomlx tensor.
func (s *Sample) ToGomlxTensor() *tensors.Tensor {
	return tensors.FromFlatDataAndDimensions(s.Buf, s.Frames, s.Channels, s.Height, s.Width)
}

// VideoBatchFlat stores a batch of samples in one contiguous buffer.
type VideoBatchFlat struct {
	Buf      []float32
	Labels   []int32
	Batch    int
	Frames   int
	Channels int
	Height   int
	Width    int
}

// MakeVideoBatchFlat packs samples into a flat batch. All samples must share
// the same shape.
func MakeVideoBatchFlat(samples []*Sample) (*VideoBatchFlat, error) {
	if len(samples) == 0 {
		return &VideoBatchFlat{}, nil
	}

	first := samples[0]
	exampleSize := first.Frames * first.Channels * first.Height * first.Width
	for i, s := range samples {
		if s.Frames != first.Frames || s.Channels != first.Channels ||
			s.Height != first.Height || s.Width != first.Width {
			return nil, fmt.Errorf("inconsistent shapes: sample 0 has shape %v, sample %d has shape %v",
				first.Shape().Dimensions, i, s.Shape().Dimensions)
		}
		if len(s.Buf) != exampleSize {
			return nil, fmt.Errorf("sample %d has wrong size: expected %d, got %d", i, exampleSize, len(s.Buf))
		}
	}

	b := &VideoBatchFlat{
		Buf:      make([]float32, len(samples)*exampleSize),
		Labels:   make([]int32, len(samples)),
		Batch:    len(samples),
		Frames:   first.Frames,
		Channels: first.Channels,
		Height:   first.Height,
		Width:    first.Width,
	}
	for i, s := range samples {
		copy(b.Buf[i*exampleSize:], s.Buf)
		b.Labels[i] = int32(s.Label)
	}
	return b, nil
}

// ToGomlxTensors converts the batch into an input tensor shaped
// [batch, frames, channels, height, width] and an int32 label tensor [batch].
// An empty batch yields zero-sized tensors with the batch's per-example dims.
func (b *VideoBatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	if b.Batch == 0 {
		inT := tensors.FromShape(shapes.Make(dtypes.Float32, 0, b.Frames, b.Channels, b.Height, b.Width))
		labT := tensors.FromShape(shapes.Make(dtypes.Int32, 0))
		return inT, labT, nil
	}
	inT := tensors.FromFlatDataAndDimensions(b.Buf, b.Batch, b.Frames, b.Channels, b.Height, b.Width)
	labT := tensors.FromFlatDataAndDimensions(b.Labels, b.Batch)
	return inT, labT, nil
}
