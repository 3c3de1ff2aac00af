package datasets

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/Noofbiz/frameSampler/transforms"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Default configuration values.
const (
	DefaultNumSegments = 8
	DefaultDuration    = 2
	DefaultImageSize   = 112
	DefaultBatchSize   = 8

	DefaultTrainList = "./annotation/set_0_train.txt"
	DefaultTestList  = "./annotation/set_0_test.txt"
)

// Config holds the dataset configuration. Zero values are replaced with
// defaults by NewVideoDataset.
type Config struct {
	// ListFile is the path of the annotation list.
	ListFile string

	// NumSegments is how many temporal segments are sampled per video (default 8).
	NumSegments int

	// Duration is how many consecutive frames are loaded per segment (default 2).
	Duration int

	// ImageSize is the square frame size the transform produces (default 112).
	ImageSize int

	// Mode selects train (random) or test (deterministic) sampling.
	Mode Mode

	// Transform turns the loaded frames into a flat buffer. If nil,
	// transforms.TrainTransform or transforms.TestTransform is used
	// according to Mode.
	Transform transforms.Transform

	// FrameExt is the frame image extension (default ".png").
	FrameExt string

	// BatchSize is the number of examples per Yield (default 8).
	BatchSize int

	// Seed controls the sampling RNG. If zero, a time-based seed is used.
	Seed int64

	// Logger receives dataset logs. If nil, an info-level logger named
	// "datasets" is created.
	Logger hclog.Logger
}

// VideoDataset samples fixed-length frame sequences from the videos listed
// in an annotation file. It implements gomlx's train.Dataset.
type VideoDataset struct {
	cfg     Config
	records []VideoRecord
	sampler indexSampler
	logger  hclog.Logger

	// mu protects rng, orderRng, order and next.
	mu       sync.Mutex
	rng      *rand.Rand
	orderRng *rand.Rand
	order    []int
	next     int
}

var (
	_ train.Dataset = (*VideoDataset)(nil)
	_ Dataset       = (*VideoDataset)(nil)
)

// NewVideoDataset parses cfg.ListFile and returns the dataset.
func NewVideoDataset(cfg Config) (*VideoDataset, error) {
	records, err := LoadAnnotations(cfg.ListFile)
	if err != nil {
		return nil, err
	}
	return NewVideoDatasetFromRecords(records, cfg)
}

// NewVideoDatasetFromRecords builds a dataset over already parsed records.
// Records below MinFrames are dropped here as well.
func NewVideoDatasetFromRecords(records []VideoRecord, cfg Config) (*VideoDataset, error) {
	// defaults
	if cfg.NumSegments == 0 {
		cfg.NumSegments = DefaultNumSegments
	}
	if cfg.Duration == 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.ImageSize == 0 {
		cfg.ImageSize = DefaultImageSize
	}
	if cfg.FrameExt == "" {
		cfg.FrameExt = DefaultFrameExt
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.New(&hclog.LoggerOptions{
			Name:  "datasets",
			Level: hclog.Info,
		})
	}

	if cfg.NumSegments < 0 || cfg.Duration < 0 || cfg.ImageSize < 0 || cfg.BatchSize < 0 {
		return nil, errors.Errorf("invalid config: segments=%d duration=%d image size=%d batch size=%d",
			cfg.NumSegments, cfg.Duration, cfg.ImageSize, cfg.BatchSize)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Transform == nil {
		if cfg.Mode == ModeTrain {
			cfg.Transform = transforms.TrainTransform(cfg.ImageSize, rand.New(rand.NewSource(rng.Int63())))
		} else {
			cfg.Transform = transforms.TestTransform(cfg.ImageSize)
		}
	}

	kept := make([]VideoRecord, 0, len(records))
	for _, r := range records {
		if r.NumFrames >= MinFrames {
			kept = append(kept, r)
		}
	}

	ds := &VideoDataset{
		cfg:      cfg,
		records:  kept,
		sampler:  samplerFor(cfg.Mode, cfg.NumSegments, cfg.Duration),
		logger:   cfg.Logger,
		rng:      rng,
		orderRng: rand.New(rand.NewSource(rng.Int63())),
		order:    make([]int, len(kept)),
	}
	for i := range ds.order {
		ds.order[i] = i
	}

	ds.logger.Info("video number", "count", len(kept), "mode", cfg.Mode.String())
	return ds, nil
}

// NewTrainDataset returns a train-mode dataset with the default training
// configuration: 8 segments of 2 frames, random sized crop and flip to 112x112.
// An empty listPath uses DefaultTrainList.
func NewTrainDataset(listPath string) (*VideoDataset, error) {
	if listPath == "" {
		listPath = DefaultTrainList
	}
	return NewVideoDataset(Config{ListFile: listPath, Mode: ModeTrain})
}

// NewTestDataset returns a test-mode dataset with the default evaluation
// configuration: 8 segments of 2 frames resized to 112x112.
// An empty listPath uses DefaultTestList.
func NewTestDataset(listPath string) (*VideoDataset, error) {
	if listPath == "" {
		listPath = DefaultTestList
	}
	return NewVideoDataset(Config{ListFile: listPath, Mode: ModeTest})
}

// Config returns the effective configuration, defaults applied.
func (d *VideoDataset) Config() Config {
	return d.cfg
}

// Len returns the number of videos kept after filtering.
func (d *VideoDataset) Len() int {
	return len(d.records)
}

// Record returns the annotation record at idx.
func (d *VideoDataset) Record(idx int) (VideoRecord, error) {
	if idx < 0 || idx >= len(d.records) {
		return VideoRecord{}, errors.Wrapf(ErrIndexOutOfRange, "index %d out of range [0, %d)", idx, len(d.records))
	}
	return d.records[idx], nil
}

// Records returns a copy of all records in annotation order.
func (d *VideoDataset) Records() []VideoRecord {
	out := make([]VideoRecord, len(d.records))
	copy(out, d.records)
	return out
}

// SegmentIndices samples the segment start indices for the video at idx
// without loading any frame.
func (d *VideoDataset) SegmentIndices(idx int) ([]int, error) {
	record, err := d.Record(idx)
	if err != nil {
		return nil, err
	}
	if d.sampler == nil {
		return nil, errors.Wrapf(ErrUnknownMode, "%s", d.cfg.Mode)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sampler(d.rng, record.NumFrames), nil
}

// Example loads the sample for the video at idx, drawing train-mode jitter
// from the dataset's own generator.
func (d *VideoDataset) Example(idx int) (*Sample, error) {
	indices, err := d.SegmentIndices(idx)
	if err != nil {
		return nil, err
	}
	return d.build(d.records[idx], indices)
}

// ExampleWithRand is like Example but draws train-mode jitter from rng, so
// parallel workers can each own an independent generator.
func (d *VideoDataset) ExampleWithRand(idx int, rng *rand.Rand) (*Sample, error) {
	record, err := d.Record(idx)
	if err != nil {
		return nil, err
	}
	if d.sampler == nil {
		return nil, errors.Wrapf(ErrUnknownMode, "%s", d.cfg.Mode)
	}
	return d.build(record, d.sampler(rng, record.NumFrames))
}

// build loads the frames at indices, runs the transform and checks the
// output fits [frames, 3, size, size].
func (d *VideoDataset) build(record VideoRecord, indices []int) (*Sample, error) {
	d.logger.Trace("sampled segments", "path", record.Path, "indices", indices)

	images, err := LoadFrames(record, indices, d.cfg.Duration, d.cfg.FrameExt)
	if err != nil {
		return nil, err
	}

	buf, err := d.cfg.Transform.Apply(images)
	if err != nil {
		return nil, errors.WithMessagef(err, "transform failed for %s", record.Path)
	}

	s := &Sample{
		Buf:      buf,
		Frames:   len(images),
		Channels: transforms.Channels,
		Height:   d.cfg.ImageSize,
		Width:    d.cfg.ImageSize,
		Label:    record.Label,
	}
	if want := s.Frames * s.Channels * s.Height * s.Width; len(buf) != want {
		return nil, errors.Wrapf(ErrTransformShape, "%s: got %d values, want %d for [%d, %d, %d, %d]",
			record.Path, len(buf), want, s.Frames, s.Channels, s.Height, s.Width)
	}
	return s, nil
}

// Batch loads the examples at indices and returns their flat buffers and labels.
func (d *VideoDataset) Batch(indices []int) ([][]float32, []int, error) {
	inputs := make([][]float32, len(indices))
	labels := make([]int, len(indices))

	for i, idx := range indices {
		s, err := d.Example(idx)
		if err != nil {
			return nil, nil, err
		}
		inputs[i] = s.Buf
		labels[i] = s.Label
	}

	return inputs, labels, nil
}

// Tensors loads the examples at indices and returns them as gomlx tensors.
func (d *VideoDataset) Tensors(indices []int) (inputs *tensors.Tensor, labels *tensors.Tensor, err error) {
	samples := make([]*Sample, len(indices))
	for i, idx := range indices {
		samples[i], err = d.Example(idx)
		if err != nil {
			return nil, nil, err
		}
	}

	vbatch, err := MakeVideoBatchFlat(samples)
	if err != nil {
		return nil, nil, err
	}
	if vbatch.Batch == 0 {
		vbatch.Frames = d.cfg.NumSegments * d.cfg.Duration
		vbatch.Channels = transforms.Channels
		vbatch.Height = d.cfg.ImageSize
		vbatch.Width = d.cfg.ImageSize
	}
	return vbatch.ToGomlxTensors()
}

// Shuffle reseeds the epoch order generator and shuffles the order used by
// Yield. Example indices keep following the annotation order, and the
// train-mode jitter stream is left untouched.
func (d *VideoDataset) Shuffle(seed int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orderRng.Seed(seed)
	d.orderRng.Shuffle(len(d.order), func(i, j int) {
		d.order[i], d.order[j] = d.order[j], d.order[i]
	})
}

// Name implements train.Dataset.
func (d *VideoDataset) Name() string {
	return "VideoDataset[" + d.cfg.Mode.String() + "]"
}

// Yield implements train.Dataset. Each call returns the next BatchSize
// examples of the epoch as one input tensor [batch, frames, 3, size, size]
// and one int32 label tensor [batch]. The last batch of an epoch may be
// smaller. It returns io.EOF once the epoch is exhausted.
func (d *VideoDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	d.mu.Lock()
	if d.next >= len(d.order) {
		d.mu.Unlock()
		return nil, nil, nil, io.EOF
	}
	end := min(d.next+d.cfg.BatchSize, len(d.order))
	indices := append([]int(nil), d.order[d.next:end]...)
	d.next = end
	d.mu.Unlock()

	in, la, err := d.Tensors(indices)
	if err != nil {
		return nil, nil, nil, err
	}
	return d, []*tensors.Tensor{in}, []*tensors.Tensor{la}, nil
}

// Reset implements train.Dataset and restarts the epoch.
func (d *VideoDataset) Reset() {
	d.mu.Lock()
	d.next = 0
	d.mu.Unlock()
}
