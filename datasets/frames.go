package datasets

import (
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// DefaultFrameExt is the extension of the extracted frame images.
const DefaultFrameExt = ".png"

// ListFrames returns the frame image paths in dir with extension ext, in
// lexicographic order. That order is the playback order.
func ListFrames(dir, ext string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat frame directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("frame path %s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to glob frames in %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFrames loads duration consecutive frames starting at each of the
// segment start indices, segment after segment. Within a segment the frame
// position stops advancing at the record's last frame, so short videos
// repeat their last frame instead of running past it.
func LoadFrames(record VideoRecord, indices []int, duration int, ext string) ([]image.Image, error) {
	paths, err := ListFrames(record.Path, ext)
	if err != nil {
		return nil, err
	}

	images := make([]image.Image, 0, len(indices)*duration)
	for _, start := range indices {
		p := start
		for range duration {
			if p < 0 || p >= len(paths) {
				return nil, errors.Wrapf(ErrMissingFrame, "%s: frame %d requested, %d frames on disk", record.Path, p, len(paths))
			}
			img, err := imaging.Open(paths[p])
			if err != nil {
				return nil, errors.Wrapf(err, "failed to decode frame %s", paths[p])
			}
			images = append(images, img)
			if p < record.NumFrames-1 {
				p++
			}
		}
	}
	return images, nil
}
