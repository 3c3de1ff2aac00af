package datasets

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// MinFrames is the smallest frame count a video needs to be kept in the dataset.
const MinFrames = 16

// VideoRecord is one annotation entry: the directory holding the video's
// extracted frames, how many frames it has and its class label.
type VideoRecord struct {
	Path      string
	NumFrames int
	Label     int
}

// LoadAnnotations opens the annotation list at path and parses it with ParseAnnotations.
func LoadAnnotations(path string) ([]VideoRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open annotation list %s", path)
	}
	defer file.Close()

	records, err := ParseAnnotations(file)
	if err != nil {
		return nil, errors.WithMessagef(err, "annotation list %s", path)
	}
	return records, nil
}

// ParseAnnotations reads "<path> <num_frames> <label>" lines and returns the
// records with at least MinFrames frames, in input order. Any malformed line
// fails the whole parse.
func ParseAnnotations(r io.Reader) ([]VideoRecord, error) {
	var records []VideoRecord

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: expected 3 fields, got %d", lineNum, len(fields))
		}
		numFrames, err := parseInt(fields[1])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: num_frames %q: %v", lineNum, fields[1], err)
		}
		label, err := parseInt(fields[2])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: label %q: %v", lineNum, fields[2], err)
		}

		if numFrames < MinFrames {
			continue
		}
		records = append(records, VideoRecord{
			Path:      fields[0],
			NumFrames: numFrames,
			Label:     label,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read annotation list")
	}

	return records, nil
}
