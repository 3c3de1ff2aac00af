package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Noofbiz/frameSampler/datasets"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// segmentStartPositions samples segment starts draws times for each of the
// first n videos and returns them as fractions of the video length.
func segmentStartPositions(ds *datasets.VideoDataset, n, draws int) (plotter.Values, error) {
	if draws < 1 {
		draws = 1
	}
	vals := make(plotter.Values, 0, n*draws*ds.Config().NumSegments)
	for i := range n {
		record, err := ds.Record(i)
		if err != nil {
			return nil, err
		}
		for range draws {
			indices, err := ds.SegmentIndices(i)
			if err != nil {
				return nil, err
			}
			for _, idx := range indices {
				vals = append(vals, float64(idx)/float64(record.NumFrames))
			}
		}
	}
	return vals, nil
}

// plotSegmentStarts writes a histogram of where segment starts land inside
// the videos, as a fraction of each video's length.
func plotSegmentStarts(ds *datasets.VideoDataset, n, draws int, outPath string) error {
	vals, err := segmentStartPositions(ds, n, draws)
	if err != nil {
		return err
	}
	if len(vals) == 0 {
		return fmt.Errorf("no examples to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Segment start positions (%s)", ds.Config().Mode)
	p.X.Label.Text = "start / num frames"
	p.Y.Label.Text = "count"

	hist, err := plotter.NewHist(vals, 40)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	p.Add(hist)

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plot directory: %w", err)
		}
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
