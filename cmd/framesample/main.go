// Command framesample loads a segment-sampled video dataset from an
// annotation list, walks every example once and reports the sample shapes.
// It can also plot where the segment starts fall inside the videos.
//
// Usage:
//
//	go run ./cmd/framesample -list annotation/set_0_train.txt -mode train
//	go run ./cmd/framesample -list annotation -mode test -plot output/segments.png
//
// Every flag can also be set through a FRAMESAMPLE_* environment variable.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Noofbiz/frameSampler/datasets"
	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-hclog"
	"github.com/schollz/progressbar/v3"
)

type config struct {
	List      string `env:"FRAMESAMPLE_LIST"       envDefault:"./annotation/set_0_train.txt"`
	Mode      string `env:"FRAMESAMPLE_MODE"       envDefault:"train"`
	Segments  int    `env:"FRAMESAMPLE_SEGMENTS"   envDefault:"8"`
	Duration  int    `env:"FRAMESAMPLE_DURATION"   envDefault:"2"`
	ImageSize int    `env:"FRAMESAMPLE_IMAGE_SIZE" envDefault:"112"`
	FrameExt  string `env:"FRAMESAMPLE_FRAME_EXT"  envDefault:".png"`
	Seed      int64  `env:"FRAMESAMPLE_SEED"       envDefault:"0"`
	Limit     int    `env:"FRAMESAMPLE_LIMIT"      envDefault:"0"`
	Plot      string `env:"FRAMESAMPLE_PLOT"`
	PlotDraws int    `env:"FRAMESAMPLE_PLOT_DRAWS" envDefault:"20"`
	LogLevel  string `env:"FRAMESAMPLE_LOG_LEVEL"  envDefault:"info"`
}

func main() {
	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid environment: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.List, "list", cfg.List, "Annotation list file, or a directory to search for one")
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "Sampling mode: train or test")
	flag.IntVar(&cfg.Segments, "segments", cfg.Segments, "Number of segments per video")
	flag.IntVar(&cfg.Duration, "duration", cfg.Duration, "Consecutive frames per segment")
	flag.IntVar(&cfg.ImageSize, "image-size", cfg.ImageSize, "Square frame size after the transform")
	flag.StringVar(&cfg.FrameExt, "frame-ext", cfg.FrameExt, "Frame image extension")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Sampling seed (0 = time based)")
	flag.IntVar(&cfg.Limit, "limit", cfg.Limit, "Only walk the first N examples (0 = all)")
	flag.StringVar(&cfg.Plot, "plot", cfg.Plot, "Write a histogram of segment start positions to this PNG")
	flag.IntVar(&cfg.PlotDraws, "plot-draws", cfg.PlotDraws, "Index draws per video for the histogram")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: trace, debug, info, warn, error, off")
	flag.Parse()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("framesample failed", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the command logger. Unknown level names are rejected
// instead of silently disabling the level filter.
func newLogger(level string) (hclog.Logger, error) {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		return nil, fmt.Errorf("unknown log level %q (want trace, debug, info, warn, error or off)", level)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "framesample",
		Level: lvl,
	}), nil
}

func run(cfg config, logger hclog.Logger) error {
	mode, err := datasets.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	listPath := cfg.List
	if info, err := os.Stat(listPath); err == nil && info.IsDir() {
		listPath, err = datasets.FindAnnotationList(listPath, mode.String())
		if err != nil {
			return err
		}
	}
	logger.Info("using annotation list", "path", listPath)

	ds, err := datasets.NewVideoDataset(datasets.Config{
		ListFile:    listPath,
		NumSegments: cfg.Segments,
		Duration:    cfg.Duration,
		ImageSize:   cfg.ImageSize,
		Mode:        mode,
		FrameExt:    cfg.FrameExt,
		Seed:        cfg.Seed,
		Logger:      logger.Named("datasets"),
	})
	if err != nil {
		return err
	}

	n := ds.Len()
	if cfg.Limit > 0 {
		n = min(n, cfg.Limit)
	}

	if cfg.Plot != "" {
		if err := plotSegmentStarts(ds, n, cfg.PlotDraws, cfg.Plot); err != nil {
			return err
		}
		logger.Info("wrote segment start histogram", "path", cfg.Plot)
	}

	bar := progressbar.Default(int64(n), "loading examples")
	failed := 0
	labels := make(map[int]int)
	for i := range n {
		s, err := ds.Example(i)
		if err != nil {
			failed++
			logger.Warn("failed to load example", "index", i, "error", err)
		} else {
			labels[s.Label]++
			if i == 0 {
				logger.Info("first example", "shape", s.Shape().Dimensions, "label", s.Label)
			}
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	logger.Info("done", "examples", n, "failed", failed, "classes", len(labels))
	if failed > 0 {
		return fmt.Errorf("%d of %d examples failed to load", failed, n)
	}
	return nil
}
