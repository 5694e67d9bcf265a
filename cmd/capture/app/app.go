package app

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/optolab/spectra/internal/camera"
	"github.com/optolab/spectra/internal/camera/ffmpeg"
	"github.com/optolab/spectra/internal/pipeline"
	"github.com/optolab/spectra/internal/storage"
)

const (
	storageDir = "data"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer store.Close()

	source, err := createSource(&config.Source, logger)
	if err != nil {
		return fmt.Errorf("failed to create frame source: %w", err)
	}

	calibration, err := loadDarkFrame(config)
	if err != nil {
		return fmt.Errorf("failed to load dark frame: %w", err)
	}

	orchestrator := NewOrchestrator(source, store, logger,
		WithProcessorBins(config.Capture.Bins),
		WithCalibration(calibration),
		WithReferenceFrames(config.Capture.ReferenceFrames),
		WithSourceConfig(sourceConfigOf(&config.Source)),
	)

	return orchestrator.Run(ctx)
}

func createSource(config *SourceConfig, logger *slog.Logger) (camera.Source, error) {
	switch config.Type {
	case SourceFFmpeg:
		handler, err := ffmpeg.New(config.FFmpeg)
		if err != nil {
			return nil, fmt.Errorf("creating ffmpeg grabber: %w", err)
		}
		return camera.NewDevice(config.Name, handler, camera.WithLogger(logger)), nil

	case SourceSim:
		options := []func(*camera.SimSource){camera.WithSimLogger(logger)}
		if config.Sim.Interval > 0 {
			options = append(options, camera.WithSimInterval(time.Duration(config.Sim.Interval)))
		}
		return camera.NewSimSource(config.Name, config.Sim.Width, config.Sim.Height, options...), nil

	default:
		return nil, fmt.Errorf("unknown source type '%s'", config.Type)
	}
}

func sourceConfigOf(config *SourceConfig) any {
	switch config.Type {
	case SourceFFmpeg:
		return config.FFmpeg
	default:
		return config.Sim
	}
}

// loadDarkFrame decodes the configured dark frame image into a calibration
// block, resampling it to the source frame size when allowed. Returns nil if
// no dark frame is configured.
func loadDarkFrame(config *Config) (*pipeline.PixelBlock, error) {
	path := config.Capture.DarkFrame
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dark frame '%s': %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding dark frame '%s': %w", path, err)
	}

	block := pipeline.FromImage(img)
	width, height := config.FrameSize()
	if block.Width != width || block.Height != height {
		if !config.Capture.ResampleDarkFrame {
			return nil, fmt.Errorf("dark frame is %s, frames are %dx%d; enable resampleDarkFrame or recapture it",
				block, width, height)
		}
		block = pipeline.ResampleBlock(block, width, height)
	}

	return block, nil
}

func createStorage(config *StorageConfig) (*storage.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	} else {
		dbPath = filepath.Join(wd, storageDir)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("inspecting storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("spectra_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.New(dbPath), nil
}
