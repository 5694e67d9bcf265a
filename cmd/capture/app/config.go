package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/optolab/spectra/internal/camera/ffmpeg"
	"github.com/optolab/spectra/internal/pipeline"
)

const (
	SourceFFmpeg SourceType = "ffmpeg"
	SourceSim    SourceType = "sim"

	defaultReferenceFrames = 10
	defaultSimWidth        = 400
	defaultSimHeight       = 120
)

type SourceType string

// Duration accepts Go duration strings ("200ms", "1s") in yaml.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration '%s': %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// LogLevel is a yaml-friendly slog level name.
type LogLevel string

// Level maps the configured name onto a slog.Level, defaulting to Info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Capture  CaptureConfig `yaml:"capture"`
	Source   SourceConfig  `yaml:"source"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel LogLevel `yaml:"logLevel"`
}

// CaptureConfig controls the processing side of a capture run.
type CaptureConfig struct {
	Bins              int    `yaml:"bins"`
	ReferenceFrames   int    `yaml:"referenceFrames"`
	DarkFrame         string `yaml:"darkFrame"`
	ResampleDarkFrame bool   `yaml:"resampleDarkFrame"`
}

// SourceConfig selects and configures the frame source.
type SourceConfig struct {
	Type   SourceType     `yaml:"type"`
	Name   string         `yaml:"name"`
	FFmpeg *ffmpeg.Config `yaml:"ffmpeg"`
	Sim    *SimConfig     `yaml:"sim"`
}

// SimConfig configures the in-process synthetic source.
type SimConfig struct {
	Width    int      `yaml:"width"`
	Height   int      `yaml:"height"`
	Interval Duration `yaml:"interval"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// LoadConfig reads, parses and validates a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration and applies defaults for zero values.
func (c *Config) Validate() error {
	if c.Capture.Bins == 0 {
		c.Capture.Bins = pipeline.DefaultBins
	}
	if c.Capture.Bins < 2 {
		return fmt.Errorf("capture: bins must be at least 2, got %d", c.Capture.Bins)
	}
	if c.Capture.ReferenceFrames <= 0 {
		c.Capture.ReferenceFrames = defaultReferenceFrames
	}

	switch c.Source.Type {
	case SourceFFmpeg:
		if c.Source.FFmpeg == nil {
			return fmt.Errorf("source: ffmpeg configuration is required")
		}
		if err := c.Source.FFmpeg.Validate(); err != nil {
			return err
		}

	case SourceSim:
		if c.Source.Sim == nil {
			c.Source.Sim = &SimConfig{}
		}
		if c.Source.Sim.Width <= 0 {
			c.Source.Sim.Width = defaultSimWidth
		}
		if c.Source.Sim.Height <= 0 {
			c.Source.Sim.Height = defaultSimHeight
		}

	default:
		return fmt.Errorf("source: unknown type '%s'", c.Source.Type)
	}

	if c.Source.Name == "" {
		c.Source.Name = string(c.Source.Type)
	}

	return nil
}

// FrameSize returns the pixel dimensions frames from the configured source
// will have.
func (c *Config) FrameSize() (width, height int) {
	switch c.Source.Type {
	case SourceFFmpeg:
		return c.Source.FFmpeg.Crop.Width, c.Source.FFmpeg.Crop.Height
	default:
		return c.Source.Sim.Width, c.Source.Sim.Height
	}
}
