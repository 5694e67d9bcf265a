// Package ffmpeg wraps an ffmpeg process as a spectrometer frame grabber:
// it crops the diffraction band region out of a camera stream and emits raw
// RGBA frames on stdout at a fixed cadence.
package ffmpeg

import (
	"fmt"
	"strconv"
)

const (
	// DefaultBinary is the grabber executable looked up on PATH.
	DefaultBinary = "ffmpeg"

	// DefaultFrameRate targets the cooperative ~30 Hz processing cadence.
	DefaultFrameRate = 30

	InputFormatV4L2   InputFormat = "v4l2"
	InputFormatAVFdn  InputFormat = "avfoundation"
	InputFormatLavfi  InputFormat = "lavfi"
	InputFormatFile   InputFormat = "file"
	defaultInputWidth             = 1280
	defaultInputHeight            = 720
)

var validInputFormats = map[InputFormat]struct{}{
	InputFormatV4L2:  {},
	InputFormatAVFdn: {},
	InputFormatLavfi: {},
	InputFormatFile:  {},
}

type InputFormat string

func (f InputFormat) String() string {
	return string(f)
}

// Crop selects the rectangular region of the camera image containing the
// diffracted band. The region is what the capture UI would normally let the
// user drag out; headless captures configure it directly.
type Crop struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Config holds the grabber settings.
type Config struct {
	Binary      string      `yaml:"binary" json:"binary"`
	Input       string      `yaml:"input" json:"input"`
	InputFormat InputFormat `yaml:"inputFormat" json:"inputFormat"`
	InputWidth  int         `yaml:"inputWidth" json:"inputWidth"`
	InputHeight int         `yaml:"inputHeight" json:"inputHeight"`
	FrameRate   int         `yaml:"frameRate" json:"frameRate"`
	Crop        Crop        `yaml:"crop" json:"crop"`
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		Binary:      DefaultBinary,
		InputFormat: InputFormatV4L2,
		InputWidth:  defaultInputWidth,
		InputHeight: defaultInputHeight,
		FrameRate:   DefaultFrameRate,
	}
}

// Validate checks the configuration and applies defaults for zero values.
func (c *Config) Validate() error {
	if c.Binary == "" {
		c.Binary = DefaultBinary
	}
	if c.FrameRate <= 0 {
		c.FrameRate = DefaultFrameRate
	}
	if c.InputWidth <= 0 {
		c.InputWidth = defaultInputWidth
	}
	if c.InputHeight <= 0 {
		c.InputHeight = defaultInputHeight
	}

	if c.Input == "" {
		return fmt.Errorf("ffmpeg: input is required")
	}
	if _, ok := validInputFormats[c.InputFormat]; !ok {
		return fmt.Errorf("ffmpeg: invalid input format '%s'", c.InputFormat)
	}

	crop := c.Crop
	if crop.Width <= 0 || crop.Height <= 0 {
		return fmt.Errorf("ffmpeg: crop region is required")
	}
	if crop.X < 0 || crop.Y < 0 ||
		crop.X+crop.Width > c.InputWidth || crop.Y+crop.Height > c.InputHeight {
		return fmt.Errorf("ffmpeg: crop region %dx%d+%d+%d exceeds input %dx%d",
			crop.Width, crop.Height, crop.X, crop.Y, c.InputWidth, c.InputHeight)
	}

	return nil
}

// Args builds the ffmpeg command line arguments.
func (c *Config) Args() []string {
	args := make([]string, 0, 16)

	switch c.InputFormat {
	case InputFormatFile:
		// Real-time pacing so file playback matches the live cadence.
		args = append(args, "-re")
	case InputFormatLavfi:
		args = append(args, "-f", c.InputFormat.String())
	default:
		args = append(args,
			"-f", c.InputFormat.String(),
			"-video_size", fmt.Sprintf("%dx%d", c.InputWidth, c.InputHeight),
			"-framerate", strconv.Itoa(c.FrameRate),
		)
	}
	args = append(args,
		"-i", c.Input,
		"-vf", fmt.Sprintf("crop=%d:%d:%d:%d", c.Crop.Width, c.Crop.Height, c.Crop.X, c.Crop.Y),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-loglevel", "warning",
		"pipe:1",
	)

	return args
}
