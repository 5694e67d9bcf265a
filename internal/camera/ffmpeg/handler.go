package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
)

const sourceName = "ffmpeg"

// Handler implements camera.Handler for an ffmpeg grabber process.
type Handler struct {
	config *Config
}

// New validates the configuration and returns a Handler for it.
func New(config *Config) (*Handler, error) {
	if config == nil {
		return nil, fmt.Errorf("ffmpeg: config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Handler{config: config}, nil
}

// Cmd builds the grabber command bound to the given context.
func (h *Handler) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, h.config.Binary, h.config.Args()...)
}

// FrameSize returns the cropped output dimensions.
func (h *Handler) FrameSize() (width, height int) {
	return h.config.Crop.Width, h.config.Crop.Height
}

// Source returns the source type name.
func (h *Handler) Source() string {
	return sourceName
}
