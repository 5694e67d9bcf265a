package camera

import (
	"context"
	"os/exec"
	"time"

	"github.com/optolab/spectra/internal/pipeline"
)

// Frame is a single captured pixel block with its acquisition time.
type Frame struct {
	Timestamp time.Time
	Block     *pipeline.PixelBlock
	Source    string // Source type (e.g., "ffmpeg", "sim")
	SourceID  string // Device path, file name or other identifier
}

// Handler describes an external grabber process that writes raw RGBA frames
// of a fixed size to stdout, one after another.
type Handler interface {
	// Cmd builds the grabber command. The returned command must honor the
	// context for cancellation.
	Cmd(ctx context.Context) *exec.Cmd

	// FrameSize returns the width and height of every produced frame.
	FrameSize() (width, height int)

	// Source returns the source type name.
	Source() string
}

// A Source produces captured frames until stopped. Device and SimSource both
// implement it.
type Source interface {
	// BeginCapture starts frame delivery to the frames channel. The returned
	// channel is closed once capture has fully stopped and carries the
	// terminal error, if any.
	BeginCapture(ctx context.Context, frames chan<- Frame) (<-chan error, error)

	// Stop terminates capture and blocks until delivery has ceased.
	Stop()

	// SourceID returns the identifier of this source instance.
	SourceID() string

	// Source returns the source type name.
	Source() string
}
