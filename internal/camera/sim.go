package camera

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/optolab/spectra/internal/pipeline"
)

const simSourceName = "sim"

// WithSimLogger sets the logger for the simulated source.
func WithSimLogger(logger *slog.Logger) func(s *SimSource) {
	return func(s *SimSource) {
		s.logger = logger.With(slog.String("source", simSourceName), slog.String("sourceID", s.sourceID))
	}
}

// WithSimInterval overrides the frame interval.
func WithSimInterval(interval time.Duration) func(s *SimSource) {
	return func(s *SimSource) {
		s.interval = interval
	}
}

// SimSource produces synthetic diffraction-band frames in process: a smooth
// horizontal color gradient with a bright band in the middle rows. It exists
// for demos and for exercising the capture path without a camera.
type SimSource struct {
	sourceID string
	width    int
	height   int
	interval time.Duration

	isCapturing atomic.Bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	logger *slog.Logger
}

// NewSimSource creates a simulated source emitting frames of the given size
// at roughly 30 Hz.
func NewSimSource(sourceID string, width, height int, options ...func(s *SimSource)) *SimSource {
	s := SimSource{
		sourceID: sourceID,
		width:    width,
		height:   height,
		interval: 33 * time.Millisecond,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// SourceID returns the source identifier.
func (s *SimSource) SourceID() string { return s.sourceID }

// Source returns the source type name.
func (s *SimSource) Source() string { return simSourceName }

// BeginCapture starts synthetic frame delivery.
func (s *SimSource) BeginCapture(ctx context.Context, frames chan<- Frame) (<-chan error, error) {
	if s.isCapturing.Load() {
		return nil, fmt.Errorf("source is already running")
	}

	s.isCapturing.Store(true)
	ctx, s.cancel = context.WithCancel(ctx)

	captureStopped := make(chan error)

	s.wg.Add(1)
	go func() {
		defer close(captureStopped)
		defer s.wg.Done()
		defer s.isCapturing.Store(false)

		s.logger.Info("starting simulated capture...")

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("simulated capture stopped")
				return
			case now := <-ticker.C:
				frame := Frame{
					Timestamp: now.UTC(),
					Block:     s.renderBlock(),
					Source:    simSourceName,
					SourceID:  s.sourceID,
				}
				select {
				case frames <- frame:
				case <-ctx.Done():
					s.logger.Info("simulated capture stopped")
					return
				}
			}
		}
	}()

	return captureStopped, nil
}

// Stop terminates delivery and waits for the worker to exit.
func (s *SimSource) Stop() {
	if !s.isCapturing.Load() {
		return // already stopped
	}

	s.cancel()
	s.wg.Wait()
}

// renderBlock paints a fresh synthetic band: hue follows the horizontal
// position like a dispersed spectrum, intensity falls off toward the top and
// bottom rows.
func (s *SimSource) renderBlock() *pipeline.PixelBlock {
	block := pipeline.NewPixelBlock(s.width, s.height)

	for y := 0; y < s.height; y++ {
		// Vertical band falloff, brightest in the middle rows.
		v := float64(y)/float64(s.height) - 0.5
		rowGain := math.Exp(-(v * v) / 0.08)

		for x := 0; x < s.width; x++ {
			t := float64(x) / float64(s.width-1)
			r, g, b := bandColor(t)

			i := 4 * (y*s.width + x)
			block.Pix[i] = uint8(float64(r) * rowGain)
			block.Pix[i+1] = uint8(float64(g) * rowGain)
			block.Pix[i+2] = uint8(float64(b) * rowGain)
			block.Pix[i+3] = 0xff
		}
	}

	return block
}

// bandColor approximates the dispersed band: blue on the left through green
// to red on the right.
func bandColor(t float64) (r, g, b uint8) {
	switch {
	case t < 0.33:
		f := t / 0.33
		return uint8(0), uint8(80 * f), uint8(200)
	case t < 0.66:
		f := (t - 0.33) / 0.33
		return uint8(60 * f), uint8(80 + 120*f), uint8(200 * (1 - f))
	default:
		f := (t - 0.66) / 0.34
		return uint8(60 + 180*f), uint8(200 * (1 - f)), uint8(0)
	}
}
