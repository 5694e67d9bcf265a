package camera

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/optolab/spectra/internal/pipeline"
)

// ErrBrokenPipe is returned when reading from the grabber's stdout or stderr
// fails mid-stream.
var ErrBrokenPipe = errors.New("broken pipe")

// WithLogger sets the logger for the device.
func WithLogger(logger *slog.Logger) func(d *Device) {
	return func(d *Device) {
		d.logger = logger.With(
			slog.String("source", d.handler.Source()),
			slog.String("sourceID", d.sourceID),
		)
	}
}

// Device wraps an external frame-grabber process and turns its raw RGBA
// stdout stream into Frames. It can be started and stopped once at a time.
type Device struct {
	sourceID string
	handler  Handler

	isCapturing atomic.Bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	logger *slog.Logger
}

// NewDevice creates a new Device instance with a discard logger.
func NewDevice(sourceID string, h Handler, options ...func(d *Device)) *Device {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	d := Device{
		sourceID: sourceID,
		handler:  h,
		logger:   logger,
	}

	for _, option := range options {
		option(&d)
	}

	return &d
}

// SourceID returns the device identifier.
func (d *Device) SourceID() string { return d.sourceID }

// Source returns the source type name of the underlying handler.
func (d *Device) Source() string { return d.handler.Source() }

// IsCapturing returns true if the device is running.
func (d *Device) IsCapturing() bool {
	return d.isCapturing.Load()
}

// BeginCapture starts the grabber process and delivers its frames to the
// frames channel until the context is cancelled, Stop is called or the
// process exits.
func (d *Device) BeginCapture(ctx context.Context, frames chan<- Frame) (<-chan error, error) {
	if d.isCapturing.Load() {
		return nil, fmt.Errorf("device is already running")
	}

	d.isCapturing.Store(true)

	ctx, d.cancel = context.WithCancel(ctx)
	cmd := d.handler.Cmd(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.isCapturing.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error creating stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		d.isCapturing.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error creating stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		d.isCapturing.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error starting command: %w", err)
	}

	captureStopped := make(chan error)

	d.wg.Add(1)
	go func() {
		defer close(captureStopped)

		d.logger.Info("starting frame capture...")

		done := make(chan error, 3) // expects three results from three goroutines

		go d.handleStdout(ctx, stdout, frames, done)
		go d.handleStderr(stderr, done)
		go d.handleCmdWait(ctx, cmd, done)

		var errs []error
		for i := 0; i < cap(done); i++ {
			if err := <-done; err != nil {
				d.cancel() // cancel context on error
				d.logger.Error(err.Error())

				errs = append(errs, err)
			}
		}

		close(done)

		d.logger.Info("frame capture stopped")

		d.isCapturing.Store(false)
		d.wg.Done()

		if len(errs) > 0 {
			captureStopped <- errors.Join(errs...)
		}
	}()

	return captureStopped, nil
}

// Stop terminates the grabber and waits for frame delivery to cease.
func (d *Device) Stop() {
	if !d.isCapturing.Load() {
		return // already stopped
	}

	d.cancel()
	d.wg.Wait()
	d.isCapturing.Store(false)
}

// handleStdout reads fixed-size raw RGBA frames from stdout and sends them to
// the frames channel.
func (d *Device) handleStdout(ctx context.Context, stdout io.Reader, frames chan<- Frame, done chan<- error) {
	width, height := d.handler.FrameSize()
	frameBytes := 4 * width * height

	reader := bufio.NewReaderSize(stdout, frameBytes)
	for {
		block := pipeline.NewPixelBlock(width, height)
		if _, err := io.ReadFull(reader, block.Pix); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				done <- nil // stream ended cleanly on a frame boundary
			case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, fs.ErrClosed):
				d.logger.Warn("stream ended inside a frame, dropping partial frame")
				done <- nil
			default:
				done <- fmt.Errorf("%w: error reading stdout: %w", ErrBrokenPipe, err)
			}
			return
		}

		frame := Frame{
			Timestamp: time.Now().UTC(),
			Block:     block,
			Source:    d.handler.Source(),
			SourceID:  d.sourceID,
		}

		select {
		case frames <- frame:
		case <-ctx.Done():
			done <- nil
			return
		}
	}
}

// handleStderr reads from stderr and logs grabber diagnostics.
func (d *Device) handleStderr(stderr io.Reader, done chan<- error) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		d.logger.Warn(fmt.Sprintf("%s >> %s", d.handler.Source(), line)) // simple logging here
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		done <- fmt.Errorf("%w: error reading stderr: %w", ErrBrokenPipe, err)
		return
	}

	done <- nil
}

// handleCmdWait waits for the command to exit and sends the error to the error
// channel. An exit caused by our own cancellation is not an error.
func (d *Device) handleCmdWait(ctx context.Context, cmd *exec.Cmd, done chan<- error) {
	if err := cmd.Wait(); err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		done <- fmt.Errorf("command exited with error: %w", err)
		return
	}

	done <- nil
}
