package app

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/optolab/spectra/internal/camera"
	"github.com/optolab/spectra/internal/pipeline"
	"github.com/optolab/spectra/internal/spectrum"
	"github.com/optolab/spectra/internal/storage"
)

// processErrorsThreshold is how many consecutive frame failures are tolerated
// before the capture run is aborted.
const processErrorsThreshold = 5

// WithProcessorBins sets the spectral resolution of the processing pipeline.
func WithProcessorBins(n int) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.processor = pipeline.NewProcessor(pipeline.WithBins(n))
	}
}

// WithCalibration sets the dark frame subtracted during binning. The block
// must match the source frame dimensions.
func WithCalibration(block *pipeline.PixelBlock) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.calibration = block
	}
}

// WithReferenceFrames sets how many initial frames are averaged into the
// reference profile before sampling begins.
func WithReferenceFrames(n int) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.referenceFrames = n
	}
}

// WithSourceConfig sets the source configuration recorded with the session.
func WithSourceConfig(config any) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.sourceConfig = config
	}
}

// Orchestrator drives a capture run: it averages the first frames into a
// reference profile, then reduces every subsequent frame to a sample profile,
// derives its absorbance against the reference, detects peaks and stores all
// three in the session database.
type Orchestrator struct {
	source camera.Source
	store  *storage.Store
	logger *slog.Logger

	processor *pipeline.Processor
	detector  *pipeline.PeakDetector

	calibration     *pipeline.PixelBlock
	referenceFrames int
	sourceConfig    any

	reference []float64
	refSum    []float64
	refCount  int
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(source camera.Source, store *storage.Store, logger *slog.Logger, options ...func(*Orchestrator)) *Orchestrator {
	o := Orchestrator{
		source:          source,
		store:           store,
		logger:          logger,
		processor:       pipeline.NewProcessor(),
		detector:        pipeline.NewPeakDetector(),
		referenceFrames: defaultReferenceFrames,
	}

	for _, option := range options {
		option(&o)
	}

	return &o
}

// Run begins frame capture and processes frames until the context is
// cancelled or the source fails.
func (o *Orchestrator) Run(ctx context.Context) error {
	sessionID, err := o.store.CreateSession(ctx, o.source.Source(), o.source.SourceID(), o.sourceConfig)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan camera.Frame, 1)
	captureStopped, err := o.source.BeginCapture(ctx, frames)
	if err != nil {
		return fmt.Errorf("starting capture: %w", err)
	}
	defer o.source.Stop()

	o.logger.Info("capture session started",
		slog.Int64("sessionID", sessionID),
		slog.String("source", o.source.Source()),
		slog.String("sourceID", o.source.SourceID()),
		slog.Int("bins", o.processor.Bins()),
		slog.Int("referenceFrames", o.referenceFrames))

	var failures int
	for {
		select {
		case <-ctx.Done():
			o.logger.Info("capture session stopped")
			return nil

		case err, ok := <-captureStopped:
			if !ok || err == nil {
				o.logger.Info("frame source finished")
				return nil
			}
			return fmt.Errorf("capture terminated: %w", err)

		case frame := <-frames:
			if err := o.handleFrame(ctx, sessionID, frame); err != nil {
				failures++
				o.logger.Error(err.Error())

				if failures >= processErrorsThreshold {
					return fmt.Errorf("aborting after %d consecutive frame failures: %w", failures, err)
				}
				continue
			}
			failures = 0
		}
	}
}

func (o *Orchestrator) handleFrame(ctx context.Context, sessionID int64, frame camera.Frame) error {
	values, err := o.processor.ProcessFrame(frame.Block, o.calibration)
	if err != nil {
		return fmt.Errorf("processing frame: %w", err)
	}

	if o.reference == nil {
		return o.accumulateReference(ctx, sessionID, frame, values)
	}

	sample := spectrum.NewProfile(frame.Timestamp, spectrum.KindSample, values)
	if err = o.store.StoreProfile(ctx, sessionID, sample); err != nil {
		return fmt.Errorf("storing sample profile: %w", err)
	}

	absValues, err := pipeline.Absorbance(o.reference, values)
	if err != nil {
		return fmt.Errorf("computing absorbance: %w", err)
	}

	absorbance := spectrum.NewProfile(frame.Timestamp, spectrum.KindAbsorbance, absValues)
	if err = o.store.StoreProfile(ctx, sessionID, absorbance); err != nil {
		return fmt.Errorf("storing absorbance profile: %w", err)
	}

	peaks := o.detector.Detect(absValues)
	if err = o.store.StorePeaks(ctx, sessionID, absorbance, peaks); err != nil {
		return fmt.Errorf("storing peaks: %w", err)
	}

	o.logger.Debug("frame processed",
		slog.Time("timestamp", frame.Timestamp),
		slog.Int("peaks", len(peaks)))

	return nil
}

// accumulateReference folds the frame into the running reference average and
// stores the finished reference profile once enough frames are in.
func (o *Orchestrator) accumulateReference(ctx context.Context, sessionID int64, frame camera.Frame, values []float64) error {
	if o.refSum == nil {
		o.refSum = make([]float64, len(values))
	}

	floats.Add(o.refSum, values)
	o.refCount++

	if o.refCount < o.referenceFrames {
		return nil
	}

	floats.Scale(1/float64(o.refCount), o.refSum)
	o.reference = o.refSum
	o.refSum = nil

	profile := spectrum.NewProfile(frame.Timestamp, spectrum.KindReference, o.reference)
	if err := o.store.StoreProfile(ctx, sessionID, profile); err != nil {
		return fmt.Errorf("storing reference profile: %w", err)
	}

	o.logger.Info("reference profile captured", slog.Int("frames", o.refCount))
	return nil
}
