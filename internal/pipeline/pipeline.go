// Package pipeline implements the spectral signal-processing core: spatial
// binning of a camera pixel block, dark-frame subtraction, channel-weighted
// intensity synthesis, Gaussian smoothing, absorbance derivation and peak
// detection.
//
// Every operation is a pure function over its inputs: fresh output slices,
// no shared state, no I/O. Callers drive it once per captured frame.
package pipeline

// DefaultBins is the canonical spectral resolution.
const DefaultBins = 100

// Smoothing parameters. The primary kernel is applied inside ProcessFrame;
// the display sigma is used by renderers for additional visual smoothing,
// with size derived by DisplayKernelSize.
const (
	primaryKernelSize  = 5
	primarySigma       = 1.0
	DisplaySmoothSigma = 1.5
)

// Processor converts pixel blocks into intensity profiles at a fixed spectral
// resolution. It is stateless apart from its configuration and a precomputed
// kernel, and safe for concurrent use.
type Processor struct {
	bins   int
	kernel []float64
}

// WithBins overrides the spectral resolution. n must be >= 2.
func WithBins(n int) func(*Processor) {
	return func(p *Processor) {
		p.bins = n
	}
}

// NewProcessor creates a Processor with the canonical resolution and the
// primary smoothing kernel.
func NewProcessor(options ...func(*Processor)) *Processor {
	p := Processor{
		bins:   DefaultBins,
		kernel: GaussianKernel(primaryKernelSize, primarySigma),
	}
	for _, option := range options {
		option(&p)
	}
	return &p
}

// Bins returns the processor's spectral resolution.
func (p *Processor) Bins() int {
	return p.bins
}

// ProcessFrame reduces a pixel block to a smoothed intensity profile of
// exactly Bins() values: spatial binning with optional dark-frame
// subtraction, channel combination, then Gaussian smoothing. calibration may
// be nil; if present its dimensions must match the block's exactly, otherwise
// a *DimensionError is returned and no output is produced.
func (p *Processor) ProcessFrame(block, calibration *PixelBlock) ([]float64, error) {
	channelBins, err := BinBlock(block, calibration, p.bins)
	if err != nil {
		return nil, err
	}
	return Smooth(Combine(channelBins), p.kernel), nil
}

var defaultProcessor = NewProcessor()

// ProcessFrame reduces a pixel block at the canonical resolution. Shorthand
// for callers that never change the processor configuration.
func ProcessFrame(block, calibration *PixelBlock) ([]float64, error) {
	return defaultProcessor.ProcessFrame(block, calibration)
}
