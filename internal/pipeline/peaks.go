package pipeline

import "github.com/optolab/spectra/internal/spectrum"

// Per-region peak thresholds. Currently uniform, but kept as three constants
// so each region can be retuned independently.
const (
	PeakThresholdBlue  = 0.05 // < 490 nm
	PeakThresholdGreen = 0.05 // 490-580 nm
	PeakThresholdRed   = 0.05 // >= 580 nm
)

const (
	// Minimum separation between accepted peaks, measured in rendered
	// horizontal pixels rather than bins.
	peakMinSeparationPx = 25

	// DefaultPlotWidth is the rendered width assumed when mapping bins to
	// horizontal pixels for the separation check.
	DefaultPlotWidth = 400

	peakAverageTaps = 5
)

// PeakDetector finds locally dominant maxima in a smoothed profile.
// The zero value is not usable; construct with NewPeakDetector.
type PeakDetector struct {
	plotWidth int
}

// WithPlotWidth overrides the rendered width used for the peak separation
// check.
func WithPlotWidth(px int) func(*PeakDetector) {
	return func(d *PeakDetector) {
		d.plotWidth = px
	}
}

// NewPeakDetector creates a detector with the default plot width.
func NewPeakDetector(options ...func(*PeakDetector)) *PeakDetector {
	d := PeakDetector{plotWidth: DefaultPlotWidth}
	for _, option := range options {
		option(&d)
	}
	return &d
}

// DetectPeaks runs detection at the default plot width.
func DetectPeaks(profile []float64) []spectrum.Peak {
	return NewPeakDetector().Detect(profile)
}

// Detect returns the accepted peaks of a profile in bin order.
//
// The profile is first passed through a short centered moving average to knock
// down residual shot noise. A bin is a candidate when its averaged value
// strictly exceeds both immediate and both second neighbors and clears the
// threshold of its wavelength region. Candidates are then accepted left to
// right, each one claiming a proximity window in rendered pixels: an earlier,
// smaller peak can block a later, larger one inside its window. That
// first-come ordering is a reproducibility contract, not an accident; callers
// comparing peak sets across revisions rely on it.
func (d *PeakDetector) Detect(profile []float64) []spectrum.Peak {
	n := len(profile)
	if n < peakAverageTaps {
		return nil
	}

	avg := movingAverage(profile, peakAverageTaps)

	var peaks []spectrum.Peak
	for i := 2; i < n-2; i++ {
		v := avg[i]
		if v <= avg[i-1] || v <= avg[i+1] || v <= avg[i-2] || v <= avg[i+2] {
			continue
		}

		wavelength := spectrum.BinWavelength(i, n)
		if v <= regionThreshold(wavelength) {
			continue
		}

		px := i * d.plotWidth / n
		blocked := false
		for _, p := range peaks {
			if abs(px-p.Bin*d.plotWidth/n) <= peakMinSeparationPx {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		peaks = append(peaks, spectrum.Peak{
			Bin:        i,
			Wavelength: wavelength,
			Value:      profile[i],
		})
	}
	return peaks
}

func regionThreshold(wavelength int) float64 {
	switch {
	case wavelength < blueGreenBoundary:
		return PeakThresholdBlue
	case wavelength < greenRedBoundary:
		return PeakThresholdGreen
	default:
		return PeakThresholdRed
	}
}

// movingAverage computes a centered taps-wide mean with edge truncation.
func movingAverage(profile []float64, taps int) []float64 {
	n := len(profile)
	half := taps / 2

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		var count int
		for j := i - half; j <= i+half; j++ {
			if j < 0 || j >= n {
				continue
			}
			sum += sanitize(profile[j])
			count++
		}
		out[i] = sum / float64(count)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
