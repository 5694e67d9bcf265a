package pipeline

import (
	"math"

	"github.com/optolab/spectra/internal/spectrum"
)

// Wavelength-region boundaries for channel weighting. Below blueGreenBoundary
// the blue channel dominates the sensor response; above greenRedBoundary the
// red channel does.
const (
	blueGreenBoundary = 490 // nm
	greenRedBoundary  = 580 // nm
)

// Approximate inverse sensor-response weights, selected per bin by its mapped
// wavelength. Empirically tuned rather than physically derived: changing any
// of these changes every downstream absorbance value.
var (
	blueRegionWeights  = channelWeights{Blue: 1.0, Green: 0.2, Red: 0.0}
	greenRegionWeights = channelWeights{Blue: 0.2, Green: 0.7, Red: 0.2}
	redRegionWeights   = channelWeights{Blue: 0.0, Green: 0.2, Red: 0.8}
)

type channelWeights struct {
	Blue, Green, Red float64
}

func weightsFor(wavelength int) channelWeights {
	switch {
	case wavelength < blueGreenBoundary:
		return blueRegionWeights
	case wavelength < greenRedBoundary:
		return greenRegionWeights
	default:
		return redRegionWeights
	}
}

// Combine merges per-channel bin averages into one intensity per bin using
// the wavelength-region weights. Non-finite channel values are treated as
// zero; output values are always finite and non-negative.
func Combine(bins *ChannelBins) []float64 {
	red, green, blue := bins.Averages()
	n := bins.Bins()

	intensity := make([]float64, n)
	for i := 0; i < n; i++ {
		w := weightsFor(spectrum.BinWavelength(i, n))
		intensity[i] = w.Blue*sanitize(blue[i]) +
			w.Green*sanitize(green[i]) +
			w.Red*sanitize(red[i])
	}
	return intensity
}

// sanitize substitutes zero for NaN and infinities so that bad texel math can
// never propagate past a single stage.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
