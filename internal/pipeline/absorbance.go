package pipeline

import (
	"math"

	"github.com/optolab/spectra/internal/spectrum"
)

// Red-region absorbance correction. The red channel reads over-sensitive
// around redCorrectionCenter, so absorbance inside the band is scaled down,
// bottoming out at redCorrectionMin exactly at the center. Empirically tuned.
const (
	redCorrectionCenter = 650 // nm
	redCorrectionWidth  = 50  // nm each side of center
	redCorrectionMin    = 0.3 // scale factor at the center
)

// Absorbance derives an absorbance profile from a reference and a sample
// intensity profile of equal length:
//
//	A[i] = min(1, |-log10(S[i]/R[i]) * c|)
//
// where c is the red-region correction. Bins where either input is zero or
// negative are unmeasurable and yield zero rather than NaN or an error. The
// absolute value and the 1.0 clamp normalize output to the display range;
// absorbance here is deliberately not an unbounded Beer-Lambert quantity.
func Absorbance(reference, sample []float64) ([]float64, error) {
	if len(reference) != len(sample) {
		return nil, newLengthDimensionError("sample profile", len(reference), len(sample))
	}

	n := len(reference)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		r := sanitize(reference[i])
		s := sanitize(sample[i])
		if r <= 0 || s <= 0 {
			continue
		}

		c := redCorrection(spectrum.BinWavelength(i, n))
		out[i] = math.Min(1, math.Abs(-math.Log10(s/r)*c))
	}
	return out, nil
}

func redCorrection(wavelength int) float64 {
	dist := math.Abs(float64(wavelength - redCorrectionCenter))
	if dist >= redCorrectionWidth {
		return 1
	}
	return 1 - (1-redCorrectionMin)*(1-dist/redCorrectionWidth)
}
