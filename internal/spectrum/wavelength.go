package spectrum

import "math"

// The dispersion axis is mapped linearly onto the visible range. The mapping
// is a fixed approximation, not derived from a calibration light source.
const (
	WavelengthMin = 380 // nm, bin 0
	WavelengthMax = 750 // nm, bin n-1
)

// BinWavelength maps a bin index onto [WavelengthMin, WavelengthMax] nm,
// rounded to the nearest integer nanometer. The mapping is linear and
// inclusive at both ends: bin 0 is 380 nm, bin n-1 is 750 nm.
//
// n must be >= 2; smaller values are a caller error.
func BinWavelength(i, n int) int {
	t := float64(i) / float64(n-1)
	return int(math.Round(WavelengthMin + t*(WavelengthMax-WavelengthMin)))
}

// WavelengthBin is the inverse of BinWavelength: the bin whose mapped
// wavelength is nearest to nm. Results are clamped to [0, n-1].
func WavelengthBin(nm, n int) int {
	t := float64(nm-WavelengthMin) / float64(WavelengthMax-WavelengthMin)
	bin := int(math.Round(t * float64(n-1)))
	if bin < 0 {
		return 0
	}
	if bin >= n {
		return n - 1
	}
	return bin
}
