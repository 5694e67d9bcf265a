package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/optolab/spectra/internal/spectrum"
)

// ColorTheme selects how intensity values are painted:
// - SpectralTheme: each wavelength keeps its visible hue, intensity drives brightness
// - ThermalTheme: heat map, black through red and yellow to white
// - GrayscaleTheme: monochrome
type ColorTheme string

const (
	SpectralTheme  ColorTheme = "spectral"
	ThermalTheme   ColorTheme = "thermal"
	GrayscaleTheme ColorTheme = "grayscale"

	hueStart = 270.0 // violet at the short-wavelength end
	hueEnd   = 0.0   // red at the long-wavelength end
)

var validColorThemes = map[ColorTheme]struct{}{
	SpectralTheme:  {},
	ThermalTheme:   {},
	GrayscaleTheme: {},
}

func channel(v float64) uint8 {
	return uint8(math.Min(v, 1) * 255)
}

// wavelengthHue maps a wavelength in nm onto the visible hue ramp.
func wavelengthHue(nm int) float64 {
	t := float64(nm-spectrum.WavelengthMin) / float64(spectrum.WavelengthMax-spectrum.WavelengthMin)
	t = math.Min(math.Max(t, 0), 1)
	return hueStart - t*(hueStart-hueEnd)
}

// WavelengthColor returns the fully saturated hue of a wavelength. Used for
// chart curves where brightness stays constant.
func WavelengthColor(nm int) color.Color {
	return colorful.Hsv(wavelengthHue(nm), 1, 0.90)
}

// pixelColor paints one waterfall cell: the profile value normalized to
// [0, 1] at the cell's wavelength, under the selected theme.
func pixelColor(theme ColorTheme, nm int, normalized float64) color.Color {
	v := math.Min(math.Max(normalized, 0), 1)

	switch theme {
	case ThermalTheme:
		switch {
		case v < 0.33:
			return color.RGBA{R: channel(v * 3), A: 0xff}
		case v < 0.66:
			return color.RGBA{R: 255, G: channel((v - 0.33) * 3), A: 0xff}
		default:
			return color.RGBA{R: 255, G: 255, B: channel((v - 0.66) * 3), A: 0xff}
		}

	case GrayscaleTheme:
		g := uint8(math.Pow(v, 0.7) * 255)
		return color.RGBA{R: g, G: g, B: g, A: 0xff}

	default:
		// Gamma correction for better visual perception of weak signal
		return colorful.Hsv(wavelengthHue(nm), 1, math.Pow(v, 0.7))
	}
}
