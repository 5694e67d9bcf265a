package app

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/optolab/spectra/internal/spectrum"
)

const (
	dpi            = 72.0
	fontSize       = 12.0
	tickMarkHeight = 5
	wavelengthStep = 50 // nm between scale labels

	// Border sizes in pixels
	topBorder    = 30
	leftBorder   = 20
	bottomBorder = 50
	rightBorder  = 20
)

type annotator struct {
	context  *freetype.Context
	fontFace font.Face
}

func newAnnotator() (*annotator, error) {
	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    fontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) bind(img *image.RGBA) {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)
}

// drawWavelengthScale draws tick marks and nm labels along the bottom edge of
// the plot area.
func (a *annotator) drawWavelengthScale(img *image.RGBA, area image.Rectangle) error {
	span := float64(spectrum.WavelengthMax - spectrum.WavelengthMin)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := area.Max.Y + tickMarkHeight + fontHeight

	start := ((spectrum.WavelengthMin + wavelengthStep - 1) / wavelengthStep) * wavelengthStep
	for nm := start; nm <= spectrum.WavelengthMax; nm += wavelengthStep {
		xRatio := float64(nm-spectrum.WavelengthMin) / span
		x := area.Min.X + int(xRatio*float64(area.Dx()))

		for y := area.Max.Y; y < area.Max.Y+tickMarkHeight; y++ {
			img.Set(x, y, color.Black)
		}

		label := fmt.Sprintf("%d", nm)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing wavelength label: %w", err)
		}
	}
	return nil
}

// drawPeakLabels marks detected peaks above the plot area with their
// wavelength.
func (a *annotator) drawPeakLabels(img *image.RGBA, area image.Rectangle, peaks []spectrum.Peak, bins int) error {
	if bins == 0 {
		return nil
	}

	for _, peak := range peaks {
		x := area.Min.X + peak.Bin*area.Dx()/bins

		for y := area.Min.Y - tickMarkHeight; y < area.Min.Y; y++ {
			img.Set(x, y, color.Black)
		}

		label := fmt.Sprintf("%dnm", peak.Wavelength)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), area.Min.Y-tickMarkHeight-2)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing peak label: %w", err)
		}
	}
	return nil
}

// drawInfoBar writes a one-line summary under the wavelength scale.
func (a *annotator) drawInfoBar(img *image.RGBA, info string) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	textY := img.Bounds().Max.Y - (bottomBorder-2*fontHeight-tickMarkHeight)/2
	pt := freetype.Pt(leftBorder, textY)
	if _, err := a.context.DrawString(info, pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}
