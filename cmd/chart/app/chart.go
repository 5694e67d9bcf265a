package app

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/optolab/spectra/internal/pipeline"
	"github.com/optolab/spectra/internal/spectrum"
)

// ChartRenderer draws the most recent profile of a session as a filled
// spectrum curve: each column is colored by its wavelength, bar height by the
// profile value against the tracked scale.
type ChartRenderer struct {
	config *Config
	kernel []float64
}

func NewChartRenderer(config *Config) *ChartRenderer {
	sigma := pipeline.DisplaySmoothSigma
	return &ChartRenderer{
		config: config,
		kernel: pipeline.GaussianKernel(pipeline.DisplayKernelSize(sigma), sigma),
	}
}

func (r *ChartRenderer) Render(data *ProfileData, peaks []spectrum.Peak) (*image.RGBA, error) {
	if data.Last == nil {
		return nil, errors.New("no profiles to render")
	}

	// Extra display smoothing on top of the stored profile
	values := pipeline.Smooth(data.Last.Values(), r.kernel)
	bins := len(values)

	fullWidth := r.config.Width + leftBorder + rightBorder
	fullHeight := r.config.Height + topBorder + bottomBorder
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(
		leftBorder,
		topBorder,
		leftBorder+r.config.Width,
		topBorder+r.config.Height,
	)

	for x := 0; x < r.config.Width; x++ {
		bin := x * bins / r.config.Width
		v := data.Scale.Normalize(values[bin])

		barTop := area.Max.Y - int(v*float64(r.config.Height))
		col := WavelengthColor(spectrum.BinWavelength(bin, bins))
		for y := barTop; y < area.Max.Y; y++ {
			img.Set(area.Min.X+x, y, col)
		}
	}

	if r.config.NoAnnotations {
		return img, nil
	}

	ann, err := newAnnotator()
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	ann.bind(img)
	if err = ann.drawWavelengthScale(img, area); err != nil {
		return nil, err
	}
	if err = ann.drawPeakLabels(img, area, peaks, bins); err != nil {
		return nil, err
	}

	info := fmt.Sprintf("%s; Captured: %s; Scale: %s",
		data.Last.Kind,
		data.Last.Timestamp.Local().Format(time.DateTime),
		humanize.FtoaWithDigits(data.Scale.Current(), 2))
	if err = ann.drawInfoBar(img, info); err != nil {
		return nil, err
	}

	return img, nil
}
