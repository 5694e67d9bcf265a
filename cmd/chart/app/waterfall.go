package app

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/optolab/spectra/internal/spectrum"
)

// WaterfallRenderer draws a session as a time-by-wavelength heat map: one
// pixel row per stored profile, columns mapped onto the visible range.
type WaterfallRenderer struct {
	config *Config
}

func NewWaterfallRenderer(config *Config) *WaterfallRenderer {
	return &WaterfallRenderer{config: config}
}

func (r *WaterfallRenderer) Render(data *ProfileData) (*image.RGBA, error) {
	if len(data.Rows) == 0 {
		return nil, errors.New("no profiles to render")
	}

	height := len(data.Rows)
	fullWidth := r.config.Width + leftBorder + rightBorder
	fullHeight := height + topBorder + bottomBorder
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(
		leftBorder,
		topBorder,
		leftBorder+r.config.Width,
		topBorder+height,
	)

	// Rows are normalized against the final scale so the whole waterfall
	// shares one brightness reference.
	for y, row := range data.Rows {
		imgY := area.Min.Y + y
		bins := len(row)
		if bins == 0 {
			continue
		}
		for x := 0; x < r.config.Width; x++ {
			bin := x * bins / r.config.Width
			v := data.Scale.Normalize(row[bin])
			img.Set(area.Min.X+x, imgY, pixelColor(r.config.Theme, spectrum.BinWavelength(bin, bins), v))
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

	nmPerPixel := float64(spectrum.WavelengthMax-spectrum.WavelengthMin) / float64(r.config.Width)
	info := fmt.Sprintf("Profiles: %s; Time: %s - %s; 1px = %.1f nm",
		humanize.Comma(int64(height)),
		data.TimestampStart.Local().Format(time.DateTime),
		data.TimestampEnd.Local().Format(time.DateTime),
		nmPerPixel)
	if err = ann.drawInfoBar(img, info); err != nil {
		return nil, err
	}

	return img, nil
}
