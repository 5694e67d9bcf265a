package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/optolab/spectra/internal/pipeline"
	"github.com/optolab/spectra/internal/spectrum"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"

	ModeProfile   RenderMode = "profile"
	ModeWaterfall RenderMode = "waterfall"

	defaultChartHeight = 300
)

type ImageFormat string

type RenderMode string

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        ImageFormat
	Mode          RenderMode
	Kind          spectrum.ProfileKind
	Theme         ColorTheme
	Width         int
	Height        int
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

var validRenderModes = map[RenderMode]struct{}{
	ModeProfile:   {},
	ModeWaterfall: {},
}

var validProfileKinds = map[spectrum.ProfileKind]struct{}{
	spectrum.KindReference:  {},
	spectrum.KindSample:     {},
	spectrum.KindAbsorbance: {},
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
		Mode:   ModeProfile,
		Kind:   spectrum.KindAbsorbance,
		Theme:  SpectralTheme,
		Width:  pipeline.DefaultPlotWidth,
		Height: defaultChartHeight,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, mode, kind, theme string
	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&mode, "mode", string(ModeProfile), "Render mode. [profile, waterfall]")
	flag.StringVar(&kind, "kind", string(spectrum.KindAbsorbance), "Profile kind to render. [reference, sample, absorbance]")
	flag.StringVar(&theme, "theme", string(SpectralTheme), "Color theme. [spectral, thermal, grayscale]")
	flag.IntVar(&c.Width, "w", pipeline.DefaultPlotWidth, "Plot width in pixels")
	flag.IntVar(&c.Height, "height", defaultChartHeight, "Profile chart height in pixels")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as the wavelength scale and peak labels")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)
	mode = strings.ToLower(mode)
	kind = strings.ToLower(kind)
	theme = strings.ToLower(theme)

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok := validRenderModes[RenderMode(mode)]; !ok {
		err = fmt.Errorf("invalid render mode: %s", mode)
	} else if _, ok := validProfileKinds[spectrum.ProfileKind(kind)]; !ok {
		err = fmt.Errorf("invalid profile kind: %s", kind)
	} else if _, ok := validColorThemes[ColorTheme(theme)]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	} else if c.Width < 2 || c.Height < 2 {
		err = errors.New("plot dimensions are too small")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Mode = RenderMode(mode)
	c.Kind = spectrum.ProfileKind(kind)
	c.Theme = ColorTheme(theme)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
