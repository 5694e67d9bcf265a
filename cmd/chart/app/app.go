package app

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/optolab/spectra/internal/pipeline"
	"github.com/optolab/spectra/internal/spectrum"
	"github.com/optolab/spectra/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.New(config.DBPath)
	defer store.Close()

	return render(ctx, store, config, logger)
}

func render(ctx context.Context, store *storage.Store, config *Config, logger *slog.Logger) error {
	reader, err := store.ReadProfiles(ctx, config.SessionID, storage.WithKind(config.Kind))
	if err != nil {
		return err
	}
	defer reader.Close()

	data := NewProfileData()
	for reader.Next() {
		data.Update(reader.Current())
	}
	if err = reader.Error(); err != nil {
		return err
	}

	logger.Info("finished reading profiles",
		slog.Group("stats",
			slog.String("kind", string(config.Kind)),
			slog.Int("profiles", len(data.Rows)),
			slog.Int("bins", data.Bins),
			slog.String("minTimestamp", data.TimestampStart.Local().Format(time.DateTime)),
			slog.String("maxTimestamp", data.TimestampEnd.Local().Format(time.DateTime)),
		))

	logger.Info("rendering session",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("mode", string(config.Mode)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", config.Width),
		))

	var img *image.RGBA
	switch config.Mode {
	case ModeWaterfall:
		img, err = NewWaterfallRenderer(config).Render(data)

	default:
		var peaks []spectrum.Peak
		if data.Last != nil {
			if peaks, err = store.Peaks(ctx, config.SessionID, data.Last); err != nil {
				return fmt.Errorf("reading peaks: %w", err)
			}
			if len(peaks) == 0 {
				detector := pipeline.NewPeakDetector(pipeline.WithPlotWidth(config.Width))
				peaks = detector.Detect(data.Last.Values())
			}
		}
		img, err = NewChartRenderer(config).Render(data, peaks)
	}
	if err != nil {
		return fmt.Errorf("rendering session: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})

	default:
		err = png.Encode(out, img)
	}
	return err
}
