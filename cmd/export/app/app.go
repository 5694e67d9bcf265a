package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/optolab/spectra/internal/export"
	"github.com/optolab/spectra/internal/spectrum"
	"github.com/optolab/spectra/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.New(config.DBPath)
	defer store.Close()

	reference, err := readProfile(ctx, store, config.SessionID, spectrum.KindReference, false)
	if err != nil {
		return err
	}
	sample, err := readProfile(ctx, store, config.SessionID, spectrum.KindSample, true)
	if err != nil {
		return err
	}
	absorbance, err := readProfile(ctx, store, config.SessionID, spectrum.KindAbsorbance, true)
	if err != nil {
		return err
	}

	records, err := export.BuildRecords(reference, sample, absorbance)
	if err != nil {
		return fmt.Errorf("aligning profiles: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	if err = export.WriteCSV(out, records); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	logger.Info("export finished",
		slog.String("destination", config.OutputFile),
		slog.String("rows", humanize.Comma(int64(len(records)))),
		slog.Time("sampleTimestamp", sample.Timestamp))

	return nil
}

// readProfile returns the first or last stored profile of the given kind.
func readProfile(ctx context.Context, store *storage.Store, sessionID int64, kind spectrum.ProfileKind, last bool) (*spectrum.Profile, error) {
	reader, err := store.ReadProfiles(ctx, sessionID, storage.WithKind(kind))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var profile *spectrum.Profile
	for reader.Next() {
		profile = reader.Current()
		if !last {
			break
		}
	}
	if err = reader.Error(); err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("session %d has no %s profile", sessionID, kind)
	}
	return profile, nil
}
