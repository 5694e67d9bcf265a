// Package export writes measurement records to interchange formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/optolab/spectra/internal/spectrum"
)

// Record is one exported row: the intensities and absorbance measured at a
// single wavelength bin.
type Record struct {
	Wavelength int
	Reference  float64
	Sample     float64
	Absorbance float64
}

var csvHeader = []string{"wavelength_nm", "reference", "sample", "absorbance"}

// BuildRecords aligns a reference profile, a sample profile and an absorbance
// profile into per-bin records. All three must have the same length.
func BuildRecords(reference, sample, absorbance *spectrum.Profile) ([]Record, error) {
	if len(sample.Points) != len(reference.Points) || len(absorbance.Points) != len(reference.Points) {
		return nil, fmt.Errorf("profile lengths differ: reference %d, sample %d, absorbance %d",
			len(reference.Points), len(sample.Points), len(absorbance.Points))
	}

	records := make([]Record, len(reference.Points))
	for i := range records {
		records[i] = Record{
			Wavelength: reference.Points[i].Wavelength,
			Reference:  reference.Points[i].Value,
			Sample:     sample.Points[i].Value,
			Absorbance: absorbance.Points[i].Value,
		}
	}
	return records, nil
}

// WriteCSV writes records as four-column CSV rows with a header line.
// Intensities use two decimal places, absorbance four.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		row := []string{
			fmt.Sprintf("%d", r.Wavelength),
			fmt.Sprintf("%.2f", r.Reference),
			fmt.Sprintf("%.2f", r.Sample),
			fmt.Sprintf("%.4f", r.Absorbance),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
