package app

import (
	"time"

	"github.com/optolab/spectra/internal/spectrum"
)

// ProfileData accumulates a session's stored profiles for rendering: one row
// of bin values per profile, a shared vertical scale and the time span of the
// capture.
type ProfileData struct {
	Bins                         int
	TimestampStart, TimestampEnd time.Time
	Scale                        *ScaleTracker
	Rows                         [][]float64
	Last                         *spectrum.Profile
}

func NewProfileData() *ProfileData {
	return &ProfileData{
		Scale: NewScaleTracker(),
		Rows:  make([][]float64, 0),
	}
}

func (d *ProfileData) Update(profile *spectrum.Profile) {
	values := profile.Values()

	d.Bins = max(d.Bins, len(values))

	if d.TimestampStart.IsZero() || d.TimestampStart.After(profile.Timestamp) {
		d.TimestampStart = profile.Timestamp
	}
	if d.TimestampEnd.IsZero() || d.TimestampEnd.Before(profile.Timestamp) {
		d.TimestampEnd = profile.Timestamp
	}

	d.Scale.Update(values)
	d.Rows = append(d.Rows, values)
	d.Last = profile
}
