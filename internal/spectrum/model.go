package spectrum

import "time"

// ProfileKind identifies what a stored profile represents.
type ProfileKind string

const (
	KindReference  ProfileKind = "reference"
	KindSample     ProfileKind = "sample"
	KindAbsorbance ProfileKind = "absorbance"
)

// CaptureSession represents a single spectrometer capture session with a
// specific frame source. Each session records metadata about when and how the
// capture was performed.
type CaptureSession struct {
	ID         int64     `json:"ID"`               // Unique identifier for the session
	StartTime  time.Time `json:"startTime"`        // When the capture session began
	SourceType string    `json:"sourceType"`       // Type of frame source used (e.g., "ffmpeg", "sim")
	SourceID   string    `json:"sourceID"`         // Identifier of the specific source (e.g., device path)
	Config     *string   `json:"config,omitempty"` // Optional source configuration in JSON format
}

// Point represents a single spectral measurement at one wavelength bin.
type Point struct {
	Bin        int     `json:"bin"`        // Bin index within the profile
	Wavelength int     `json:"wavelength"` // Approximate wavelength in nm
	Value      float64 `json:"value"`      // Intensity or absorbance value
}

// Profile represents one complete spectral measurement at a point in time:
// an ordered sequence of per-bin values spanning the visible range.
type Profile struct {
	Timestamp time.Time   `json:"timestamp"`        // When the underlying frame was captured
	Kind      ProfileKind `json:"kind"`             // What the values represent
	Points    []Point     `json:"points,omitempty"` // Ordered measurements, one per bin
}

// Values returns the profile's bin values as a plain slice in bin order.
func (p *Profile) Values() []float64 {
	values := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		values[i] = pt.Value
	}
	return values
}

// NewProfile builds a Profile from raw bin values, mapping each bin index to
// its approximate wavelength.
func NewProfile(timestamp time.Time, kind ProfileKind, values []float64) *Profile {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{
			Bin:        i,
			Wavelength: BinWavelength(i, len(values)),
			Value:      v,
		}
	}
	return &Profile{Timestamp: timestamp, Kind: kind, Points: points}
}

// Peak represents a locally dominant maximum found in a smoothed profile.
// Peaks are transient annotation data; stored copies are recomputable.
type Peak struct {
	Bin        int     `json:"bin"`        // Bin index of the maximum
	Wavelength int     `json:"wavelength"` // Approximate wavelength in nm
	Value      float64 `json:"value"`      // Profile value at the maximum
}
