package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/optolab/spectra/internal/spectrum"
)

// ReaderOption configures a ProfileReader with filtering criteria.
type ReaderOption func(*ProfileReader)

// WithKind limits the reader to profiles of one kind.
func WithKind(kind spectrum.ProfileKind) ReaderOption {
	return func(r *ProfileReader) {
		r.kind = &kind
	}
}

// WithStartTime excludes profiles captured before t.
func WithStartTime(t time.Time) ReaderOption {
	return func(r *ProfileReader) {
		r.startTime = &t
	}
}

// WithEndTime excludes profiles captured after t.
func WithEndTime(t time.Time) ReaderOption {
	return func(r *ProfileReader) {
		r.endTime = &t
	}
}

// WithTimeRange excludes profiles captured outside [startTime, endTime].
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(r *ProfileReader) {
		r.startTime = &startTime
		r.endTime = &endTime
	}
}

// ProfileReader iterates over a session's stored profiles in capture order,
// reassembling per-bin rows into complete profiles. A profile boundary is a
// change of timestamp or kind. Each reader instance must be used from a
// single goroutine and closed after use.
type ProfileReader struct {
	sessionID int64

	kind      *spectrum.ProfileKind
	startTime *time.Time
	endTime   *time.Time

	rows    *sql.Rows
	current *spectrum.Profile
	pending *pendingRow
	err     error
}

type pendingRow struct {
	timestamp time.Time
	kind      spectrum.ProfileKind
	point     spectrum.Point
}

func newProfileReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*ProfileReader, error) {
	r := &ProfileReader{sessionID: sessionID}
	for _, opt := range opts {
		opt(r)
	}

	query, args := r.buildQuery()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}

	r.rows = rows
	return r, nil
}

func (r *ProfileReader) buildQuery() (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
SELECT
    timestamp,
    kind,
    bin,
    wavelength,
    value
FROM profiles
WHERE
    session_id = ?`)

	args := []any{r.sessionID}

	if r.kind != nil {
		sb.WriteString(" AND kind = ?")
		args = append(args, string(*r.kind))
	}
	if r.startTime != nil {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, r.startTime.UTC())
	}
	if r.endTime != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, r.endTime.UTC())
	}

	sb.WriteString(" ORDER BY timestamp, kind, bin")
	return sb.String(), args
}

// Next advances to the next complete profile. It returns false at the end of
// the data or on error; check Error to distinguish the two.
func (r *ProfileReader) Next() bool {
	if r.err != nil || r.rows == nil {
		return false
	}

	var profile *spectrum.Profile
	if r.pending != nil {
		profile = &spectrum.Profile{
			Timestamp: r.pending.timestamp,
			Kind:      r.pending.kind,
			Points:    []spectrum.Point{r.pending.point},
		}
		r.pending = nil
	}

	for r.rows.Next() {
		var timestamp time.Time
		var kind string
		var point spectrum.Point

		if err := r.rows.Scan(&timestamp, &kind, &point.Bin, &point.Wavelength, &point.Value); err != nil {
			r.err = fmt.Errorf("scanning profile row: %w", err)
			return false
		}

		if profile == nil {
			profile = &spectrum.Profile{Timestamp: timestamp, Kind: spectrum.ProfileKind(kind)}
		} else if !timestamp.Equal(profile.Timestamp) || spectrum.ProfileKind(kind) != profile.Kind {
			// First row of the next profile: buffer it and emit the
			// completed one.
			r.pending = &pendingRow{timestamp: timestamp, kind: spectrum.ProfileKind(kind), point: point}
			r.current = profile
			return true
		}

		profile.Points = append(profile.Points, point)
	}

	if err := r.rows.Err(); err != nil {
		r.err = fmt.Errorf("iterating profile rows: %w", err)
		return false
	}

	if profile != nil {
		r.current = profile
		return true
	}
	return false
}

// Current returns the profile produced by the last successful Next call.
func (r *ProfileReader) Current() *spectrum.Profile {
	return r.current
}

// Error returns any error encountered during iteration.
func (r *ProfileReader) Error() error {
	return r.err
}

// Close releases the reader's database resources.
func (r *ProfileReader) Close() error {
	if r.rows == nil {
		return nil
	}
	rows := r.rows
	r.rows = nil
	return rows.Close()
}
