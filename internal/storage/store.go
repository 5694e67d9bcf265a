package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/optolab/spectra/internal/spectrum"
)

// Store handles database operations for capture sessions, spectral profiles
// and detected peaks. Write and read connections are opened lazily and
// independently so a renderer can read a database another process is still
// writing.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store backed by the sqlite database at dbPath. The schema is
// initialized on first write.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// CreateSession creates a new capture session and returns its ID. config may
// be a string, raw bytes or any JSON-serializable value.
func (s *Store) CreateSession(ctx context.Context, sourceType, sourceID string, config any) (sessionID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch v := config.(type) {
		case string:
			configData.Valid = true
			configData.String = v

		case []byte:
			configData.Valid = true
			configData.String = string(v)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, sourceType, sourceID, configData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

// Session returns a session by its ID.
func (s *Store) Session(ctx context.Context, id int64) (session *spectrum.CaptureSession, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var sess spectrum.CaptureSession
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, id).Scan(&sess.ID, &sess.StartTime, &sess.SourceType, &sess.SourceID, &config); err != nil {
		err = fmt.Errorf("scanning session: %w", err)
		return
	}
	if config.Valid {
		sess.Config = &config.String
	}

	return &sess, nil
}

// Sessions returns all sessions in the database.
func (s *Store) Sessions(ctx context.Context) (sessions []*spectrum.CaptureSession, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess spectrum.CaptureSession
		var config sql.NullString
		if err = rows.Scan(&sess.ID, &sess.StartTime, &sess.SourceType, &sess.SourceID, &config); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		if config.Valid {
			sess.Config = &config.String
		}
		sessions = append(sessions, &sess)
	}
	return
}

// StoreProfile persists one profile as a batch of per-bin rows within a
// single transaction.
func (s *Store) StoreProfile(ctx context.Context, sessionID int64, profile *spectrum.Profile) (err error) {
	if len(profile.Points) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	values := make([]any, 0, len(profile.Points)*6)
	valuesPlaceholder := "(?, ?, ?, ?, ?, ?)"

	var sb strings.Builder
	sb.WriteString(insertProfileRowSQL)

	timestamp := profile.Timestamp.UTC()
	for i, point := range profile.Points {
		values = append(values,
			sessionID,
			timestamp,
			string(profile.Kind),
			point.Bin,
			point.Wavelength,
			point.Value,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	// Single batch insert
	if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting profile rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// StorePeaks persists the peaks detected for the profile captured at the
// given timestamp.
func (s *Store) StorePeaks(ctx context.Context, sessionID int64, profile *spectrum.Profile, peaks []spectrum.Peak) (err error) {
	if len(peaks) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, insertPeakSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	timestamp := profile.Timestamp.UTC()
	for _, peak := range peaks {
		if _, err = stmt.ExecContext(ctx, sessionID, timestamp, peak.Bin, peak.Wavelength, peak.Value); err != nil {
			return fmt.Errorf("inserting peak: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Peaks returns the stored peaks for the profile captured at the given
// timestamp, in bin order.
func (s *Store) Peaks(ctx context.Context, sessionID int64, profile *spectrum.Profile) (peaks []spectrum.Peak, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectPeaksSQL, sessionID, profile.Timestamp.UTC())
	if err != nil {
		err = fmt.Errorf("querying peaks: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var peak spectrum.Peak
		if err = rows.Scan(&peak.Bin, &peak.Wavelength, &peak.Value); err != nil {
			err = fmt.Errorf("scanning peak: %w", err)
			return
		}
		peaks = append(peaks, peak)
	}
	return
}

// ReadProfiles creates a ProfileReader over a session's stored profiles,
// applying the given filters. The reader must be closed after use.
func (s *Store) ReadProfiles(ctx context.Context, sessionID int64, opts ...ReaderOption) (*ProfileReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newProfileReader(ctx, db, sessionID, opts...)
}

// Close closes the database connections.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
