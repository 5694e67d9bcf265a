package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      source_type,
                      source_id,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    source_type,
    source_id,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    source_type,
    source_id,
    config
FROM sessions`

	insertProfileRowSQL = `
INSERT INTO profiles (session_id,
                      timestamp,
                      kind,
                      bin,
                      wavelength,
                      value)
VALUES `

	insertPeakSQL = `
INSERT INTO peaks (session_id,
                   timestamp,
                   bin,
                   wavelength,
                   value)
VALUES (?, ?, ?, ?, ?)`

	selectPeaksSQL = `
SELECT
    bin,
    wavelength,
    value
FROM peaks
WHERE
    session_id = ? AND timestamp = ?
ORDER BY bin`
)

//go:embed schema.sql
var schemaSQL string
