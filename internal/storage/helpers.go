package storage

import (
	"database/sql"
	"errors"
)

// closeWithError closes cl and preserves its error only when the surrounding
// operation did not already fail.
func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// rollbackWithError rolls back tx unless it was already committed, preserving
// the rollback error only when the surrounding operation did not fail.
func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}
