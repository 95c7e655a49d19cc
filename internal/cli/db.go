package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/dragsort/internal/store"
)

// openStore opens the database at path. When mustExist is set a missing
// file is a command error instead of a fresh empty database.
func openStore(path string, mustExist bool) (*store.Store, error) {
	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("%s: database not found: %s", ErrCodeDatabase, path), err)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("%s: failed to open database", ErrCodeDatabase), err)
	}
	return st, nil
}

// isNotFound reports whether a store read failed because the row is missing.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
