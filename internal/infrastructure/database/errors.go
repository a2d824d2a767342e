package database

import (
	"errors"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint. Errors that do not carry a driver code are matched on the
// SQLite message text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
