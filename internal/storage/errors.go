package storage

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
)

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// notFound converts sql.ErrNoRows into a core.NotFoundError.
func notFound(err error, resource string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFound(resource, id)
	}
	return err
}

// expectOne reports a NotFoundError when an UPDATE matched no live row.
func expectOne(res sql.Result, resource string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.NotFound(resource, id)
	}
	return nil
}
