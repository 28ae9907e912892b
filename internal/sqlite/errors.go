package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// classify maps driver errors onto the store's error kinds. Errors it does
// not recognize pass through unchanged.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	var se *msqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		switch code & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return &types.ConstraintError{Table: table, Constraint: constraintKind(code, err.Error()), Err: err}
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %w", types.ErrTxTimeout, err)
		case sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL, sqlite3.SQLITE_CORRUPT,
			sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_PERM, sqlite3.SQLITE_READONLY,
			sqlite3.SQLITE_NOTADB:
			return &types.IOError{Op: table, Err: err}
		}
		return err
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return &types.ConstraintError{Table: table, Constraint: constraintKind(0, err.Error()), Err: err}
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", types.ErrStoreClosed, err)
	}
	return err
}

func constraintKind(code int, msg string) string {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return types.ConstraintUnique
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return types.ConstraintPrimaryKey
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return types.ConstraintForeignKey
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return types.ConstraintNotNull
	}
	// Without extended codes the message still names the constraint.
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return types.ConstraintUnique
	case strings.Contains(msg, "PRIMARY KEY"):
		return types.ConstraintPrimaryKey
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return types.ConstraintForeignKey
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return types.ConstraintNotNull
	}
	return types.ConstraintOther
}
