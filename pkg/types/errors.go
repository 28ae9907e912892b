package types

import (
	"errors"
	"fmt"
)

// Store lifecycle errors.
var (
	ErrStoreClosed   = errors.New("store is closed")
	ErrAlreadyOpen   = errors.New("store is already open")
	ErrTableNotFound = errors.New("table not found")
)

// Repository operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrRemoved     = errors.New("entity is removed")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
	ErrUnknownEnum = errors.New("unknown enum value")
)

// Transaction errors.
var (
	ErrNestedTransaction = errors.New("transaction already in progress")
	ErrTxTimeout         = errors.New("timed out waiting for transaction")
)

// Constraint kinds reported by ConstraintError.
const (
	ConstraintUnique     = "unique"
	ConstraintPrimaryKey = "primary key"
	ConstraintForeignKey = "foreign key"
	ConstraintNotNull    = "not null"
	ConstraintOther      = "constraint"
)

// SchemaError reports a failed table creation or migration step. A store
// that hits one refuses to open.
type SchemaError struct {
	Step string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema step %s: %v", e.Step, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ConstraintError reports a write rejected by a storage constraint, such as
// a duplicate custom field title.
type ConstraintError struct {
	Table      string
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint violated on %s: %v", e.Constraint, e.Table, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// IOError reports that the store file could not be read or written.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("store i/o during %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsConstraint reports whether err is, or wraps, a ConstraintError.
func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// IsUniqueViolation reports whether err wraps a unique or primary key
// ConstraintError.
func IsUniqueViolation(err error) bool {
	var ce *ConstraintError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Constraint == ConstraintUnique || ce.Constraint == ConstraintPrimaryKey
}

// IsSchema reports whether err is, or wraps, a SchemaError.
func IsSchema(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsIO reports whether err is, or wraps, an IOError.
func IsIO(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}
