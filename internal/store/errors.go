package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("conflict")

	// ErrInvalidReference is returned when a write points at a missing parent row.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrUnknownColumn is returned when a field or condition names a column
	// the table does not have.
	ErrUnknownColumn = errors.New("unknown column")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// ConstraintError carries the name of the violated constraint. It unwraps to
// ErrConflict or ErrInvalidReference.
type ConstraintError struct {
	Kind       error
	Constraint string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Constraint)
}

func (e *ConstraintError) Unwrap() error {
	return e.Kind
}

// mapError translates driver errors into the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &ConstraintError{Kind: ErrConflict, Constraint: pqErr.Constraint}
		case pqForeignKeyViolation:
			return &ConstraintError{Kind: ErrInvalidReference, Constraint: pqErr.Constraint}
		}
	}
	return err
}

// Constraint returns the constraint named by a ConstraintError in err's
// chain, or "".
func Constraint(err error) string {
	var constraintErr *ConstraintError
	if errors.As(err, &constraintErr) {
		return constraintErr.Constraint
	}
	return ""
}
