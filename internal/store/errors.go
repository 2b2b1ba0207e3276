package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when a write violates a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// DuplicateKeyError names the unique constraint a write collided with.
type DuplicateKeyError struct {
	Constraint string
}

func (e *DuplicateKeyError) Error() string {
	if e.Constraint == "" {
		return ErrDuplicateKey.Error()
	}
	return ErrDuplicateKey.Error() + ": " + e.Constraint
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

const uniqueViolation = pq.ErrorCode("23505")

// translateError maps driver errors onto the package's sentinel errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &DuplicateKeyError{Constraint: pqErr.Constraint}
	}
	return err
}

// validID reports whether id can name a row. Identities are UUIDs; anything
// else cannot exist and is reported as ErrNotFound by callers.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
