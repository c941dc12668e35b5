package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Data absence inside resolvers is not an error; these
// cover the two fatal paths and input rejection.
var (
	ErrNoQuestion = errors.New("no question text provided")
	ErrNotFound   = errors.New("record not found")
)

// DataAccessError wraps an infrastructure failure from the claim store.
// Resolvers propagate it; the API layer maps it to a server error.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access failed during %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// NewDataAccessError wraps err with the failing operation name.
func NewDataAccessError(op string, err error) *DataAccessError {
	return &DataAccessError{Op: op, Err: err}
}

// IsDataAccess reports whether err originated in the claim store.
func IsDataAccess(err error) bool {
	var dae *DataAccessError
	return errors.As(err, &dae)
}
