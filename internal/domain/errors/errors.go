package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrVendorNotFound = errors.New("no active vendor for host")
	ErrInvalidDomain  = errors.New("invalid or empty domain")
)

// RepositoryError reports a failed backend lookup. It is never used for "no rows".
type RepositoryError struct {
	Op  string // repository operation, e.g. "find_by_domain"
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("vendor repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// NewRepositoryError wraps err unless it is nil or already a RepositoryError.
func NewRepositoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RepositoryError
	if errors.As(err, &re) {
		return err
	}
	return &RepositoryError{Op: op, Err: err}
}

// IsRepositoryError reports whether err is (or wraps) a RepositoryError.
func IsRepositoryError(err error) bool {
	var re *RepositoryError
	return errors.As(err, &re)
}
