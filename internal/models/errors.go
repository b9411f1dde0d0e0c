package models

import (
	"errors"
	"fmt"
)

// Error classes surfaced to callers. Services wrap them with context,
// handlers classify them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

var (
	ErrOfferNotFound       = fmt.Errorf("offer %w", ErrNotFound)
	ErrPropertyNotFound    = fmt.Errorf("property %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrAgreementNotFound   = fmt.Errorf("agreement %w", ErrNotFound)
	ErrRentMonthNotFound   = fmt.Errorf("rent month record %w", ErrNotFound)
)

// Validationf builds an ErrValidation with a formatted reason.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Forbiddenf builds an ErrForbidden with a formatted reason.
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// UniqueViolation reports a store-level uniqueness failure on Constraint.
type UniqueViolation struct {
	Constraint string
	Err        error
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("unique constraint %q violated: %v", e.Constraint, e.Err)
}

func (e *UniqueViolation) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConflict) match unique violations.
func (e *UniqueViolation) Is(target error) bool { return target == ErrConflict }
