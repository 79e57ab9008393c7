package compliance

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// InvalidDateError reports a date input that could not be parsed or is missing.
type InvalidDateError struct {
	Field string
	Value string
}

func (e *InvalidDateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid date: %s is required", e.Field)
	}
	return fmt.Sprintf("invalid date: %s=%q", e.Field, e.Value)
}

func (e *InvalidDateError) Unwrap() error {
	return ErrInvalidDate
}

// InvalidDurationError reports a duration that is neither "0.5" nor a whole number of years.
type InvalidDurationError struct {
	Value string
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %q: expected \"0.5\" or a positive number of years", e.Value)
}

func (e *InvalidDurationError) Unwrap() error {
	return ErrInvalidDuration
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ForbiddenError is returned when a mandatory record is about to be removed.
type ForbiddenError struct {
	RecordID string
	Name     string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("record %s (%s) is mandatory and cannot be deleted", e.RecordID, e.Name)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsClientError reports whether err was caused by caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
