package service

import "errors"

var (
	// ErrValidation marks input rejected before any write is attempted.
	ErrValidation = errors.New("validation failed")
	// ErrScheduleConflict is returned when another match already holds the
	// same venue, date and time.
	ErrScheduleConflict = errors.New("a match is already scheduled at this venue, date and time")
)

// ValidationError names the offending field.  errors.Is(err, ErrValidation)
// holds for every ValidationError.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }
