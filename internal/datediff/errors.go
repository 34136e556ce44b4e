package datediff

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes difference errors.
type ErrorCode string

const (
	// ErrCodeInvalidUnit indicates a Unit outside the closed enumeration.
	ErrCodeInvalidUnit ErrorCode = "INVALID_UNIT"

	// ErrCodeOverflow indicates a boundary count outside the int32 range.
	ErrCodeOverflow ErrorCode = "ARITHMETIC_OVERFLOW"
)

// Error is returned by Diff and DiffNull. Neither condition is transient.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Unit is the unit being computed, or the out-of-range value for
	// ErrCodeInvalidUnit. ParseUnit failures carry -1.
	Unit Unit

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidUnit reports whether err is an invalid unit error.
// Uses errors.As to handle wrapped errors.
func IsInvalidUnit(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == ErrCodeInvalidUnit
	}
	return false
}

// IsOverflow reports whether err is an arithmetic overflow error.
// Uses errors.As to handle wrapped errors.
func IsOverflow(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == ErrCodeOverflow
	}
	return false
}

func invalidUnit(u Unit) *Error {
	return &Error{
		Code:    ErrCodeInvalidUnit,
		Unit:    u,
		Message: fmt.Sprintf("unit %d is not a valid date part", int(u)),
	}
}

func overflow(u Unit) *Error {
	return &Error{
		Code:    ErrCodeOverflow,
		Unit:    u,
		Message: fmt.Sprintf("%s difference does not fit in int32", u),
	}
}
