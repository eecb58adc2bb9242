// Package calcerr holds the error values shared by the calculation packages.
// Refinements wrap one of the three base errors so callers can match on
// either the specific value or its category with errors.Is.
package calcerr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidStrengthTable = errors.New("invalid strength table")
	ErrInvalidGeometry      = errors.New("invalid geometry")

	ErrDivisionByZero     = fmt.Errorf("%w: division by zero", ErrInvalidInput)
	ErrInvalidThickness   = fmt.Errorf("%w: thickness must be positive", ErrInvalidInput)
	ErrInvalidSampleCount = fmt.Errorf("%w: sample count must be positive", ErrInvalidInput)
)

// IsInvalid reports whether err belongs to any of the caller-input categories.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidStrengthTable) ||
		errors.Is(err, ErrInvalidGeometry)
}
