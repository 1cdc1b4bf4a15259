package measure

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidComparison is returned when two measure values cannot be
	// compared, e.g. lift values on opposite sides of 1.
	ErrInvalidComparison = errors.New("invalid measure comparison")

	// ErrInvalidValue is returned for NaN, -Inf or otherwise unusable values.
	ErrInvalidValue = errors.New("invalid measure value")

	// ErrUnknownMeasure is returned for names missing from a Registry.
	ErrUnknownMeasure = errors.New("unknown measure")
)

// ComparisonError describes a rejected gain computation.
type ComparisonError struct {
	Measure Measure
	Other   Measure
	Reason  string
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("%s: %s vs %s (%s)", ErrInvalidComparison, e.Measure, e.Other, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidComparison) match.
func (e *ComparisonError) Is(target error) bool {
	return target == ErrInvalidComparison
}
