package internal

import (
	"errors"
	"fmt"
)

var (
	ErrConflictingLaws = errors.New("duration and decay cannot be combined")
	ErrRangeMismatch   = errors.New("range and output must have the same length")
	ErrRangeTooShort   = errors.New("range needs at least two breakpoints")
	ErrOutputType      = errors.New("output must be all numbers or all strings")
	ErrStringShape     = errors.New("output strings must contain the same number of numeric tokens")
	ErrValueType       = errors.New("unsupported animated value type")
	ErrLengthMismatch  = errors.New("array values must have the same length")
	ErrNoSources       = errors.New("interpolation needs at least one source")
	ErrUnknownEasing   = errors.New("unknown easing")
	ErrUnknownPreset   = errors.New("unknown config preset")
	ErrDisposed        = errors.New("spring value is disposed")
)

// StepError is returned when a frame step panics (usually from a user easing).
// The animation record is left as it was before the step.
type StepError struct {
	Key   string
	Index int
	Cause any
}

func (e *StepError) Error() string {
	return fmt.Sprintf("spring %q[%d]: step panicked: %v", e.Key, e.Index, e.Cause)
}

func (e *StepError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
