package timing

import "errors"

var (
	// ErrEqualBounds is returned when a triangle wave is configured with
	// identical start and end values.
	ErrEqualBounds = errors.New("start and end values must differ")
	// ErrInvalidRate is returned for a target rate that is not positive.
	ErrInvalidRate = errors.New("rate must be a positive number of events per second")
	// ErrRateTooHigh is returned when the period for a rate truncates to zero.
	ErrRateTooHigh = errors.New("rate exceeds 1000000 events per second")
)
