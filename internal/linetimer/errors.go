package linetimer

import "errors"

var (
	// ErrEOFWhileIgnoring is returned when input ends before the requested
	// number of leading lines has been skipped.
	ErrEOFWhileIgnoring = errors.New("EOF while ignoring input lines")
	// ErrRead wraps a failure reading the input stream.
	ErrRead = errors.New("error reading input")
	// ErrWrite wraps a failure writing echoed lines or timing output.
	ErrWrite = errors.New("error writing output")
)
