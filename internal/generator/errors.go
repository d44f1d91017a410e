package generator

import "errors"

// ErrWrite wraps a failure writing a value to the output.
var ErrWrite = errors.New("error writing output")
