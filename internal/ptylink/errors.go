// Package ptylink provides a pseudo-terminal for feeding generated data to
// programs that expect a serial device.
package ptylink

import "errors"

var (
	// ErrOpen wraps a failure allocating or configuring the pseudo-terminal.
	ErrOpen = errors.New("failed to open pseudo-terminal")
	// ErrUnsupported is returned on platforms without pseudo-terminals.
	ErrUnsupported = errors.New("pseudo-terminals are not supported on this platform")
)
