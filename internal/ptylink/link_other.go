//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package ptylink

// Link is unavailable on this platform.
type Link struct{}

// Open always fails on this platform.
func Open() (*Link, error) {
	return nil, ErrUnsupported
}

func (l *Link) Path() string { return "" }

func (l *Link) Write(p []byte) (int, error) { return 0, ErrUnsupported }

func (l *Link) Close() error { return nil }
