//go:build linux || darwin || freebsd || netbsd || openbsd

package ptylink

import (
	"errors"
	"fmt"
	"os"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// Link is a pseudo-terminal pair. Data written to the Link comes out of the
// terminal at Path, where a program under test can open it like a serial
// device.
type Link struct {
	controller *os.File
	terminal   *os.File
}

// Open allocates a pseudo-terminal with echo disabled, so nothing written
// into it is reflected back to the writer.
func Open() (*Link, error) {
	controller, terminal, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if err := disableEcho(int(terminal.Fd())); err != nil {
		controller.Close()
		terminal.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return &Link{controller: controller, terminal: terminal}, nil
}

// Path returns the device path of the terminal side.
func (l *Link) Path() string {
	return l.terminal.Name()
}

// Write implements io.Writer.
func (l *Link) Write(p []byte) (int, error) {
	return l.controller.Write(p)
}

// Close releases both sides of the pair.
func (l *Link) Close() error {
	return errors.Join(l.controller.Close(), l.terminal.Close())
}

func disableEcho(fd int) error {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return err
	}
	termios.Lflag &^= unix.ECHO | unix.ECHONL
	return unix.IoctlSetTermios(fd, ioctlSetTermios, termios)
}
