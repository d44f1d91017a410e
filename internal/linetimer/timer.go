// Package linetimer echoes lines from a byte stream and measures the time
// between their arrivals.
package linetimer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/cbrunnkvist/looptime/internal/timing"
)

const (
	lineChanBuffer = 64 // Lines read ahead of the timing loop
	barScale       = 10 // Graph characters per millisecond
)

// Config holds the line timer options.
type Config struct {
	Count      int  // Stop after this many lines (<= 0 = until EOF)
	Ignore     int  // Leading lines consumed before timing starts
	Quiet      bool // Do not echo received lines
	Verbose    bool // Print interval and running statistics per line
	Graph      bool // Print a bar per interval
	GraphWidth int  // Clip bars to this many columns (0 = unclipped)
	Policy     timing.FirstIntervalPolicy
}

// receivedLine is a line of input stamped with its arrival time.
type receivedLine struct {
	text string
	at   time.Time
}

// Timer reads lines, echoes them and folds their arrival times into an
// interval accumulator.
type Timer struct {
	config Config
	out    io.Writer
	logger *zap.Logger
	clock  timing.Clock
	acc    *timing.Accumulator
	slow   *color.Color // Bars for intervals above the running average
}

// New creates a Timer writing its per-line output to out.
func New(cfg Config, out io.Writer, logger *zap.Logger, clock timing.Clock) *Timer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = timing.SystemClock{}
	}
	return &Timer{
		config: cfg,
		out:    out,
		logger: logger,
		clock:  clock,
		acc:    timing.NewAccumulator(cfg.Policy),
		slow:   color.New(color.FgYellow),
	}
}

// Summary returns the statistics gathered so far.
// It must not be called while Run is in progress.
func (t *Timer) Summary() timing.Summary {
	return t.acc.Summary()
}

// Run reads lines from src until EOF, the configured count is reached or
// ctx is cancelled. A clean EOF or reaching the count returns nil; a
// cancelled context returns ctx.Err().
func (t *Timer) Run(ctx context.Context, src io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := t.startReader(ctx, src)

	if t.config.Ignore > 0 {
		t.logger.Debug("Ignoring leading lines", zap.Int("count", t.config.Ignore))
	}
	for ignored := 0; ignored < t.config.Ignore; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-lines:
			if !ok {
				if err := pendingError(readErr); err != nil {
					return err
				}
				return ErrEOFWhileIgnoring
			}
			ignored++
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := pendingError(readErr); err != nil {
					return err
				}
				t.logger.Debug("Input closed", zap.Int("lines", t.acc.Count()))
				return nil
			}
			if err := t.handle(l); err != nil {
				return err
			}
			if t.config.Count > 0 && t.acc.Count() >= t.config.Count {
				t.logger.Debug("Line limit reached", zap.Int("count", t.config.Count))
				return nil
			}
		}
	}
}

// startReader reads lines from src in a goroutine so that the timing loop
// can react to cancellation while a read is blocked. Each line is stamped
// as soon as it is complete. A read error is delivered on the error channel
// before the line channel is closed.
func (t *Timer) startReader(ctx context.Context, src io.Reader) (<-chan receivedLine, <-chan error) {
	lines := make(chan receivedLine, lineChanBuffer)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		r := bufio.NewReader(src)
		for {
			text, err := r.ReadString('\n')
			if len(text) > 0 {
				l := receivedLine{text: trimEOL(text), at: t.clock.Now()}
				select {
				case lines <- l:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr <- err
				}
				return
			}
		}
	}()

	return lines, readErr
}

func pendingError(readErr <-chan error) error {
	select {
	case err := <-readErr:
		return fmt.Errorf("%w: %w", ErrRead, err)
	default:
		return nil
	}
}

// handle records one line and prints whatever the configuration asks for.
func (t *Timer) handle(l receivedLine) error {
	obs := t.acc.Observe(l.at)

	if t.config.Verbose {
		if _, err := fmt.Fprintln(t.out, FormatObservation(obs)); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	if !t.config.Quiet {
		if _, err := fmt.Fprintln(t.out, l.text); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	if t.config.Graph && obs.HasElapsed {
		bar := strings.Repeat("#", t.barLength(obs.Elapsed))
		var err error
		if obs.Intervals > 1 && obs.Elapsed > obs.Avg {
			_, err = t.slow.Fprintln(t.out, bar)
		} else {
			_, err = fmt.Fprintln(t.out, bar)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	return nil
}

func (t *Timer) barLength(elapsedMs float64) int {
	n := int(elapsedMs * barScale)
	if n < 0 {
		n = 0
	}
	if t.config.GraphWidth > 0 && n > t.config.GraphWidth {
		n = t.config.GraphWidth
	}
	return n
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
