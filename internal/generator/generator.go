// Package generator emits a triangle wave of integers, one per line, at a
// fixed target rate.
package generator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/cbrunnkvist/looptime/internal/timing"
)

// Defaults for the generator options.
const (
	DefaultRate  = 8000
	DefaultStart = -128
	DefaultEnd   = 128
	Unlimited    = -1
)

// Config holds the generator options.
type Config struct {
	Rate    int    // Values per second
	Start   int    // First value of the wave
	End     int    // Turning point opposite Start
	Count   int    // Values to emit before stopping (< 0 = forever)
	Verbose bool   // Per-iteration timing on the diagnostic writer
	Pacing  string // timing.PacingSleep or timing.PacingBucket
}

// Result summarises a finished run.
type Result struct {
	Emitted  int
	Overruns int
}

// Generator writes values produced by a triangle wave, pacing each one.
type Generator struct {
	config Config
	out    *bufio.Writer
	diag   io.Writer
	logger *zap.Logger
	wave   *timing.Triangle
	pacer  timing.Pacer
	period int64 // microseconds, for diagnostics
	buf    []byte
}

// New validates cfg and creates a Generator writing values to out and
// verbose diagnostics to diag.
func New(cfg Config, out, diag io.Writer, logger *zap.Logger, clock timing.Clock) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = timing.SystemClock{}
	}

	wave, err := timing.NewTriangle(cfg.Start, cfg.End)
	if err != nil {
		return nil, err
	}
	period, err := timing.PeriodForRate(cfg.Rate)
	if err != nil {
		return nil, err
	}
	pacer, err := timing.NewPacer(cfg.Pacing, period, clock)
	if err != nil {
		return nil, err
	}

	return &Generator{
		config: cfg,
		out:    bufio.NewWriter(out),
		diag:   diag,
		logger: logger,
		wave:   wave,
		pacer:  pacer,
		period: period.Microseconds(),
		buf:    make([]byte, 0, 24),
	}, nil
}

// Run emits values until the configured count is reached or ctx is
// cancelled. Every value is flushed before the pacer sleeps. Reaching the
// count returns nil; cancellation returns ctx.Err().
func (g *Generator) Run(ctx context.Context) (Result, error) {
	var res Result

	g.logger.Debug("Generator starting",
		zap.Int("rate", g.config.Rate),
		zap.Int64("period_us", g.period),
		zap.Int("low", g.wave.Low()),
		zap.Int("high", g.wave.High()),
		zap.Int("count", g.config.Count),
	)

	g.pacer.Start()
	for g.config.Count < 0 || res.Emitted < g.config.Count {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := g.emit(g.wave.Next()); err != nil {
			return res, err
		}
		res.Emitted++

		cycle, err := g.pacer.Wait(ctx)
		if cycle.Overrun {
			res.Overruns++
			g.logger.Warn("Overrun detected, skipping sleep",
				zap.Int("iteration", res.Emitted),
				zap.Duration("elapsed", cycle.Elapsed),
				zap.Duration("period", cycle.Period),
			)
		} else if g.config.Verbose && g.diag != nil {
			fmt.Fprintf(g.diag, "rate: %d Hz  target time: %d us  elapsed time: %d us  sleep time: %d us\n",
				g.config.Rate, g.period, cycle.Elapsed.Microseconds(), cycle.Sleep.Microseconds())
		}
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (g *Generator) emit(v int) error {
	g.buf = strconv.AppendInt(g.buf[:0], int64(v), 10)
	g.buf = append(g.buf, '\n')
	if _, err := g.out.Write(g.buf); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := g.out.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
