package timing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacing modes accepted by NewPacer.
const (
	PacingSleep  = "sleep"
	PacingBucket = "bucket"
)

// Cycle describes one paced iteration.
type Cycle struct {
	Period  time.Duration // target period
	Elapsed time.Duration // time spent in the loop body
	Sleep   time.Duration // sleep requested; zero on overrun
	Overrun bool          // body took at least the whole period
}

// Pacer holds a loop to a target period. Start marks the beginning of the
// first loop body; each Wait call ends a body and blocks until the next one
// may begin.
type Pacer interface {
	Start()
	Wait(ctx context.Context) (Cycle, error)
}

// PeriodForRate converts a rate in events per second to a period truncated
// to whole microseconds.
func PeriodForRate(r int) (time.Duration, error) {
	if r <= 0 {
		return 0, ErrInvalidRate
	}
	us := 1_000_000 / r
	if us == 0 {
		return 0, ErrRateTooHigh
	}
	return time.Duration(us) * time.Microsecond, nil
}

// NewPacer returns the pacer for the named mode.
func NewPacer(mode string, period time.Duration, clock Clock) (Pacer, error) {
	switch mode {
	case "", PacingSleep:
		return NewSleepPacer(period, clock), nil
	case PacingBucket:
		return NewBucketPacer(period, clock), nil
	default:
		return nil, fmt.Errorf("unknown pacing mode: %s", mode)
	}
}

// SleepPacer sleeps for whatever is left of the period after the loop body.
// When the body overruns the period it does not sleep, and it never tries to
// win back time lost in earlier iterations.
type SleepPacer struct {
	clock      Clock
	period     time.Duration
	cycleStart time.Time
}

// NewSleepPacer creates a SleepPacer.
func NewSleepPacer(period time.Duration, clock Clock) *SleepPacer {
	return &SleepPacer{clock: clock, period: period}
}

// Start implements Pacer.
func (p *SleepPacer) Start() {
	p.cycleStart = p.clock.Now()
}

// Wait implements Pacer.
func (p *SleepPacer) Wait(ctx context.Context) (Cycle, error) {
	elapsed := p.clock.Now().Sub(p.cycleStart).Truncate(time.Microsecond)
	c := Cycle{Period: p.period, Elapsed: elapsed}

	if remaining := p.period - elapsed; remaining > 0 {
		c.Sleep = remaining
		if err := p.clock.Sleep(ctx, remaining); err != nil {
			return c, err
		}
	} else {
		c.Overrun = true
	}

	p.cycleStart = p.clock.Now()
	return c, nil
}

// BucketPacer paces with a token bucket of depth one refilled once per
// period. Unlike SleepPacer, the schedule is anchored to the last token
// grant, so waking late from a sleep shortens the following sleep. The
// bucket holds no credit across an overrun.
type BucketPacer struct {
	clock      Clock
	period     time.Duration
	limiter    *rate.Limiter
	cycleStart time.Time
}

// NewBucketPacer creates a BucketPacer.
func NewBucketPacer(period time.Duration, clock Clock) *BucketPacer {
	return &BucketPacer{
		clock:   clock,
		period:  period,
		limiter: rate.NewLimiter(rate.Every(period), 1),
	}
}

// Start implements Pacer. It drains the initial token so that the first
// body is paced like every other.
func (p *BucketPacer) Start() {
	p.cycleStart = p.clock.Now()
	p.limiter.ReserveN(p.cycleStart, 1)
}

// Wait implements Pacer.
func (p *BucketPacer) Wait(ctx context.Context) (Cycle, error) {
	now := p.clock.Now()
	elapsed := now.Sub(p.cycleStart).Truncate(time.Microsecond)
	c := Cycle{Period: p.period, Elapsed: elapsed, Overrun: elapsed >= p.period}

	r := p.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		c.Sleep = delay
		if err := p.clock.Sleep(ctx, delay); err != nil {
			r.CancelAt(p.clock.Now())
			return c, err
		}
	}

	p.cycleStart = p.clock.Now()
	return c, nil
}
