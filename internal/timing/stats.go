// Package timing holds the measurement and pacing primitives shared by the
// loopback tools: a streaming interval accumulator, a triangle-wave value
// sequence and a per-iteration pacer.
package timing

import "time"

// FirstIntervalPolicy selects how the first measured interval (between the
// first and second events) contributes to the statistics.
type FirstIntervalPolicy int

const (
	// CountFirstInterval counts the first interval like any other.
	CountFirstInterval FirstIntervalPolicy = iota
	// SeedFirstInterval uses the first interval to seed min and max but
	// leaves it out of the total and the average.
	SeedFirstInterval
)

// String returns the policy name.
func (p FirstIntervalPolicy) String() string {
	switch p {
	case CountFirstInterval:
		return "count"
	case SeedFirstInterval:
		return "seed"
	default:
		return "unknown"
	}
}

// Observation is the result of folding one event into the accumulator.
type Observation struct {
	Event      int     // 1-based event number
	Elapsed    float64 // ms since the previous event
	HasElapsed bool    // false for the very first event
	Min        float64
	Avg        float64
	Max        float64
	HasStats   bool // false until an interval has seeded min/max
	Intervals  int  // intervals counted in the average
}

// Summary is a snapshot of the accumulated statistics in milliseconds.
type Summary struct {
	Count     int // events observed
	Intervals int // intervals counted in Total
	Total     float64
	Min       float64
	Avg       float64
	Max       float64
	HasStats  bool
}

// Accumulator folds event arrival times into running min/max/total/average
// without keeping the individual intervals.
//
// An Accumulator is owned by a single goroutine; it does no locking.
type Accumulator struct {
	policy FirstIntervalPolicy

	count     int
	intervals int
	measured  int // intervals computed, counted or not
	total     float64
	min       float64
	max       float64
	seeded    bool

	prev time.Time
}

// NewAccumulator creates an empty Accumulator using the given policy.
func NewAccumulator(policy FirstIntervalPolicy) *Accumulator {
	return &Accumulator{policy: policy}
}

// Observe records an event received at now and returns the interval since
// the previous event together with the updated running statistics.
func (a *Accumulator) Observe(now time.Time) Observation {
	a.count++
	if a.count == 1 {
		a.prev = now
		return a.observation(0, false)
	}

	elapsed := durationMillis(now.Sub(a.prev))
	a.prev = now
	a.measured++

	if !a.seeded || elapsed < a.min {
		a.min = elapsed
	}
	if !a.seeded || elapsed > a.max {
		a.max = elapsed
	}
	a.seeded = true

	if a.measured > 1 || a.policy == CountFirstInterval {
		a.total += elapsed
		a.intervals++
	}

	return a.observation(elapsed, true)
}

// Summary returns the current statistics. It may be called at any time.
func (a *Accumulator) Summary() Summary {
	return Summary{
		Count:     a.count,
		Intervals: a.intervals,
		Total:     a.total,
		Min:       a.min,
		Avg:       a.average(),
		Max:       a.max,
		HasStats:  a.seeded,
	}
}

// Count returns the number of events observed so far.
func (a *Accumulator) Count() int {
	return a.count
}

func (a *Accumulator) average() float64 {
	if a.intervals == 0 {
		return 0
	}
	return a.total / float64(a.intervals)
}

func (a *Accumulator) observation(elapsed float64, hasElapsed bool) Observation {
	return Observation{
		Event:      a.count,
		Elapsed:    elapsed,
		HasElapsed: hasElapsed,
		Min:        a.min,
		Avg:        a.average(),
		Max:        a.max,
		HasStats:   a.seeded,
		Intervals:  a.intervals,
	}
}

// durationMillis converts d to fractional milliseconds.
func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
