package timing

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func feed(a *Accumulator, offsetsMs ...float64) []Observation {
	base := time.Unix(1700000000, 0)
	var obs []Observation
	for _, ms := range offsetsMs {
		at := base.Add(time.Duration(ms * float64(time.Millisecond)))
		obs = append(obs, a.Observe(at))
	}
	return obs
}

func TestAccumulatorFirstEventHasNoInterval(t *testing.T) {
	a := NewAccumulator(CountFirstInterval)
	obs := feed(a, 0)

	require.Len(t, obs, 1)
	assert.False(t, obs[0].HasElapsed)
	assert.False(t, obs[0].HasStats)
	assert.Equal(t, 1, obs[0].Event)

	s := a.Summary()
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 0, s.Intervals)
	assert.False(t, s.HasStats)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Avg)
}

func TestAccumulatorLoopbackScenario(t *testing.T) {
	a := NewAccumulator(CountFirstInterval)
	obs := feed(a, 0, 100, 100, 250)

	var elapsed []float64
	for _, o := range obs[1:] {
		require.True(t, o.HasElapsed)
		elapsed = append(elapsed, o.Elapsed)
	}
	assert.InDeltaSlice(t, []float64{100, 0, 150}, elapsed, tolerance)

	s := a.Summary()
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 3, s.Intervals)
	assert.InDelta(t, 0, s.Min, tolerance)
	assert.InDelta(t, 150, s.Max, tolerance)
	assert.InDelta(t, 250, s.Total, tolerance)
	assert.InDelta(t, 250.0/3, s.Avg, tolerance)
}

func TestAccumulatorSeedFirstInterval(t *testing.T) {
	a := NewAccumulator(SeedFirstInterval)
	obs := feed(a, 0, 500, 510, 530)

	// The 500ms interval seeds min/max but stays out of total and average.
	assert.InDelta(t, 500, obs[1].Min, tolerance)
	assert.InDelta(t, 500, obs[1].Max, tolerance)
	assert.Zero(t, obs[1].Avg)

	s := a.Summary()
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 2, s.Intervals)
	assert.InDelta(t, 30, s.Total, tolerance)
	assert.InDelta(t, 15, s.Avg, tolerance)
	assert.InDelta(t, 10, s.Min, tolerance)
	assert.InDelta(t, 500, s.Max, tolerance)
}

func TestAccumulatorMinMaxSeededByFirstInterval(t *testing.T) {
	a := NewAccumulator(CountFirstInterval)
	obs := feed(a, 0, 40)

	assert.InDelta(t, 40, obs[1].Min, tolerance)
	assert.InDelta(t, 40, obs[1].Max, tolerance)
	assert.InDelta(t, 40, obs[1].Avg, tolerance)
	assert.True(t, obs[1].HasStats)
}

func TestAccumulatorSubMillisecondPrecision(t *testing.T) {
	a := NewAccumulator(CountFirstInterval)
	base := time.Unix(0, 0)
	a.Observe(base)
	o := a.Observe(base.Add(1234567 * time.Nanosecond))

	assert.InDelta(t, 1.234567, o.Elapsed, tolerance)
}

func TestAccumulatorRandomStreamInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, policy := range []FirstIntervalPolicy{CountFirstInterval, SeedFirstInterval} {
		a := NewAccumulator(policy)
		at := time.Unix(1700000000, 0)
		const n = 500

		var counted []float64
		for i := 0; i < n; i++ {
			at = at.Add(time.Duration(rng.Int63n(int64(50 * time.Millisecond))))
			o := a.Observe(at)
			if !o.HasElapsed {
				continue
			}
			if policy == SeedFirstInterval && i == 1 {
				continue
			}
			counted = append(counted, o.Elapsed)
		}

		s := a.Summary()
		require.Equal(t, n, s.Count, policy.String())
		require.Equal(t, len(counted), s.Intervals, policy.String())

		var sum float64
		for _, e := range counted {
			assert.LessOrEqual(t, s.Min, e)
			assert.GreaterOrEqual(t, s.Max, e)
			sum += e
		}
		assert.InDelta(t, sum, s.Total, 1e-6)
		assert.InDelta(t, s.Total/float64(s.Intervals), s.Avg, 1e-9)
		assert.LessOrEqual(t, s.Min, s.Avg)
		assert.LessOrEqual(t, s.Avg, s.Max)
		assert.False(t, math.IsNaN(s.Avg))
	}
}

func TestAccumulatorSummaryIsPureRead(t *testing.T) {
	a := NewAccumulator(CountFirstInterval)
	feed(a, 0, 10, 30)

	first := a.Summary()
	second := a.Summary()
	assert.Equal(t, first, second)
	assert.Equal(t, 3, a.Count())
}

func TestFirstIntervalPolicyString(t *testing.T) {
	assert.Equal(t, "count", CountFirstInterval.String())
	assert.Equal(t, "seed", SeedFirstInterval.String())
	assert.Equal(t, "unknown", FirstIntervalPolicy(9).String())
}
