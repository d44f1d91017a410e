package linetimer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbrunnkvist/looptime/internal/timing"
)

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummary(&buf, timing.Summary{
		Count:     4,
		Intervals: 3,
		Total:     250,
		Min:       0,
		Avg:       250.0 / 3,
		Max:       150,
		HasStats:  true,
	})
	require.NoError(t, err)

	want := "\nSummary:\n" +
		"  Total lines received: 4\n" +
		"  Total time: 250.000 ms\n" +
		"  Min/Avg/Max time: 0.000/83.333/150.000 ms\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSummaryWithoutIntervals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, timing.Summary{Count: 1}))

	assert.Contains(t, buf.String(), "Total lines received: 1\n")
	assert.Contains(t, buf.String(), "Min/Avg/Max time: n/a\n")
}

func TestWriteSummarySeededOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, timing.Summary{Count: 2, Min: 9, Max: 9, HasStats: true}))

	assert.Contains(t, buf.String(), "Min/Avg/Max time: 9.000/n/a/9.000 ms\n")
}

func TestFormatObservation(t *testing.T) {
	assert.Equal(t, "n/a (min: n/a, max: n/a, avg: n/a)", FormatObservation(timing.Observation{Event: 1}))
	assert.Equal(t, "1.250 ms (min: 1.000, max: 2.000, avg: 1.500)", FormatObservation(timing.Observation{
		Event: 3, Elapsed: 1.25, HasElapsed: true,
		Min: 1, Max: 2, Avg: 1.5, HasStats: true, Intervals: 2,
	}))
}
