package generator

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cbrunnkvist/looptime/internal/timing"
)

// simClock is a fake clock; every write to its body writer costs bodyCost.
type simClock struct {
	now      time.Time
	bodyCost time.Duration
	sleeps   []time.Duration
}

func newSimClock(bodyCost time.Duration) *simClock {
	return &simClock{now: time.Unix(1700000000, 0), bodyCost: bodyCost}
}

func (c *simClock) Now() time.Time { return c.now }

func (c *simClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// body returns a writer that records output and charges the body cost.
func (c *simClock) body(w io.Writer) io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		c.now = c.now.Add(c.bodyCost)
		return w.Write(p)
	})
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func values(out string) []string {
	return strings.Fields(out)
}

func TestGeneratorTriangleOutput(t *testing.T) {
	var out bytes.Buffer
	clock := newSimClock(0)
	g, err := New(Config{Rate: 1000, Start: 0, End: 5, Count: 12}, clock.body(&out), nil, nil, clock)
	require.NoError(t, err)

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, res.Emitted)
	assert.Equal(t, "0\n1\n2\n3\n4\n5\n4\n3\n2\n1\n0\n1\n", out.String())
}

func TestGeneratorSleepsRemainderWithoutOverrun(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	var out bytes.Buffer
	clock := newSimClock(300 * time.Microsecond)

	g, err := New(Config{Rate: 1000, Start: DefaultStart, End: DefaultEnd, Count: 20}, clock.body(&out), nil, zap.New(core), clock)
	require.NoError(t, err)

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, res.Emitted)
	assert.Zero(t, res.Overruns)
	assert.Zero(t, logs.Len())

	require.Len(t, clock.sleeps, 20)
	for _, s := range clock.sleeps {
		assert.Equal(t, 700*time.Microsecond, s)
	}
}

func TestGeneratorOverrunWarnsEveryIteration(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	var out bytes.Buffer
	clock := newSimClock(2 * time.Millisecond)

	g, err := New(Config{Rate: 1000, Start: 0, End: 3, Count: 5}, clock.body(&out), nil, zap.New(core), clock)
	require.NoError(t, err)

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Emitted)
	assert.Equal(t, 5, res.Overruns)
	assert.Empty(t, clock.sleeps)
	assert.Equal(t, 5, logs.FilterMessage("Overrun detected, skipping sleep").Len())
	assert.Equal(t, []string{"0", "1", "2", "3", "2"}, values(out.String()))
}

func TestGeneratorVerbose(t *testing.T) {
	var out, diag bytes.Buffer
	clock := newSimClock(100 * time.Microsecond)

	g, err := New(Config{Rate: 8000, Start: -1, End: 1, Count: 2, Verbose: true}, clock.body(&out), &diag, nil, clock)
	require.NoError(t, err)

	_, err = g.Run(context.Background())
	require.NoError(t, err)

	line := "rate: 8000 Hz  target time: 125 us  elapsed time: 100 us  sleep time: 25 us\n"
	assert.Equal(t, line+line, diag.String())
}

func TestGeneratorCancelled(t *testing.T) {
	var out bytes.Buffer
	g, err := New(Config{Rate: 1000, Start: 0, End: 10, Count: Unlimited}, &out, nil, nil, timing.SystemClock{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := g.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, res.Emitted, 0)
	// Everything emitted was flushed.
	assert.Len(t, values(out.String()), res.Emitted)
}

func TestGeneratorRealRate(t *testing.T) {
	var out bytes.Buffer
	g, err := New(Config{Rate: 200, Start: 0, End: 10, Count: 20}, &out, nil, nil, nil)
	require.NoError(t, err)

	start := time.Now()
	res, err := g.Run(context.Background())
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Emitted)

	// 20 periods of 5ms; allow generous scheduling slack.
	if elapsed < 90*time.Millisecond || elapsed > time.Second {
		t.Errorf("run took %v, expected about 100ms", elapsed)
	}
}

func TestGeneratorZeroCount(t *testing.T) {
	var out bytes.Buffer
	g, err := New(Config{Rate: 1000, Start: 0, End: 1, Count: 0}, &out, nil, nil, newSimClock(0))
	require.NoError(t, err)

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Emitted)
	assert.Empty(t, out.String())
}

func TestGeneratorConfigErrors(t *testing.T) {
	_, err := New(Config{Rate: 1000, Start: 4, End: 4}, io.Discard, nil, nil, nil)
	assert.ErrorIs(t, err, timing.ErrEqualBounds)

	_, err = New(Config{Rate: 0, Start: 0, End: 4}, io.Discard, nil, nil, nil)
	assert.ErrorIs(t, err, timing.ErrInvalidRate)

	_, err = New(Config{Rate: 10, Start: 0, End: 4, Pacing: "spin"}, io.Discard, nil, nil, nil)
	assert.Error(t, err)
}

func TestGeneratorBucketPacing(t *testing.T) {
	var out bytes.Buffer
	clock := newSimClock(300 * time.Microsecond)
	g, err := New(Config{Rate: 1000, Start: 0, End: 5, Count: 4, Pacing: timing.PacingBucket}, clock.body(&out), nil, nil, clock)
	require.NoError(t, err)

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Emitted)
	require.Len(t, clock.sleeps, 4)
	for _, s := range clock.sleeps {
		assert.InDelta(t, float64(700*time.Microsecond), float64(s), float64(time.Microsecond))
	}
}

func TestGeneratorWriteError(t *testing.T) {
	g, err := New(Config{Rate: 1000, Start: 0, End: 5, Count: 3}, writerFunc(func([]byte) (int, error) {
		return 0, io.ErrClosedPipe
	}), nil, nil, newSimClock(0))
	require.NoError(t, err)

	_, err = g.Run(context.Background())
	assert.ErrorIs(t, err, ErrWrite)
}
