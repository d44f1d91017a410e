package linetimer

import (
	"fmt"
	"io"

	"github.com/cbrunnkvist/looptime/internal/timing"
)

const notAvailable = "n/a"

func millis(v float64, ok bool) string {
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%.3f", v)
}

// FormatObservation renders the per-line timing shown in verbose mode.
func FormatObservation(o timing.Observation) string {
	if !o.HasElapsed {
		return "n/a (min: n/a, max: n/a, avg: n/a)"
	}
	return fmt.Sprintf("%s ms (min: %s, max: %s, avg: %s)",
		millis(o.Elapsed, true),
		millis(o.Min, o.HasStats),
		millis(o.Max, o.HasStats),
		millis(o.Avg, o.Intervals > 0),
	)
}

// WriteSummary writes the end-of-run statistics with millisecond values at
// three decimals.
func WriteSummary(w io.Writer, s timing.Summary) error {
	minMaxAvg := notAvailable
	if s.HasStats {
		minMaxAvg = fmt.Sprintf("%s/%s/%s ms",
			millis(s.Min, true),
			millis(s.Avg, s.Intervals > 0),
			millis(s.Max, true),
		)
	}
	_, err := fmt.Fprintf(w, "\nSummary:\n"+
		"  Total lines received: %d\n"+
		"  Total time: %.3f ms\n"+
		"  Min/Avg/Max time: %s\n",
		s.Count, s.Total, minMaxAvg)
	return err
}
