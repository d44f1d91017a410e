package main

import (
	"fmt"
	"io"
	"sort"
)

// Profile is a named preset of rate and bounds.
type Profile struct {
	Rate        int
	Start       int
	End         int
	Description string
}

// profiles defines presets for common loopback setups.
var profiles = map[string]Profile{
	// Audio-like sample streams
	"pcm8": {
		Rate: 8000, Start: -128, End: 128,
		Description: "8 kHz signed 8-bit samples (the defaults)",
	},
	"pcm16k": {
		Rate: 16000, Start: -32768, End: 32767,
		Description: "16 kHz signed 16-bit samples",
	},

	// Serial lines, five bytes per value budgeted
	"9600": {
		Rate: 192, Start: 0, End: 999,
		Description: "stays under a 9600 baud 8N1 line with room to spare",
	},
	"115200": {
		Rate: 2304, Start: 0, End: 999,
		Description: "stays under a 115200 baud 8N1 line with room to spare",
	},

	// Slow producers
	"sensor": {
		Rate: 100, Start: 0, End: 1023,
		Description: "100 Hz 10-bit ADC readings",
	},
	"slow": {
		Rate: 1, Start: 0, End: 9,
		Description: "one value per second, easy to follow by eye",
	},
}

func printProfiles(w io.Writer) {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Available profiles:")
	for _, name := range names {
		p := profiles[name]
		fmt.Fprintf(w, "  %-8s rate %6d Hz  bounds %6d..%-6d %s\n", name, p.Rate, p.Start, p.End, p.Description)
	}
}
