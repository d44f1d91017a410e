//go:build ignore

// genman generates the man pages for the looptime tools.
// Usage:
//
//	go run cmd/genman/main.go console_loopback_timer > console_loopback_timer.1
//	go run cmd/genman/main.go rate_limited_data_generator > rate_limited_data_generator.1
package main

import (
	"fmt"
	"os"
)

const (
	// Use a fixed date for reproducible builds/CI
	date    = "October 2026"
	version = "0.2.0"
)

var pages = map[string]string{
	"console_loopback_timer": `.TH CONSOLE_LOOPBACK_TIMER 1 "%[1]s" "looptime %[2]s" "User Commands"
.SH NAME
console_loopback_timer \- time the gaps between lines on a console loopback
.SH SYNOPSIS
.B console_loopback_timer
[\fIflags\fR]
.SH DESCRIPTION
.B console_loopback_timer
reads lines from standard input, echoes each one to standard output and
measures the time since the previous line with microsecond resolution.
The minimum, maximum and average interval are kept while running and a
summary is written to standard error when input ends, the line limit is
reached or the program is interrupted.
.PP
Connect a serial port's TX and RX lines, feed it from
.BR rate_limited_data_generator (1)
and read the port with this tool to see how evenly the data arrives.
.SH OPTIONS
.TP
.BR \-c ", " \-\-count " \fIn\fR"
Stop after \fIn\fR timed lines (0 = until end of input).
.TP
.BR \-i ", " \-\-ignore " \fIn\fR"
Discard the first \fIn\fR lines without echo or timing, e.g. a connection banner.
.TP
.BR \-q ", " \-\-quiet
Do not echo the received lines.
.TP
.BR \-v ", " \-\-verbose
Print the interval and the running min, max and average for each line.
.TP
.BR \-g ", " \-\-graph
Print a bar per interval, ten columns per millisecond, clipped to the
terminal width. Bars longer than the running average are highlighted.
.TP
.BR \-n ", " \-\-no\-summary
Do not print the summary on exit.
.TP
.B \-\-seed\-first
Use the first interval only to seed the minimum and maximum; it is left
out of the average.
.TP
.B \-\-input \fIpath\fR
Read from a file or device instead of standard input.
.TP
.B \-\-log\-level \fIlevel\fR
Diagnostic log level: debug, info, warn (default) or error.
.TP
.B \-\-log\-file \fIpath\fR
Also write diagnostics as JSON lines to a size-rotated file.
.TP
.BR \-h ", " \-\-help
Show help message.
.TP
.B \-\-version
Show version information.
.SH EXAMPLES
Time a loopback on a USB serial adapter, skipping the first ten lines:
.PP
.RS
.nf
stty -F /dev/ttyUSB0 115200 raw
rate_limited_data_generator -p 115200 > /dev/ttyUSB0 &
console_loopback_timer -q -i 10 -c 10000 < /dev/ttyUSB0
.fi
.RE
.SH EXIT STATUS
0 on end of input, line limit or interrupt; 1 on a read error, invalid
flags, or end of input while lines were still being ignored.
.SH ENVIRONMENT
Every flag can be set through an environment variable named
\fBLOOPBACK_TIMER_\fR followed by the flag name in upper case with dashes
replaced by underscores, e.g. \fBLOOPBACK_TIMER_IGNORE=10\fR. Command line
flags take precedence.
.SH SEE ALSO
.BR rate_limited_data_generator (1),
.BR stty (1)
`,
	"rate_limited_data_generator": `.TH RATE_LIMITED_DATA_GENERATOR 1 "%[1]s" "looptime %[2]s" "User Commands"
.SH NAME
rate_limited_data_generator \- emit a triangle wave at a fixed line rate
.SH SYNOPSIS
.B rate_limited_data_generator
[\fIflags\fR]
.SH DESCRIPTION
.B rate_limited_data_generator
writes integers to standard output, one per line, counting from the start
value to the end value and back again. After each value it sleeps for the
rest of the period so that \fIrate\fR lines are written per second. An
iteration that takes longer than the period is reported as an overrun and
the next value is written at once.
.SH OPTIONS
.TP
.BR \-r ", " \-\-rate " \fIrate\fR"
Values per second (default 8000). Accepts 100, 100hz, 8k, 8khz, 1mhz.
.TP
.BR \-b ", " \-\-bounds " \fI""start end""\fR"
Start and end of the wave (default "-128 128"). Also accepted as
\fIstart\fR,\fIend\fR or as two separate arguments. The values must differ.
.TP
.BR \-c ", " \-\-count " \fIn\fR"
Stop after \fIn\fR values (default -1, run until interrupted).
.TP
.BR \-v ", " \-\-verbose
Print the target, elapsed and sleep time of every iteration to standard error.
.TP
.BR \-p ", " \-\-profile " \fIname\fR"
Use a preset rate and bounds. Explicit flags override the preset.
.TP
.BR \-L ", " \-\-list\-profiles
List the available profiles.
.TP
.B \-\-pacing \fImode\fR
\fBsleep\fR (default) sleeps the remainder of each period.
\fBbucket\fR schedules values with a token bucket and makes up for
oversleeping.
.TP
.B \-\-pty
Write into a newly allocated pseudo-terminal and print its path on
standard error.
.TP
.B \-\-log\-level \fIlevel\fR
Diagnostic log level: debug, info, warn (default) or error.
.TP
.B \-\-log\-file \fIpath\fR
Also write diagnostics as JSON lines to a size-rotated file.
.TP
.BR \-h ", " \-\-help
Show help message.
.TP
.B \-\-version
Show version information.
.SH PROFILES
.TP
.B pcm8
8000 Hz, -128..128
.TP
.B pcm16k
16000 Hz, -32768..32767
.TP
.B 9600
192 Hz, 0..999
.TP
.B 115200
2304 Hz, 0..999
.TP
.B sensor
100 Hz, 0..1023
.TP
.B slow
1 Hz, 0..9
.SH EXAMPLES
Feed a loopback timer through a pseudo-terminal:
.PP
.RS
.nf
rate_limited_data_generator --pty -r 100
console_loopback_timer -q < /dev/pts/N
.fi
.RE
.SH EXIT STATUS
0 when the count is reached or on interrupt; 1 on invalid flags, equal
bounds or a write error.
.SH ENVIRONMENT
Every flag can be set through an environment variable named
\fBRATE_GEN_\fR followed by the flag name in upper case, e.g.
\fBRATE_GEN_RATE=1k\fR. Command line flags take precedence.
.SH SEE ALSO
.BR console_loopback_timer (1)
`,
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: go run cmd/genman/main.go console_loopback_timer|rate_limited_data_generator")
		os.Exit(2)
	}
	page, ok := pages[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown tool: %s\n", os.Args[1])
		os.Exit(2)
	}
	fmt.Fprintf(os.Stdout, page, date, version)
}
