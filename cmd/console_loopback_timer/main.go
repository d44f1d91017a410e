// console_loopback_timer echoes lines received on stdin and measures the
// time between them. On EOF, after a line limit, or on CTRL+C it prints a
// statistical summary of the measured intervals to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/cbrunnkvist/looptime/internal/config"
	"github.com/cbrunnkvist/looptime/internal/linetimer"
	"github.com/cbrunnkvist/looptime/internal/logging"
	"github.com/cbrunnkvist/looptime/internal/timing"
)

var version = "0.2.0"

const (
	progName  = "console_loopback_timer"
	envPrefix = "LOOPBACK_TIMER"
)

// Config holds all command-line configuration
type Config struct {
	Count     int
	Ignore    int
	Quiet     bool
	Verbose   bool
	Graph     bool
	NoSummary bool
	SeedFirst bool
	Input     string

	LogLevel string
	LogFile  string

	Help    bool
	Version bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Usage: %s [-c N] [-i N] [-q] [-v] [-g] [-n]\n", progName)
		os.Exit(1)
	}

	if cfg.Version {
		fmt.Printf("%s %s\n", progName, version)
		os.Exit(0)
	}

	os.Exit(run(cfg, os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.IntP("count", "c", 0, "Exit after N lines are received (0=until EOF)")
	fs.IntP("ignore", "i", 0, "Ignore the first N lines (e.g. connection setup)")
	fs.BoolP("quiet", "q", false, "Do not echo the received lines")
	fs.BoolP("verbose", "v", false, "Print the interval and running statistics for each line")
	fs.BoolP("graph", "g", false, "Print an ASCII bar per interval (10 columns per ms)")
	fs.BoolP("no-summary", "n", false, "Do not print the statistical summary on exit")
	fs.Bool("seed-first", false, "Use the first interval only to seed min/max, not the average")
	fs.String("input", "", "Read from this file or device instead of stdin")
	fs.String("log-level", logging.DefaultLevel, "Diagnostic log level (debug, info, warn, error)")
	fs.String("log-file", "", "Also write diagnostics as JSON to this rotating file")
	fs.BoolVarP(&cfg.Help, "help", "h", false, "Show help")
	fs.BoolVar(&cfg.Version, "version", false, "Show version")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s - time the gaps between lines on a console loopback\n", progName)
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Echoes each line received on stdin and measures the milliseconds since")
		fmt.Fprintln(stderr, "the previous one. A summary goes to stderr on EOF or CTRL+C.")
		fmt.Fprintln(stderr, "")
		fmt.Fprintf(stderr, "Usage: %s [flags]\n", progName)
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Examples:")
		fmt.Fprintf(stderr, "  cat /dev/ttyUSB0 | %s -q -v\n", progName)
		fmt.Fprintf(stderr, "  rate_limited_data_generator -r 100 | %s -i 10 -c 1000 -q\n", progName)
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "")
		fmt.Fprintf(stderr, "Every flag can also be set through the environment, e.g. %s_COUNT=100.\n", envPrefix)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Help {
		fs.Usage()
		return cfg, flag.ErrHelp
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	src, err := config.Bind(fs, envPrefix)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		key string
		dst *int
	}{
		{"count", &cfg.Count},
		{"ignore", &cfg.Ignore},
	} {
		if *f.dst, err = src.Int(f.key); err != nil {
			return nil, err
		}
		if *f.dst < 0 {
			return nil, fmt.Errorf("invalid --%s: must not be negative", f.key)
		}
	}

	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"quiet", &cfg.Quiet},
		{"verbose", &cfg.Verbose},
		{"graph", &cfg.Graph},
		{"no-summary", &cfg.NoSummary},
		{"seed-first", &cfg.SeedFirst},
	} {
		if *f.dst, err = src.Bool(f.key); err != nil {
			return nil, err
		}
	}

	cfg.Input = src.String("input")
	cfg.LogLevel = src.String("log-level")
	cfg.LogFile = src.String("log-file")

	return cfg, nil
}

// graphWidth returns the terminal width when stdout is a terminal, or 0
// (unclipped) when output is redirected.
func graphWidth(out *os.File) int {
	if !term.IsTerminal(int(out.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(out.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func (cfg *Config) timerConfig(stdout io.Writer) linetimer.Config {
	tc := linetimer.Config{
		Count:   cfg.Count,
		Ignore:  cfg.Ignore,
		Quiet:   cfg.Quiet,
		Verbose: cfg.Verbose,
		Graph:   cfg.Graph,
		Policy:  timing.CountFirstInterval,
	}
	if cfg.SeedFirst {
		tc.Policy = timing.SeedFirstInterval
	}
	if f, ok := stdout.(*os.File); ok {
		tc.GraphWidth = graphWidth(f)
	}
	return tc
}

func run(cfg *Config, stdin io.Reader, stdout, stderr io.Writer) int {
	logger, err := logging.NewLogger(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile, Console: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	src := stdin
	if cfg.Input != "" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		defer f.Close()
		src = f
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The signal goroutine only cancels; reporting happens below.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Debug("Received signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	timer := linetimer.New(cfg.timerConfig(stdout), stdout, logger, timing.SystemClock{})
	runErr := timer.Run(ctx, src)

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		fmt.Fprintln(stderr, "\nReceived CTRL+C. Exiting...")
	default:
		logger.Debug("Line timer stopped", zap.Error(runErr))
		fmt.Fprintf(stderr, "error: %v\n", runErr)
		return 1
	}

	if !cfg.NoSummary {
		if err := linetimer.WriteSummary(stderr, timer.Summary()); err != nil {
			return 1
		}
	}
	return 0
}
