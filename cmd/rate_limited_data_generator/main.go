// rate_limited_data_generator writes a triangle wave of integers to stdout,
// one per line, at a fixed rate. Pipe it through a serial loopback into
// console_loopback_timer to see how evenly the lines arrive.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cbrunnkvist/looptime/internal/config"
	"github.com/cbrunnkvist/looptime/internal/generator"
	"github.com/cbrunnkvist/looptime/internal/logging"
	"github.com/cbrunnkvist/looptime/internal/ptylink"
	"github.com/cbrunnkvist/looptime/internal/timing"
)

var version = "0.2.0"

const (
	progName  = "rate_limited_data_generator"
	envPrefix = "RATE_GEN"
)

// Config holds all command-line configuration
type Config struct {
	Rate    int
	Start   int
	End     int
	Count   int
	Verbose bool
	Pacing  string
	Profile string
	PTY     bool

	LogLevel string
	LogFile  string

	Help         bool
	Version      bool
	ListProfiles bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Usage: %s [-r RATE] [-b \"START END\"] [-c COUNT] [-v]\n", progName)
		os.Exit(1)
	}

	if cfg.Version {
		fmt.Printf("%s %s\n", progName, version)
		os.Exit(0)
	}

	if cfg.ListProfiles {
		printProfiles(os.Stdout)
		os.Exit(0)
	}

	os.Exit(run(cfg, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*Config, error) {
	cfg := &Config{
		Rate:  generator.DefaultRate,
		Start: generator.DefaultStart,
		End:   generator.DefaultEnd,
	}

	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.StringP("rate", "r", strconv.Itoa(generator.DefaultRate), "Values per second (e.g. 8000, 8k, 8khz)")
	fs.StringP("bounds", "b", fmt.Sprintf("%d %d", generator.DefaultStart, generator.DefaultEnd), "Start and end of the wave (\"N M\" or N,M)")
	fs.IntP("count", "c", generator.Unlimited, "Stop after N values (-1=forever)")
	fs.BoolP("verbose", "v", false, "Print per-iteration timing to stderr")
	fs.StringP("profile", "p", "", "Rate and bounds preset (see --list-profiles)")
	fs.String("pacing", timing.PacingSleep, "Pacing strategy: sleep or bucket")
	fs.Bool("pty", false, "Write into a new pseudo-terminal instead of stdout")
	fs.String("log-level", logging.DefaultLevel, "Diagnostic log level (debug, info, warn, error)")
	fs.String("log-file", "", "Also write diagnostics as JSON to this rotating file")
	fs.BoolVarP(&cfg.Help, "help", "h", false, "Show help")
	fs.BoolVar(&cfg.Version, "version", false, "Show version")
	fs.BoolVarP(&cfg.ListProfiles, "list-profiles", "L", false, "List available profiles")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s - emit a triangle wave at a fixed line rate\n", progName)
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Counts from START to END and back, one value per line, sleeping")
		fmt.Fprintln(stderr, "between values so that RATE lines are written each second.")
		fmt.Fprintln(stderr, "")
		fmt.Fprintf(stderr, "Usage: %s [flags]\n", progName)
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Examples:")
		fmt.Fprintf(stderr, "  %s -r 1k -b \"0 100\" > /dev/ttyUSB0\n", progName)
		fmt.Fprintf(stderr, "  %s -p sensor -c 1000 | console_loopback_timer -q\n", progName)
		fmt.Fprintf(stderr, "  %s --pty -r 100\n", progName)
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Rate formats: 100, 100hz, 8k, 8khz, 1mhz (k=1000)")
		fmt.Fprintf(stderr, "Every flag can also be set through the environment, e.g. %s_RATE=1k.\n", envPrefix)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Help {
		fs.Usage()
		return cfg, flag.ErrHelp
	}

	src, err := config.Bind(fs, envPrefix)
	if err != nil {
		return nil, err
	}

	// Apply profile first (can be overridden by explicit flags)
	cfg.Profile = src.String("profile")
	if cfg.Profile != "" {
		p, ok := profiles[cfg.Profile]
		if !ok {
			return nil, fmt.Errorf("unknown profile: %s", cfg.Profile)
		}
		cfg.Rate = p.Rate
		cfg.Start = p.Start
		cfg.End = p.End
	}

	if src.IsSet("rate") {
		if cfg.Rate, err = parseRate(src.String("rate")); err != nil {
			return nil, fmt.Errorf("invalid --rate: %w", err)
		}
	}

	// "-b 0 5" leaves the end value as the only positional argument.
	rest := fs.Args()
	if src.IsSet("bounds") {
		bounds := src.String("bounds")
		if len(strings.Fields(bounds)) == 1 && !strings.Contains(bounds, ",") && len(rest) > 0 {
			bounds += " " + rest[0]
			rest = rest[1:]
		}
		if cfg.Start, cfg.End, err = parseBounds(bounds); err != nil {
			return nil, fmt.Errorf("invalid --bounds: %w", err)
		}
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if cfg.Start == cfg.End {
		return nil, timing.ErrEqualBounds
	}

	if cfg.Count, err = src.Int("count"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = src.Bool("verbose"); err != nil {
		return nil, err
	}
	if cfg.PTY, err = src.Bool("pty"); err != nil {
		return nil, err
	}

	cfg.Pacing = strings.ToLower(src.String("pacing"))
	if cfg.Pacing != timing.PacingSleep && cfg.Pacing != timing.PacingBucket {
		return nil, fmt.Errorf("invalid --pacing: %q (want %s or %s)", cfg.Pacing, timing.PacingSleep, timing.PacingBucket)
	}

	cfg.LogLevel = src.String("log-level")
	cfg.LogFile = src.String("log-file")

	return cfg, nil
}

var rateRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-z]*)$`)

// parseRate parses a rate in values per second.
// Supports: 100, 100hz, 8k, 8khz, 1m, 1mhz
func parseRate(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := rateRe.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid rate format: %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	var multiplier float64
	switch matches[2] {
	case "", "hz":
		multiplier = 1
	case "k", "khz":
		multiplier = 1000
	case "m", "mhz":
		multiplier = 1000000
	default:
		return 0, fmt.Errorf("unknown rate unit: %q", matches[2])
	}

	rate := int(value * multiplier)
	if rate <= 0 {
		return 0, timing.ErrInvalidRate
	}
	return rate, nil
}

// parseBounds parses "START END" or "START,END".
func parseBounds(s string) (int, int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("want two integers, got %q", s)
	}
	start, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func run(cfg *Config, stdout, stderr io.Writer) int {
	logger, err := logging.NewLogger(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile, Console: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	out := stdout
	if cfg.PTY {
		link, err := ptylink.Open()
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		defer link.Close()
		fmt.Fprintf(stderr, "writing to %s\n", link.Path())
		out = link
	}

	var diag io.Writer
	if cfg.Verbose {
		diag = stderr
	}
	gen, err := generator.New(generator.Config{
		Rate:    cfg.Rate,
		Start:   cfg.Start,
		End:     cfg.End,
		Count:   cfg.Count,
		Verbose: cfg.Verbose,
		Pacing:  cfg.Pacing,
	}, out, diag, logger, timing.SystemClock{})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
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

	res, runErr := gen.Run(ctx)
	logger.Info("Generator stopped",
		zap.Int("emitted", res.Emitted),
		zap.Int("overruns", res.Overruns),
	)

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		fmt.Fprintln(stderr, "\nCTRL+C pressed. Exiting...")
	default:
		fmt.Fprintf(stderr, "error: %v\n", runErr)
		return 1
	}
	return 0
}
