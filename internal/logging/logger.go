// Package logging builds the diagnostic logger shared by the command line
// tools. Data output (echoed lines, generated values, summaries) never goes
// through it.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Defaults for LogConfig.
const (
	DefaultLevel      = "warn"
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config controls where diagnostics go.
type Config struct {
	Level      string    // debug, info, warn, error
	File       string    // Rotating JSON log file; empty = console only
	MaxSize    int       // Max size in MB before rotation
	MaxBackups int       // Rotated files to keep
	MaxAge     int       // Days to keep rotated files
	Console    io.Writer // Console sink; nil = stderr
}

// NewLogger builds a zap logger that writes human readable lines to the
// console and, when cfg.File is set, JSON to a rotating file.
func NewLogger(cfg Config) (*zap.Logger, error) {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		fmt.Fprintf(console, "warning: %v, defaulting to %s\n", err, DefaultLevel)
		level = zapcore.WarnLevel
	}
	cores := []zapcore.Core{
		zapcore.NewCore(buildEncoder(true), zapcore.Lock(zapcore.AddSync(console)), level),
	}

	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory '%s': %w", dir, err)
			}
		}
		ljack := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSize, DefaultMaxSizeMB),
			MaxBackups: orDefault(cfg.MaxBackups, DefaultMaxBackups),
			MaxAge:     orDefault(cfg.MaxAge, DefaultMaxAgeDays),
		}
		cores = append(cores, zapcore.NewCore(buildEncoder(false), zapcore.AddSync(ljack), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
	logger.Debug("Logger constructed",
		zap.String("level", level.String()),
		zap.String("file", cfg.File),
	)
	return logger, nil
}

func parseLevel(levelStr string) (zapcore.Level, error) {
	if levelStr == "" {
		levelStr = DefaultLevel
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(levelStr))); err != nil {
		return zapcore.WarnLevel, fmt.Errorf("invalid log level '%s'", levelStr)
	}
	return level, nil
}

func buildEncoder(console bool) zapcore.Encoder {
	if console {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.TimeKey = ""
		encoderConfig.CallerKey = ""
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
