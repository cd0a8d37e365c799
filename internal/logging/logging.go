// Package logging builds the process's zap logger and opens the rotating
// files used for session logs.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the diagnostic logger.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string

	// Format is "console" or "json".
	Format string

	// File, when set, receives the log in addition to Output, rotated
	// according to Rotate.
	File string

	Rotate RotateOptions

	// Output is where the log is written. Defaults to os.Stderr.
	Output io.Writer
}

// RotateOptions controls log file rotation.
type RotateOptions struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotateOptions returns the rotation used when none is configured.
func DefaultRotateOptions() RotateOptions {
	return RotateOptions{
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

// DefaultConfig returns a console logger at warn level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "console",
		Rotate: DefaultRotateOptions(),
		Output: os.Stderr,
	}
}

// ParseLevel parses a level name. Unlike zapcore it accepts "warning".
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// New builds a logger from cfg. The returned level can be changed while
// the logger is in use.
func New(cfg Config) (*zap.Logger, zap.AtomicLevel, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	level := zap.NewAtomicLevelAt(lvl)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch cfg.Format {
	case "", "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, zap.AtomicLevel{}, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), level),
	}
	if cfg.File != "" {
		w := zapcore.AddSync(OpenLogFile(cfg.File, cfg.Rotate))
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, level))
	}

	return zap.New(zapcore.NewTee(cores...)).Named("dbgfront"), level, nil
}

// OpenLogFile returns a rotating writer for path. The file is created on
// first write.
func OpenLogFile(path string, opts RotateOptions) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
}
