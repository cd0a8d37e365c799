package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/dbgfront/internal/logging"
)

// Config is the complete dbgfront configuration.
type Config struct {
	// Interpreter is the top-level interpreter of the terminal UI.
	Interpreter string `toml:"interpreter" yaml:"interpreter"`

	Logging    LoggingConfig    `toml:"logging" yaml:"logging"`
	SessionLog SessionLogConfig `toml:"session_log" yaml:"session_log"`
	Target     TargetConfig     `toml:"target" yaml:"target"`
	Lua        LuaConfig        `toml:"lua" yaml:"lua"`
	TUI        TUIConfig        `toml:"tui" yaml:"tui"`
	Remote     RemoteConfig     `toml:"remote" yaml:"remote"`
}

// LoggingConfig configures the diagnostic logger.
type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level"`
	Format     string `toml:"format" yaml:"format"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" yaml:"compress"`
}

// SessionLogConfig configures "set logging on".
type SessionLogConfig struct {
	File          string `toml:"file" yaml:"file"`
	Redirect      bool   `toml:"redirect" yaml:"redirect"`
	DebugRedirect bool   `toml:"debug_redirect" yaml:"debug_redirect"`
}

// TargetConfig selects the debug adapter the target bridge talks to.
// Either Adapter (a command line) or Address (host:port) may be set.
type TargetConfig struct {
	Adapter []string `toml:"adapter" yaml:"adapter"`
	Address string   `toml:"address" yaml:"address"`
	Program string   `toml:"program" yaml:"program"`
	Args    []string `toml:"args" yaml:"args"`
}

// LuaConfig configures the scripted interpreter.
type LuaConfig struct {
	Script string `toml:"script" yaml:"script"`

	// TimeoutMS bounds each chunk or hook call. Zero means no limit.
	TimeoutMS int64 `toml:"timeout_ms" yaml:"timeout_ms"`
}

// TUIConfig configures the terminal UI interpreter.
type TUIConfig struct {
	Mouse bool `toml:"mouse" yaml:"mouse"`

	// HeaderColor is the background of the location header, as #rrggbb.
	// Empty keeps the terminal's reverse video.
	HeaderColor string `toml:"header_color" yaml:"header_color"`
}

// RemoteConfig configures the WebSocket UI server. It is off while Listen
// is empty.
type RemoteConfig struct {
	Listen      string `toml:"listen" yaml:"listen"`
	Interpreter string `toml:"interpreter" yaml:"interpreter"`
}

// Default returns the built-in configuration.
func Default() *Config {
	rot := logging.DefaultRotateOptions()
	return &Config{
		Interpreter: "console",
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "console",
			MaxSizeMB:  rot.MaxSizeMB,
			MaxBackups: rot.MaxBackups,
			MaxAgeDays: rot.MaxAgeDays,
		},
		SessionLog: SessionLogConfig{File: "dbgfront.txt"},
		Lua:        LuaConfig{TimeoutMS: 5000},
		Remote:     RemoteConfig{Interpreter: "mi"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path yields the defaults with overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := Decode(cfg, path, data); err != nil {
			return nil, err
		}
	}
	ApplyEnv(cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode unmarshals data over cfg, choosing the decoder by the extension
// of path.
func Decode(cfg *Config, path string, data []byte) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// Validate checks values that cannot be checked by the decoders.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Interpreter) == "" {
		return fmt.Errorf("%w: interpreter is empty", ErrValidationFailed)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrValidationFailed, err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrValidationFailed, c.Logging.Format)
	}
	if c.SessionLog.File == "" {
		return fmt.Errorf("%w: session_log.file is empty", ErrValidationFailed)
	}
	if len(c.Target.Adapter) > 0 && c.Target.Address != "" {
		return fmt.Errorf("%w: target.adapter and target.address are exclusive", ErrValidationFailed)
	}
	if c.Lua.TimeoutMS < 0 {
		return fmt.Errorf("%w: lua.timeout_ms is negative", ErrValidationFailed)
	}
	if c.Remote.Listen != "" && strings.TrimSpace(c.Remote.Interpreter) == "" {
		return fmt.Errorf("%w: remote.interpreter is empty", ErrValidationFailed)
	}
	if c.TUI.HeaderColor != "" {
		if _, err := colorful.Hex(c.TUI.HeaderColor); err != nil {
			return fmt.Errorf("%w: tui.header_color %q", ErrValidationFailed, c.TUI.HeaderColor)
		}
	}
	return nil
}

// LoggerConfig converts the logging section for the logging package.
func (c *Config) LoggerConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.File = c.Logging.File
	lc.Rotate = logging.RotateOptions{
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Compress:   c.Logging.Compress,
	}
	return lc
}
