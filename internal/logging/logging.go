// Copyright (c) 2025 Resmirror

package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "RESMIRROR_LOG_LEVEL"
	EnvLogNoColor = "RESMIRROR_LOG_NOCOLOR"
	EnvLogJSON    = "RESMIRROR_LOG_JSON"
)

// Config controls the logger output
type Config struct {
	Level   string `json:"level" toml:"level"`
	NoColor bool   `json:"no_color" toml:"no_color"`
	JSON    bool   `json:"json" toml:"json"`
}

// New builds the process logger. Environment variables override cfg.
func New(cfg Config) zerolog.Logger {
	applyEnvOverrides(&cfg)
	return newLogger(os.Stderr, cfg)
}

func newLogger(out io.Writer, cfg Config) zerolog.Logger {
	level, ok := ParseLevel(cfg.Level)
	if !ok {
		level = zerolog.InfoLevel
	}

	w := out
	if !cfg.JSON {
		w = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", "resmirror").Logger()
}

func applyEnvOverrides(cfg *Config) {
	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		if _, ok := ParseLevel(raw); ok {
			cfg.Level = raw
		}
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogJSON)); ok {
		cfg.JSON = v
	}
}

// ParseLevel maps a config level name to a zerolog level
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
