// Copyright (c) 2025 Resmirror

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"TRACE", zerolog.TraceLevel, true},
		{" debug ", zerolog.DebugLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, c := range cases {
		got, ok := ParseLevel(c.raw)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseLevel(%q): expected (%v, %v), got (%v, %v)", c.raw, c.want, c.ok, got, ok)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogNoColor, "true")
	t.Setenv(EnvLogJSON, "not-a-bool")

	cfg := Config{Level: "debug", JSON: true}
	applyEnvOverrides(&cfg)

	if cfg.Level != "error" {
		t.Errorf("level: expected error, got %q", cfg.Level)
	}
	if !cfg.NoColor {
		t.Error("expected no_color from env")
	}
	if !cfg.JSON {
		t.Error("unparseable env value must not change json")
	}
}

func TestJSONLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, Config{Level: "warn", JSON: true})

	log.Info().Msg("hidden")
	log.Warn().Str("uuid", "ab12").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["message"] != "shown" || entry["uuid"] != "ab12" || entry["app"] != "resmirror" {
		t.Errorf("unexpected entry: %v", entry)
	}
}
