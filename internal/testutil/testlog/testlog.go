// Copyright (c) 2025 Resmirror

package testlog

import (
	"testing"

	"github.com/rs/zerolog"
)

// New returns a debug logger that writes through t.Log
func New(t testing.TB) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).
		Level(zerolog.DebugLevel).
		With().
		Str("test", t.Name()).
		Logger()
}
