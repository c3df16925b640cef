package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New("debug")
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}

	log = New("not-a-level")
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("unknown level should fall back to info, got %v", log.GetLevel())
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("file", "statement.csv").Msg("processed")

	out := buf.String()
	if !strings.Contains(out, "processed") || !strings.Contains(out, "statement.csv") {
		t.Errorf("unexpected log output: %q", out)
	}
}
