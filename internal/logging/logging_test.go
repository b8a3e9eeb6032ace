// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jeranaias/guideweave-tui/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "guideweave.log")
	return cfg
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"debug":    zerolog.DebugLevel,
		"WARN":     zerolog.WarnLevel,
		"disabled": zerolog.Disabled,
		"shouting": zerolog.InfoLevel,
	}
	for raw, want := range tests {
		if got := parseLevel(raw); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
	if levelFor("error", true) != zerolog.DebugLevel {
		t.Error("debug flag should force debug level")
	}
}

func TestNewFile_WritesJSON(t *testing.T) {
	cfg := testConfig(t)
	l, err := NewFile(cfg, false)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	l.Info().Str("ticket", "1").Msg("dispatch started")
	l.Debug().Msg("hidden at info level")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %s", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "dispatch started" || entry["service"] != "guideweave" || entry["ticket"] != "1" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewFile_EmptyPath(t *testing.T) {
	cfg := config.Default()
	if _, err := NewFile(cfg, false); err == nil {
		t.Error("expected error for empty log path")
	}
}

func TestNewConsole_WarnFloor(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsole(&buf, config.Default(), false)
	l.Info().Msg("quiet")
	l.Warn().Msg("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Errorf("console output = %q", out)
	}

	buf.Reset()
	NewConsole(&buf, config.Default(), true).Debug().Msg("verbose")
	if !strings.Contains(buf.String(), "verbose") {
		t.Errorf("debug console output = %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error().Msg("discarded")
	if err := l.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	var nilLogger *Logger
	if err := nilLogger.Close(); err != nil {
		t.Errorf("nil Close() = %v", err)
	}
}
