// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog loggers used by guideweave.
//
// The TUI owns the terminal, so it logs JSON lines to a file. One-shot
// commands log to stderr through a console writer.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/guideweave-tui/internal/config"
)

// Logger is a zerolog logger with the file it writes to, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// Close closes the log file. It is safe on a console or no-op logger.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// NewFile creates a logger appending JSON lines to cfg.Log.File. When debug
// is set the level is forced to debug.
func NewFile(cfg *config.Config, debug bool) (*Logger, error) {
	path := cfg.Log.File
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := build(f, levelFor(cfg.Log.Level, debug))
	return &Logger{Logger: l, file: f}, nil
}

// NewConsole creates a human-readable logger on w. Below warn, output is
// suppressed unless debug is set.
func NewConsole(w io.Writer, cfg *config.Config, debug bool) *Logger {
	level := levelFor(cfg.Log.Level, debug)
	if !debug && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return &Logger{Logger: build(output, level)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

func build(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		With().
		Timestamp().
		Str("service", "guideweave").
		Int("pid", os.Getpid()).
		Logger().
		Level(level)
}

func levelFor(raw string, debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return parseLevel(raw)
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
