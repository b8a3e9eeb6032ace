// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/guideweave-tui/internal/assets"
	"github.com/jeranaias/guideweave-tui/internal/model"
	"github.com/jeranaias/guideweave-tui/internal/util"
)

// ErrNothingToExport is returned for a transcript without any question.
var ErrNothingToExport = errors.New("nothing to export yet")

// Transcript is a snapshot of one conversation.
type Transcript struct {
	SessionID string          `json:"session_id,omitempty"`
	BaseURL   string          `json:"backend"`
	Mode      string          `json:"mode,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Messages  []model.Message `json:"messages"`
}

// NewTranscript snapshots the messages of store.
func NewTranscript(store *model.Store, baseURL, mode string) *Transcript {
	t := &Transcript{
		BaseURL:  baseURL,
		Mode:     mode,
		Messages: store.Messages(),
	}
	if len(t.Messages) > 0 {
		t.CreatedAt = t.Messages[0].Timestamp
	}
	return t
}

// Title is the first question asked, or "conversation".
func (t *Transcript) Title() string {
	for _, m := range t.Messages {
		if m.IsUser() && strings.TrimSpace(m.Content.Text) != "" {
			return strings.TrimSpace(m.Content.Text)
		}
	}
	return "conversation"
}

// Questions returns how many user messages the transcript holds.
func (t *Transcript) Questions() int {
	n := 0
	for _, m := range t.Messages {
		if m.IsUser() {
			n++
		}
	}
	return n
}

// Exporter renders a transcript in one file format.
type Exporter interface {
	Export(t *Transcript) ([]byte, error)
	FileExtension() string // with the leading dot
	MimeType() string
}

// Options controls where transcripts go and what the Markdown view shows.
type Options struct {
	OutputDir         string // created on demand
	IncludeMetadata   bool   // YAML front matter
	IncludeTimestamps bool   // per-message times in headings

	// Resolver turns image references into URLs. Nil uses the default
	// backend origin.
	Resolver *assets.Resolver
}

// DefaultOptions writes to the working directory with metadata and times.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportToFile exports a transcript to a new file in opts.OutputDir and
// returns its path.
func ExportToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if t == nil || t.Questions() == 0 {
		return "", ErrNothingToExport
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("render transcript: %w", err)
	}

	name := "guideweave_" + sanitizeFilename(t.Title()) + "_" +
		time.Now().Format("20060102_150405") + exporter.FileExtension()
	outputPath := filepath.Join(opts.OutputDir, name)
	if err := util.AtomicWriteFile(outputPath, content, 0600); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return outputPath, nil
}

// maxNameRunes bounds the title part of an export file name.
const maxNameRunes = 40

// sanitizeFilename makes s safe as a file name on every platform. Path
// separators and reserved characters become '-', whitespace becomes '_'.
func sanitizeFilename(s string) string {
	if runes := []rune(s); len(runes) > maxNameRunes {
		s = string(runes[:maxNameRunes])
	}

	name := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '-'
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return '_'
		case r < 32 || r == 127:
			return '-'
		}
		return r
	}, s)

	if name == "" {
		return "conversation"
	}
	return name
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
