// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/guideweave-tui/internal/assets"
	"github.com/jeranaias/guideweave-tui/internal/model"
)

func sampleTranscript() *Transcript {
	store := model.NewStore()
	store.AppendUser("pump leaking")
	store.AppendBot(model.DecodeContent([]byte(`{"status":"success","task_title":"Fix Leak","steps":[
		{"step":1,"instruction":"Turn off valve","chunks":[4,7],"images":"img1.png"}
	]}`)))
	store.AppendUser("still: *dripping*")
	store.AppendBot(model.DecodeContent([]byte(`{"status":"error","message":"index offline"}`)))
	return NewTranscript(store, "http://localhost:5000", "LOCAL")
}

func TestTranscript_TitleAndQuestions(t *testing.T) {
	tr := sampleTranscript()
	if got := tr.Title(); got != "pump leaking" {
		t.Errorf("Title() = %q, want %q", got, "pump leaking")
	}
	if got := tr.Questions(); got != 2 {
		t.Errorf("Questions() = %d, want 2", got)
	}
	if tr.CreatedAt.IsZero() {
		t.Error("CreatedAt should come from the first message")
	}

	empty := NewTranscript(model.NewStore(), "", "")
	if got := empty.Title(); got != "conversation" {
		t.Errorf("Title() = %q, want fallback", got)
	}
}

func TestMarkdownExport(t *testing.T) {
	opts := DefaultOptions()
	opts.Resolver = assets.NewResolver("http://localhost:5000", "final_cleaned_dataset")

	out, err := NewMarkdownExporter(opts).Export(sampleTranscript())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	result := string(out)

	for _, want := range []string{
		"---\ntitle: pump leaking\n",
		"backend: http://localhost:5000\n",
		"mode: LOCAL\n",
		"generator: guideweave\n",
		"# pump leaking\n",
		"## You <sub>",
		"## GuideWeave <sub>",
		"**1.** Turn off valve",
		`*Sources: \[4\] \[7\]*`,
		"[img1.png](http://localhost:5000/final_cleaned_dataset/img1.png)",
		"> **Error:** index offline",
		"still: *dripping*",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("markdown missing %q\n%s", want, result)
		}
	}
}

func TestMarkdownExport_FrontMatterIsQuoted(t *testing.T) {
	store := model.NewStore()
	store.AppendUser("Test\nInjection: malicious")
	tr := NewTranscript(store, "http://localhost:5000", "")

	out, err := NewMarkdownExporter(nil).Export(tr)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	for _, line := range strings.Split(string(out), "\n")[:10] {
		if strings.HasPrefix(line, "Injection:") {
			t.Error("newline in title escaped the front matter value")
		}
	}
	if strings.Contains(string(out), "mode:") {
		t.Error("empty mode should be omitted")
	}
}

func TestMarkdownExport_NoMetadata(t *testing.T) {
	opts := &Options{}
	out, err := NewMarkdownExporter(opts).Export(sampleTranscript())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if strings.HasPrefix(string(out), "---") {
		t.Error("front matter written without IncludeMetadata")
	}
	if strings.Contains(string(out), "<sub>") {
		t.Error("timestamps written without IncludeTimestamps")
	}
}

func TestJSONExport(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleTranscript())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded struct {
		Backend   string          `json:"backend"`
		Mode      string          `json:"mode"`
		Questions int             `json:"questions"`
		Messages  []model.Message `json:"messages"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Backend != "http://localhost:5000" || decoded.Mode != "LOCAL" {
		t.Errorf("metadata = %q/%q", decoded.Backend, decoded.Mode)
	}
	if decoded.Questions != 2 {
		t.Errorf("questions = %d, want 2", decoded.Questions)
	}
	if len(decoded.Messages) != 5 {
		t.Fatalf("got %d messages, want 5", len(decoded.Messages))
	}
	// The legacy single image comes back as a list.
	if !strings.Contains(string(out), `"images": [`) {
		t.Errorf("images not normalized to a list:\n%s", out)
	}
}

func TestExportToFile(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputDir = filepath.Join(t.TempDir(), "transcripts")

	for _, format := range []string{"md", "json"} {
		exp, err := ForFormat(format, opts)
		if err != nil {
			t.Fatalf("ForFormat(%q): %v", format, err)
		}
		path, err := ExportToFile(sampleTranscript(), exp, opts)
		if err != nil {
			t.Fatalf("ExportToFile(%s): %v", format, err)
		}
		if !strings.HasPrefix(filepath.Base(path), "guideweave_pump_leaking_") {
			t.Errorf("unexpected file name %s", filepath.Base(path))
		}
		if filepath.Ext(path) != exp.FileExtension() {
			t.Errorf("extension = %s, want %s", filepath.Ext(path), exp.FileExtension())
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file not written: %v", err)
		}
	}

	if _, err := ForFormat("html", opts); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestExportToFile_NothingToExport(t *testing.T) {
	tr := NewTranscript(model.NewStore(), "", "")
	_, err := ExportToFile(tr, NewMarkdownExporter(nil), &Options{OutputDir: t.TempDir()})
	if !errors.Is(err, ErrNothingToExport) {
		t.Errorf("err = %v, want ErrNothingToExport", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"pump leaking", "pump_leaking"},
		{"a/b:c?", "a-b-c-"},
		{"", "conversation"},
		{strings.Repeat("x", 60), strings.Repeat("x", 40)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
