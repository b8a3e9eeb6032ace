// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"time"
)

// jsonDocument is the on-disk JSON layout: the transcript fields plus an
// export stamp.
type jsonDocument struct {
	*Transcript
	ExportedAt time.Time `json:"exported_at"`
	Questions  int       `json:"questions"`
}

// JSONExporter writes the whole transcript with payloads in their
// normalized form, so images are always lists. Options only matter for
// the Markdown view.
type JSONExporter struct {
	now func() time.Time
}

// NewJSONExporter returns a JSON exporter. opts is accepted so ForFormat
// can treat every format alike.
func NewJSONExporter(_ *Options) *JSONExporter {
	return &JSONExporter{now: time.Now}
}

func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, errors.New("transcript is nil")
	}
	doc := jsonDocument{
		Transcript: t,
		ExportedAt: e.now().UTC(),
		Questions:  t.Questions(),
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (e *JSONExporter) FileExtension() string { return ".json" }

func (e *JSONExporter) MimeType() string { return "application/json" }
