// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jeranaias/guideweave-tui/internal/assets"
)

// =============================================================================
// PAYLOAD TYPE
// =============================================================================

// Payload status values sent by the backend.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ConnectionFailure is the message of the error payload synthesized when the
// backend cannot be reached.
const ConnectionFailure = "Connection failure."

// Payload is a decoded assistant response. It is a tagged union keyed by
// Status: error payloads carry Message, everything else is treated as a
// success payload with an optional title and steps.
//
// Decoding is lenient. A field of the wrong JSON kind is treated as absent
// rather than failing the whole payload.
type Payload struct {
	Status    string `json:"status" jsonschema:"enum=success,enum=error"`
	Message   string `json:"message,omitempty" jsonschema:"description=Error text, only meaningful when status is error"`
	TaskTitle string `json:"task_title,omitempty"`
	Steps     []Step `json:"steps,omitempty"`
}

// Step is one instruction of a structured repair answer.
type Step struct {
	Step        StepLabel `json:"step"`
	Instruction string    `json:"instruction"`
	Chunks      Chunks    `json:"chunks,omitempty"`
	Images      Images    `json:"images,omitempty"`
}

// NewErrorPayload builds an error payload with the given message.
func NewErrorPayload(message string) *Payload {
	return &Payload{Status: StatusError, Message: message}
}

// NewConnectionFailure builds the payload shown when a dispatch fails.
func NewConnectionFailure() *Payload {
	return NewErrorPayload(ConnectionFailure)
}

// IsError reports whether the payload is an error payload.
// Missing or unknown statuses are not errors.
func (p *Payload) IsError() bool {
	return p != nil && p.Status == StatusError
}

// UnmarshalJSON decodes a payload object field by field.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = Payload{}
	p.Status = decodeString(fields["status"])
	p.Message = decodeString(fields["message"])
	p.TaskTitle = decodeString(fields["task_title"])

	var rawSteps []json.RawMessage
	if raw, ok := fields["steps"]; ok && json.Unmarshal(raw, &rawSteps) == nil {
		for _, rs := range rawSteps {
			var s Step
			if err := json.Unmarshal(rs, &s); err != nil {
				continue
			}
			p.Steps = append(p.Steps, s)
		}
	}
	return nil
}

// UnmarshalJSON decodes a step object field by field.
func (s *Step) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*s = Step{}
	if raw, ok := fields["step"]; ok {
		_ = s.Step.UnmarshalJSON(raw)
	}
	s.Instruction = decodeString(fields["instruction"])
	if raw, ok := fields["chunks"]; ok {
		_ = s.Chunks.UnmarshalJSON(raw)
	}
	if raw, ok := fields["images"]; ok {
		_ = s.Images.UnmarshalJSON(raw)
	}
	return nil
}

// =============================================================================
// STEP LABEL
// =============================================================================

// StepLabel is the step number exactly as the backend wrote it. Labels are
// shown verbatim, never re-derived from position.
type StepLabel string

// UnmarshalJSON keeps numbers as written and unquotes strings.
func (l *StepLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*l = ""
	case data[0] == '"':
		*l = StepLabel(decodeString(data))
	case data[0] == '{' || data[0] == '[':
		*l = ""
	default:
		*l = StepLabel(data)
	}
	return nil
}

// MarshalJSON writes numeric labels as numbers and anything else as a string.
func (l StepLabel) MarshalJSON() ([]byte, error) {
	if l == "" {
		return []byte("null"), nil
	}
	if isNumeric(string(l)) {
		return []byte(l), nil
	}
	return json.Marshal(string(l))
}

// =============================================================================
// CHUNKS
// =============================================================================

// Chunks are the citation ids of a step, in backend order.
type Chunks []string

// UnmarshalJSON accepts an array of numbers or strings. Other element kinds
// are skipped, and a non-array value yields no chunks.
func (c *Chunks) UnmarshalJSON(data []byte) error {
	*c = nil
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch {
		case item[0] == '"':
			if s := strings.TrimSpace(decodeString(item)); s != "" {
				*c = append(*c, s)
			}
		case isNumeric(string(item)):
			*c = append(*c, string(item))
		}
	}
	return nil
}

// MarshalJSON writes numeric ids as numbers.
func (c Chunks) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(c))
	for _, id := range c {
		if isNumeric(id) {
			out = append(out, json.RawMessage(id))
			continue
		}
		b, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(out)
}

// =============================================================================
// IMAGES
// =============================================================================

// Images is the canonical, ordered list of image references of a step.
//
// The backend sends this field in several shapes: absent, null, the "null"
// sentinel string, a single path, or an array of paths. All of them decode
// into this one representation.
type Images []string

// UnmarshalJSON normalizes every accepted shape into a list.
func (im *Images) UnmarshalJSON(data []byte) error {
	*im = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		*im = appendImage(nil, decodeString(data))
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 || item[0] != '"' {
				continue
			}
			*im = appendImage(*im, decodeString(item))
		}
	}
	return nil
}

func appendImage(list Images, ref string) Images {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == assets.NoImage {
		return list
	}
	return append(list, ref)
}

// =============================================================================
// CONTENT DECODING
// =============================================================================

// DecodeContent interprets a response body. It never fails: a JSON object
// becomes a payload, a JSON string becomes text, and anything else becomes
// the trimmed body text.
func DecodeContent(body []byte) Content {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return TextContent("")
	}

	switch trimmed[0] {
	case '{':
		var p Payload
		if err := json.Unmarshal(trimmed, &p); err == nil {
			return PayloadContent(&p)
		}
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return TextContent(s)
		}
	}
	return TextContent(string(trimmed))
}

// decodeString returns the string value of raw, or "" if raw is not a string.
func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// isNumeric reports whether s is a JSON number literal.
func isNumeric(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	return json.Valid([]byte(s))
}
