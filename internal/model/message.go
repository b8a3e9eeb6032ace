// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/jeranaias/guideweave-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "GuideWeave"
	default:
		return string(r)
	}
}

// =============================================================================
// CONTENT TYPE
// =============================================================================

// Content is what a message carries: plain text or a decoded payload.
// Exactly one of the two is meaningful; Payload == nil means text.
type Content struct {
	Text    string   `json:"text,omitempty"`
	Payload *Payload `json:"payload,omitempty"`
}

// TextContent wraps plain text.
func TextContent(text string) Content {
	return Content{Text: text}
}

// PayloadContent wraps a decoded payload.
func PayloadContent(p *Payload) Content {
	if p == nil {
		return Content{}
	}
	return Content{Payload: p}
}

// IsText reports whether the content is plain text.
func (c Content) IsText() bool {
	return c.Payload == nil
}

// IsError reports whether the content is an error payload.
func (c Content) IsError() bool {
	return c.Payload.IsError()
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry of the conversation history. Messages are
// immutable once the store has appended them.
type Message struct {
	// ID is minted by the store and strictly increases; it is never reused.
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   Content   `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// IsUser reports whether the message was sent by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsBot reports whether the message came from the assistant.
func (m Message) IsBot() bool {
	return m.Role == RoleBot
}

// Preview returns a truncated preview of the message.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	content := m.Content.Text
	if p := m.Content.Payload; p != nil {
		switch {
		case p.IsError():
			content = p.Message
		case p.TaskTitle != "":
			content = p.TaskTitle
		case len(p.Steps) > 0:
			content = p.Steps[0].Instruction
		}
	}
	if maxLen < 4 {
		return content
	}
	return util.TruncateRunes(content, maxLen)
}
