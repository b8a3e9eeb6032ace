// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render interprets assistant message content into a deterministic
// display structure and writes that structure as plain text or markdown.
//
// The interpreter is pure: the same content and resolver always produce the
// same Tree. Styling is left to the views.
package render

import (
	"strings"

	"github.com/jeranaias/guideweave-tui/internal/assets"
	"github.com/jeranaias/guideweave-tui/internal/model"
)

// =============================================================================
// RENDER TREE
// =============================================================================

// Kind identifies the shape of a rendered message.
type Kind int

const (
	// KindText is a plain text node.
	KindText Kind = iota
	// KindError is a single error block.
	KindError
	// KindSteps is an optional title followed by ordered step blocks.
	KindSteps
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindError:
		return "error"
	case KindSteps:
		return "steps"
	default:
		return "unknown"
	}
}

// Tree is the normalized visual structure of one message.
type Tree struct {
	Kind Kind

	// Text is set for KindText.
	Text string

	// Error is set for KindError. It may be empty; the block still renders.
	Error string

	// Title and Steps are set for KindSteps. An empty Title is omitted.
	Title string
	Steps []StepBlock
}

// StepBlock is one rendered step.
type StepBlock struct {
	// Label is the step number exactly as the backend sent it.
	Label       string
	Instruction string
	// Citation is the bracketed chunk references, e.g. "[4] [7]".
	// Empty when the step cites nothing.
	Citation string
	// Images are resolved URLs in display order.
	Images []string
}

// HasTitle reports whether the tree has a title to show.
func (t Tree) HasTitle() bool {
	return t.Kind == KindSteps && t.Title != ""
}

// ImageURLs returns every image URL of the tree in display order.
func (t Tree) ImageURLs() []string {
	var urls []string
	for _, s := range t.Steps {
		urls = append(urls, s.Images...)
	}
	return urls
}

// =============================================================================
// INTERPRETER
// =============================================================================

// Interpret builds the render tree for content. A nil resolver uses the
// default backend origin and route.
func Interpret(content model.Content, resolver *assets.Resolver) Tree {
	if resolver == nil {
		resolver = assets.NewResolver("", "")
	}

	p := content.Payload
	if p == nil {
		return Tree{Kind: KindText, Text: content.Text}
	}
	if p.IsError() {
		return Tree{Kind: KindError, Error: p.Message}
	}

	tree := Tree{Kind: KindSteps, Title: p.TaskTitle}
	if len(p.Steps) > 0 {
		tree.Steps = make([]StepBlock, 0, len(p.Steps))
	}
	for _, s := range p.Steps {
		tree.Steps = append(tree.Steps, StepBlock{
			Label:       string(s.Step),
			Instruction: s.Instruction,
			Citation:    Citation(s.Chunks),
			Images:      resolver.ResolveAll(s.Images),
		})
	}
	return tree
}

// InterpretMessage interprets a stored message.
func InterpretMessage(msg model.Message, resolver *assets.Resolver) Tree {
	return Interpret(msg.Content, resolver)
}

// Citation formats chunk ids as bracketed references separated by single
// spaces, preserving order.
func Citation(chunks model.Chunks) string {
	if len(chunks) == 0 {
		return ""
	}
	refs := make([]string, len(chunks))
	for i, c := range chunks {
		refs[i] = "[" + c + "]"
	}
	return strings.Join(refs, " ")
}
