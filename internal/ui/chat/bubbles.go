// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/guideweave-tui/internal/assets"
	"github.com/jeranaias/guideweave-tui/internal/model"
	"github.com/jeranaias/guideweave-tui/internal/render"
	"github.com/jeranaias/guideweave-tui/internal/ui/styles"
)

// bubbleChrome is the horizontal space taken by bubble padding and border.
const bubbleChrome = 6

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// renderMessages renders the whole conversation, oldest first.
func (m Model) renderMessages() string {
	msgs := m.store().Messages()
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsUser() {
			parts = append(parts, m.renderUser(msg))
		} else {
			parts = append(parts, m.renderBot(msg))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) viewWidth() int {
	if m.width > 0 {
		return m.width
	}
	return render.DefaultWidth
}

// innerWidth is the widest text a bubble may hold.
func (m Model) innerWidth() int {
	return max(m.theme.BubbleWidth()-bubbleChrome, 10)
}

// renderUser renders a right-aligned user bubble sized to its text.
func (m Model) renderUser(msg model.Message) string {
	text := msg.Content.Text
	w := min(lipgloss.Width(text), m.innerWidth())
	bubble := m.theme.UserBubble.Width(w + 4).Render(text)

	label := m.theme.RoleLabel.Render(msg.Role.DisplayName())
	block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
	return lipgloss.PlaceHorizontal(m.viewWidth(), lipgloss.Right, block)
}

// renderBot renders a bot message from its interpreted tree.
func (m Model) renderBot(msg model.Message) string {
	tree := m.visibleTree(render.InterpretMessage(msg, m.resolver))
	label := m.theme.RoleLabel.Render(msg.Role.DisplayName())

	var bubble string
	switch tree.Kind {
	case render.KindError:
		text := styles.StatusIndicators.Error + " " + tree.Error
		w := min(lipgloss.Width(text), m.innerWidth())
		bubble = m.theme.ErrorBubble.Width(w + 4).Render(text)
	case render.KindText:
		w := min(lipgloss.Width(tree.Text), m.innerWidth())
		bubble = m.theme.BotBubble.Width(w + 4).Render(m.theme.StepText.Render(tree.Text))
	default:
		bubble = m.theme.BotBubble.Render(m.renderSteps(tree))
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// renderSteps draws the title and numbered steps of a success tree.
func (m Model) renderSteps(tree render.Tree) string {
	inner := m.innerWidth()
	var lines []string

	if tree.HasTitle() {
		lines = append(lines, m.theme.StepTitle.Width(inner).Render(tree.Title))
	}
	if len(tree.Steps) == 0 && !tree.HasTitle() {
		return m.theme.Muted.Render("(no steps)")
	}

	for _, s := range tree.Steps {
		prefix := m.theme.StepLabel.Render(s.Label+".") + " "
		pw := lipgloss.Width(prefix)
		indent := strings.Repeat(" ", pw)
		textWidth := max(inner-pw, 10)

		instr := m.theme.StepText.Width(textWidth).Render(s.Instruction)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, prefix, instr))

		if s.Citation != "" {
			cite := m.theme.Citation.Width(textWidth).Render("Sources: " + s.Citation)
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, indent, cite))
		}
		for _, url := range s.Images {
			lines = append(lines, indent+m.theme.Muted.Render("Image: ")+m.theme.Link(url, assets.Filename(url)))
		}
	}
	return strings.Join(lines, "\n")
}
