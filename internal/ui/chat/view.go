// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/guideweave-tui/internal/util"
)

// =============================================================================
// MAIN VIEW
// =============================================================================

// renderChat stacks header, viewport (or help), input and status bar.
func (m Model) renderChat() string {
	body := m.viewport.View()
	if m.showHelp {
		body = lipgloss.Place(m.viewWidth(), m.viewport.Height,
			lipgloss.Center, lipgloss.Center, m.renderHelp())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// renderHeader shows the app name, backend origin, mode and pending state.
func (m Model) renderHeader() string {
	w := m.viewWidth()

	left := m.theme.HeaderTitle.Render("GuideWeave") + " " +
		m.theme.HeaderSubtitle.Render(m.resolver.BaseURL())

	right := m.theme.ModeBadge(m.mode)
	if m.Pending() {
		right = m.spinner.View() + " " + m.theme.Muted.Render("waiting for answer") + "  " + right
	}

	gap := w - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		left = m.theme.HeaderTitle.Render(util.TruncateWidth("GuideWeave", max(w-2-lipgloss.Width(right)-1, 1)))
		gap = max(w-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	}

	return m.theme.Header.Width(w).MaxHeight(headerHeight).
		Render(left + strings.Repeat(" ", gap) + right)
}

// renderInput shows the input line under a separator.
func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.viewWidth()).Render(m.input.View())
}

// renderStatusBar shows the status flash (or message count) and key help.
func (m Model) renderStatusBar() string {
	w := m.viewWidth()

	left := countLabel(m.store().Len())
	if m.statusMsg != "" {
		left = m.theme.StatusFlash.Render(m.statusMsg)
	}

	var hints []string
	for _, b := range m.keyMap.ShortHelp() {
		hints = append(hints, m.renderBinding(b))
	}
	right := strings.Join(hints, "  ")

	gap := w - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Narrow terminals keep the status and drop the key help.
		right = ""
		gap = max(w-2-lipgloss.Width(left), 0)
	}

	return m.theme.StatusBar.Width(w).MaxHeight(statusBarHeight).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderBinding(b key.Binding) string {
	h := b.Help()
	return m.theme.ShortcutKey.Render(h.Key) + " " + m.theme.ShortcutDesc.Render(h.Desc)
}

// renderHelp builds the help overlay from the full key map.
func (m Model) renderHelp() string {
	var columns []string
	for _, group := range m.keyMap.FullHelp() {
		var rows []string
		for _, b := range group {
			h := b.Help()
			rows = append(rows, fmt.Sprintf("%s  %s",
				m.theme.ShortcutKey.Width(6).Render(h.Key),
				m.theme.ShortcutDesc.Render(h.Desc)))
		}
		columns = append(columns, lipgloss.NewStyle().MarginRight(4).Render(strings.Join(rows, "\n")))
	}

	title := m.theme.StepTitle.Render("Keys")
	footer := m.theme.Muted.Render("? works on an empty line. Press any key to close.")
	return m.theme.HelpBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "", lipgloss.JoinHorizontal(lipgloss.Top, columns...), "", footer))
}
