// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/guideweave-tui/internal/export"
	"github.com/jeranaias/guideweave-tui/internal/render"
)

// Layout heights. These must stay in sync with renderHeader, renderInput and
// renderStatusBar in view.go.
const (
	headerHeight    = 1
	inputAreaHeight = 2 // border + input line
	statusBarHeight = 1
)

// pendingHint is flashed when Enter is pressed while a request is in flight.
const pendingHint = "Still waiting for the previous answer"

// copyToClipboard is replaced in tests.
var copyToClipboard = writeClipboard

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case dispatchResultMsg:
		return m.handleResult(msg)

	case imageProbeMsg:
		return m.handleProbe(msg)

	case statusClearMsg:
		if msg.id == m.statusID {
			m.statusMsg = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.Pending() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	default:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

		// Viewport handles mouse wheel and similar events.
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = viewportHeight

	// Input line has Padding(0,1) plus the "> " prompt.
	const promptLen = 2
	m.input.Width = max(m.width-2-promptLen-1, 10)

	m.theme.SetSize(m.width, m.height)

	atBottom := m.viewport.AtBottom()
	m.updateViewport()
	if atBottom {
		m.viewport.GotoBottom()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	// Any key dismisses the help overlay.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.HalfPageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.HalfPageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keyMap.Copy):
		return m.copyLastResponse()

	case key.Matches(msg, m.keyMap.Save):
		return m.saveTranscript()

	case key.Matches(msg, m.keyMap.ToggleCitations):
		m.showCitations = !m.showCitations
		m.updateViewport()
		if m.showCitations {
			return m, m.flash("Sources shown")
		}
		return m, m.flash("Sources hidden")

	case key.Matches(msg, m.keyMap.Help) && m.input.Value() == "":
		m.showHelp = true
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input line to the controller. Blank input is a silent
// no-op; input while a request is in flight is kept and a hint is flashed.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.Pending() {
		return m, m.flash(pendingHint)
	}

	ticket, ok := m.ctrl.Begin(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()

	cmds := []tea.Cmd{m.executeCmd(ticket), m.spinner.Tick}
	if cmd := m.sync(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleResult(msg dispatchResultMsg) (tea.Model, tea.Cmd) {
	if !m.ctrl.Complete(msg.result) {
		return m, nil
	}
	return m, m.sync()
}

func (m Model) handleProbe(msg imageProbeMsg) (tea.Model, tea.Cmd) {
	state := probeOK
	if msg.err != nil {
		state = probeFailed
		m.log.Debug().Err(msg.err).Str("url", msg.url).Msg("hiding unreachable image")
	}
	if m.probes[msg.url] == state {
		return m, nil
	}
	m.probes[msg.url] = state

	atBottom := m.viewport.AtBottom()
	m.updateViewport()
	if atBottom {
		m.viewport.GotoBottom()
	}
	return m, nil
}

// copyLastResponse copies the last bot answer to the clipboard as plain text.
func (m Model) copyLastResponse() (tea.Model, tea.Cmd) {
	last, ok := m.store().LastBot()
	if !ok {
		return m, m.flash("No answer to copy")
	}

	text := render.Plain(m.visibleTree(render.InterpretMessage(last, m.resolver)), render.DefaultWidth)
	if err := copyToClipboard(text); err != nil {
		m.log.Warn().Err(err).Msg("clipboard write failed")
		return m, m.flash("Failed to copy: " + err.Error())
	}
	return m, m.flash(fmt.Sprintf("Copied answer (%s)", sizeInfo(len(text))))
}

// saveTranscript writes the conversation as Markdown to the export dir.
func (m Model) saveTranscript() (tea.Model, tea.Cmd) {
	if m.exportDir == "" {
		return m, m.flash("Saving is disabled")
	}

	opts := export.DefaultOptions()
	opts.OutputDir = m.exportDir
	opts.Resolver = m.resolver

	t := export.NewTranscript(m.store(), m.resolver.BaseURL(), m.mode)
	path, err := export.ExportToFile(t, export.NewMarkdownExporter(opts), opts)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		return m, m.flash("Nothing to save yet")
	case err != nil:
		m.log.Warn().Err(err).Msg("transcript export failed")
		return m, m.flash("Failed to save: " + err.Error())
	}
	m.log.Info().Str("path", path).Msg("transcript saved")
	return m, m.flash("Saved " + filepath.Base(path))
}

// visibleTree drops images whose probe failed, and citations when they are
// hidden.
func (m Model) visibleTree(t render.Tree) render.Tree {
	if t.Kind != render.KindSteps {
		return t
	}
	steps := make([]render.StepBlock, len(t.Steps))
	for i, s := range t.Steps {
		var images []string
		for _, url := range s.Images {
			if m.imageVisible(url) {
				images = append(images, url)
			}
		}
		s.Images = images
		if !m.showCitations {
			s.Citation = ""
		}
		steps[i] = s
	}
	t.Steps = steps
	return t
}
