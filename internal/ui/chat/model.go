// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/guideweave-tui/internal/assets"
	"github.com/jeranaias/guideweave-tui/internal/dispatch"
	"github.com/jeranaias/guideweave-tui/internal/model"
	"github.com/jeranaias/guideweave-tui/internal/render"
	"github.com/jeranaias/guideweave-tui/internal/ui/styles"
)

// DefaultProbeTimeout bounds a single image probe.
const DefaultProbeTimeout = 5 * time.Second

// flashDuration is how long a status flash stays visible.
const flashDuration = 3 * time.Second

// ImageProber checks whether an image URL can be fetched.
// *client.Client satisfies it.
type ImageProber interface {
	ProbeImage(ctx context.Context, url string) error
}

// Options configures a chat Model. Zero values are usable.
type Options struct {
	// Resolver turns step image references into URLs. Defaults to the
	// built-in origin and route.
	Resolver *assets.Resolver

	// Prober checks images of new bot messages. Nil disables probing and
	// every image is shown.
	Prober       ImageProber
	ProbeTimeout time.Duration

	// Mode is the backend mode shown in the header ("CLOUD", "LOCAL" or empty).
	Mode string

	// HideCitations starts the view with source lines hidden.
	HideCitations bool

	// ExportDir is where transcripts are saved. Empty disables saving.
	ExportDir string

	Logger *zerolog.Logger
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Styling
	theme  *styles.Theme
	keyMap KeyMap

	// Dimensions
	width  int
	height int

	// Conversation
	ctrl     *dispatch.Controller
	resolver *assets.Resolver

	// renderedVersion is the store version the viewport was last built from.
	renderedVersion uint64
	synced          bool

	// startup holds the probes for messages present at construction.
	startup tea.Cmd

	// Image probing
	prober       ImageProber
	probeTimeout time.Duration
	probes       map[string]probeState
	probedUpTo   int // messages before this index have been scanned

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Display toggles
	showCitations bool
	showHelp      bool

	// Status
	mode      string
	exportDir string
	statusMsg string
	statusID  int

	log zerolog.Logger
}

// New creates a new chat model bound to ctrl.
func New(theme *styles.Theme, ctrl *dispatch.Controller, opts Options) Model {
	if theme == nil {
		theme = styles.NewTheme()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe the equipment and the problem..."
	ti.CharLimit = 2048
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII-compatible animation
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	resolver := opts.Resolver
	if resolver == nil {
		resolver = assets.NewResolver("", "")
	}
	probeTimeout := opts.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}

	m := Model{
		theme:         theme,
		keyMap:        DefaultKeyMap(),
		ctrl:          ctrl,
		resolver:      resolver,
		prober:        opts.Prober,
		probeTimeout:  probeTimeout,
		probes:        make(map[string]probeState),
		viewport:      vp,
		input:         ti,
		spinner:       sp,
		showCitations: !opts.HideCitations,
		mode:          opts.Mode,
		exportDir:     opts.ExportDir,
		log:           zerolog.Nop(),
	}
	if opts.Logger != nil {
		m.log = opts.Logger.With().Str("component", "chat").Logger()
	}

	m.startup = m.sync()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model. Probes for messages already in the store
// (the welcome message) start here.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startup)
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// ACCESSORS
// =============================================================================

func (m Model) store() *model.Store {
	return m.ctrl.Store()
}

// Pending reports whether a request is in flight.
func (m Model) Pending() bool {
	return m.ctrl.Pending()
}

// ShowCitations reports whether source lines are shown.
func (m Model) ShowCitations() bool {
	return m.showCitations
}

// StatusMessage returns the current status flash, if any.
func (m Model) StatusMessage() string {
	return m.statusMsg
}

// InputValue returns the current contents of the input line.
func (m Model) InputValue() string {
	return m.input.Value()
}

// =============================================================================
// STORE SYNC
// =============================================================================

// sync rebuilds the viewport when the store has changed since the last render
// and scrolls to the newest message. It returns probe commands for images of
// newly appended bot messages.
func (m *Model) sync() tea.Cmd {
	v := m.store().Version()
	if m.synced && v == m.renderedVersion {
		return nil
	}
	m.renderedVersion = v
	m.synced = true

	cmd := m.probeNew()
	m.updateViewport()
	m.viewport.GotoBottom()
	return cmd
}

// probeNew registers image URLs of messages appended since the last scan and
// returns one probe command per URL not seen before.
func (m *Model) probeNew() tea.Cmd {
	msgs := m.store().Messages()
	if m.probedUpTo > len(msgs) {
		m.probedUpTo = 0
	}
	var cmds []tea.Cmd
	for _, msg := range msgs[m.probedUpTo:] {
		if !msg.IsBot() {
			continue
		}
		for _, url := range render.InterpretMessage(msg, m.resolver).ImageURLs() {
			if _, seen := m.probes[url]; seen {
				continue
			}
			if m.prober == nil {
				m.probes[url] = probeOK
				continue
			}
			m.probes[url] = probePending
			cmds = append(cmds, m.probeCmd(url))
		}
	}
	m.probedUpTo = len(msgs)
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// updateViewport re-renders messages into the viewport without moving it.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderMessages())
}

// imageVisible reports whether url should be drawn. Only failed probes hide
// an image.
func (m Model) imageVisible(url string) bool {
	return m.probes[url] != probeFailed
}

// =============================================================================
// COMMANDS
// =============================================================================

// executeCmd runs the request for t off the event loop.
func (m Model) executeCmd(t dispatch.Ticket) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return dispatchResultMsg{result: ctrl.Execute(context.Background(), t)}
	}
}

// probeCmd checks a single image URL.
func (m Model) probeCmd(url string) tea.Cmd {
	prober, timeout := m.prober, m.probeTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return imageProbeMsg{url: url, err: prober.ProbeImage(ctx, url)}
	}
}

// flash shows a status message for a short time.
func (m *Model) flash(text string) tea.Cmd {
	m.statusID++
	m.statusMsg = text
	id := m.statusID
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return statusClearMsg{id: id}
	})
}
