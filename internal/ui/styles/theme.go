// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewThemeFor.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeAuto  = "auto"
)

// Theme is the set of lipgloss styles the chat view draws with, built for
// the detected (or configured) terminal background.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Hyperlinks is true when image lines should be emitted as OSC 8 links.
	Hyperlinks bool

	// Layout dimensions
	Width  int
	Height int

	// Header
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// Bubbles
	UserBubble  lipgloss.Style
	BotBubble   lipgloss.Style
	ErrorBubble lipgloss.Style
	RoleLabel   lipgloss.Style

	// Answer steps
	StepTitle lipgloss.Style
	StepLabel lipgloss.Style
	StepText  lipgloss.Style
	Citation  lipgloss.Style
	ImageLink lipgloss.Style

	// Input
	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusFlash  lipgloss.Style
	ModeLocal    lipgloss.Style
	ModeCloud    lipgloss.Style
	ModeDefault  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Misc
	Spinner lipgloss.Style
	HelpBox lipgloss.Style
	Muted   lipgloss.Style
}

// NewTheme creates a new theme with all styles configured, detecting the
// terminal background.
func NewTheme() *Theme {
	return NewThemeFor(ThemeAuto)
}

// NewThemeFor creates a theme for a configured theme name. "dark" and "light"
// force the adaptive colors; anything else detects the background.
func NewThemeFor(name string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThemeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ThemeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
		Hyperlinks:   colorProfile != termenv.Ascii,
	}

	t.initStyles()
	return t
}

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.TerminalColor) lipgloss.Style {
	return fg(c).Bold(true)
}

func italic(c lipgloss.TerminalColor) lipgloss.Style {
	return fg(c).Italic(true)
}

// rounded is the shared bubble frame.
func rounded(border lipgloss.TerminalColor, vpad, hpad int) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(vpad, hpad)
}

func (t *Theme) initStyles() {
	bar := lipgloss.NewStyle().Background(SurfaceDim).Padding(0, 1)

	t.Header = bar
	t.HeaderTitle = bold(Cyan)
	t.HeaderSubtitle = italic(TextSecondary)

	t.UserBubble = rounded(UserBubbleBorder, 0, 2).Foreground(UserBubbleFg).Background(UserBubbleBg)
	t.BotBubble = rounded(BotBubbleBorder, 0, 2).Foreground(BotBubbleFg)
	t.ErrorBubble = rounded(Rose, 0, 2).Foreground(Rose).Background(RoseDeep)
	t.RoleLabel = bold(TextMuted)

	t.StepTitle = bold(Purple).Underline(true)
	t.StepLabel = bold(Purple)
	t.StepText = fg(TextPrimary)
	t.Citation = italic(TextMuted)
	t.ImageLink = fg(LinkColor).Underline(true)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = bold(Cyan)
	t.InputPlaceholder = italic(TextMuted)

	t.StatusBar = bar.Foreground(TextSecondary)
	t.StatusFlash = bold(Amber)
	t.ModeLocal = bold(Emerald)
	t.ModeCloud = bold(Amber)
	t.ModeDefault = fg(TextSecondary)
	t.ShortcutKey = bold(Cyan)
	t.ShortcutDesc = fg(TextMuted)

	t.Spinner = fg(Purple)
	t.HelpBox = rounded(Purple, 1, 2)
	t.Muted = fg(TextMuted)
}

// ModeBadge returns the styled badge for a backend mode ("CLOUD", "LOCAL" or
// empty for the backend default).
func (t *Theme) ModeBadge(mode string) string {
	switch mode {
	case "LOCAL":
		return t.ModeLocal.Render("LOCAL")
	case "CLOUD":
		return t.ModeCloud.Render("CLOUD")
	default:
		return t.ModeDefault.Render("default")
	}
}

// Link renders name as a terminal hyperlink to url when the terminal
// supports it, and as the bare styled url otherwise.
func (t *Theme) Link(url, name string) string {
	if !t.Hyperlinks {
		return t.ImageLink.Render(url)
	}
	return termenv.Hyperlink(url, t.ImageLink.Render(name))
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode buckets the current width.
func (t *Theme) GetLayoutMode() LayoutMode {
	return layoutFor(t.Width)
}

func layoutFor(width int) LayoutMode {
	switch {
	case width < 60:
		return LayoutNarrow
	case width < 100:
		return LayoutMedium
	}
	return LayoutWide
}

// BubbleWidth is the widest a message bubble may be. An unsized theme
// assumes 80 columns.
func (t *Theme) BubbleWidth() int {
	w := t.Width
	if w <= 0 {
		w = 80
	}
	switch layoutFor(w) {
	case LayoutNarrow:
		return max(w-2, 10)
	case LayoutMedium:
		return w * 85 / 100
	}
	return w * 75 / 100
}

// LayoutMode is a responsive width bucket.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-99 columns
	LayoutWide                     // 100+ columns
)
