// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the guideweave TUI.
//
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
// The configured ui.theme can force either variant.
//
// # Key Types
//
//   - Theme: Styled components plus terminal capabilities
//   - LayoutMode: Narrow, medium or wide layouts by terminal width
//   - StatusIndicatorSet: ASCII shapes shown next to status colors
//
// # Usage
//
//	theme := styles.NewThemeFor(cfg.UI.Theme)
//	theme.SetSize(width, height)
//	out := theme.UserBubble.Render("pump is leaking")
package styles
