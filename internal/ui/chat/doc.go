// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat view component for the guideweave TUI.

The chat package implements the terminal conversation view using the Bubble
Tea framework. It owns no conversation state of its own: messages and the
pending flag live in model.Store and are changed only through a
dispatch.Controller.

# Key Components

## Model (model.go)

The Model struct is the Bubble Tea model for the view:
  - Header with backend origin, mode badge and pending spinner
  - Viewport of rendered messages, re-rendered when the store version moves
  - Single-line text input
  - Status bar with key help and short-lived status flashes

## Update Loop (update.go)

  - Enter calls Controller.Begin and returns a command running Execute
  - dispatchResultMsg hands the result back to Controller.Complete
  - imageProbeMsg records whether a step image could be fetched

## View Rendering (view.go, bubbles.go)

User messages render as right-aligned bubbles. Bot messages are interpreted
with render.Interpret and drawn step by step; images become terminal
hyperlinks and images whose probe failed are hidden.

# Usage

	ctrl := dispatch.New(store, client.New(cfg.Backend.BaseURL), dispatch.Options{})
	m := chat.New(styles.NewThemeFor(cfg.UI.Theme), ctrl, chat.Options{
	    Resolver: assets.NewResolver(cfg.Backend.BaseURL, cfg.Backend.StaticRoute),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
*/
package chat
