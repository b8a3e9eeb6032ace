// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/guideweave-tui/internal/client"
	"github.com/jeranaias/guideweave-tui/internal/ui/chat"
	"github.com/jeranaias/guideweave-tui/internal/ui/styles"
)

// runTUI opens the full-screen chat view. Logs go to the log file because
// the view owns the terminal.
func (a *App) runTUI() error {
	if !isTerminal(a.In) || !isTerminal(a.Out) {
		return ErrNoTerminal
	}

	s, err := a.openSession(logToFile)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := chat.Options{
		Resolver:      s.resolver,
		ProbeTimeout:  client.ProbeTimeout,
		Mode:          s.cfg.Backend.Mode,
		HideCitations: !s.cfg.UI.ShowCitations,
		ExportDir:     a.transcriptDir(),
		Logger:        &s.log.Logger,
	}
	if s.cfg.UI.ProbeImages {
		opts.Prober = s.client
	}

	m := chat.New(styles.NewThemeFor(s.cfg.UI.Theme), s.ctrl, opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithInput(a.In),
		tea.WithOutput(a.Out),
	)

	s.log.Info().Str("base_url", s.cfg.Backend.BaseURL).Msg("chat view started")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat view failed: %w", err)
	}
	s.log.Info().Int("messages", s.store.Len()).Msg("chat view closed")
	return nil
}
