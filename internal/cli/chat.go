// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/guideweave-tui/internal/export"
	"github.com/jeranaias/guideweave-tui/internal/model"
	"github.com/jeranaias/guideweave-tui/internal/ui/styles"
)

// replPrompt is shown before each line in line mode.
const replPrompt = "guideweave> "

var (
	promptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// newChatCommand builds "guideweave chat".
func newChatCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-mode conversation",
		Long: `Start a conversation without the full-screen view.

Type a question and press Enter. Arrow keys browse previous questions.
/save [md|json] writes the conversation to the transcripts directory.
Type exit or quit, or press Ctrl+D, to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runChat(cmd.Context())
		},
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader is the part of liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// ChatCLI provides input history and line editing for line mode.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI whose history lives in dir.
func NewChatCLI(dir string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads a line of input with the given prompt.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	return c.line.Prompt(prompt)
}

// AppendHistory adds a line to the in-memory history.
func (c *ChatCLI) AppendHistory(item string) {
	c.line.AppendHistory(item)
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() error {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.line.WriteHistory(f)
	return err
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() error {
	err := c.SaveHistory()
	if cerr := c.line.Close(); err == nil {
		err = cerr
	}
	return err
}

// =============================================================================
// REPL
// =============================================================================

func (a *App) runChat(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	dir, err := a.dir()
	if err != nil {
		return err
	}

	s, err := a.openSession(logToConsole)
	if err != nil {
		return err
	}
	defer s.Close()

	in := NewChatCLI(dir)
	defer func() {
		if err := in.Close(); err != nil {
			s.log.Warn().Err(err).Msg("failed to save chat history")
		}
	}()

	return a.repl(ctx, s, in)
}

// repl reads questions until exit and prints every bot message the store
// gains, the welcome message included.
func (a *App) repl(ctx context.Context, s *session, in lineReader) error {
	printer := newAnswerPrinter(a.Out, s.resolver)

	for _, msg := range s.store.Messages() {
		if msg.IsBot() {
			printer.PrintMessage(msg)
		}
	}
	unsubscribe := s.store.Subscribe(func(ev model.Event) {
		if ev.Kind == model.EventAppend && ev.Message.IsBot() {
			printer.PrintMessage(ev.Message)
		}
	})
	defer unsubscribe()

	if printer.styled {
		fmt.Fprintln(a.Out, hintStyle.Render("Type exit or press Ctrl+D to leave."))
	}

	for {
		line, err := in.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(a.Out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		in.AppendHistory(line)
		if fields := strings.Fields(line); fields[0] == "/save" {
			format := "md"
			if len(fields) > 1 {
				format = fields[1]
			}
			a.saveTranscript(s, format)
			continue
		}
		if printer.styled {
			fmt.Fprintln(a.Out, promptStyle.Render("..."))
		}
		s.ctrl.Send(ctx, line)
	}
}

// saveTranscript exports the session's conversation and reports the result.
func (a *App) saveTranscript(s *session, format string) {
	opts := export.DefaultOptions()
	opts.OutputDir = a.transcriptDir()
	opts.Resolver = s.resolver

	exp, err := export.ForFormat(format, opts)
	if err != nil {
		fmt.Fprintf(a.Out, "%v\n", err)
		return
	}

	t := export.NewTranscript(s.store, s.cfg.Backend.BaseURL, s.cfg.Backend.Mode)
	if s.journal != nil {
		t.SessionID = s.journal.SessionID()
	}
	path, err := export.ExportToFile(t, exp, opts)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		fmt.Fprintln(a.Out, "Nothing to save yet.")
	case err != nil:
		s.log.Warn().Err(err).Msg("transcript export failed")
		fmt.Fprintf(a.Out, "Failed to save: %v\n", err)
	default:
		fmt.Fprintf(a.Out, "Saved transcript to %s\n", path)
	}
}
