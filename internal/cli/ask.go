// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// newAskCommand builds "guideweave ask".
//
// Examples:
//
//	guideweave ask "water pump is leaking"
//	guideweave ask --json dishwasher will not drain
func newAskCommand(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a single question and print the answer",
		Long: `Send one question to the backend and print the answer.

The exit status is 1 when the backend answers with an error or cannot be
reached.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAsk(cmd.Context(), joinArgs(args), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the decoded answer as JSON")
	return cmd
}

func (a *App) runAsk(ctx context.Context, query string, asJSON bool) error {
	if query == "" {
		return ErrEmptyQuery
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := a.openSession(logToConsole)
	if err != nil {
		return err
	}
	defer s.Close()

	if !s.ctrl.Send(ctx, query) {
		return ErrEmptyQuery
	}

	answer, _ := s.store.LastBot()
	if asJSON {
		if err := writeJSON(a.Out, answer); err != nil {
			return err
		}
	} else {
		newAnswerPrinter(a.Out, s.resolver).PrintMessage(answer)
	}

	if answer.Content.IsError() {
		return ErrErrorAnswer
	}
	return nil
}
