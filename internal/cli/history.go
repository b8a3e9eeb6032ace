// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jeranaias/guideweave-tui/internal/model"
	"github.com/jeranaias/guideweave-tui/internal/render"
	"github.com/jeranaias/guideweave-tui/internal/storage"
	"github.com/jeranaias/guideweave-tui/internal/util"
)

// DefaultHistoryLimit is the number of exchanges history shows by default.
const DefaultHistoryLimit = 20

// newHistoryCommand builds "guideweave history".
func newHistoryCommand(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exchanges from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return app.runHistory(ctx, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultHistoryLimit, "Number of exchanges to show")
	return cmd
}

func (a *App) runHistory(ctx context.Context, limit int) error {
	if !a.cfg.Journal.Enabled {
		return ErrJournalDisabled
	}

	j, err := storage.Open(a.cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	exchanges, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(exchanges) == 0 {
		fmt.Fprintln(a.Out, "No exchanges recorded yet.")
		return nil
	}

	fmt.Fprintln(a.Out, historyTable(exchanges, terminalWidth(a.Out)))
	return nil
}

// historyTable lays out exchanges newest first.
func historyTable(exchanges []storage.Exchange, width int) string {
	queryWidth := max((width-44)/2, 24)

	rows := make([][]string, 0, len(exchanges))
	for _, ex := range exchanges {
		status := "ok"
		if ex.Failed {
			status = "failed"
		}
		rows = append(rows, []string{
			ex.CreatedAt.Local().Format("2006-01-02 15:04"),
			status,
			strconv.FormatInt(ex.Duration.Milliseconds(), 10) + "ms",
			util.TruncateWidth(util.OneLine(ex.Query), queryWidth),
			util.TruncateWidth(exchangeSummary(ex), queryWidth),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "STATUS", "TOOK", "QUERY", "ANSWER").
		Rows(rows...).
		String()
}

// exchangeSummary summarises the recorded answer.
func exchangeSummary(ex storage.Exchange) string {
	content := model.DecodeContent([]byte(ex.Response))
	return render.Summary(render.Interpret(content, nil))
}
