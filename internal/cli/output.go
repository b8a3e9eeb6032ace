// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/guideweave-tui/internal/assets"
	"github.com/jeranaias/guideweave-tui/internal/model"
	"github.com/jeranaias/guideweave-tui/internal/render"
	"github.com/jeranaias/guideweave-tui/internal/ui/styles"
)

// answerPrinter writes bot answers to a stream: markdown through glamour on
// a color terminal, wrapped plain text everywhere else.
type answerPrinter struct {
	out      io.Writer
	resolver *assets.Resolver
	width    int
	styled   bool
	md       *glamour.TermRenderer
}

func newAnswerPrinter(out io.Writer, resolver *assets.Resolver) *answerPrinter {
	p := &answerPrinter{
		out:      out,
		resolver: resolver,
		width:    terminalWidth(out),
		styled:   colorsEnabled(out),
	}
	if p.styled {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(p.width),
		)
		if err == nil {
			p.md = r
		}
	}
	return p
}

// PrintMessage renders a bot message.
func (p *answerPrinter) PrintMessage(msg model.Message) {
	p.PrintTree(render.InterpretMessage(msg, p.resolver))
}

// PrintTree renders an interpreted answer.
func (p *answerPrinter) PrintTree(t render.Tree) {
	if t.Kind == render.KindError && p.styled {
		fmt.Fprintln(p.out, styles.RenderError(t.Error))
		return
	}
	if p.md != nil {
		if out, err := p.md.Render(render.Markdown(t)); err == nil {
			fmt.Fprint(p.out, out)
			return
		}
	}
	fmt.Fprintln(p.out, render.Plain(t, p.width))
}

// writeJSON prints the decoded content of msg: the payload object, or the
// text as a JSON string.
func writeJSON(out io.Writer, msg model.Message) error {
	var v any = msg.Content.Text
	if msg.Content.Payload != nil {
		v = msg.Content.Payload
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// joinArgs joins command arguments into one query.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
