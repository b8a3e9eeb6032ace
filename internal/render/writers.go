// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"path"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the wrap width used when the terminal width is unknown.
const DefaultWidth = 80

// Plain writes the tree as uncoloured text wrapped to width columns.
//
//	Fix Leak
//	1. Turn off valve
//	   Sources: [4] [7]
//	   Image: http://localhost:5000/final_cleaned_dataset/img1.png
func Plain(t Tree, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	var b strings.Builder
	switch t.Kind {
	case KindText:
		b.WriteString(wrap(t.Text, width))
	case KindError:
		b.WriteString(wrap("Error: "+t.Error, width))
	case KindSteps:
		if t.HasTitle() {
			b.WriteString(wrap(t.Title, width))
			b.WriteString("\n")
		}
		for _, s := range t.Steps {
			prefix := s.Label + ". "
			indent := strings.Repeat(" ", runewidth.StringWidth(prefix))
			b.WriteString(hang(prefix, indent, s.Instruction, width))
			b.WriteString("\n")
			if s.Citation != "" {
				b.WriteString(hang(indent+"Sources: ", indent, s.Citation, width))
				b.WriteString("\n")
			}
			for _, u := range s.Images {
				b.WriteString(indent + "Image: " + u + "\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Markdown writes the tree as markdown, for glamour.
func Markdown(t Tree) string {
	var b strings.Builder
	switch t.Kind {
	case KindText:
		b.WriteString(t.Text)
	case KindError:
		b.WriteString("> **Error:** " + t.Error)
	case KindSteps:
		if t.HasTitle() {
			b.WriteString("### " + t.Title + "\n\n")
		}
		for _, s := range t.Steps {
			fmt.Fprintf(&b, "**%s.** %s\n\n", s.Label, s.Instruction)
			if s.Citation != "" {
				// Escaped so "[4] [7]" is never read as a reference link.
				fmt.Fprintf(&b, "*Sources: %s*\n\n", escapeBrackets(s.Citation))
			}
			for _, u := range s.Images {
				fmt.Fprintf(&b, "- Image: [%s](%s)\n", path.Base(u), u)
			}
			if len(s.Images) > 0 {
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Summary returns a one-line description of the tree.
func Summary(t Tree) string {
	switch t.Kind {
	case KindError:
		if t.Error == "" {
			return "error"
		}
		return "error: " + firstLine(t.Error)
	case KindSteps:
		n := len(t.Steps)
		noun := "steps"
		if n == 1 {
			noun = "step"
		}
		if t.Title != "" {
			return fmt.Sprintf("%s (%d %s)", firstLine(t.Title), n, noun)
		}
		return fmt.Sprintf("%d %s", n, noun)
	default:
		return firstLine(t.Text)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func escapeBrackets(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

// wrap word-wraps every line of s to width display columns. Words wider
// than width are broken by runewidth.
func wrap(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, width int) string {
	if runewidth.StringWidth(line) <= width {
		return line
	}

	var out []string
	var cur strings.Builder
	curWidth := 0
	for _, word := range strings.Fields(line) {
		w := runewidth.StringWidth(word)
		if curWidth > 0 && curWidth+1+w > width {
			out = append(out, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if w > width {
			parts := strings.Split(runewidth.Wrap(word, width), "\n")
			out = append(out, parts[:len(parts)-1]...)
			word = parts[len(parts)-1]
			w = runewidth.StringWidth(word)
		}
		if curWidth > 0 {
			cur.WriteByte(' ')
			curWidth++
		}
		cur.WriteString(word)
		curWidth += w
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return strings.Join(out, "\n")
}

// hang wraps text after prefix and indents continuation lines.
func hang(prefix, indent, text string, width int) string {
	avail := width - runewidth.StringWidth(prefix)
	if avail < 10 {
		avail = 10
	}
	lines := strings.Split(wrap(text, avail), "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = prefix + lines[i]
		} else {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
