// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Wrap widths for plain output. Anything that is not a terminal gets
// fallbackWidth; tiny terminals are clamped up to minWidth.
const (
	fallbackWidth = 80
	minWidth      = 40
)

// fileDescriptor returns the descriptor behind v when v is an *os.File or
// anything else exposing Fd.
func fileDescriptor(v any) (int, bool) {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return 0, false
	}
	return int(f.Fd()), true
}

// isTerminal reports whether v is attached to a terminal. Buffers and
// pipes are not.
func isTerminal(v any) bool {
	fd, ok := fileDescriptor(v)
	return ok && term.IsTerminal(fd)
}

func terminalWidth(w io.Writer) int {
	fd, ok := fileDescriptor(w)
	if !ok {
		return fallbackWidth
	}
	width, _, err := term.GetSize(fd)
	switch {
	case err != nil || width <= 0:
		return fallbackWidth
	case width < minWidth:
		return minWidth
	}
	return width
}

// colorsEnabled follows https://no-color.org/: NO_COLOR wins, FORCE_COLOR
// styles output that is not a TTY.
func colorsEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return isTerminal(w)
}
