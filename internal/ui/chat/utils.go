// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// writeClipboard copies the given text to the system clipboard.
// Returns an error if the clipboard is not available or the operation fails.
func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// sizeInfo formats a character count for status messages.
func sizeInfo(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d chars", n)
	}
	return fmt.Sprintf("%.1fK chars", float64(n)/1000)
}

// countLabel formats the message count for the status bar.
func countLabel(n int) string {
	if n == 1 {
		return "1 message"
	}
	return fmt.Sprintf("%d messages", n)
}
