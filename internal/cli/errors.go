// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "errors"

var (
	// ErrErrorAnswer is returned by ask when the backend answered with an
	// error payload or could not be reached. The answer itself has already
	// been printed.
	ErrErrorAnswer = errors.New("backend answered with an error")

	// ErrEmptyQuery is returned by ask for a blank question.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrJournalDisabled is returned by history when journal.enabled is false.
	ErrJournalDisabled = errors.New("exchange journal is disabled (journal.enabled = false)")

	// ErrNoTerminal is returned when the chat view is started without a TTY.
	ErrNoTerminal = errors.New("the chat view needs a terminal; use 'guideweave ask' or 'guideweave chat'")
)
