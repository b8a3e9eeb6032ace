// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/guideweave-tui/internal/dispatch"
)

// =============================================================================
// TEA MESSAGES
// =============================================================================

// dispatchResultMsg carries a finished request back to the event loop.
type dispatchResultMsg struct {
	result dispatch.Result
}

// imageProbeMsg reports whether an image URL could be fetched.
type imageProbeMsg struct {
	url string
	err error
}

// statusClearMsg clears the status flash with the matching id.
type statusClearMsg struct {
	id int
}

// probeState tracks one image URL.
type probeState int

const (
	probePending probeState = iota
	probeOK
	probeFailed
)
