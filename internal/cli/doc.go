// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the command-line interface for guideweave.
//
// Commands are built with cobra. Every command shares one App, which holds
// the process streams, the persistent flags and the loaded configuration.
//
// # Commands
//
//   - (none): full-screen chat view (Bubble Tea)
//   - ask: one question, answer printed; exit 1 on an error answer
//   - chat: line-mode conversation with input history (liner)
//   - history: recent exchanges from the journal
//   - schema: JSON Schema of a backend answer
//   - config show|path|init|get
//
// # Usage
//
//	if err := cli.Execute(); err != nil {
//	    fmt.Fprintf(os.Stderr, "Error: %v\n", err)
//	    os.Exit(1)
//	}
package cli
