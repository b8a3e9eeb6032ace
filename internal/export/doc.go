// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to files.
//
// # Key Types
//
//   - Transcript: snapshot of a conversation store
//   - Exporter: format interface (Markdown, JSON)
//   - Options: output directory, metadata, image resolver
//
// # Usage
//
//	t := export.NewTranscript(store, cfg.Backend.BaseURL, cfg.Backend.Mode)
//	exp, _ := export.ForFormat("md", opts)
//	path, err := export.ExportToFile(t, exp, opts)
package export
