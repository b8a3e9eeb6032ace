// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the guideweave packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes, TruncateWidth: UTF-8 and column safe truncation
//   - OneLine: Collapse whitespace for single-line previews
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	display := util.TruncateWidth(util.OneLine(query), 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
