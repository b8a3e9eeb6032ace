// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the exchange journal for GuideWeave TUI.
//
// Every completed query is recorded as one row: the query, the raw response
// body (or the connection-failure payload), and how long it took. The
// journal is write-only from the chat's point of view. It never repopulates
// a conversation; it exists for the history command and for debugging.
//
// # Key Types
//
//   - Journal: SQLite-backed exchange log
//   - Exchange: one recorded query and response
//
// # Usage
//
//	j, err := storage.Open(cfg.Journal.Path)
//	defer j.Close()
//	err = j.Record(ctx, storage.Exchange{Query: "pump leak", Response: body})
//	recent, err := j.Recent(ctx, 20)
//
// # Storage Location
//
// The journal lives in ~/.guideweave/journal.db unless configured otherwise.
package storage
