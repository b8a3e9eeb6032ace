// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the domain types shared by the dispatch controller,
// the response interpreter and the views: the conversation Store, Message,
// and the assistant's response Payload.
//
// # Key Types
//
//   - Store: Append-only message history plus the single in-flight flag
//   - Message: One history entry with a store-minted ID, role and content
//   - Content: Either plain text or a decoded Payload
//   - Payload: Success (title and steps) or error (message) response
//   - Images: Canonical ordered list of image references for a step
//
// # Usage
//
// Create a store and observe it:
//
//	store := model.NewStore()
//	unsubscribe := store.Subscribe(func(ev model.Event) {
//	    if ev.Kind == model.EventAppend {
//	        fmt.Println(ev.Message.Preview(60))
//	    }
//	})
//	defer unsubscribe()
//
// Decode a response body:
//
//	content := model.DecodeContent(body)
//	store.AppendBot(content)
package model
