// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client provides the HTTP transport to the GuideWeave backend.
//
// The backend answers POST /api/chat with a JSON payload and serves step
// images from a static route. This package only moves bytes: decoding the
// payload is the model package's job.
//
// # Key Types
//
//   - Client: resty-based client for the chat endpoint and image probes
//   - StatusError: non-2xx answer from the backend
//
// # Usage
//
//	c := client.New("http://localhost:5000", client.WithMode(client.ModeLocal))
//	body, err := c.Chat(ctx, "water pump is leaking")
//	if err != nil {
//	    // connection failure
//	}
//	content := model.DecodeContent(body)
package client
