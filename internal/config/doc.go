// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for guideweave.
//
// Supports both TOML and YAML configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Backend origin, image route, mode and timeout
//   - UIConfig: Theme and display toggles
//   - LogConfig, JournalConfig: Where logs and exchanges go
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (GUIDEWEAVE_*), including a .env file
//   - ~/.guideweave/config.toml
//   - ~/.guideweave/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c := client.New(cfg.Backend.BaseURL, client.WithTimeout(cfg.Timeout()))
package config
