// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestConfig_Default tests that defaults are valid once paths are filled in.
func TestConfig_Default(t *testing.T) {
	cfg := Default()
	if cfg.Backend.BaseURL != "http://localhost:5000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.StaticRoute != "final_cleaned_dataset" {
		t.Errorf("StaticRoute = %q", cfg.Backend.StaticRoute)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}

	cfg.setDefaultsIn(t.TempDir())
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadFromDir_NoFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if cfg.Log.File != filepath.Join(dir, "guideweave.log") {
		t.Errorf("Log.File = %q", cfg.Log.File)
	}
	if cfg.Journal.Path != filepath.Join(dir, "journal.db") {
		t.Errorf("Journal.Path = %q", cfg.Journal.Path)
	}
}

func TestLoadFromDir_TOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), `
[backend]
base_url = "http://backend:8080/"
mode = "cloud"

[ui]
show_citations = false
`)

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://backend:8080" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Mode != "CLOUD" {
		t.Errorf("Mode = %q, want CLOUD", cfg.Backend.Mode)
	}
	if cfg.UI.ShowCitations {
		t.Error("ShowCitations should be false")
	}
	if cfg.Backend.StaticRoute != "final_cleaned_dataset" || !cfg.UI.ProbeImages {
		t.Error("unset values should keep defaults")
	}
}

func TestLoadFromDir_YAMLFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
backend:
  base_url: https://guide.example.com
  timeout_secs: 15
journal:
  enabled: false
`)

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if cfg.Backend.BaseURL != "https://guide.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Timeout() != 15*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if cfg.Journal.Enabled {
		t.Error("journal should be disabled")
	}
}

func TestLoadFromDir_TOMLPreferred(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[backend]\nbase_url = \"http://toml:1\"\n")
	writeFile(t, filepath.Join(dir, "config.yaml"), "backend:\n  base_url: http://yaml:1\n")

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://toml:1" {
		t.Errorf("BaseURL = %q, want the TOML value", cfg.Backend.BaseURL)
	}
}

func TestLoadFromDir_BrokenFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[backend\nbase_url = ")

	cfg, err := LoadFromDir(dir)
	if err == nil {
		t.Fatal("expected a load error")
	}
	if cfg == nil {
		t.Fatal("defaults should still be returned")
	}
	if cfg.Backend.BaseURL != "http://localhost:5000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
}

func TestLoadFromDir_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[backend]\nmode = \"hybrid\"\n")

	_, err := LoadFromDir(dir)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verrs ValidateErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 || verrs[0].Field != "backend.mode" {
		t.Errorf("error = %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GUIDEWEAVE_BASE_URL", "http://env:9000")
	t.Setenv("GUIDEWEAVE_STATIC_ROUTE", "/images/")
	t.Setenv("GUIDEWEAVE_MODE", "local")
	t.Setenv("GUIDEWEAVE_TIMEOUT", "5")
	t.Setenv("GUIDEWEAVE_LOG_LEVEL", "debug")
	t.Setenv("GUIDEWEAVE_JOURNAL_ENABLED", "false")
	t.Setenv("GUIDEWEAVE_PROBE_IMAGES", "false")

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://env:9000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.StaticRoute != "/images/" {
		t.Errorf("StaticRoute = %q", cfg.Backend.StaticRoute)
	}
	if cfg.Backend.Mode != "LOCAL" {
		t.Errorf("Mode = %q", cfg.Backend.Mode)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Journal.Enabled || cfg.UI.ProbeImages {
		t.Error("boolean overrides not applied")
	}
}

func TestApplyEnvOverrides_Invalid(t *testing.T) {
	t.Setenv("GUIDEWEAVE_TIMEOUT", "soon")
	if _, err := LoadFromDir(t.TempDir()); err == nil {
		t.Error("expected error for non-numeric timeout")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid", func(c *Config) {}, ""},
		{"relative url", func(c *Config) { c.Backend.BaseURL = "localhost:5000" }, "backend.base_url"},
		{"ftp url", func(c *Config) { c.Backend.BaseURL = "ftp://host" }, "backend.base_url"},
		{"empty route", func(c *Config) { c.Backend.StaticRoute = "/" }, "backend.static_route"},
		{"bad mode", func(c *Config) { c.Backend.Mode = "auto" }, "backend.mode"},
		{"zero timeout", func(c *Config) { c.Backend.TimeoutSecs = 0 }, "backend.timeout_secs"},
		{"huge timeout", func(c *Config) { c.Backend.TimeoutSecs = 3600 }, "backend.timeout_secs"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"journal without path", func(c *Config) { c.Journal.Path = "" }, "journal.path"},
		{"disabled journal without path", func(c *Config) { c.Journal.Enabled = false; c.Journal.Path = "" }, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.setDefaultsIn(t.TempDir())
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.field) {
				t.Errorf("Validate() = %v, want error on %s", err, tc.field)
			}
		})
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "http://saved:1234"
	cfg.Backend.Mode = "LOCAL"
	cfg.UI.Theme = "light"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Backend.BaseURL != "http://saved:1234" || loaded.Backend.Mode != "LOCAL" || loaded.UI.Theme != "light" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestConfig_Get(t *testing.T) {
	cfg := Default()
	cfg.setDefaultsIn(t.TempDir())

	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}

	v, err := cfg.Get("backend.base_url")
	if err != nil || v != "http://localhost:5000" {
		t.Errorf("Get(backend.base_url) = %v, %v", v, err)
	}
	if _, err := cfg.Get("backend.nope"); err == nil {
		t.Error("expected unknown field error")
	}
	if _, err := cfg.Get("backend.base_url.x"); err == nil {
		t.Error("expected not-a-struct error")
	}
	if _, err := cfg.Get(""); err == nil {
		t.Error("expected empty key error")
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Backend.BaseURL = "http://other:1"
	if cfg.Backend.BaseURL == clone.Backend.BaseURL {
		t.Error("Clone() shares state with the original")
	}
}
