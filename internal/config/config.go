// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for guideweave.
//
// Supports both TOML and YAML configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.guideweave/config.toml
//   - ~/.guideweave/config.yaml
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/guideweave-tui/internal/assets"
	"github.com/jeranaias/guideweave-tui/internal/client"
	"github.com/jeranaias/guideweave-tui/internal/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GUIDEWEAVE_"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete guideweave configuration.
type Config struct {
	// Backend connection
	Backend BackendConfig `toml:"backend" yaml:"backend" json:"backend"`

	// UI configuration
	UI UIConfig `toml:"ui" yaml:"ui" json:"ui"`

	// Log configuration
	Log LogConfig `toml:"log" yaml:"log" json:"log"`

	// Exchange journal
	Journal JournalConfig `toml:"journal" yaml:"journal" json:"journal"`
}

// BackendConfig describes the assistant backend.
type BackendConfig struct {
	// BaseURL is the backend origin, e.g. http://localhost:5000
	BaseURL string `toml:"base_url" yaml:"base_url" json:"base_url"`
	// StaticRoute is the route images are served from
	StaticRoute string `toml:"static_route" yaml:"static_route" json:"static_route"`
	// Mode overrides the backend's inference mode: "", "CLOUD" or "LOCAL"
	Mode string `toml:"mode" yaml:"mode" json:"mode"`
	// TimeoutSecs bounds one query
	TimeoutSecs int `toml:"timeout_secs" yaml:"timeout_secs" json:"timeout_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" yaml:"theme" json:"theme"`
	// ShowCitations shows the chunk references under each step
	ShowCitations bool `toml:"show_citations" yaml:"show_citations" json:"show_citations"`
	// ProbeImages checks every image URL and hides the ones that fail
	ProbeImages bool `toml:"probe_images" yaml:"probe_images" json:"probe_images"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is a zerolog level name
	Level string `toml:"level" yaml:"level" json:"level"`
	// File is where the TUI writes its log
	File string `toml:"file" yaml:"file" json:"file"`
}

// JournalConfig contains exchange journal configuration.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `toml:"path" yaml:"path" json:"path"`
}

// Timeout returns the backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values. Paths are left
// empty and filled in by SetDefaults.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:     assets.DefaultBaseURL,
			StaticRoute: assets.DefaultRoute,
			Mode:        "",
			TimeoutSecs: 60,
		},
		UI: UIConfig{
			Theme:         "dark",
			ShowCitations: true,
			ProbeImages:   true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Journal: JournalConfig{
			Enabled: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the guideweave configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".guideweave"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config directory. A .env file in the
// working directory is read first so its variables act as overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFromDir(dir)
}

// LoadFromDir loads config.toml, or config.yaml as a fallback, from dir.
// Defaults are used when neither exists. A file that fails to decode is
// reported alongside the defaults, matching a missing file otherwise.
func LoadFromDir(dir string) (*Config, error) {
	cfg := Default()
	var loadErr error

	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if err := loadFile(cfg, path); err != nil {
			loadErr = err
			cfg = Default()
			continue
		}
		loadErr = nil
		break
	}

	if err := cfg.finish(dir); err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}
	if err := cfg.finish(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := LoadYAML(cfg, path); err != nil {
			return fmt.Errorf("failed to load YAML config from %s: %w", path, err)
		}
	default:
		if err := LoadTOML(cfg, path); err != nil {
			return fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return nil
}

// finish applies environment overrides, defaults and validation.
func (c *Config) finish(dir string) error {
	if err := c.ApplyEnvOverrides(); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	c.setDefaultsIn(dir)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadYAML decodes a YAML file into cfg.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# guideweave configuration file")
	fmt.Fprintln(&buf, "# Environment variables prefixed with "+EnvPrefix+" override these values")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true,
	"error": true, "fatal": true, "panic": true, "disabled": true,
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend
	if u, err := url.Parse(c.Backend.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("must be an http(s) origin, got '%s'", c.Backend.BaseURL),
		})
	}

	route := strings.Trim(c.Backend.StaticRoute, "/")
	if route == "" || strings.ContainsAny(route, " ?#") {
		errs = append(errs, ValidationError{
			Field:   "backend.static_route",
			Message: fmt.Sprintf("invalid route '%s'", c.Backend.StaticRoute),
		})
	}

	if err := client.ValidateMode(c.Backend.Mode); err != nil {
		errs = append(errs, ValidationError{
			Field:   "backend.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: CLOUD, LOCAL or empty", c.Backend.Mode),
		})
	}

	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("timeout_secs must be 1-600, got %d", c.Backend.TimeoutSecs),
		})
	}

	// UI
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	// Log
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Log.Level),
		})
	}

	// Journal
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		errs = append(errs, ValidationError{
			Field:   "journal.path",
			Message: "path is required when the journal is enabled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty values using the default config directory.
func (c *Config) SetDefaults() {
	dir, err := ConfigDir()
	if err != nil {
		dir = "."
	}
	c.setDefaultsIn(dir)
}

func (c *Config) setDefaultsIn(dir string) {
	defaults := Default()

	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaults.Backend.BaseURL
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.StaticRoute == "" {
		c.Backend.StaticRoute = defaults.Backend.StaticRoute
	}
	c.Backend.Mode = client.NormalizeMode(c.Backend.Mode)
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "guideweave.log")
	}
	if c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(dir, "journal.db")
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// envOverrides holds the variables that may override file values. Unset
// variables leave their pointer nil.
type envOverrides struct {
	BaseURL        *string `env:"BASE_URL"`
	StaticRoute    *string `env:"STATIC_ROUTE"`
	Mode           *string `env:"MODE"`
	TimeoutSecs    *int    `env:"TIMEOUT"`
	LogLevel       *string `env:"LOG_LEVEL"`
	LogFile        *string `env:"LOG_FILE"`
	JournalEnabled *bool   `env:"JOURNAL_ENABLED"`
	JournalPath    *string `env:"JOURNAL_PATH"`
	ProbeImages    *bool   `env:"PROBE_IMAGES"`
}

// ApplyEnvOverrides applies GUIDEWEAVE_* environment variables.
func (c *Config) ApplyEnvOverrides() error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return err
	}

	setString(&c.Backend.BaseURL, o.BaseURL)
	setString(&c.Backend.StaticRoute, o.StaticRoute)
	setString(&c.Backend.Mode, o.Mode)
	if o.TimeoutSecs != nil {
		c.Backend.TimeoutSecs = *o.TimeoutSecs
	}
	setString(&c.Log.Level, o.LogLevel)
	setString(&c.Log.File, o.LogFile)
	if o.JournalEnabled != nil {
		c.Journal.Enabled = *o.JournalEnabled
	}
	setString(&c.Journal.Path, o.JournalPath)
	if o.ProbeImages != nil {
		c.UI.ProbeImages = *o.ProbeImages
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"backend.base_url",
		"backend.static_route",
		"backend.mode",
		"backend.timeout_secs",
		"ui.theme",
		"ui.show_citations",
		"ui.probe_images",
		"log.level",
		"log.file",
		"journal.enabled",
		"journal.path",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
