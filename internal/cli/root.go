// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/guideweave-tui/internal/config"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App carries the streams and flag values shared by all commands.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Flag values
	debug     bool
	configDir string
	baseURL   string
	mode      string

	cfg *config.Config
}

// NewApp returns an App bound to the process streams.
func NewApp() *App {
	return &App{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Execute runs the command line against the process streams.
func Execute() error {
	return NewRootCommand(NewApp()).Execute()
}

// NewRootCommand builds the command tree. Running it without a subcommand
// opens the chat view.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "guideweave",
		Short: "GuideWeave - step-by-step repair guidance in your terminal",
		Long: `guideweave is a terminal client for the GuideWeave repair assistant.

Describe the equipment and the problem; the backend answers with numbered
steps, the manual passages they come from, and reference images.

Examples:
  guideweave                                # open the chat view
  guideweave ask "water pump is leaking"    # one question, printed answer
  guideweave chat                           # line-mode conversation
  guideweave history -n 5                   # recent exchanges`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTUI()
		},
	}

	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	flags := root.PersistentFlags()
	flags.BoolVar(&app.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&app.configDir, "config-dir", "", "Configuration directory (default ~/.guideweave)")
	flags.StringVar(&app.baseURL, "base-url", "", "Backend origin, overrides backend.base_url")
	flags.StringVar(&app.mode, "mode", "", "Backend mode (CLOUD or LOCAL), overrides backend.mode")

	root.AddCommand(
		newAskCommand(app),
		newChatCommand(app),
		newHistoryCommand(app),
		newSchemaCommand(app),
		newConfigCommand(app),
	)
	return root
}

// loadConfig reads the configuration and applies flag overrides. A broken
// config file is reported and defaults are used.
func (a *App) loadConfig() error {
	var cfg *config.Config
	var err error
	if a.configDir != "" {
		cfg, err = config.LoadFromDir(a.configDir)
	} else {
		cfg, err = config.Load()
	}
	if cfg == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(a.Err, "warning: %v (using defaults)\n", err)
	}

	if a.baseURL != "" || a.mode != "" {
		if a.baseURL != "" {
			cfg.Backend.BaseURL = a.baseURL
		}
		if a.mode != "" {
			cfg.Backend.Mode = a.mode
		}
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}
	}

	a.cfg = cfg
	return nil
}

// dir returns the configuration directory in use.
func (a *App) dir() (string, error) {
	if a.configDir != "" {
		return a.configDir, nil
	}
	return config.ConfigDir()
}

// transcriptDir is where saved conversations go.
func (a *App) transcriptDir() string {
	dir, err := a.dir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "transcripts")
}

// configPath returns the TOML config file in the directory in use.
func (a *App) configPath() (string, error) {
	dir, err := a.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
