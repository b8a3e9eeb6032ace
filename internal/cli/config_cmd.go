// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/guideweave-tui/internal/config"
)

// newConfigCommand builds "guideweave config" and its subcommands.
func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
		Long: `Inspect and create the guideweave configuration.

Values come from ~/.guideweave/config.toml (or config.yaml), then
GUIDEWEAVE_* environment variables and a .env file, then flags.`,
	}

	var format string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(format)
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "toml", "Output format: toml, yaml or json")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, p)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig(force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one value, e.g. backend.base_url",
		Long:  "Print one configuration value. Keys: " + strings.Join(config.GetAllKeys(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, v)
			return nil
		},
	}

	cmd.AddCommand(show, path, initCmd, get)
	return cmd
}

func (a *App) showConfig(format string) error {
	switch strings.ToLower(format) {
	case "toml":
		return toml.NewEncoder(a.Out).Encode(a.cfg)
	case "yaml", "yml":
		enc := yaml.NewEncoder(a.Out)
		enc.SetIndent(2)
		if err := enc.Encode(a.cfg); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		fmt.Fprintln(a.Out, a.cfg.String())
		return nil
	default:
		return fmt.Errorf("unknown format %q (want toml, yaml or json)", format)
	}
}

func (a *App) initConfig(force bool) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Wrote %s\n", path)
	return nil
}
