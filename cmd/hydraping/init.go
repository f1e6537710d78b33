package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fprochazka/hydraping/internal/config"
)

// NewInitCmd creates the `hydraping init` subcommand: write a default
// settings file if none exists yet. Idempotent — exits 0 whether it
// created the file or found one already there, per spec.md §6.
func NewInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default settings.toml if one doesn't already exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ResolvePath(configPath)
			if err != nil {
				return err
			}

			if config.Exists(path) {
				fmt.Fprintf(cmd.OutOrStdout(), "config already exists at %s\n", path)
				return nil
			}

			if err := config.Save(path, config.Default()); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to settings.toml (default: $HYDRAPING_CONFIG or ~/.config/hydraping/settings.toml)")
	return cmd
}
