// Package cmd implements the vtmuxd command-line surface: a cobra root
// command with serve/ls/version/attach subcommands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"vtmux/internal/config"
)

var cfgPath string

// NewRootCmd builds the vtmuxd root command and registers every
// subcommand.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vtmuxd",
		Short: "vtmuxd spawns and multiplexes terminal sessions over PTYs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			if cfgPath == "" {
				cfgPath = config.ConfigDir() + "/config.yaml"
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.yaml (defaults to ~/.vtmux/config.yaml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newLsCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newAttachCmd())
	return root
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vtmuxd:", err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		slog.Warn("failed to load config, using defaults", "path", cfgPath, "err", err)
		return config.Default()
	}
	return cfg
}
