// Package cli implements the fatoora command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fatoora-app/fatoora/internal/daemon"
	"github.com/fatoora-app/fatoora/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fatoora",
	Short: "Local UAE invoice authoring",
	Long: `Fatoora is a single-user invoice authoring tool. It generates
sequential monthly invoice numbers, blocks duplicate invoices, computes
5% VAT totals, and exports PDF invoices — all against a local database.

Run 'fatoora serve' to start the local API daemon for the editor frontend,
or use the subcommands directly for scripted workflows.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := daemon.LoadConfig(configPath)
		if err != nil {
			return err
		}
		return logger.Setup(cfg.LogSettings())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.fatoora/config.toml)")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDaemon wires the application for one-shot CLI commands.
func loadDaemon() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return daemon.New(cfg)
}
