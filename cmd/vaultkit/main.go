package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/systmms/vaultkit/cmd/vaultkit/commands"
	"github.com/systmms/vaultkit/internal/config"
	vkerrors "github.com/systmms/vaultkit/internal/errors"
	"github.com/systmms/vaultkit/internal/logging"
	"github.com/systmms/vaultkit/internal/secure"
	"github.com/systmms/vaultkit/pkg/transport"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := run()
	secure.Purge()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err for the user, replacing raw parser and filesystem
// failures with a message and a suggestion.
func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", vkerrors.SimplifyError(err))
}

func run() error {
	var (
		configFile  string
		address     string
		noColor     bool
		debug       bool
		metricsFile string
	)

	cfg := &config.Config{}
	registry := prometheus.NewRegistry()

	rootCmd := &cobra.Command{
		Use:   "vaultkit",
		Short: "Vault secrets client",
		Long: `vaultkit talks to a Vault server: it reads and writes secrets,
manages policies and tokens, and reports server health.

The server address and authentication method come from vaultkit.yaml,
overridden by the VAULT_* environment variables and the --address flag.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Address = address
			cfg.Logger = logging.New(debug, noColor)
			if metricsFile != "" {
				cfg.Metrics = transport.NewMetrics(registry)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().StringVar(&address, "address", "", "Vault server address (overrides config and VAULT_ADDR)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write request metrics in Prometheus text format to this file on exit")

	rootCmd.AddCommand(
		commands.NewReadCommand(cfg),
		commands.NewWriteCommand(cfg),
		commands.NewDeleteCommand(cfg),
		commands.NewListCommand(cfg),
		commands.NewHealthCommand(cfg),
		commands.NewLoginCommand(cfg),
		commands.NewLogoutCommand(cfg),
		commands.NewTokenCommand(cfg),
		commands.NewPolicyCommand(cfg),
	)

	err := rootCmd.Execute()
	if cfg.Metrics != nil {
		if writeErr := writeMetrics(metricsFile, registry); writeErr != nil && err == nil {
			err = writeErr
		}
	}
	return err
}

// writeMetrics writes everything gathered by reg to path, for pickup by a
// node exporter textfile collector.
func writeMetrics(path string, reg prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return vkerrors.UserError{
			Message:    "Failed to write metrics",
			Details:    err.Error(),
			Suggestion: "Check that the directory of --metrics-file exists and is writable",
			Err:        err,
		}
	}
	return nil
}
