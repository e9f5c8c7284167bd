package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultkit/internal/config"
	vkerrors "github.com/systmms/vaultkit/internal/errors"
	"github.com/systmms/vaultkit/pkg/vault"
)

func NewHealthCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		Long: `Report whether the server is initialized, sealed or a standby.

Standby, sealed and uninitialized servers are reported, not treated as errors.
No authentication is performed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			client, err := vault.NewClient(cfg.Definition.Address, nil,
				vault.WithTimeout(cfg.Definition.Timeout()),
				vault.WithLogger(logger(cfg)),
				vault.WithMetrics(cfg.Metrics),
				vault.WithNamespace(cfg.Definition.Namespace),
			)
			if err != nil {
				return err
			}

			status, err := client.Health(context.Background())
			if err != nil {
				return vkerrors.VaultError("health", client.Address(), err)
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), status)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "Address\t%s\n", client.Address())
			_, _ = fmt.Fprintf(w, "Status\t%d %s\n", status.StatusCode, healthLabel(status))
			_, _ = fmt.Fprintf(w, "Initialized\t%t\n", status.Initialized)
			_, _ = fmt.Fprintf(w, "Sealed\t%t\n", status.Sealed)
			_, _ = fmt.Fprintf(w, "Standby\t%t\n", status.Standby)
			if status.Version != "" {
				_, _ = fmt.Fprintf(w, "Version\t%s\n", status.Version)
			}
			if status.ClusterName != "" {
				_, _ = fmt.Fprintf(w, "Cluster\t%s\n", status.ClusterName)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func healthLabel(status *vault.HealthStatus) string {
	switch {
	case !status.Initialized:
		return "uninitialized"
	case status.Sealed:
		return "sealed"
	case status.PerformanceStandby:
		return "performance standby"
	case status.Standby:
		return "standby"
	default:
		return "active"
	}
}
