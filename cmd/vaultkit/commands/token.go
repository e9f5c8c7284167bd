package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultkit/internal/config"
	vkerrors "github.com/systmms/vaultkit/internal/errors"
	"github.com/systmms/vaultkit/pkg/vault"
)

func NewTokenCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect and manage tokens",
	}

	cmd.AddCommand(
		newTokenLookupCommand(cfg),
		newTokenRenewCommand(cfg),
		newTokenRevokeCommand(cfg),
	)

	return cmd
}

func newTokenLookupCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lookup [token]",
		Short: "Describe the current token, or another one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
				var (
					details *vault.TokenDetails
					err     error
				)
				if len(args) == 1 {
					details, err = client.LookupToken(ctx, args[0])
				} else {
					details, err = client.LookupSelf(ctx)
				}
				if err != nil {
					return vkerrors.VaultError("token lookup", client.Address(), err)
				}
				if details == nil {
					return vkerrors.UserError{Message: "The server returned no token data"}
				}

				if jsonOutput {
					view := *details
					view.ID = ""
					return writeJSON(cmd.OutOrStdout(), view)
				}
				return printTokenDetails(cmd, details)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func newTokenRenewCommand(cfg *config.Config) *cobra.Command {
	var increment time.Duration

	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Extend the current token's lease",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
				details, err := client.RenewSelf(ctx, increment)
				if err != nil {
					return vkerrors.VaultError("token renew", client.Address(), err)
				}
				if details != nil {
					logger(cfg).Info("Token renewed for %ds", details.LeaseDuration)
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&increment, "increment", 0, "Requested lease extension, e.g. 1h (default: the token's TTL)")

	return cmd
}

func newTokenRevokeCommand(cfg *config.Config) *cobra.Command {
	var orphan bool

	cmd := &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
				if err := client.RevokeToken(ctx, args[0], orphan); err != nil {
					return vkerrors.VaultError("token revoke", client.Address(), err)
				}
				logger(cfg).Info("Token revoked")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&orphan, "orphan", false, "Keep the token's children alive")

	return cmd
}

// printTokenDetails never prints the token ID itself.
func printTokenDetails(cmd *cobra.Command, d *vault.TokenDetails) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "accessor\t%s\n", d.Accessor)
	_, _ = fmt.Fprintf(w, "display_name\t%s\n", d.DisplayName)
	_, _ = fmt.Fprintf(w, "path\t%s\n", d.Path)
	_, _ = fmt.Fprintf(w, "policies\t%s\n", strings.Join(d.Policies, ", "))
	_, _ = fmt.Fprintf(w, "ttl\t%ds\n", d.TTL)
	_, _ = fmt.Fprintf(w, "renewable\t%t\n", d.Renewable)
	_, _ = fmt.Fprintf(w, "orphan\t%t\n", d.Orphan)
	return w.Flush()
}
