package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultkit/internal/config"
	vkerrors "github.com/systmms/vaultkit/internal/errors"
	"github.com/systmms/vaultkit/pkg/vault"
)

func NewPolicyCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage ACL policies",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List policy names",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
					names, err := client.ListPolicies(ctx)
					if err != nil {
						return vkerrors.VaultError("policy list", client.Address(), err)
					}
					for _, name := range names {
						if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Print a policy's rules",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
					policy, err := client.GetPolicy(ctx, args[0])
					if err != nil {
						return vkerrors.VaultError("policy get", client.Address(), err)
					}
					if policy == nil {
						return vkerrors.UserError{
							Message:    fmt.Sprintf("Policy '%s' not found", args[0]),
							Suggestion: "Run 'vaultkit policy list' to see existing policies",
						}
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), policy.Rules)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "write <name> <file>",
			Short: "Create or replace a policy from a file ('-' reads stdin)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				rules, err := readRules(cmd, args[1])
				if err != nil {
					return err
				}
				return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
					if err := client.WritePolicy(ctx, args[0], rules); err != nil {
						return vkerrors.VaultError("policy write", client.Address(), err)
					}
					logger(cfg).Info("Wrote policy %s", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a policy",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
					if err := client.DeletePolicy(ctx, args[0]); err != nil {
						return vkerrors.VaultError("policy delete", client.Address(), err)
					}
					logger(cfg).Info("Deleted policy %s", args[0])
					return nil
				})
			},
		},
	)

	return cmd
}

func readRules(cmd *cobra.Command, source string) (string, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return "", vkerrors.UserError{
			Message:    fmt.Sprintf("Failed to read policy rules from %s", source),
			Details:    err.Error(),
			Suggestion: "Pass a readable HCL file, or '-' to read from stdin",
			Err:        err,
		}
	}
	return string(data), nil
}
