package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultkit/internal/config"
	vkerrors "github.com/systmms/vaultkit/internal/errors"
	"github.com/systmms/vaultkit/pkg/vault"
)

func NewReadCommand(cfg *config.Config) *cobra.Command {
	var (
		field string
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "read <path>",
		Short: "Read a secret",
		Long: `Read the secret stored at a path and print its data.

Examples:
  # Print every key of a secret
  vaultkit read secret/app

  # Print a single field, suitable for scripting
  export DB_PASSWORD=$(vaultkit read secret/db --field password)

  # Print the server response unmodified
  vaultkit read secret/app --raw`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if field != "" && raw {
				return vkerrors.UserError{
					Message:    "--field and --raw cannot be combined",
					Suggestion: "Use --raw for the full response or --field for a single value",
				}
			}

			return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
				out := cmd.OutOrStdout()

				if raw {
					body, err := client.ReadSecretJSON(ctx, args[0])
					if err != nil {
						return vkerrors.VaultError("read", client.Address(), err)
					}
					_, err = fmt.Fprintln(out, body)
					return err
				}

				secret, err := client.ReadSecret(ctx, args[0])
				if err != nil {
					return vkerrors.VaultError("read", client.Address(), err)
				}
				if secret == nil {
					return vkerrors.UserError{
						Message:    fmt.Sprintf("No data returned for %s", args[0]),
						Suggestion: "Check the path with 'vaultkit list'",
					}
				}

				if field != "" {
					value, ok := secret.Data[field]
					if !ok {
						return vkerrors.UserError{
							Message:    fmt.Sprintf("Field '%s' not found in %s", field, args[0]),
							Suggestion: fmt.Sprintf("Available fields: %s", strings.Join(sortedKeys(secret.Data), ", ")),
						}
					}
					_, err = fmt.Fprint(out, value)
					return err
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "KEY\tVALUE")
				if secret.LeaseDuration > 0 {
					_, _ = fmt.Fprintf(w, "lease_duration\t%ds\n", secret.LeaseDuration)
				}
				for _, key := range sortedKeys(secret.Data) {
					_, _ = fmt.Fprintf(w, "%s\t%v\n", key, secret.Data[key])
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Print only this field of the secret data")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the JSON response body as returned by the server")

	return cmd
}

func NewWriteCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <path> key=value...",
		Short: "Write a secret",
		Long: `Replace the data stored at a path with the given key=value pairs.

Examples:
  vaultkit write secret/db username=app password=s3cret`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parsePairs(args[1:])
			if err != nil {
				return err
			}

			return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
				if err := client.WriteSecret(ctx, args[0], data); err != nil {
					return vkerrors.VaultError("write", client.Address(), err)
				}
				logger(cfg).Info("Wrote %d keys to %s", len(data), args[0])
				return nil
			})
		},
	}

	return cmd
}

func NewDeleteCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
				if err := client.DeleteSecret(ctx, args[0]); err != nil {
					return vkerrors.VaultError("delete", client.Address(), err)
				}
				logger(cfg).Info("Deleted %s", args[0])
				return nil
			})
		},
	}
}

func NewListCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list <path>",
		Short: "List the keys under a path",
		Long: `List the keys stored under a path. Keys ending in "/" are folders.

Examples:
  vaultkit list secret/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(ctx context.Context, client *vault.Client) error {
				keys, err := client.ListSecrets(ctx, args[0])
				if err != nil {
					return vkerrors.VaultError("list", client.Address(), err)
				}
				if len(keys) == 0 {
					logger(cfg).Info("No keys under %s", args[0])
					return nil
				}
				for _, key := range keys {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), key); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// parsePairs turns key=value arguments into secret data. Values keep any
// '=' after the first one.
func parsePairs(pairs []string) (map[string]any, error) {
	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, vkerrors.UserError{
				Message:    fmt.Sprintf("Invalid argument %q", pair),
				Suggestion: "Pass data as key=value pairs, e.g. password=s3cret",
			}
		}
		data[key] = value
	}
	return data, nil
}
