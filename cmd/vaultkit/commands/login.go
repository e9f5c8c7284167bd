package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultkit/internal/config"
	vkerrors "github.com/systmms/vaultkit/internal/errors"
	"github.com/systmms/vaultkit/internal/logging"
	"github.com/systmms/vaultkit/internal/tokenstore"
	"github.com/systmms/vaultkit/pkg/auth"
	"github.com/systmms/vaultkit/pkg/vault"
)

func NewLoginCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the token in the OS keyring",
		Long: `Authenticate with the method configured in vaultkit.yaml and store the
resulting token in the OS keyring.

Later commands reuse the stored token when the configured method is
'keyring':

  auth:
    method: keyring

Examples:
  # Log in with the configured method
  vaultkit login

  # Log in against another server
  vaultkit login --address https://vault.staging:8200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			switch cfg.Definition.Auth.Method {
			case "":
				return vkerrors.ConfigError{
					Field:      "auth.method",
					Message:    "no authentication method configured",
					Suggestion: "Set 'auth.method' in vaultkit.yaml or export VAULT_TOKEN",
				}
			case "keyring":
				return vkerrors.ConfigError{
					Field:      "auth.method",
					Value:      "keyring",
					Message:    "login needs a method that obtains a new token",
					Suggestion: "Use userpass, ldap, app-id, github, cert or token for login",
				}
			}

			client, err := connect(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			ctx := context.Background()
			token, err := client.Authenticator().Token(ctx)
			if err != nil {
				logger(cfg).Debug("Login failed: %s", logging.Redact(err.Error(), credentials(cfg.Definition.Auth)))
				return vkerrors.VaultError("login", client.Address(), err)
			}

			details, err := client.LookupSelf(ctx)
			if err != nil {
				return vkerrors.VaultError("login", client.Address(), err)
			}

			if err := tokenStore.Save(client.Address(), token); err != nil {
				return vkerrors.UserError{
					Message:    "Logged in, but the token could not be stored",
					Details:    err.Error(),
					Suggestion: "Check that an OS keyring (Keychain, Secret Service, Credential Manager) is available",
					Err:        err,
				}
			}

			log := logger(cfg)
			log.Info("Logged in to %s with %s", client.Address(), client.Authenticator().Kind())
			if details != nil {
				if len(details.Policies) > 0 {
					log.Info("Policies: %s", strings.Join(details.Policies, ", "))
				}
				if details.TTL > 0 {
					log.Info("Token expires in %ds", details.TTL)
				}
			}
			if la, ok := client.Authenticator().(*auth.LoginAuthenticator); ok && la.Details() != nil && la.Details().Renewable {
				log.Debug("Token is renewable")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Token stored. Set 'auth.method: keyring' to reuse it.")
			return err
		},
	}

	return cmd
}

func NewLogoutCommand(cfg *config.Config) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token from the OS keyring",
		Long: `Remove the token stored by 'vaultkit login' for the configured address.

With --revoke the token is also revoked on the server first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			address := cfg.Definition.Address
			log := logger(cfg)

			token, err := tokenStore.Load(address)
			if errors.Is(err, tokenstore.ErrNotFound) {
				log.Info("No stored token for %s", address)
				return nil
			}
			if err != nil {
				return vkerrors.UserError{
					Message:    "Failed to read the stored token",
					Details:    err.Error(),
					Suggestion: "Check that the OS keyring is unlocked",
					Err:        err,
				}
			}

			if revoke {
				client, err := vault.NewClient(address, &auth.TokenInfo{Token: token},
					vault.WithTimeout(cfg.Definition.Timeout()),
					vault.WithLogger(log),
					vault.WithMetrics(cfg.Metrics),
					vault.WithNamespace(cfg.Definition.Namespace),
				)
				if err != nil {
					return err
				}
				defer func() { _ = client.Close() }()

				if err := client.RevokeToken(context.Background(), token, false); err != nil {
					return vkerrors.VaultError("revoke", address, err)
				}
				log.Info("Revoked token on %s", address)
			}

			if err := tokenStore.Delete(address); err != nil && !errors.Is(err, tokenstore.ErrNotFound) {
				return vkerrors.UserError{
					Message: "Failed to remove the stored token",
					Details: err.Error(),
					Err:     err,
				}
			}
			log.Info("Logged out of %s", address)
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke the token on the server before removing it")

	return cmd
}
