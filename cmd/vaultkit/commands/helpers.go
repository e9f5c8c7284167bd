package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/systmms/vaultkit/internal/config"
	"github.com/systmms/vaultkit/internal/logging"
	"github.com/systmms/vaultkit/internal/tokenstore"
	"github.com/systmms/vaultkit/pkg/vault"
)

// tokenStore is the keyring store used by login, logout and the keyring
// auth method.
var tokenStore = tokenstore.New(tokenstore.DefaultService)

func logger(cfg *config.Config) *logging.Logger {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return cfg.Logger
}

// credentials lists the configured auth secrets that must not reach the output.
func credentials(a config.AuthConfig) []string {
	return []string{a.Password, a.Token, a.UserID, a.GitHubToken}
}

// connect loads the configuration and builds an authenticated client.
func connect(cfg *config.Config) (*vault.Client, error) {
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	def := cfg.Definition

	info, err := def.AuthInfo(tokenStore)
	if err != nil {
		return nil, err
	}

	opts := []vault.Option{
		vault.WithTimeout(def.Timeout()),
		vault.WithLogger(logger(cfg)),
		vault.WithMetrics(cfg.Metrics),
	}
	if def.Namespace != "" {
		opts = append(opts, vault.WithNamespace(def.Namespace))
	}
	if def.PerCallHeaders {
		opts = append(opts, vault.WithPerCallHeaders())
	}

	return vault.NewClient(def.Address, info, opts...)
}

// withClient runs fn against a connected client and releases the token
// afterwards.
func withClient(cfg *config.Config, fn func(ctx context.Context, client *vault.Client) error) error {
	client, err := connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger(cfg).Debug("Failed to release token: %v", closeErr)
		}
	}()

	return fn(context.Background(), client)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
