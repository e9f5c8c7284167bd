// Package tokenstore keeps client tokens in the OS keyring, one entry per
// server address.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keyring service name entries are stored under.
const DefaultService = "vaultkit"

// ErrNotFound is returned when no token is stored for an address.
var ErrNotFound = errors.New("no token stored for this address")

// Store reads and writes tokens in the OS keyring.
type Store struct {
	service string
}

// New returns a store using service as the keyring service name.
// An empty service selects DefaultService.
func New(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Save stores token for address, replacing any previous entry.
func (s *Store) Save(address, token string) error {
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}
	if err := keyring.Set(s.service, account(address), token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// Load returns the token stored for address.
func (s *Store) Load(address string) (string, error) {
	token, err := keyring.Get(s.service, account(address))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	return token, nil
}

// Delete removes the token stored for address.
func (s *Store) Delete(address string) error {
	if err := keyring.Delete(s.service, account(address)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove token from keyring: %w", err)
	}
	return nil
}

// Delegate returns a token source for auth.CustomInfo that reads the
// entry for address on every call.
func (s *Store) Delegate(address string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return s.Load(address)
	}
}

// account normalizes address so trailing slashes map to one entry.
func account(address string) string {
	return strings.TrimRight(strings.TrimSpace(address), "/")
}
