package auth

import (
	"context"
	"fmt"
)

// Authenticator produces a token to send as the X-Vault-Token header.
type Authenticator interface {
	Kind() Kind
	// Token returns the current token, logging in first when needed.
	Token(ctx context.Context) (string, error)
}

// Refresher is implemented by authenticators that can obtain a new token
// on demand.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// AuthError reports a login that completed without yielding a usable token.
type AuthError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s authentication failed: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s authentication failed: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// LoginResponse is the envelope returned by every login endpoint.
type LoginResponse struct {
	RequestID string       `json:"request_id"`
	Auth      *AuthDetails `json:"auth"`
	Warnings  []string     `json:"warnings"`
}

// AuthDetails describes an issued token.
type AuthDetails struct {
	ClientToken   string            `json:"client_token"`
	Accessor      string            `json:"accessor"`
	Policies      []string          `json:"policies"`
	Metadata      map[string]string `json:"metadata"`
	LeaseDuration int               `json:"lease_duration"`
	Renewable     bool              `json:"renewable"`
}
