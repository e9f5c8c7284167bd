package auth

import (
	"context"

	"github.com/systmms/vaultkit/internal/secure"
)

// TokenAuthenticator hands out a token that was issued elsewhere.
type TokenAuthenticator struct {
	token *secure.SecureBuffer
}

// NewTokenAuthenticator wraps a literal token.
func NewTokenAuthenticator(token string) *TokenAuthenticator {
	return &TokenAuthenticator{token: secure.NewSecureString(token)}
}

func (a *TokenAuthenticator) Kind() Kind {
	return KindToken
}

func (a *TokenAuthenticator) Token(ctx context.Context) (string, error) {
	return a.token.Reveal()
}

// Close destroys the stored token.
func (a *TokenAuthenticator) Close() error {
	a.token.Destroy()
	return nil
}
