package auth

import (
	"context"
)

// CustomAuthenticator delegates token retrieval to caller code.
// The delegate is called on every Token call.
type CustomAuthenticator struct {
	delegate func(ctx context.Context) (string, error)
}

func (a *CustomAuthenticator) Kind() Kind {
	return KindCustom
}

func (a *CustomAuthenticator) Token(ctx context.Context) (string, error) {
	token, err := a.delegate(ctx)
	if err != nil {
		return "", &AuthError{Kind: KindCustom, Message: "delegate failed", Err: err}
	}
	if token == "" {
		return "", &AuthError{Kind: KindCustom, Message: "delegate returned an empty token"}
	}
	return token, nil
}

// Refresh calls the delegate again.
func (a *CustomAuthenticator) Refresh(ctx context.Context) (string, error) {
	return a.Token(ctx)
}
