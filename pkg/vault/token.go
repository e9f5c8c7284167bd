package vault

import (
	"context"
	"net/http"
	"time"

	"github.com/systmms/vaultkit/pkg/auth"
	"github.com/systmms/vaultkit/pkg/transport"
)

// LookupSelf describes the client's own token.
func (c *Client) LookupSelf(ctx context.Context) (*TokenDetails, error) {
	resp, err := call(ctx, c, transport.Request[tokenLookup]{
		Path:   "v1/auth/token/lookup-self",
		Method: http.MethodGet,
	})
	if err != nil {
		return nil, wrap("look up token", "", err)
	}
	if resp == nil {
		return nil, nil
	}
	return resp.Data, nil
}

// LookupToken describes another token.
func (c *Client) LookupToken(ctx context.Context, token string) (*TokenDetails, error) {
	if token == "" {
		return nil, transport.MissingArgument("token")
	}

	resp, err := call(ctx, c, transport.Request[tokenLookup]{
		Path:    "v1/auth/token/lookup",
		Method:  http.MethodPost,
		Payload: map[string]string{"token": token},
	})
	if err != nil {
		return nil, wrap("look up token", "", err)
	}
	if resp == nil {
		return nil, nil
	}
	return resp.Data, nil
}

// RenewSelf extends the client's token. A zero increment asks for the
// token's default TTL.
func (c *Client) RenewSelf(ctx context.Context, increment time.Duration) (*auth.AuthDetails, error) {
	if increment < 0 {
		return nil, &transport.ArgumentError{Name: "increment", Message: "must not be negative"}
	}

	payload := map[string]int{}
	if increment > 0 {
		payload["increment"] = int(increment.Seconds())
	}

	resp, err := call(ctx, c, transport.Request[auth.LoginResponse]{
		Path:    "v1/auth/token/renew-self",
		Method:  http.MethodPost,
		Payload: payload,
	})
	if err != nil {
		return nil, wrap("renew token", "", err)
	}
	if resp == nil || resp.Auth == nil {
		return nil, nil
	}

	details := *resp.Auth
	details.ClientToken = ""
	return &details, nil
}

// RevokeToken revokes token. With orphan set its children survive.
func (c *Client) RevokeToken(ctx context.Context, token string, orphan bool) error {
	if token == "" {
		return transport.MissingArgument("token")
	}

	path := "v1/auth/token/revoke"
	if orphan {
		path = "v1/auth/token/revoke-orphan"
	}

	if _, err := call(ctx, c, transport.Request[struct{}]{
		Path:    path,
		Method:  http.MethodPost,
		Payload: map[string]string{"token": token},
	}); err != nil {
		return wrap("revoke token", "", err)
	}
	return nil
}
