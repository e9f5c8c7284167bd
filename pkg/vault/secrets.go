package vault

import (
	"context"
	"net/http"
	"net/url"

	"github.com/systmms/vaultkit/pkg/transport"
)

// ReadSecret reads the secret at path, e.g. "secret/app".
// A missing secret is a *transport.StatusError; see transport.IsNotFound.
func (c *Client) ReadSecret(ctx context.Context, path string) (*Secret, error) {
	p, err := cleanPath("path", path)
	if err != nil {
		return nil, err
	}

	secret, err := call(ctx, c, transport.Request[Secret]{
		Path:   "v1/" + escapePath(p),
		Method: http.MethodGet,
	})
	if err != nil {
		return nil, wrap("read secret", p, err)
	}
	return secret, nil
}

// ReadSecretJSON returns the undecoded response body for path.
func (c *Client) ReadSecretJSON(ctx context.Context, path string) (string, error) {
	p, err := cleanPath("path", path)
	if err != nil {
		return "", err
	}

	raw, err := call(ctx, c, transport.Request[string]{
		Path:        "v1/" + escapePath(p),
		Method:      http.MethodGet,
		RawResponse: true,
	})
	if err != nil {
		return "", wrap("read secret", p, err)
	}
	if raw == nil {
		return "", nil
	}
	return *raw, nil
}

// WriteSecret replaces the data stored at path.
func (c *Client) WriteSecret(ctx context.Context, path string, data map[string]any) error {
	p, err := cleanPath("path", path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return transport.MissingArgument("data")
	}

	if _, err := call(ctx, c, transport.Request[Secret]{
		Path:    "v1/" + escapePath(p),
		Method:  http.MethodPost,
		Payload: data,
	}); err != nil {
		return wrap("write secret", p, err)
	}
	c.logger.Debug("Wrote %d keys to %s", len(data), p)
	return nil
}

// DeleteSecret removes the secret at path.
func (c *Client) DeleteSecret(ctx context.Context, path string) error {
	p, err := cleanPath("path", path)
	if err != nil {
		return err
	}

	if _, err := call(ctx, c, transport.Request[struct{}]{
		Path:   "v1/" + escapePath(p),
		Method: http.MethodDelete,
	}); err != nil {
		return wrap("delete secret", p, err)
	}
	return nil
}

// ListSecrets returns the keys directly under path. Folders end in "/".
// A path with no children yields an empty list.
func (c *Client) ListSecrets(ctx context.Context, path string) ([]string, error) {
	p, err := cleanPath("path", path)
	if err != nil {
		return nil, err
	}

	list, err := call(ctx, c, transport.Request[listResponse]{
		Path:   "v1/" + escapePath(p),
		Query:  url.Values{"list": []string{"true"}},
		Method: http.MethodGet,
		ErrorProcessor: func(code int, body string) (*listResponse, error) {
			if code == http.StatusNotFound {
				return &listResponse{}, nil
			}
			return nil, transport.NewStatusError(code, body)
		},
	})
	if err != nil {
		return nil, wrap("list secrets", p, err)
	}
	if list == nil || list.Data.Keys == nil {
		return []string{}, nil
	}
	return list.Data.Keys, nil
}
