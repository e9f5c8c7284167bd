package vault

import (
	"context"
	"net/http"
	"net/url"

	"github.com/systmms/vaultkit/pkg/transport"
)

// ListPolicies returns the names of all ACL policies.
func (c *Client) ListPolicies(ctx context.Context) ([]string, error) {
	list, err := call(ctx, c, transport.Request[policyList]{
		Path:   "v1/sys/policy",
		Method: http.MethodGet,
	})
	if err != nil {
		return nil, wrap("list policies", "", err)
	}
	if list == nil {
		return []string{}, nil
	}
	return list.Policies, nil
}

// GetPolicy returns the named policy, or nil if it does not exist.
func (c *Client) GetPolicy(ctx context.Context, name string) (*Policy, error) {
	if name == "" {
		return nil, transport.MissingArgument("name")
	}

	policy, err := call(ctx, c, transport.Request[Policy]{
		Path:   "v1/sys/policy/" + url.PathEscape(name),
		Method: http.MethodGet,
		ErrorProcessor: func(code int, body string) (*Policy, error) {
			if code == http.StatusNotFound {
				return nil, nil
			}
			return nil, transport.NewStatusError(code, body)
		},
	})
	if err != nil {
		return nil, wrap("read policy", name, err)
	}
	return policy, nil
}

// WritePolicy creates or replaces the named policy.
func (c *Client) WritePolicy(ctx context.Context, name, rules string) error {
	if name == "" {
		return transport.MissingArgument("name")
	}
	if rules == "" {
		return transport.MissingArgument("rules")
	}

	if _, err := call(ctx, c, transport.Request[struct{}]{
		Path:    "v1/sys/policy/" + url.PathEscape(name),
		Method:  http.MethodPut,
		Payload: map[string]string{"policy": rules},
	}); err != nil {
		return wrap("write policy", name, err)
	}
	return nil
}

// DeletePolicy removes the named policy.
func (c *Client) DeletePolicy(ctx context.Context, name string) error {
	if name == "" {
		return transport.MissingArgument("name")
	}

	if _, err := call(ctx, c, transport.Request[struct{}]{
		Path:   "v1/sys/policy/" + url.PathEscape(name),
		Method: http.MethodDelete,
	}); err != nil {
		return wrap("delete policy", name, err)
	}
	return nil
}
