package vault

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/systmms/vaultkit/pkg/transport"
)

var errEmptyBody = errors.New("empty response body")

// healthCodes are the non-2xx codes sys/health uses to report node state.
var healthCodes = map[int]bool{
	http.StatusTooManyRequests:    true,
	472:                           true,
	473:                           true,
	http.StatusNotImplemented:     true,
	http.StatusServiceUnavailable: true,
}

// Health reports the node's state. Standby, sealed and uninitialized nodes
// answer with a non-2xx code and are returned as a HealthStatus, not an error.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	status, err := transport.Execute(ctx, c.engine, transport.Request[HealthStatus]{
		Path:   "v1/sys/health",
		Method: http.MethodGet,
		ErrorProcessor: func(code int, body string) (*HealthStatus, error) {
			if !healthCodes[code] {
				return nil, transport.NewStatusError(code, body)
			}
			var hs HealthStatus
			if err := json.Unmarshal([]byte(body), &hs); err != nil {
				return nil, &transport.ParseError{Body: body, Err: err}
			}
			hs.StatusCode = code
			return &hs, nil
		},
	})
	if err != nil {
		return nil, wrap("check health", "", err)
	}
	if status == nil {
		return nil, wrap("check health", "", &transport.ParseError{Err: errEmptyBody})
	}
	if status.StatusCode == 0 {
		status.StatusCode = http.StatusOK
	}
	return status, nil
}

// HealthCheck issues a HEAD request and returns the status code only.
func (c *Client) HealthCheck(ctx context.Context) (int, error) {
	code, err := transport.Execute(ctx, c.engine, transport.Request[int]{
		Path:   "v1/sys/health",
		Method: http.MethodHead,
		ErrorProcessor: func(code int, _ string) (*int, error) {
			if !healthCodes[code] {
				return nil, transport.NewStatusError(code, "")
			}
			return &code, nil
		},
	})
	if err != nil {
		return 0, wrap("check health", "", err)
	}
	if code == nil {
		return http.StatusOK, nil
	}
	return *code, nil
}

// InitStatus reports whether the server has been initialized.
func (c *Client) InitStatus(ctx context.Context) (bool, error) {
	status, err := transport.Execute(ctx, c.engine, transport.Request[InitStatus]{
		Path:   "v1/sys/init",
		Method: http.MethodGet,
	})
	if err != nil {
		return false, wrap("read init status", "", err)
	}
	return status != nil && status.Initialized, nil
}

// SealStatus returns the seal state and unseal progress.
func (c *Client) SealStatus(ctx context.Context) (*SealStatus, error) {
	status, err := transport.Execute(ctx, c.engine, transport.Request[SealStatus]{
		Path:   "v1/sys/seal-status",
		Method: http.MethodGet,
	})
	if err != nil {
		return nil, wrap("read seal status", "", err)
	}
	return status, nil
}

// Seal seals the server. It requires a token with sudo on sys/seal.
func (c *Client) Seal(ctx context.Context) error {
	if _, err := call(ctx, c, transport.Request[struct{}]{
		Path:   "v1/sys/seal",
		Method: http.MethodPut,
	}); err != nil {
		return wrap("seal", "", err)
	}
	c.logger.Warn("Sealed %s", c.Address())
	return nil
}

// Unseal submits one unseal key share.
func (c *Client) Unseal(ctx context.Context, key string) (*SealStatus, error) {
	if key == "" {
		return nil, transport.MissingArgument("key")
	}

	status, err := transport.Execute(ctx, c.engine, transport.Request[SealStatus]{
		Path:    "v1/sys/unseal",
		Method:  http.MethodPut,
		Payload: map[string]string{"key": key},
	})
	if err != nil {
		return nil, wrap("unseal", "", err)
	}
	return status, nil
}

// Leader returns the HA leader.
func (c *Client) Leader(ctx context.Context) (*LeaderStatus, error) {
	status, err := transport.Execute(ctx, c.engine, transport.Request[LeaderStatus]{
		Path:   "v1/sys/leader",
		Method: http.MethodGet,
	})
	if err != nil {
		return nil, wrap("read leader", "", err)
	}
	return status, nil
}
