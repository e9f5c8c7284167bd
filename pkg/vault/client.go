package vault

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/systmms/vaultkit/internal/logging"
	"github.com/systmms/vaultkit/pkg/auth"
	"github.com/systmms/vaultkit/pkg/transport"
)

const (
	// TokenHeader carries the client token on authenticated requests.
	TokenHeader = "X-Vault-Token"

	DefaultTimeout = 30 * time.Second
)

// Client calls the Vault HTTP API through a transport.Engine.
// It is safe for concurrent use.
type Client struct {
	engine *transport.Engine
	auth   auth.Authenticator
	logger *logging.Logger
}

type options struct {
	timeout        time.Duration
	logger         *logging.Logger
	metrics        *transport.Metrics
	namespace      string
	perCallHeaders bool
}

// Option configures a Client.
type Option func(*options)

// WithTimeout bounds every request, login included.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger used by the client and its engines.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records every exchange, login included, in m.
func WithMetrics(m *transport.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithNamespace sends X-Vault-Namespace on every request.
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithPerCallHeaders keeps the token header scoped to each request instead
// of storing it on the engine.
func WithPerCallHeaders() Option {
	return func(o *options) { o.perCallHeaders = true }
}

// NewClient creates a client for the server at address. A nil info gives an
// unauthenticated client that can still call the sys status endpoints.
func NewClient(address string, info auth.Info, opts ...Option) (*Client, error) {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}

	engine, err := transport.New(transport.Config{
		Address:        address,
		Timeout:        o.timeout,
		PerCallHeaders: o.perCallHeaders,
		Logger:         o.logger,
		Metrics:        o.metrics,
	})
	if err != nil {
		return nil, err
	}
	if o.namespace != "" {
		engine.SetHeader(auth.NamespaceHeader, o.namespace)
	}

	c := &Client{
		engine: engine,
		logger: o.logger.With("vault"),
	}

	if info != nil {
		authenticator, err := auth.Select(info, address, auth.Options{
			Timeout:   o.timeout,
			Namespace: o.namespace,
			Logger:    o.logger,
			Metrics:   o.metrics,
		})
		if err != nil {
			return nil, err
		}
		c.auth = authenticator
	}

	return c, nil
}

// Address returns the server address.
func (c *Client) Address() string {
	return c.engine.Address()
}

// Authenticator returns the authenticator, or nil for an unauthenticated client.
func (c *Client) Authenticator() auth.Authenticator {
	return c.auth
}

// Engine returns the engine used for resource calls.
func (c *Client) Engine() *transport.Engine {
	return c.engine
}

// Close destroys any token held by the authenticator and drops the token
// from the engine's shared headers.
func (c *Client) Close() error {
	c.engine.DelHeader(TokenHeader)
	if closer, ok := c.auth.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// call executes req with the client token attached.
func call[T any](ctx context.Context, c *Client, req transport.Request[T]) (*T, error) {
	if c.auth != nil {
		token, err := c.auth.Token(ctx)
		if err != nil {
			return nil, err
		}
		headers := make(map[string]string, len(req.Headers)+1)
		for k, v := range req.Headers {
			headers[k] = v
		}
		headers[TokenHeader] = token
		req.Headers = headers
	}
	return transport.Execute(ctx, c.engine, req)
}

// cleanPath trims surrounding slashes and rejects empty paths.
func cleanPath(name, path string) (string, error) {
	p := strings.Trim(strings.TrimSpace(path), "/")
	if p == "" {
		return "", transport.MissingArgument(name)
	}
	return p, nil
}

// escapePath escapes each segment of a cleaned path for use in a URL, so
// reserved characters such as '#' and '?' stay part of the resource name.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func wrap(op, target string, err error) error {
	if target == "" {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return fmt.Errorf("failed to %s %s: %w", op, target, err)
}
