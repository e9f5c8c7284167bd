package transport

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/systmms/vaultkit/internal/logging"
)

// Config holds the settings for one Engine. It is read once by New.
type Config struct {
	// Address is the base address every request path is resolved against.
	Address string
	// Timeout bounds a whole exchange, body read included. Zero disables it.
	Timeout time.Duration
	// Transport replaces the default pooled transport, e.g. to present a
	// client certificate.
	Transport http.RoundTripper
	// PerCallHeaders scopes header overrides to the request that carries them.
	// By default overrides are written to the engine's shared header set and
	// stay in effect for every later request on the same engine.
	PerCallHeaders bool

	Logger  *logging.Logger
	Metrics *Metrics
}

// Engine executes HTTP exchanges against a single base address.
// It owns one *http.Client for its lifetime and is safe for concurrent use.
type Engine struct {
	httpClient     *http.Client
	address        string
	perCallHeaders bool
	logger         *logging.Logger
	metrics        *Metrics

	mu      sync.RWMutex
	headers http.Header
}

// New creates an Engine bound to cfg.Address.
func New(cfg Config) (*Engine, error) {
	address, err := normalizeAddress(cfg.Address)
	if err != nil {
		return nil, err
	}

	rt := cfg.Transport
	if rt == nil {
		rt = cleanhttp.DefaultPooledTransport()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Engine{
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
		},
		address:        address,
		perCallHeaders: cfg.PerCallHeaders,
		logger:         logger.With("transport"),
		metrics:        cfg.Metrics,
		headers:        make(http.Header),
	}, nil
}

// Address returns the base address requests are resolved against.
func (e *Engine) Address() string {
	return e.address
}

// Unwrap returns the underlying *http.Client.
func (e *Engine) Unwrap() *http.Client {
	return e.httpClient
}

// SetHeader replaces any shared header named key.
func (e *Engine) SetHeader(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.headers.Del(key)
	e.headers.Set(key, value)
}

// DelHeader removes the shared header named key.
func (e *Engine) DelHeader(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.headers.Del(key)
}

// Headers returns a copy of the shared header set.
func (e *Engine) Headers() http.Header {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.headers.Clone()
}

// applyHeaders writes overrides and the shared header set onto req.
func (e *Engine) applyHeaders(req *http.Request, overrides map[string]string) {
	if !e.perCallHeaders {
		if len(overrides) > 0 {
			e.mu.Lock()
			for k, v := range overrides {
				e.headers.Del(k)
				e.headers.Set(k, v)
			}
			e.mu.Unlock()
		}
	}

	e.mu.RLock()
	for k, vals := range e.headers {
		req.Header[k] = append([]string(nil), vals...)
	}
	e.mu.RUnlock()

	if e.perCallHeaders {
		for k, v := range overrides {
			req.Header.Set(k, v)
		}
	}
}

// resolve joins a relative resource path and query onto the base address.
func (e *Engine) resolve(path string, query url.Values) string {
	target := e.address + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func normalizeAddress(address string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", MissingArgument("address")
	}

	u, err := url.Parse(address)
	if err != nil {
		return "", &ArgumentError{Name: "address", Message: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &ArgumentError{Name: "address", Message: "must be an absolute http or https URL"}
	}

	return strings.TrimRight(address, "/"), nil
}
