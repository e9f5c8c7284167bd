package auth

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/systmms/vaultkit/internal/logging"
	"github.com/systmms/vaultkit/pkg/transport"
)

// NamespaceHeader selects the namespace a request is evaluated in.
const NamespaceHeader = "X-Vault-Namespace"

// Options tune the engines Select creates.
type Options struct {
	Timeout time.Duration
	// Namespace is sent as X-Vault-Namespace on login requests.
	Namespace string
	Logger    *logging.Logger
	Metrics   *transport.Metrics
}

// Select builds the authenticator for info. Kinds that log in over HTTP get
// their own engine bound to address; the certificate kind's engine presents
// the client certificate. Token and custom kinds get no engine.
//
// Nothing is constructed when address or info is missing or info lacks
// the payload its kind requires.
func Select(info Info, address string, opts Options) (Authenticator, error) {
	if strings.TrimSpace(address) == "" {
		return nil, transport.MissingArgument("address")
	}
	if err := validateInfo(info); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("auth")

	switch v := info.(type) {
	case *AppIDInfo:
		engine, err := newEngine(address, opts, nil)
		if err != nil {
			return nil, err
		}
		return newAppIDAuthenticator(v, engine, logger), nil

	case *GitHubInfo:
		engine, err := newEngine(address, opts, nil)
		if err != nil {
			return nil, err
		}
		return newGitHubAuthenticator(v, engine, logger), nil

	case *LDAPInfo:
		engine, err := newEngine(address, opts, nil)
		if err != nil {
			return nil, err
		}
		return newLDAPAuthenticator(v, engine, logger), nil

	case *UsernamePasswordInfo:
		engine, err := newEngine(address, opts, nil)
		if err != nil {
			return nil, err
		}
		return newUserpassAuthenticator(v, engine, logger), nil

	case *CertificateInfo:
		engine, err := newEngine(address, opts, certificateTransport(v.ClientCertificate))
		if err != nil {
			return nil, err
		}
		return newCertificateAuthenticator(v, engine, logger), nil

	case *TokenInfo:
		return NewTokenAuthenticator(v.Token), nil

	case *CustomInfo:
		return &CustomAuthenticator{delegate: v.Delegate}, nil

	default:
		return nil, &transport.UnsupportedError{
			Operation: "authentication kind",
			Value:     fmt.Sprintf("%s (%T)", info.Kind(), info),
		}
	}
}

func newEngine(address string, opts Options, rt http.RoundTripper) (*transport.Engine, error) {
	engine, err := transport.New(transport.Config{
		Address:   address,
		Timeout:   opts.Timeout,
		Transport: rt,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	if opts.Namespace != "" {
		engine.SetHeader(NamespaceHeader, opts.Namespace)
	}
	return engine, nil
}

// certificateTransport returns a pooled transport that presents cert to
// servers requesting a client certificate.
func certificateTransport(cert *tls.Certificate) *http.Transport {
	t := cleanhttp.DefaultPooledTransport()
	if t.TLSClientConfig == nil {
		t.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	t.TLSClientConfig.Certificates = []tls.Certificate{*cert}
	return t
}
