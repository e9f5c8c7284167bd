package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/systmms/vaultkit/internal/logging"
	"github.com/systmms/vaultkit/pkg/transport"
)

// LoginAuthenticator logs in against an auth backend's login endpoint and
// caches the issued token until its lease runs out. It backs the app-id,
// github, ldap, cert and userpass kinds.
type LoginAuthenticator struct {
	kind     Kind
	engine   *transport.Engine
	path     string
	payload  any
	identity string
	logger   *logging.Logger

	mu      sync.Mutex
	cache   *TokenCache
	details *AuthDetails
}

func newLoginAuthenticator(kind Kind, engine *transport.Engine, path string, payload any, identity string, logger *logging.Logger) *LoginAuthenticator {
	return &LoginAuthenticator{
		kind:     kind,
		engine:   engine,
		path:     path,
		payload:  payload,
		identity: identity,
		logger:   logger,
		cache:    NewTokenCache(),
	}
}

func newAppIDAuthenticator(info *AppIDInfo, engine *transport.Engine, logger *logging.Logger) *LoginAuthenticator {
	mount := mountOrDefault(info.MountPoint, KindAppID)
	payload := map[string]string{
		"app_id":  info.AppID,
		"user_id": info.UserID,
	}
	return newLoginAuthenticator(KindAppID, engine, loginPath(mount, ""), payload, info.AppID, logger)
}

func newGitHubAuthenticator(info *GitHubInfo, engine *transport.Engine, logger *logging.Logger) *LoginAuthenticator {
	mount := mountOrDefault(info.MountPoint, KindGitHub)
	payload := map[string]string{"token": info.PersonalAccessToken}
	return newLoginAuthenticator(KindGitHub, engine, loginPath(mount, ""), payload, "", logger)
}

func newLDAPAuthenticator(info *LDAPInfo, engine *transport.Engine, logger *logging.Logger) *LoginAuthenticator {
	mount := mountOrDefault(info.MountPoint, KindLDAP)
	payload := map[string]string{"password": info.Password}
	return newLoginAuthenticator(KindLDAP, engine, loginPath(mount, info.Username), payload, info.Username, logger)
}

func newUserpassAuthenticator(info *UsernamePasswordInfo, engine *transport.Engine, logger *logging.Logger) *LoginAuthenticator {
	mount := mountOrDefault(info.MountPoint, KindUserpass)
	payload := map[string]string{"password": info.Password}
	return newLoginAuthenticator(KindUserpass, engine, loginPath(mount, info.Username), payload, info.Username, logger)
}

func newCertificateAuthenticator(info *CertificateInfo, engine *transport.Engine, logger *logging.Logger) *LoginAuthenticator {
	mount := mountOrDefault(info.MountPoint, KindCertificate)
	return newLoginAuthenticator(KindCertificate, engine, loginPath(mount, ""), nil, "", logger)
}

// loginPath builds v1/auth/{mount}/login[/{username}].
func loginPath(mount, username string) string {
	path := fmt.Sprintf("v1/auth/%s/login", mount)
	if username != "" {
		path += "/" + url.PathEscape(username)
	}
	return path
}

// Kind returns the backend this authenticator logs in to.
func (a *LoginAuthenticator) Kind() Kind {
	return a.kind
}

// Token returns the cached token or logs in to obtain one.
// Concurrent callers share a single login.
func (a *LoginAuthenticator) Token(ctx context.Context) (string, error) {
	if token, ok := a.cache.Get(); ok {
		return token, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if token, ok := a.cache.Get(); ok {
		return token, nil
	}
	return a.login(ctx)
}

// Refresh discards the cached token and logs in again.
func (a *LoginAuthenticator) Refresh(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cache.Clear()
	return a.login(ctx)
}

// Details returns the metadata of the last successful login, or nil.
func (a *LoginAuthenticator) Details() *AuthDetails {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.details
}

// Close destroys the cached token.
func (a *LoginAuthenticator) Close() error {
	a.cache.Clear()
	return nil
}

func (a *LoginAuthenticator) login(ctx context.Context) (string, error) {
	a.logger.Debug("Logging in with %s auth at %s as %s", a.kind, a.path, logging.Secret(a.identity))

	resp, err := transport.Execute(ctx, a.engine, transport.Request[LoginResponse]{
		Path:    a.path,
		Method:  http.MethodPost,
		Payload: a.payload,
	})
	if err != nil {
		return "", err
	}

	if resp == nil || resp.Auth == nil || resp.Auth.ClientToken == "" {
		return "", &AuthError{Kind: a.kind, Message: "login response carried no client token"}
	}

	ttl := time.Duration(resp.Auth.LeaseDuration) * time.Second
	a.cache.Set(resp.Auth.ClientToken, ttl)

	details := *resp.Auth
	details.ClientToken = ""
	a.details = &details

	a.logger.Debug("Obtained %s token (lease %s, renewable %t)", a.kind, ttl, resp.Auth.Renewable)
	return resp.Auth.ClientToken, nil
}
