package auth

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/vaultkit/pkg/transport"
	"github.com/systmms/vaultkit/tests/fakes"
	"github.com/systmms/vaultkit/tests/testutil"
)

const testAddress = "https://vault.example.com:8200"

func TestSelect_DispatchesByKind(t *testing.T) {
	t.Parallel()

	cert := testutil.NewClientCertificate(t, "selector")
	delegate := func(ctx context.Context) (string, error) { return "custom-token", nil }

	tests := []struct {
		name       string
		info       Info
		wantKind   Kind
		wantEngine bool
	}{
		{"app_id", &AppIDInfo{AppID: "app", UserID: "user"}, KindAppID, true},
		{"github", &GitHubInfo{PersonalAccessToken: "ghp_x"}, KindGitHub, true},
		{"ldap", &LDAPInfo{Username: "alice", Password: "pw"}, KindLDAP, true},
		{"userpass", &UsernamePasswordInfo{Username: "alice", Password: "pw"}, KindUserpass, true},
		{"certificate", &CertificateInfo{ClientCertificate: &cert}, KindCertificate, true},
		{"token", &TokenInfo{Token: "s.literal"}, KindToken, false},
		{"custom", &CustomInfo{Delegate: delegate}, KindCustom, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := Select(tt.info, testAddress, Options{Timeout: time.Second})
			require.NoError(t, err)
			require.NotNil(t, a)
			assert.Equal(t, tt.wantKind, a.Kind())
			assert.Equal(t, tt.wantKind, tt.info.Kind())

			la, isLogin := a.(*LoginAuthenticator)
			assert.Equal(t, tt.wantEngine, isLogin)
			if isLogin {
				require.NotNil(t, la.engine)
				assert.Equal(t, testAddress, la.engine.Address())
				assert.Equal(t, time.Second, la.engine.Unwrap().Timeout)
			}
		})
	}
}

func TestSelect_EachAuthenticatorOwnsItsEngine(t *testing.T) {
	t.Parallel()

	info := &UsernamePasswordInfo{Username: "alice", Password: "pw"}
	a1, err := Select(info, testAddress, Options{})
	require.NoError(t, err)
	a2, err := Select(info, testAddress, Options{})
	require.NoError(t, err)

	assert.NotSame(t, a1.(*LoginAuthenticator).engine, a2.(*LoginAuthenticator).engine)
}

func TestSelect_CallerInputErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		info     Info
		address  string
		wantName string
	}{
		{"missing_address", &TokenInfo{Token: "t"}, "", "address"},
		{"blank_address", &TokenInfo{Token: "t"}, "  ", "address"},
		{"nil_info", nil, testAddress, "authenticationInfo"},
		{"typed_nil_info", (*CertificateInfo)(nil), testAddress, "authenticationInfo"},
		{"certificate_without_certificate", &CertificateInfo{}, testAddress, "ClientCertificate"},
		{"token_without_token", &TokenInfo{}, testAddress, "Token"},
		{"app_id_without_user", &AppIDInfo{AppID: "app"}, testAddress, "UserID"},
		{"github_without_token", &GitHubInfo{MountPoint: "gh"}, testAddress, "PersonalAccessToken"},
		{"ldap_without_password", &LDAPInfo{Username: "alice"}, testAddress, "Password"},
		{"userpass_without_username", &UsernamePasswordInfo{Password: "pw"}, testAddress, "Username"},
		{"custom_without_delegate", &CustomInfo{}, testAddress, "Delegate"},
		{"malformed_address", &LDAPInfo{Username: "alice", Password: "pw"}, "vault:8200", "address"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := Select(tt.info, tt.address, Options{})
			assert.Nil(t, a)
			require.Error(t, err)
			assert.ErrorIs(t, err, transport.ErrInvalidArgument)

			var argErr *transport.ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.wantName, argErr.Name)
		})
	}
}

// unknownInfo stands in for a descriptor added without a matching case.
type unknownInfo struct{}

func (*unknownInfo) Kind() Kind { return Kind("kerberos") }
func (*unknownInfo) isInfo()    {}

func TestSelect_UnsupportedKind(t *testing.T) {
	t.Parallel()

	a, err := Select(&unknownInfo{}, testAddress, Options{})
	assert.Nil(t, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrUnsupported)
	assert.Contains(t, err.Error(), "kerberos")
}

func TestSelect_CertificatePresentedOnTheWire(t *testing.T) {
	t.Parallel()

	cert := testutil.NewClientCertificate(t, "vaultkit-client")

	fv := fakes.NewUnstartedFakeVault(t)
	fv.TLS = &tls.Config{ClientAuth: tls.RequireAnyClientCert}
	fv.StartTLS()

	pool := x509.NewCertPool()
	pool.AddCert(fv.Certificate())

	a, err := Select(&CertificateInfo{ClientCertificate: &cert}, fv.URL, Options{})
	require.NoError(t, err)

	la := a.(*LoginAuthenticator)
	tr, ok := la.engine.Unwrap().Transport.(*http.Transport)
	require.True(t, ok)
	require.Len(t, tr.TLSClientConfig.Certificates, 1)
	assert.Equal(t, cert.Certificate[0], tr.TLSClientConfig.Certificates[0].Certificate[0])
	tr.TLSClientConfig.RootCAs = pool

	token, err := a.Token(context.Background())
	require.NoError(t, err)
	require.Contains(t, fv.Tokens, token)
	assert.Equal(t, "auth/cert-vaultkit-client", fv.Tokens[token].Path)
	assert.Equal(t, "/v1/auth/cert/login", fv.LastRequest().Path)
}

func TestSelect_NonCertificateKindsPresentNoCertificate(t *testing.T) {
	t.Parallel()

	fv := fakes.NewUnstartedFakeVault(t)
	fv.Users["alice"] = "pw"
	fv.TLS = &tls.Config{ClientAuth: tls.RequireAnyClientCert}
	fv.StartTLS()

	pool := x509.NewCertPool()
	pool.AddCert(fv.Certificate())

	a, err := Select(&UsernamePasswordInfo{Username: "alice", Password: "pw"}, fv.URL, Options{})
	require.NoError(t, err)

	tr := a.(*LoginAuthenticator).engine.Unwrap().Transport.(*http.Transport)
	tr.TLSClientConfig = &tls.Config{RootCAs: pool}

	_, err = a.Token(context.Background())
	require.Error(t, err, "handshake must fail without a client certificate")

	var statusErr *transport.StatusError
	assert.False(t, errors.As(err, &statusErr))
	assert.Empty(t, fv.Requests())
}
