package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/vaultkit/pkg/transport"
)

// loginServer records login requests and answers with sequential tokens.
type loginServer struct {
	*httptest.Server

	mu       sync.Mutex
	paths    []string
	payloads []map[string]string
	logins   int32
	lease    int
}

func newLoginServer(t *testing.T, lease int) *loginServer {
	t.Helper()

	ls := &loginServer{lease: lease}
	ls.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var payload map[string]string
		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 {
			assert.NoError(t, json.Unmarshal(body, &payload))
		}

		n := atomic.AddInt32(&ls.logins, 1)
		ls.mu.Lock()
		ls.paths = append(ls.paths, r.URL.Path)
		ls.payloads = append(ls.payloads, payload)
		ls.mu.Unlock()

		_ = json.NewEncoder(w).Encode(LoginResponse{Auth: &AuthDetails{
			ClientToken:   "token-" + string(rune('0'+n)),
			Accessor:      "accessor",
			Policies:      []string{"default"},
			LeaseDuration: ls.lease,
			Renewable:     true,
		}})
	}))
	t.Cleanup(ls.Close)
	return ls
}

func (ls *loginServer) count() int {
	return int(atomic.LoadInt32(&ls.logins))
}

func TestLogin_PathsAndPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		info        Info
		wantPath    string
		wantPayload map[string]string
	}{
		{
			name:        "app_id",
			info:        &AppIDInfo{AppID: "my-app", UserID: "my-user"},
			wantPath:    "/v1/auth/app-id/login",
			wantPayload: map[string]string{"app_id": "my-app", "user_id": "my-user"},
		},
		{
			name:        "github_custom_mount",
			info:        &GitHubInfo{MountPoint: "gh-org", PersonalAccessToken: "ghp_abc"},
			wantPath:    "/v1/auth/gh-org/login",
			wantPayload: map[string]string{"token": "ghp_abc"},
		},
		{
			name:        "ldap",
			info:        &LDAPInfo{Username: "alice", Password: "ldap-pw"},
			wantPath:    "/v1/auth/ldap/login/alice",
			wantPayload: map[string]string{"password": "ldap-pw"},
		},
		{
			name:        "userpass",
			info:        &UsernamePasswordInfo{Username: "bob", Password: "up-pw"},
			wantPath:    "/v1/auth/userpass/login/bob",
			wantPayload: map[string]string{"password": "up-pw"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newLoginServer(t, 3600)
			a, err := Select(tt.info, srv.URL, Options{})
			require.NoError(t, err)

			token, err := a.Token(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "token-1", token)

			require.Equal(t, 1, srv.count())
			assert.Equal(t, tt.wantPath, srv.paths[0])
			assert.Equal(t, tt.wantPayload, srv.payloads[0])
		})
	}
}

func TestLogin_TokenIsCachedUntilLeaseExpires(t *testing.T) {
	t.Parallel()

	srv := newLoginServer(t, 60)
	a, err := Select(&UsernamePasswordInfo{Username: "alice", Password: "pw"}, srv.URL, Options{})
	require.NoError(t, err)
	la := a.(*LoginAuthenticator)

	now := time.Now()
	la.cache.now = func() time.Time { return now }

	ctx := context.Background()
	first, err := a.Token(ctx)
	require.NoError(t, err)
	second, err := a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, srv.count())

	now = now.Add(56 * time.Second)
	third, err := a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", third)
	assert.Equal(t, 2, srv.count())
}

func TestLogin_ZeroLeaseNeverExpires(t *testing.T) {
	t.Parallel()

	srv := newLoginServer(t, 0)
	a, err := Select(&LDAPInfo{Username: "alice", Password: "pw"}, srv.URL, Options{})
	require.NoError(t, err)
	la := a.(*LoginAuthenticator)

	now := time.Now()
	la.cache.now = func() time.Time { return now }

	_, err = a.Token(context.Background())
	require.NoError(t, err)
	now = now.Add(365 * 24 * time.Hour)
	_, err = a.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, srv.count())
}

func TestLogin_RefreshForcesNewLogin(t *testing.T) {
	t.Parallel()

	srv := newLoginServer(t, 3600)
	a, err := Select(&GitHubInfo{PersonalAccessToken: "ghp"}, srv.URL, Options{})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = a.Token(ctx)
	require.NoError(t, err)

	refresher, ok := a.(Refresher)
	require.True(t, ok)
	token, err := refresher.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)

	cached, err := a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", cached)
	assert.Equal(t, 2, srv.count())
}

func TestLogin_ConcurrentTokenCallsShareOneLogin(t *testing.T) {
	t.Parallel()

	srv := newLoginServer(t, 3600)
	a, err := Select(&AppIDInfo{AppID: "a", UserID: "u"}, srv.URL, Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := a.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "token-1", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, srv.count())
}

func TestLogin_DetailsOmitToken(t *testing.T) {
	t.Parallel()

	srv := newLoginServer(t, 120)
	a, err := Select(&UsernamePasswordInfo{Username: "alice", Password: "pw"}, srv.URL, Options{})
	require.NoError(t, err)
	la := a.(*LoginAuthenticator)

	assert.Nil(t, la.Details())
	_, err = a.Token(context.Background())
	require.NoError(t, err)

	details := la.Details()
	require.NotNil(t, details)
	assert.Empty(t, details.ClientToken)
	assert.Equal(t, []string{"default"}, details.Policies)
	assert.Equal(t, 120, details.LeaseDuration)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"errors":["invalid username or password"]}`)
	}))
	defer srv.Close()

	a, err := Select(&UsernamePasswordInfo{Username: "alice", Password: "wrong"}, srv.URL, Options{})
	require.NoError(t, err)

	_, err = a.Token(context.Background())
	require.Error(t, err)
	assert.True(t, transport.IsStatus(err, http.StatusBadRequest))
	assert.Contains(t, err.Error(), "invalid username or password")
}

func TestLogin_MissingClientToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"auth":{"client_token":""}}`)
	}))
	defer srv.Close()

	a, err := Select(&LDAPInfo{Username: "alice", Password: "pw"}, srv.URL, Options{})
	require.NoError(t, err)

	_, err = a.Token(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindLDAP, authErr.Kind)
}

func TestLogin_EmptyBodyIsAuthError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a, err := Select(&GitHubInfo{PersonalAccessToken: "ghp"}, srv.URL, Options{})
	require.NoError(t, err)

	_, err = a.Token(context.Background())
	var authErr *AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestLogin_CloseClearsCache(t *testing.T) {
	t.Parallel()

	srv := newLoginServer(t, 3600)
	a, err := Select(&UsernamePasswordInfo{Username: "alice", Password: "pw"}, srv.URL, Options{})
	require.NoError(t, err)
	la := a.(*LoginAuthenticator)

	_, err = a.Token(context.Background())
	require.NoError(t, err)
	require.NoError(t, la.Close())
	assert.True(t, la.cache.IsExpired())
}

func TestTokenAuthenticator(t *testing.T) {
	t.Parallel()

	a, err := Select(&TokenInfo{Token: "s.literal"}, testAddress, Options{})
	require.NoError(t, err)

	token, err := a.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s.literal", token)

	ta := a.(*TokenAuthenticator)
	require.NoError(t, ta.Close())
	_, err = ta.Token(context.Background())
	assert.Error(t, err)
}

func TestCustomAuthenticator(t *testing.T) {
	t.Parallel()

	var calls int32
	a, err := Select(&CustomInfo{Delegate: func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "from-delegate", nil
	}}, testAddress, Options{})
	require.NoError(t, err)

	token, err := a.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-delegate", token)

	_, err = a.(Refresher).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCustomAuthenticator_Failures(t *testing.T) {
	t.Parallel()

	boom := errors.New("keyring locked")
	failing, err := Select(&CustomInfo{Delegate: func(ctx context.Context) (string, error) {
		return "", boom
	}}, testAddress, Options{})
	require.NoError(t, err)

	_, err = failing.Token(context.Background())
	assert.ErrorIs(t, err, boom)

	empty, err := Select(&CustomInfo{Delegate: func(ctx context.Context) (string, error) {
		return "", nil
	}}, testAddress, Options{})
	require.NoError(t, err)

	_, err = empty.Token(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindCustom, authErr.Kind)
}
