package vault_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/vaultkit/pkg/auth"
	"github.com/systmms/vaultkit/pkg/transport"
	"github.com/systmms/vaultkit/pkg/vault"
	"github.com/systmms/vaultkit/tests/fakes"
)

func TestSecrets_Lifecycle(t *testing.T) {
	t.Parallel()

	fv := fakes.NewFakeVault(t)
	client := newRootClient(t, fv)
	ctx := context.Background()

	require.NoError(t, client.WriteSecret(ctx, "/secret/app/db/", map[string]any{
		"username": "app",
		"password": "hunter2",
	}))
	require.NoError(t, client.WriteSecret(ctx, "secret/app/api", map[string]any{"key": "abc"}))
	require.NoError(t, client.WriteSecret(ctx, "secret/app/nested/deep", map[string]any{"x": "y"}))

	stored, ok := fv.Secret("secret/app/db")
	require.True(t, ok)
	assert.Equal(t, "hunter2", stored["password"])

	secret, err := client.ReadSecret(ctx, "secret/app/db")
	require.NoError(t, err)
	assert.Equal(t, "app", secret.Data["username"])
	assert.Equal(t, 2764800, secret.LeaseDuration)

	raw, err := client.ReadSecretJSON(ctx, "secret/app/db")
	require.NoError(t, err)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope))
	assert.Contains(t, envelope, "data")

	keys, err := client.ListSecrets(ctx, "secret/app")
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "db", "nested/"}, keys)
	assert.Equal(t, "list=true", fv.LastRequest().Query)

	require.NoError(t, client.DeleteSecret(ctx, "secret/app/db"))
	_, err = client.ReadSecret(ctx, "secret/app/db")
	require.Error(t, err)
	assert.True(t, transport.IsNotFound(err))
	assert.Contains(t, err.Error(), "secret/app/db")
}

func TestListSecrets_MissingPathIsEmpty(t *testing.T) {
	t.Parallel()

	fv := fakes.NewFakeVault(t)
	client := newRootClient(t, fv)

	keys, err := client.ListSecrets(context.Background(), "secret/nothing-here")
	require.NoError(t, err)
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
}

func TestListSecrets_OtherFailuresPropagate(t *testing.T) {
	t.Parallel()

	fv := fakes.NewFakeVault(t)
	client, err := vault.NewClient(fv.URL, &auth.TokenInfo{Token: "revoked-token"})
	require.NoError(t, err)

	_, err = client.ListSecrets(context.Background(), "secret/app")
	require.Error(t, err)
	assert.True(t, transport.IsStatus(err, http.StatusForbidden))
}

func TestSecrets_ArgumentValidation(t *testing.T) {
	t.Parallel()

	fv := fakes.NewFakeVault(t)
	client := newRootClient(t, fv)
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func() error
		wantName string
	}{
		{"read_empty", func() error { _, err := client.ReadSecret(ctx, ""); return err }, "path"},
		{"read_slashes", func() error { _, err := client.ReadSecret(ctx, " // "); return err }, "path"},
		{"read_json_empty", func() error { _, err := client.ReadSecretJSON(ctx, ""); return err }, "path"},
		{"write_empty_path", func() error { return client.WriteSecret(ctx, "", map[string]any{"a": 1}) }, "path"},
		{"write_no_data", func() error { return client.WriteSecret(ctx, "secret/a", nil) }, "data"},
		{"delete_empty", func() error { return client.DeleteSecret(ctx, "") }, "path"},
		{"list_empty", func() error { _, err := client.ListSecrets(ctx, "/"); return err }, "path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var argErr *transport.ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.wantName, argErr.Name)
		})
	}

	assert.Empty(t, fv.Requests())
}

func TestSecrets_ReservedCharactersStayInPath(t *testing.T) {
	t.Parallel()

	fv := fakes.NewFakeVault(t)
	client := newRootClient(t, fv)
	ctx := context.Background()

	fv.SetSecret("secret/app", map[string]any{"keep": "me"})
	fv.SetSecret("secret/a", map[string]any{"wrong": "secret"})

	tests := []struct {
		name string
		path string
	}{
		{"fragment", "secret/app#old"},
		{"query", "secret/a?b"},
		{"space", "secret/with space"},
		{"percent", "secret/100%"},
	}

	for _, tt := range tests {
		require.NoError(t, client.WriteSecret(ctx, tt.path, map[string]any{"name": tt.name}), tt.name)
		assert.Equal(t, "/v1/"+tt.path, fv.LastRequest().Path, tt.name)

		secret, err := client.ReadSecret(ctx, tt.path)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.name, secret.Data["name"])

		require.NoError(t, client.DeleteSecret(ctx, tt.path), tt.name)
		assert.Equal(t, "/v1/"+tt.path, fv.LastRequest().Path, tt.name)
		_, ok := fv.Secret(tt.path)
		assert.False(t, ok, tt.name)
	}

	_, ok := fv.Secret("secret/app")
	assert.True(t, ok, "deleting secret/app#old must not touch secret/app")
	_, ok = fv.Secret("secret/a")
	assert.True(t, ok)
}

func TestListSecrets_ReservedCharactersKeepListQuery(t *testing.T) {
	t.Parallel()

	fv := fakes.NewFakeVault(t)
	client := newRootClient(t, fv)

	fv.SetSecret("secret/x?y/child", map[string]any{"k": "v"})
	fv.SetSecret("secret/x", map[string]any{"plain": "read"})

	keys, err := client.ListSecrets(context.Background(), "secret/x?y")
	require.NoError(t, err)
	assert.Equal(t, []string{"child"}, keys)

	last := fv.LastRequest()
	assert.Equal(t, "/v1/secret/x?y", last.Path)
	assert.Equal(t, "list=true", last.Query)
}
