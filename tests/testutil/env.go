package testutil

import (
	"os"
	"testing"
)

// VaultEnvVars are the variables the configuration loader reads.
var VaultEnvVars = []string{
	"VAULT_ADDR",
	"VAULT_TOKEN",
	"VAULT_NAMESPACE",
	"VAULT_CLIENT_CERT",
	"VAULT_CLIENT_KEY",
}

// SetupTestEnv sets environment variables for the duration of a test.
// The original environment is restored through t.Cleanup, even if the
// test fails. Tests using it must not call t.Parallel.
//
// Example usage:
//
//	SetupTestEnv(t, map[string]string{
//	    "VAULT_ADDR":  "http://localhost:8200",
//	    "VAULT_TOKEN": "root",
//	})
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	restore := setEnv(t, vars)
	t.Cleanup(restore)
}

// ClearVaultEnv blanks every VAULT_* variable the loader reads, so the
// developer's own shell settings cannot leak into a test.
func ClearVaultEnv(t *testing.T) {
	t.Helper()

	vars := make(map[string]string, len(VaultEnvVars))
	for _, key := range VaultEnvVars {
		vars[key] = ""
	}
	SetupTestEnv(t, vars)
}

// WithEnv executes fn with temporary environment variables and restores
// the environment when fn returns.
func WithEnv(t *testing.T, vars map[string]string, fn func()) {
	t.Helper()

	restore := setEnv(t, vars)
	defer restore()
	fn()
}

func setEnv(t *testing.T, vars map[string]string) func() {
	t.Helper()

	original := make(map[string]string)
	unset := make([]string, 0)

	for key, value := range vars {
		if orig, ok := os.LookupEnv(key); ok {
			original[key] = orig
		} else {
			unset = append(unset, key)
		}

		if err := os.Setenv(key, value); err != nil {
			t.Fatalf("Failed to set environment variable %s: %v", key, err)
		}
	}

	return func() {
		for key, value := range original {
			_ = os.Setenv(key, value)
		}
		for _, key := range unset {
			_ = os.Unsetenv(key)
		}
	}
}
