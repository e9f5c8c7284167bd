// Package testutil provides test utilities and helpers for vaultkit tests.
//
// It contains configuration builders, a capturing logger, certificate
// fixtures and environment helpers.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestConfigBuilder builds a vaultkit.yaml in a temporary directory.
//
// Example usage:
//
//	path := NewTestConfig(t).
//	    WithAddress(fake.URL).
//	    WithAuth(map[string]any{"method": "userpass", "username": "alice"}).
//	    Write()
type TestConfigBuilder struct {
	doc     map[string]any
	tempDir string
	t       *testing.T
}

// NewTestConfig starts from a minimal valid document (version: 1).
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()

	return &TestConfigBuilder{
		doc:     map[string]any{"version": 1},
		tempDir: t.TempDir(),
		t:       t,
	}
}

// WithAddress sets the server address.
func (b *TestConfigBuilder) WithAddress(address string) *TestConfigBuilder {
	b.doc["address"] = address
	return b
}

// WithNamespace sets the namespace.
func (b *TestConfigBuilder) WithNamespace(namespace string) *TestConfigBuilder {
	b.doc["namespace"] = namespace
	return b
}

// WithTimeoutMs sets the request timeout.
func (b *TestConfigBuilder) WithTimeoutMs(ms int) *TestConfigBuilder {
	b.doc["timeout_ms"] = ms
	return b
}

// WithAuth sets the auth section verbatim.
func (b *TestConfigBuilder) WithAuth(section map[string]any) *TestConfigBuilder {
	b.doc["auth"] = section
	return b
}

// WithField sets an arbitrary top-level field, valid or not.
func (b *TestConfigBuilder) WithField(key string, value any) *TestConfigBuilder {
	b.doc[key] = value
	return b
}

// Write marshals the document to vaultkit.yaml and returns its path.
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()

	data, err := yaml.Marshal(b.doc)
	if err != nil {
		b.t.Fatalf("Failed to marshal config: %v", err)
	}
	return writeFile(b.t, filepath.Join(b.tempDir, "vaultkit.yaml"), data)
}

// WriteTestConfig writes yamlContent to a temporary vaultkit.yaml and
// returns its path.
func WriteTestConfig(t *testing.T, yamlContent string) string {
	t.Helper()
	return writeFile(t, filepath.Join(t.TempDir(), "vaultkit.yaml"), []byte(yamlContent))
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()

	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
