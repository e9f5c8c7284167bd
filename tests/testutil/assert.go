package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/vaultkit/pkg/transport"
)

// AssertSecretRedacted verifies that a secret value does not appear in a
// string and that the [REDACTED] marker does.
//
// Example usage:
//
//	AssertSecretRedacted(t, logger.GetOutput(), "password123")
func AssertSecretRedacted(t *testing.T, output, secretValue string) {
	t.Helper()

	assert.NotContains(t, output, secretValue,
		"Secret value %q should be redacted, but appears in output", secretValue)
	assert.Contains(t, output, "[REDACTED]",
		"Expected [REDACTED] marker when secret is used")
}

// AssertNoSecretLeak verifies that none of secrets appear in output.
// Unlike AssertSecretRedacted it does not require a [REDACTED] marker,
// which suits command output that omits secrets entirely.
func AssertNoSecretLeak(t *testing.T, output string, secrets []string) {
	t.Helper()

	for _, secret := range secrets {
		assert.NotContains(t, output, secret,
			"Secret %q should not appear in output", secret)
	}
}

// AssertStatus verifies that err carries a server response with code.
func AssertStatus(t *testing.T, err error, code int) {
	t.Helper()

	if assert.Error(t, err, "Expected a %d response error", code) {
		assert.True(t, transport.IsStatus(err, code),
			"Expected status %d in error chain, got: %v", code, err)
	}
}

// AssertLinesContain verifies that each expected fragment appears on some
// line of output.
func AssertLinesContain(t *testing.T, output string, expectedLines []string) {
	t.Helper()

	lines := strings.Split(output, "\n")
	for _, expected := range expectedLines {
		found := false
		for _, line := range lines {
			if strings.Contains(line, expected) {
				found = true
				break
			}
		}
		assert.True(t, found, "Expected to find line containing %q in output:\n%s", expected, output)
	}
}
