package logging_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/vaultkit/internal/logging"
)

func TestSecretRedactionAtInfoLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, false, true)

	secretValue := "hvs.super-secret-token-12345"
	logger.Info("Obtained token: %s", logging.Secret(secretValue))

	output := buf.String()
	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, secretValue)
	assert.Contains(t, output, "Obtained token")
	assert.Contains(t, output, "✓")
}

func TestSecretRedactionAtDebugLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, true, true)

	secretValue := "debug-secret-api-key-67890"
	logger.Debug("Logging in as %s", logging.Secret(secretValue))

	output := buf.String()
	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, secretValue)
	assert.Contains(t, output, "[DEBUG]")
}

func TestSecretRedactionWithFormatting(t *testing.T) {
	t.Parallel()

	secret := logging.Secret("s3cr3t-value")
	formats := []string{"%s", "%v", "%+v", "%#v"}

	for _, format := range formats {
		format := format
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			out := fmt.Sprintf(format, secret)
			assert.Equal(t, "[REDACTED]", out)
		})
	}
}

func TestDebugModeDisabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, false, true)
	logger.Debug("GET v1/sys/health -> 200")

	assert.Empty(t, buf.String())
	assert.False(t, logger.DebugEnabled())
}

func TestDebugModeEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, true, true)
	logger.Debug("GET v1/sys/health -> 200")

	assert.Contains(t, buf.String(), "GET v1/sys/health -> 200")
	assert.True(t, logger.DebugEnabled())
}

func TestColorOutputDisabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, false, true)
	logger.Warn("token expires soon")
	logger.Error("login failed")

	output := buf.String()
	assert.NotContains(t, output, "\033[")
	assert.Contains(t, output, "⚠")
	assert.Contains(t, output, "✗")
}

func TestWithComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, false, true).With("transport")
	logger.Info("ready")

	assert.Contains(t, buf.String(), "component=transport")
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := logging.Nop()
	assert.NotPanics(t, func() {
		logger.Info("info")
		logger.Debug("debug")
		logger.With("x").Error("error")
	})
}
