package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/vaultkit/internal/logging"
)

// TestLogger captures the output of a real logging.Logger for validation
// in tests.
//
// Example usage:
//
//	tl := NewTestLogger(t, true)
//	client, _ := vault.NewClient(addr, info, vault.WithLogger(tl.Logger()))
//	...
//	tl.AssertRedacted(t, "password123")
type TestLogger struct {
	buf    *syncBuffer
	logger *logging.Logger
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// NewTestLogger creates a capturing logger without colors.
// Debug messages are captured only when debug is true.
func NewTestLogger(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	buf := &syncBuffer{}
	return &TestLogger{
		buf:    buf,
		logger: logging.NewWithWriter(buf, debug, true),
	}
}

// Logger returns the logger to inject into the code under test.
func (l *TestLogger) Logger() *logging.Logger {
	return l.logger
}

// GetOutput returns everything captured since creation or the last Clear.
func (l *TestLogger) GetOutput() string {
	return l.buf.String()
}

// Clear discards captured output.
func (l *TestLogger) Clear() {
	l.buf.Reset()
}

// AssertContains asserts that the log output contains substr.
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, l.GetOutput(), substr, "Expected log output to contain %q", substr)
}

// AssertNotContains asserts that the log output does NOT contain substr.
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	assert.NotContains(t, l.GetOutput(), substr, "Expected log output to NOT contain %q", substr)
}

// AssertRedacted asserts that secretValue is absent and [REDACTED] present.
func (l *TestLogger) AssertRedacted(t *testing.T, secretValue string) {
	t.Helper()
	AssertSecretRedacted(t, l.GetOutput(), secretValue)
}

// AssertLogCount asserts how many lines carry a level marker.
//
// Level markers:
//   - info: "✓"
//   - warn: "⚠"
//   - error: "✗"
//   - debug: "[DEBUG]"
func (l *TestLogger) AssertLogCount(t *testing.T, level string, count int) {
	t.Helper()

	var marker string
	switch level {
	case "info":
		marker = "✓"
	case "warn":
		marker = "⚠"
	case "error":
		marker = "✗"
	case "debug":
		marker = "[DEBUG]"
	default:
		t.Fatalf("Unknown log level: %s", level)
	}

	actual := 0
	for _, line := range l.Lines() {
		if strings.HasPrefix(line, marker) {
			actual++
		}
	}
	assert.Equal(t, count, actual, "Expected %d %s log messages, got %d", count, level, actual)
}

// AssertEmpty asserts that no log output was captured.
func (l *TestLogger) AssertEmpty(t *testing.T) {
	t.Helper()
	output := l.GetOutput()
	assert.Empty(t, output, "Expected no log output, but got:\n%s", output)
}

// Lines returns the non-empty lines of captured output.
func (l *TestLogger) Lines() []string {
	lines := strings.Split(l.GetOutput(), "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
