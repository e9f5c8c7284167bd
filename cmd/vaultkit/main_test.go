package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vkerrors "github.com/systmms/vaultkit/internal/errors"
	"github.com/systmms/vaultkit/pkg/transport"
)

func TestPrintError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		want    []string
		notWant string
	}{
		{
			name:    "raw yaml failure gets a suggestion",
			err:     fmt.Errorf("failed to parse input: %w", fmt.Errorf("yaml: line 3: did not find expected key")),
			want:    []string{"Error: Configuration error: Invalid YAML format", "indentation"},
			notWant: "did not find expected key",
		},
		{
			name: "missing file",
			err:  fmt.Errorf("read policy: %w", &os.PathError{Op: "open", Path: "app.hcl", Err: syscall.ENOENT}),
			want: []string{"Error: File or directory not found", "Verify the path"},
		},
		{
			name: "user error is printed as is",
			err:  vkerrors.UserError{Message: "vault read failed", Details: "403 Forbidden"},
			want: []string{"Error: vault read failed", "Details: 403 Forbidden"},
		},
		{
			name: "unknown error is untouched",
			err:  fmt.Errorf("unknown command \"frobnicate\""),
			want: []string{"Error: unknown command \"frobnicate\"\n"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printError(&buf, tt.err)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
			if tt.notWant != "" {
				assert.NotContains(t, buf.String(), tt.notWant)
			}
		})
	}
}

func TestWriteMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := transport.NewMetrics(reg)
	metrics.RecordResponse("GET", 200, 15*time.Millisecond)
	metrics.RecordFailure("POST", time.Second)

	path := filepath.Join(t.TempDir(), "vaultkit.prom")
	require.NoError(t, writeMetrics(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `vaultkit_requests_total{code="200",method="GET"} 1`)
	assert.Contains(t, string(data), `vaultkit_connection_failures_total{method="POST"} 1`)
}

func TestWriteMetrics_UnwritableDirectory(t *testing.T) {
	t.Parallel()

	err := writeMetrics(filepath.Join(t.TempDir(), "missing", "vaultkit.prom"), prometheus.NewRegistry())
	var ue vkerrors.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Failed to write metrics", ue.Message)
}
