package transport_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/vaultkit/pkg/transport"
)

func TestMetrics_RecordsResponsesByMethodAndCode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics := transport.NewMetrics(reg)
	e, err := transport.New(transport.Config{Address: srv.URL, Metrics: metrics})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err = transport.Execute(ctx, e, transport.Request[json.RawMessage]{Path: "v1/ok", Method: http.MethodGet})
		require.NoError(t, err)
	}
	_, err = transport.Execute(ctx, e, transport.Request[json.RawMessage]{Path: "v1/missing", Method: http.MethodGet})
	require.Error(t, err)

	expected := `
# HELP vaultkit_requests_total Total number of HTTP exchanges that produced a response
# TYPE vaultkit_requests_total counter
vaultkit_requests_total{code="200",method="GET"} 2
vaultkit_requests_total{code="404",method="GET"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "vaultkit_requests_total"))
	count, err := testutil.GatherAndCount(reg, "vaultkit_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_RecordsConnectionFailures(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())

	reg := prometheus.NewRegistry()
	metrics := transport.NewMetrics(reg)
	e, err := transport.New(transport.Config{Address: address, Metrics: metrics})
	require.NoError(t, err)

	_, err = transport.Execute(context.Background(), e, transport.Request[json.RawMessage]{Path: "v1/sys/health", Method: http.MethodGet})
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "vaultkit_connection_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(reg, "vaultkit_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *transport.Metrics
	assert.NotPanics(t, func() {
		m.RecordResponse(http.MethodGet, 200, time.Millisecond)
		m.RecordFailure(http.MethodGet, time.Millisecond)
	})
}
