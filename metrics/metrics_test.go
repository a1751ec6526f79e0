package metrics

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsServer_ObserveRun(t *testing.T) {
	srv := NewMetricsServer(ServerConfig{Addr: "127.0.0.1:0"})

	srv.ObserveRun(64, 19, true, 5.8, 3*time.Millisecond)
	srv.ObserveRun(64, 1000, false, 5.5, 40*time.Millisecond)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "keygen_run_duration_seconds_bucket")
	require.Contains(t, body, `outcome="converged"`)
	require.Contains(t, body, `outcome="capped"`)
	require.Contains(t, body, `keygen_convergence_iterations_count{outcome="capped",size="64"}`)
	require.Contains(t, body, `keygen_key_entropy_bits_per_byte_count{size="64"}`)
}

func TestReport(t *testing.T) {
	var queries []string
	prom := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		queries = append(queries, r.Form.Get("query"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"success","data":{"resultType":"vector","result":[{"metric":{},"value":[1700000000,"0.25"]}]}}`)
	}))
	defer prom.Close()

	var out bytes.Buffer
	require.NoError(t, Report(context.Background(), &out, prom.URL, 90*time.Second))

	require.Len(t, queries, 3)
	require.True(t, strings.HasPrefix(queries[0], "histogram_quantile(0.5, "))
	require.Contains(t, queries[0], "keygen_run_duration_seconds_bucket[1m30s]")
	require.Contains(t, out.String(), "0.5th percentile run duration (second): 0.250")
	require.Contains(t, out.String(), "0.99th percentile run duration (second): 0.250")
}

func TestReport_NoSamples(t *testing.T) {
	prom := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"success","data":{"resultType":"vector","result":[]}}`)
	}))
	defer prom.Close()

	var out bytes.Buffer
	require.NoError(t, Report(context.Background(), &out, prom.URL, time.Minute))
	require.Equal(t, 3, strings.Count(out.String(), "Not enough samples"))
}
