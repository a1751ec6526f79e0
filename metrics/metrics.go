package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/api"
	"github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/model"
)

// Follow Prometheus naming practices
// https://prometheus.io/docs/practices/naming/
var (
	runLabels = []string{"size", "outcome"}
)

const (
	outcomeConverged = "converged"
	outcomeCapped    = "capped"
)

var (
	MetricRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keygen_run_duration_seconds",
			Help:    "wall clock time of a single derivation run (seconds).",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		runLabels,
	)

	MetricConvergenceIterations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keygen_convergence_iterations",
			Help:    "scramble and mix iterations before the entropy settled or the cap was hit.",
			Buckets: []float64{3, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		runLabels,
	)

	MetricKeyEntropy = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keygen_key_entropy_bits_per_byte",
			Help:    "Shannon entropy of derived key bytes (bits per byte).",
			Buckets: []float64{4, 5, 6, 7, 7.5, 7.75, 7.9, 7.95, 8},
		},
		[]string{"size"},
	)
)

type MetricsServer struct {
	*http.Server

	runDuration *prometheus.HistogramVec
	iterations  *prometheus.HistogramVec
	keyEntropy  *prometheus.HistogramVec
}

const (
	// MetricsPath is the endpoint to collect key generation metrics
	MetricsPath = "/metrics"
)

type ServerConfig struct {
	Addr string
}

// NewMetricsServer returns a new prometheus server which collects key generation metrics
func NewMetricsServer(cfg ServerConfig) *MetricsServer {
	mux := http.NewServeMux()

	reg := prometheus.NewRegistry()

	reg.MustRegister(MetricRunDuration, MetricConvergenceIterations, MetricKeyEntropy)

	mux.Handle(MetricsPath, promhttp.HandlerFor(prometheus.Gatherers{
		reg,
	}, promhttp.HandlerOpts{}))
	return &MetricsServer{
		Server: &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		},
		runDuration: MetricRunDuration,
		iterations:  MetricConvergenceIterations,
		keyEntropy:  MetricKeyEntropy,
	}
}

// ObserveRun records the measurements of one completed derivation run.
func (m *MetricsServer) ObserveRun(size int, iterations int, converged bool, entropy float64, duration time.Duration) {
	outcome := outcomeCapped
	if converged {
		outcome = outcomeConverged
	}
	sizeLabel := strconv.Itoa(size)

	m.runDuration.WithLabelValues(sizeLabel, outcome).Observe(duration.Seconds())
	m.iterations.WithLabelValues(sizeLabel, outcome).Observe(float64(iterations))
	m.keyEntropy.WithLabelValues(sizeLabel).Observe(entropy)
}

// Report queries the Prometheus server at addr for run latency percentiles
// over the last duration and writes them to w.
func Report(ctx context.Context, w io.Writer, addr string, duration time.Duration) error {
	client, err := api.NewClient(api.Config{
		Address: addr,
	})
	if err != nil {
		return fmt.Errorf("error creating client: %w", err)
	}

	v1api := v1.NewAPI(client)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	interval := duration.Round(time.Second)
	if interval < time.Second {
		interval = time.Second
	}

	getPercentile := func(percentile string) error {
		queryLatencyPercentile := "histogram_quantile(%s, sum(rate(keygen_run_duration_seconds_bucket[%s])) by (le))"

		query := fmt.Sprintf(queryLatencyPercentile, percentile, model.Duration(interval))
		result, warnings, err := v1api.Query(ctx, query, time.Now())
		if err != nil {
			return fmt.Errorf("error querying Prometheus: %w", err)
		}
		if len(warnings) > 0 {
			fmt.Fprintf(w, "Warnings: %v\n", warnings)
		}

		vec, ok := result.(model.Vector)
		if !ok {
			return fmt.Errorf("unsupported result format: %s", result.Type().String())
		}
		if vec.Len() == 0 {
			fmt.Fprintln(w, "Not enough samples")
			return nil
		}
		fmt.Fprintf(w, "%sth percentile run duration (second): %0.3f\n", percentile, vec[0].Value)
		return nil
	}

	for _, percentile := range []string{"0.5", "0.9", "0.99"} {
		if err := getPercentile(percentile); err != nil {
			return err
		}
	}

	return nil
}
