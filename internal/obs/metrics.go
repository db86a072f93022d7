package obs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics holds the request-level Prometheus collectors. Quote resolution
// is a cache read plus pure arithmetic, so the default latency buckets skew
// low; override them via ParseBucketsCSV when the deployment needs more range.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

var defaultLatencyBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500}

// NewHTTPMetrics builds and registers the HTTP collectors. A nil registerer
// falls back to the default registry; re-registration reuses the existing
// collectors so tests can call this repeatedly.
func NewHTTPMetrics(namespace string, buckets []float64, reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = defaultLatencyBuckets
	} else {
		sort.Float64s(buckets)
	}
	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route and status.",
		}, []string{"method", "route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   buckets,
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Requests currently being served.",
		}),
	}

	if existing := register(reg, m.Requests); existing != nil {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.Requests = v
		}
	}
	if existing := register(reg, m.Latency); existing != nil {
		if v, ok := existing.(*prometheus.HistogramVec); ok {
			m.Latency = v
		}
	}
	if existing := register(reg, m.InFlight); existing != nil {
		if v, ok := existing.(prometheus.Gauge); ok {
			m.InFlight = v
		}
	}
	return m
}

// register adds the collector to reg. It returns the previously registered
// collector on an AlreadyRegistered conflict and panics on any other failure.
func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	err := reg.Register(c)
	if err == nil {
		return nil
	}
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		return are.ExistingCollector
	}
	panic(fmt.Errorf("register collector: %w", err))
}

// ParseBucketsCSV parses "1,5,25,100" style bucket boundaries (milliseconds).
// Malformed or non-positive entries are skipped; an empty input yields nil so
// the caller keeps the defaults.
func ParseBucketsCSV(csv string) []float64 {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DurationMillis converts a duration to fractional milliseconds.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
