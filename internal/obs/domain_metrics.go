package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// MatrixUploadTotal counts matrix ingestion attempts by outcome.
	MatrixUploadTotal *prometheus.CounterVec
	// MatrixUploadRowErrors tracks how many row errors each rejected upload carried.
	MatrixUploadRowErrors prometheus.Histogram
	// ShippingQuoteTotal counts quote resolutions by outcome.
	ShippingQuoteTotal *prometheus.CounterVec
	// ShippingQuoteDuration records quote resolution latency in milliseconds.
	ShippingQuoteDuration prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		MatrixUploadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matrix_upload_total",
			Help:      "Count of rate matrix upload outcomes.",
		}, []string{"result"})
		MatrixUploadRowErrors = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matrix_upload_row_errors",
			Help:      "Distribution of row error counts for rejected uploads.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		})
		ShippingQuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipping_quote_total",
			Help:      "Count of shipping quote outcomes.",
		}, []string{"result"})
		ShippingQuoteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shipping_quote_duration_ms",
			Help:      "Latency of shipping quote resolution in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		})

		mustRegisterCollector(reg, MatrixUploadTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				MatrixUploadTotal = v
			}
		})
		mustRegisterCollector(reg, MatrixUploadRowErrors, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				MatrixUploadRowErrors = v
			}
		})
		mustRegisterCollector(reg, ShippingQuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ShippingQuoteTotal = v
			}
		})
		mustRegisterCollector(reg, ShippingQuoteDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				ShippingQuoteDuration = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
