package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/feedradar/internal/domain/cycle"
)

// Cycle Prometheus metrics.
var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "feedradar",
			Name:      "cycles_total",
			Help:      "Total number of completed fetch cycles",
		},
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "feedradar",
			Name:      "cycle_duration_seconds",
			Help:      "Fetch cycle duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	ItemsFetchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "feedradar",
			Name:      "items_fetched_total",
			Help:      "Total items fetched from all sources",
		},
	)

	ItemsPersistedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "feedradar",
			Name:      "items_persisted_total",
			Help:      "Total items that survived the pipeline",
		},
	)

	ItemsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedradar",
			Name:      "items_rejected_total",
			Help:      "Total items rejected, by reason",
		},
		[]string{"reason"},
	)

	SourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedradar",
			Name:      "source_errors_total",
			Help:      "Total failed source fetches",
		},
		[]string{"source"},
	)

	FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedradar",
			Name:      "feedback_total",
			Help:      "Total feedback records accepted, by type",
		},
		[]string{"type"},
	)
)

var cycleMetricsRegistered bool

// RegisterCycleMetrics registers Prometheus cycle metrics. Must be called once from main.
func RegisterCycleMetrics() {
	if cycleMetricsRegistered {
		return
	}
	prometheus.MustRegister(CyclesTotal)
	prometheus.MustRegister(CycleDuration)
	prometheus.MustRegister(ItemsFetchedTotal)
	prometheus.MustRegister(ItemsPersistedTotal)
	prometheus.MustRegister(ItemsRejectedTotal)
	prometheus.MustRegister(SourceErrorsTotal)
	prometheus.MustRegister(FeedbackTotal)
	cycleMetricsRegistered = true
}

// RecordCycle publishes one finished cycle's counters. Unregistered metrics
// still accept updates, so callers never need to guard this.
func RecordCycle(sum *cycle.Summary) {
	CyclesTotal.Inc()
	CycleDuration.Observe(sum.Duration.Seconds())
	ItemsFetchedTotal.Add(float64(sum.Fetched))
	ItemsPersistedTotal.Add(float64(len(sum.Persisted)))
	for reason, n := range sum.Rejected {
		ItemsRejectedTotal.WithLabelValues(string(reason)).Add(float64(n))
	}
	for source := range sum.SourceErrors {
		SourceErrorsTotal.WithLabelValues(source).Inc()
	}
}
