package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "thankatech"

var (
	// Registry uygulamaya ait Prometheus collector'ları
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	ledgerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger operations including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)

	txRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "transaction_retries_total",
			Help:      "Atomic units retried after a serialization failure, deadlock or unique race.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Post-commit notifications by template and result.",
		},
		[]string{"template", "result"},
	)

	reconcilePatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "patches_total",
			Help:      "Reconciliation corrections by entity and result.",
		},
		[]string{"entity", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ledgerOperations,
		ledgerDuration,
		txRetries,
		notifications,
		reconcilePatches,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler /metrics endpoint'i
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted in-flight gauge'u artırır; dönen fonksiyon isteği kapatır
func RequestStarted() func(method, route string, status int, elapsed time.Duration) {
	httpInFlight.Inc()
	return func(method, route string, status int, elapsed time.Duration) {
		httpInFlight.Dec()
		httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	}
}

// RecordOperation ledger operasyonunun sonucunu kaydeder
func RecordOperation(operation, outcome string, elapsed time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	ledgerOperations.WithLabelValues(operation, outcome).Inc()
	ledgerDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordRetry tekrar denenen unit sayacı
func RecordRetry() {
	txRetries.Inc()
}

// RecordNotification bildirim sonucu
func RecordNotification(template string, ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	notifications.WithLabelValues(template, result).Inc()
}

// RecordReconcilePatch reconciliation düzeltme sonucu (applied | raced | dry_run)
func RecordReconcilePatch(entity, result string) {
	reconcilePatches.WithLabelValues(entity, result).Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
