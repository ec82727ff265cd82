package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kodesha"

var (
	once sync.Once

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Count of booking status transitions by target status.",
		},
		[]string{"status"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Count of booking requests rejected because the dates were taken.",
		},
	)

	paymentReconciled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_reconciled_total",
			Help:      "Count of provider statuses reconciled by method, status and outcome.",
		},
		[]string{"method", "status", "outcome"},
	)

	providerCalls = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Latency of payment provider calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "operation", "result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingTransitions, bookingConflicts, paymentReconciled, providerCalls)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	Register()

	return promhttp.Handler()
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func AddBookingTransitions(status string, count int64) {
	bookingTransitions.WithLabelValues(status).Add(float64(count))
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncPaymentReconciled(method, status, outcome string) {
	paymentReconciled.WithLabelValues(method, status, outcome).Inc()
}

func ObserveProviderCall(provider, operation, result string, seconds float64) {
	providerCalls.WithLabelValues(provider, operation, result).Observe(seconds)
}
