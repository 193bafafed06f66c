package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records the outcome of payment reconciliation calls.
type SettlementMetrics struct {
	duration      *prometheus.HistogramVec
	success       *prometheus.CounterVec
	failure       *prometheus.CounterVec
	ordersSettled prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of payment settlement calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_success",
		Help: "Successful payment settlements.",
	}, []string{"mode"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_failure",
		Help: "Failed payment settlements.",
	}, []string{"mode"})
	ordersSettled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_settled_total",
		Help: "Remote orders updated by the reconciliation engine.",
	})
	reg.MustRegister(duration, success, failure, ordersSettled)
	return &SettlementMetrics{
		duration:      duration,
		success:       success,
		failure:       failure,
		ordersSettled: ordersSettled,
	}
}

// ObserveDuration records the duration for the given settlement mode.
func (m *SettlementMetrics) ObserveDuration(mode string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the given mode.
func (m *SettlementMetrics) IncSuccess(mode string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncFailure increments the failure counter for the given mode.
func (m *SettlementMetrics) IncFailure(mode string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(mode)).Inc()
}

// AddOrdersSettled counts remote orders written by a completed settlement.
func (m *SettlementMetrics) AddOrdersSettled(n int) {
	if m == nil || m.ordersSettled == nil || n <= 0 {
		return
	}
	m.ordersSettled.Add(float64(n))
}

func normalizeLabel(mode string) string {
	if mode == "" {
		return "unknown"
	}
	return mode
}
