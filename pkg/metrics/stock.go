package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StockMetrics records outcomes and latencies of inventory mutations.
type StockMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	reserved *prometheus.CounterVec
}

// NewStockMetrics registers the inventory metrics on the provided registerer.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_operation_duration_seconds",
		Help:    "Duration of inventory operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_operation_success",
		Help: "Successful inventory operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_operation_failure",
		Help: "Failed inventory operations.",
	}, []string{"operation", "code"})
	reserved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_units_reserved_total",
		Help: "Units moved from available to reserved.",
	}, []string{"operation"})
	reg.MustRegister(duration, success, failure, reserved)
	return &StockMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		reserved: reserved,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *StockMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *StockMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation and error code.
func (m *StockMetrics) IncFailure(operation, code string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// AddReservedUnits accumulates units moved between quantity columns.
func (m *StockMetrics) AddReservedUnits(operation string, units int) {
	if m == nil || m.reserved == nil || units <= 0 {
		return
	}
	m.reserved.WithLabelValues(normalizeLabel(operation)).Add(float64(units))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
