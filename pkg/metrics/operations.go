package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
)

const namespace = "pricing"

const (
	OperationProfileSave      = "profile_save"
	OperationWorksheetPreview = "worksheet_preview"
	OperationWorksheetSave    = "worksheet_save"
)

// OperationMetrics records duration and outcome of profile saves and worksheet runs.
type OperationMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewOperationMetrics registers the operation metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOperationMetrics(reg prometheus.Registerer) *OperationMetrics {
	if reg == nil {
		return &OperationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of pricing operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_success_total",
		Help:      "Successful pricing operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_failure_total",
		Help:      "Failed pricing operations by error code.",
	}, []string{"operation", "code"})
	reg.MustRegister(duration, success, failure)
	return &OperationMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *OperationMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *OperationMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation and error code.
func (m *OperationMetrics) IncFailure(operation, code string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// Track observes the elapsed time since start and counts the outcome of err.
func (m *OperationMetrics) Track(operation string, start time.Time, err error) {
	m.ObserveDuration(operation, time.Since(start))
	if err != nil {
		m.IncFailure(operation, codeOf(err))
		return
	}
	m.IncSuccess(operation)
}

func codeOf(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return "unknown"
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
