package metrics

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svcctl",
			Subsystem: "control",
			Name:      "operations_total",
			Help:      "Number of control operations by backend, operation and result.",
		}, []string{"backend", "op", "result"},
	)
	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "svcctl",
			Subsystem: "control",
			Name:      "operation_duration_seconds",
			Help:      "Duration of control operations.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"backend", "op"},
	)
	serviceStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "svcctl",
			Subsystem: "control",
			Name:      "status",
			Help:      "Last observed service status (1 = current status, 0 = otherwise).",
		}, []string{"backend", "service", "status"},
	)
)

// Result label values
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var statuses = []string{"unknown", "stopped", "running"}

// Service ids reach SetStatus from API requests, so the status gauge only
// tracks the first maxStatusServices backend/service pairs it sees.
var (
	maxStatusServices = 256

	trackedMu sync.Mutex
	tracked   = map[[2]string]struct{}{}
)

func track(backend, service string) bool {
	trackedMu.Lock()
	defer trackedMu.Unlock()
	k := [2]string{backend, service}
	if _, ok := tracked[k]; ok {
		return true
	}
	if len(tracked) >= maxStatusServices {
		return false
	}
	tracked[k] = struct{}{}
	return true
}

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{operations, operationDuration, serviceStatus}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

// ObserveOp records one operation outcome and its duration.
func ObserveOp(backend, op string, err error, d time.Duration) {
	if !regOK.Load() {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	operations.WithLabelValues(backend, op, result).Inc()
	operationDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

// SetStatus marks status as the current one for service. Services past the
// tracking limit are not recorded.
func SetStatus(backend, service, status string) {
	if !regOK.Load() || !track(backend, service) {
		return
	}
	for _, s := range statuses {
		v := 0.0
		if s == status {
			v = 1
		}
		serviceStatus.WithLabelValues(backend, service, s).Set(v)
	}
}
