// Package metrics exposes Prometheus collectors for launches, resource
// refreshes and provider API calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "unicloud"

// Registry holds every unicloud collector. It is served by the CLI's
// --metrics-addr endpoint.
var Registry = prometheus.NewRegistry()

var (
	// Launch metrics
	launchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "total",
			Help:      "Total number of instance launches by provider and result",
		},
		[]string{"provider", "result"},
	)

	launchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "duration_seconds",
			Help:      "Duration of instance launches in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 500ms to ~4min
		},
		[]string{"provider"},
	)

	volumesProvisioned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "volumes_provisioned_total",
			Help:      "Total number of blank volumes provisioned while compiling launch configurations",
		},
		[]string{"provider"},
	)

	volumesOrphaned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "volumes_orphaned_total",
			Help:      "Total number of provisioned volumes left behind by failed launches",
		},
		[]string{"provider"},
	)

	// Resource metrics
	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resource",
			Name:      "refresh_total",
			Help:      "Total number of resource refreshes by kind and outcome",
		},
		[]string{"provider", "kind", "outcome"},
	)

	resourceState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resource",
			Name:      "state",
			Help:      "Canonical state of a tracked resource (1 for the current state)",
		},
		[]string{"provider", "kind", "id", "state"},
	)

	// Provider API metrics
	apiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "api_calls_total",
			Help:      "Total number of provider API calls by operation and result",
		},
		[]string{"provider", "operation", "result"},
	)

	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "api_latency_seconds",
			Help:      "Latency of provider API calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"provider", "operation"},
	)
)

func init() {
	Registry.MustRegister(
		launchTotal,
		launchDuration,
		volumesProvisioned,
		volumesOrphaned,
		refreshTotal,
		resourceState,
		apiCallsTotal,
		apiLatency,
	)
}

// Result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Refresh outcome labels.
const (
	OutcomeFound    = "found"
	OutcomeVanished = "vanished"
	OutcomeError    = "error"
)

// RecordLaunch records a launch result and its duration.
func RecordLaunch(provider, result string, duration time.Duration) {
	launchTotal.WithLabelValues(provider, result).Inc()
	launchDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordVolumesProvisioned records blank volumes created for a launch.
func RecordVolumesProvisioned(provider string, n int) {
	if n > 0 {
		volumesProvisioned.WithLabelValues(provider).Add(float64(n))
	}
}

// RecordVolumesOrphaned records provisioned volumes a failed launch left behind.
func RecordVolumesOrphaned(provider string, n int) {
	if n > 0 {
		volumesOrphaned.WithLabelValues(provider).Add(float64(n))
	}
}

// RecordRefresh records the outcome of a resource refresh.
func RecordRefresh(provider, kind, outcome string) {
	refreshTotal.WithLabelValues(provider, kind, outcome).Inc()
}

// RecordState publishes the current canonical state of a resource.
// Series for the resource's other states are removed.
func RecordState(provider, kind, id, current string, all []string) {
	for _, s := range all {
		if s != current {
			resourceState.DeleteLabelValues(provider, kind, id, s)
		}
	}
	resourceState.WithLabelValues(provider, kind, id, current).Set(1)
}

// RecordAPICall records a provider API call.
func RecordAPICall(provider, operation string, err error, latency time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	apiCallsTotal.WithLabelValues(provider, operation, result).Inc()
	apiLatency.WithLabelValues(provider, operation).Observe(latency.Seconds())
}
