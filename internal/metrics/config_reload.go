// Package metrics holds the Prometheus instrumentation for the
// composer's reload pipeline and cache layer. Grounded on the
// teacher's internal/metrics/config_reload.go promauto patterns,
// relabeled for the composer's load→swap→callbacks pipeline
// instead of the teacher's fixed load→validate→diff→apply→reload→
// health-check phases — the component-reload and health-check stages
// have no counterpart here (see DESIGN.md).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReloadTotal tracks total reload attempts by status.
	//
	// Labels:
	//   - status: success (the only status Reload records; source
	//     load failures are counted by SourceLoadErrors instead)
	ReloadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "configcore_reload_total",
			Help: "Total number of composer reload attempts by status",
		},
		[]string{"status"},
	)

	// ReloadDuration tracks end-to-end reload duration.
	ReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "configcore_reload_duration_seconds",
			Help:    "Duration of composer reload operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
		},
	)

	// ReloadPhaseDuration tracks duration by pipeline phase.
	//
	// Labels:
	//   - phase: load, swap (the swap phase includes the diff and the
	//     reload callbacks)
	ReloadPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "configcore_reload_phase_duration_seconds",
			Help:    "Duration of composer reload pipeline phases",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.2, 0.5},
		},
		[]string{"phase"},
	)

	// ReloadCallbackErrors tracks on_reload callback failures, which are
	// recorded but never fail the reload itself.
	ReloadCallbackErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "configcore_reload_callback_errors_total",
			Help: "Total number of on_reload callback errors, by callback label",
		},
		[]string{"callback"},
	)

	// ReloadLastSuccess tracks the timestamp of the last successful swap.
	ReloadLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "configcore_reload_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful composer reload",
		},
	)

	// ReloadGeneration tracks the monotonic tree generation counter.
	ReloadGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "configcore_reload_generation",
			Help: "Monotonically increasing tree generation number",
		},
	)

	// SourceLoadErrors tracks per-source load failures, which contribute
	// {} to the merge but never fail the reload.
	SourceLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "configcore_source_load_errors_total",
			Help: "Total number of source load failures by source kind",
		},
		[]string{"kind"},
	)

	// ValidationDuration tracks validate() call duration.
	ValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "configcore_validation_duration_seconds",
			Help:    "Duration of schema validation runs",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	// CacheHits and CacheMisses track the composer's cache layer,
	// independent of any single backend's own counters.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "configcore_cache_hits_total",
			Help: "Total number of cache hits across all sources",
		},
	)
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "configcore_cache_misses_total",
			Help: "Total number of cache misses across all sources",
		},
	)
)
