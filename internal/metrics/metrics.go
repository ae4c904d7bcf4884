// Package metrics exposes Prometheus counters for the roster engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	daysAssembled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shift_roster",
			Name:      "days_assembled_total",
			Help:      "Count of schedule days assembled from rules and rosters.",
		},
	)

	daysDegraded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shift_roster",
			Name:      "days_degraded_total",
			Help:      "Count of assembled days that fell back to placeholder data.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shift_roster",
			Name:      "day_cache_lookups_total",
			Help:      "Count of day cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	cacheInvalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shift_roster",
			Name:      "day_cache_invalidations_total",
			Help:      "Count of generation-wide cache invalidations.",
		},
	)

	rangeRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shift_roster",
			Name:      "range_queries_rejected_total",
			Help:      "Count of range queries rejected for exceeding the maximum span.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(daysAssembled, daysDegraded, cacheLookups, cacheInvalidations, rangeRejected)
	})
}

func IncDayAssembled() {
	daysAssembled.Inc()
}

func IncDayDegraded() {
	daysDegraded.Inc()
}

func IncCacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

func IncCacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}

func IncCacheInvalidation() {
	cacheInvalidations.Inc()
}

func IncRangeRejected() {
	rangeRejected.Inc()
}
