package services

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/drawpath/drawpath/server/internal/cache"
)

var (
	// computeTotal counts computations by outcome: "ok", "invalid_input" or a
	// rejection reason
	computeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drawpath_trajectory_compute_total",
		Help: "Total trajectory computations by outcome",
	}, []string{"outcome"})

	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drawpath_trajectory_compute_duration_seconds",
		Help:    "Trajectory computation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	}, []string{"outcome"})

	outputPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "drawpath_trajectory_output_points",
		Help:    "Number of points in computed trajectories",
		Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})

	curvatureWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drawpath_trajectory_curvature_warnings_total",
		Help: "Computed trajectories reported with curvature violations",
	})
)

func observe(outcome string, start, end time.Time) {
	computeTotal.WithLabelValues(outcome).Inc()
	computeDuration.WithLabelValues(outcome).Observe(end.Sub(start).Seconds())
}

// StatsSource reports the latest-result store's occupancy
type StatsSource interface {
	Stats() cache.CacheStats
}

// RegisterStoreMetrics exports the store's fresh and expired entry counts,
// read on every scrape
func RegisterStoreMetrics(reg prometheus.Registerer, store StatsSource) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "drawpath_store_fresh_entries",
			Help: "Stored latest results that have not expired",
		}, func() float64 { return float64(store.Stats().FreshEntries) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "drawpath_store_stale_entries",
			Help: "Expired results waiting for the cleanup sweep",
		}, func() float64 { return float64(store.Stats().StaleEntries) }),
	}
	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return fmt.Errorf("failed to register store metrics: %w", err)
		}
	}
	return nil
}
