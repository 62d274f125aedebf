// Package metrics exposes prometheus instrumentation for the extraction
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's prometheus collectors. A nil *Metrics is
// valid and turns every recording method into a no-op, so library users
// who do not scrape metrics pay nothing.
type Metrics struct {
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	detections  prometheus.Counter
	stageTime   *prometheus.HistogramVec
}

// New creates the pipeline collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphsnap_cache_hits_total",
			Help: "Detection results served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphsnap_cache_misses_total",
			Help: "Cache lookups that fell through to the full pipeline.",
		}),
		detections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphsnap_detections_total",
			Help: "Full pipeline runs completed.",
		}),
		stageTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphsnap_stage_duration_seconds",
			Help:    "Wall time spent per pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
	}
	reg.MustRegister(m.cacheHits, m.cacheMisses, m.detections, m.stageTime)
	return m
}

// CacheHit records a cache lookup served from storage.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

// CacheMiss records a cache lookup that required a pipeline run.
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

// DetectionDone records a completed pipeline run.
func (m *Metrics) DetectionDone() {
	if m != nil {
		m.detections.Inc()
	}
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.stageTime.WithLabelValues(stage).Observe(d.Seconds())
	}
}
