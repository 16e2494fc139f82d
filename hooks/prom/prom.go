// Package prom exports cache events as Prometheus metrics.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/hybridcache"
)

// Hooks counts hits per tier, misses, loads, and tier/bus failures. Keys are
// never used as label values.
type Hooks struct {
	hits          *prometheus.CounterVec
	misses        prometheus.Counter
	loads         *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	backfillFails prometheus.Counter
	writeFails    *prometheus.CounterVec
	busErrors     *prometheus.CounterVec
}

var _ hybridcache.Hooks = (*Hooks)(nil)

// New registers the collectors on reg under namespace (e.g. "app").
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	h := &Hooks{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hybridcache",
			Name:      "hits_total",
			Help:      "Reads served from a cache tier.",
		}, []string{"tier"}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hybridcache",
			Name:      "misses_total",
			Help:      "Reads that missed both tiers.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hybridcache",
			Name:      "loads_total",
			Help:      "Retriever invocations by result.",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "hybridcache",
			Name:      "load_duration_seconds",
			Help:      "Retriever latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		backfillFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hybridcache",
			Name:      "backfill_failures_total",
			Help:      "Failed local writes of distributed hits.",
		}),
		writeFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hybridcache",
			Name:      "write_failures_total",
			Help:      "Failed tier writes and removals.",
		}, []string{"op", "tier"}),
		busErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hybridcache",
			Name:      "bus_errors_total",
			Help:      "Invalidation bus failures.",
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{
		h.hits, h.misses, h.loads, h.loadDuration, h.backfillFails, h.writeFails, h.busErrors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Hit(t hybridcache.TierKind, _ string) { h.hits.WithLabelValues(t.String()).Inc() }
func (h *Hooks) Miss(string)                          { h.misses.Inc() }
func (h *Hooks) BackfillFailed(string, error)         { h.backfillFails.Inc() }
func (h *Hooks) BusError(op string, _ error)          { h.busErrors.WithLabelValues(op).Inc() }

func (h *Hooks) Loaded(_ string, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.loads.WithLabelValues(result).Inc()
	h.loadDuration.Observe(took.Seconds())
}

func (h *Hooks) WriteFailed(op, _ string, t hybridcache.TierKind, _ error) {
	h.writeFails.WithLabelValues(op, t.String()).Inc()
}
