// Package metric provides Prometheus metrics for the storage engines.
package metric

import (
	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric hybriddb exposes.
type Registry struct {
	BlockAppendsTotal  *prometheus.CounterVec
	BlockBytesTotal    *prometheus.CounterVec
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	WALFlushesTotal    prometheus.Counter
	WALSyncDuration    prometheus.Histogram
	SSTableCount       prometheus.Gauge
	MemtableBytes      prometheus.Gauge
	RingRemapsTotal    prometheus.Counter
	RingNodeCount      prometheus.Gauge
	VectorQueriesTotal prometheus.Counter

	reg *prometheus.Registry
}

// NewRegistry builds a Registry backed by a fresh prometheus.Registry.
// Passing nil registers against prometheus.NewRegistry(); callers that
// want the metrics folded into a shared registry can pass their own.
func NewRegistry(reg *prometheus.Registry) *Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := &Registry{
		reg: reg,
		BlockAppendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hybriddb",
			Subsystem: "block",
			Name:      "appends_total",
			Help:      "Block append operations by block type.",
		}, []string{"type"}),
		BlockBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hybriddb",
			Subsystem: "block",
			Name:      "bytes_total",
			Help:      "Bytes written to block files by block type.",
		}, []string{"type"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hybriddb",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Record cache hits.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hybriddb",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Record cache misses.",
		}),
		WALFlushesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hybriddb",
			Subsystem: "wal",
			Name:      "flushes_total",
			Help:      "MemTable-to-SSTable flushes triggered by WAL capacity.",
		}),
		WALSyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hybriddb",
			Subsystem: "wal",
			Name:      "sync_duration_seconds",
			Help:      "Time spent fsyncing a WAL append.",
			Buckets:   prometheus.DefBuckets,
		}),
		SSTableCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hybriddb",
			Subsystem: "lsm",
			Name:      "sstable_count",
			Help:      "Number of SSTable runs currently on disk.",
		}),
		MemtableBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hybriddb",
			Subsystem: "lsm",
			Name:      "memtable_bytes",
			Help:      "Approximate size of the active MemTable.",
		}),
		RingRemapsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hybriddb",
			Subsystem: "ring",
			Name:      "remaps_total",
			Help:      "Keys remapped to a different node on ring topology changes.",
		}),
		RingNodeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hybriddb",
			Subsystem: "ring",
			Name:      "node_count",
			Help:      "Number of physical nodes currently in the ring.",
		}),
		VectorQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hybriddb",
			Subsystem: "vector",
			Name:      "queries_total",
			Help:      "Nearest-neighbour queries served by the vector index.",
		}),
	}

	reg.MustRegister(
		r.BlockAppendsTotal, r.BlockBytesTotal,
		r.CacheHitsTotal, r.CacheMissesTotal,
		r.WALFlushesTotal, r.WALSyncDuration,
		r.SSTableCount, r.MemtableBytes,
		r.RingRemapsTotal, r.RingNodeCount,
		r.VectorQueriesTotal,
	)

	return r
}

// CacheHitRatio returns hits / (hits + misses), or 0 when nothing has
// been recorded yet.
func (r *Registry) CacheHitRatio() float64 {
	hits := counterValue(r.CacheHitsTotal)
	misses := counterValue(r.CacheMissesTotal)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return hits / total
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
