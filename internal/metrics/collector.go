package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Collector records shared-stream metrics against a Prometheus Registerer.
type Collector struct {
	upstreamPolls *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	cacheLength   *prometheus.GaugeVec
	finished      *prometheus.CounterVec
	cloned        *prometheus.CounterVec
	poisonings    *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a metrics collector. All metrics live under
// namespace and carry a "stream" label. Registering the same namespace on
// the same Registerer twice reuses the existing collectors, so independent
// streams can share a registry.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	labels := []string{"stream"}

	c.upstreamPolls = counterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_polls_total",
		Help:      "Total number of items pulled from wrapped sources",
	}, labels)

	c.cacheHits = counterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of cursor reads answered from the cache",
	}, labels)

	c.cacheMisses = counterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total number of cursor reads that had to advance the source",
	}, labels)

	c.cacheLength = gaugeVec(reg, prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_length",
		Help:      "Current number of cached items",
	}, labels)

	c.finished = counterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "streams_finished_total",
		Help:      "Total number of sources drained to completion",
	}, labels)

	c.cloned = counterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handles_cloned_total",
		Help:      "Total number of handle clones taken",
	}, labels)

	c.poisonings = counterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poisonings_total",
		Help:      "Total number of panics observed while advancing a stream",
	}, labels)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordUpstreamPoll records one item pulled from a wrapped source.
func (c *Collector) RecordUpstreamPoll(stream string) {
	c.upstreamPolls.WithLabelValues(stream).Inc()
}

// RecordCacheHit records a cursor read served from the cache.
func (c *Collector) RecordCacheHit(stream string) {
	c.cacheHits.WithLabelValues(stream).Inc()
}

// RecordCacheMiss records a cursor read that had to touch the source.
func (c *Collector) RecordCacheMiss(stream string) {
	c.cacheMisses.WithLabelValues(stream).Inc()
}

// SetCacheLength records the current cache size of a stream.
func (c *Collector) SetCacheLength(stream string, n int) {
	c.cacheLength.WithLabelValues(stream).Set(float64(n))
}

// RecordFinish records a source drained to completion.
func (c *Collector) RecordFinish(stream string) {
	c.finished.WithLabelValues(stream).Inc()
}

// RecordClone records a handle clone.
func (c *Collector) RecordClone(stream string) {
	c.cloned.WithLabelValues(stream).Inc()
}

// RecordPoisoning records a panic observed while advancing a stream.
func (c *Collector) RecordPoisoning(stream string) {
	c.poisonings.WithLabelValues(stream).Inc()
}

func counterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(cv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(err)
	}
	return cv
}

func gaugeVec(reg prometheus.Registerer, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(opts, labels)
	if err := reg.Register(gv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.GaugeVec)
		}
		panic(err)
	}
	return gv
}
