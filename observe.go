package sharedstream

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/sharedstream/internal/metrics"
)

// observer bundles the optional instrumentation of one shared container.
// The logger is always non-nil (a nop by default); metrics and tracer may
// be nil and every method tolerates that.
type observer struct {
	name    string
	logger  *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

func (o *observer) hit() {
	if o.metrics != nil {
		o.metrics.RecordCacheHit(o.name)
	}
}

func (o *observer) miss() {
	if o.metrics != nil {
		o.metrics.RecordCacheMiss(o.name)
	}
}

// polled records one item pulled from the source; length is the cache size
// after the append.
func (o *observer) polled(length int) {
	o.logger.Debug("cached item from source", zap.Int("index", length-1))
	if o.metrics != nil {
		o.metrics.RecordUpstreamPoll(o.name)
		o.metrics.SetCacheLength(o.name, length)
	}
}

func (o *observer) finished(total int) {
	o.logger.Info("source exhausted", zap.Int("items", total))
	if o.metrics != nil {
		o.metrics.RecordFinish(o.name)
	}
}

func (o *observer) cloned() {
	if o.metrics != nil {
		o.metrics.RecordClone(o.name)
	}
}

func (o *observer) poisoned() {
	o.logger.Error("stream poisoned by panic during advance")
	if o.metrics != nil {
		o.metrics.RecordPoisoning(o.name)
	}
}

// startAdvance opens a span around one upstream step. The returned span is
// nil when tracing is disabled.
func (o *observer) startAdvance(ctx context.Context, index int) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, nil
	}
	return o.tracer.Start(ctx, "sharedstream.advance", trace.WithAttributes(
		attribute.String("stream", o.name),
		attribute.Int("index", index),
	))
}
