package sharedstream

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/sharedstream/internal/metrics"
)

// instrumentationName identifies this library to OpenTelemetry.
const instrumentationName = "github.com/BaSui01/sharedstream"

// metricsNamespace prefixes all Prometheus metric names.
const metricsNamespace = "sharedstream"

type config struct {
	name           string
	logger         *zap.Logger
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
}

// Option configures a handle created by [Share] or [AShare].
type Option func(*config)

// WithName sets the stream name used in log fields, metric labels and span
// attributes. Defaults to a random UUID.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithLogger sets a custom zap logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMetrics enables Prometheus metrics, registered against reg. Streams
// sharing one Registerer share the underlying collectors and are told apart
// by the "stream" label.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}

// WithTracerProvider enables tracing: every upstream advance becomes a span
// carrying the stream name and the cache index being filled.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tracerProvider = tp }
}

func newObserver(variant string, opts []Option) *observer {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = uuid.NewString()
	}

	obs := &observer{
		name: cfg.name,
		logger: cfg.logger.With(
			zap.String("component", "sharedstream"),
			zap.String("stream", cfg.name),
			zap.String("variant", variant),
		),
	}
	if cfg.registerer != nil {
		obs.metrics = metrics.NewCollector(metricsNamespace, cfg.registerer, cfg.logger)
	}
	if cfg.tracerProvider != nil {
		obs.tracer = cfg.tracerProvider.Tracer(instrumentationName)
	}
	return obs
}
