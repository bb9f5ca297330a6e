package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/anchor/pkg/anchor"
)

// Default tracer name for anchor engines.
const defaultTracerName = "anchor"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "anchor").
	TracerName string

	// TracerProvider supplies the tracer. If nil, the global provider is
	// used.
	TracerProvider trace.TracerProvider

	// Filter determines which passes to trace.
	// Return true to trace the pass, false to skip.
	// If nil, all passes are traced.
	Filter func(info anchor.PassInfo) bool
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithPassFilter sets a filter function for passes.
func WithPassFilter(filter func(info anchor.PassInfo) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// Tracer is an anchor.Observer recording OpenTelemetry spans.
type Tracer struct {
	tracer trace.Tracer
	filter func(info anchor.PassInfo) bool
}

var _ anchor.Observer = (*Tracer)(nil)

// OpenTelemetry creates an observer tracing notification passes.
//
// A pass span is recorded after the pass completes, backdated to its start.
// Its status is Error when any handler panicked. Each handler panic gets its
// own span carrying the recorded error, and each subscription teardown a
// span whose anchor.reason attribute says why it was removed. Pass filters
// do not apply to either.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before creating
// engines:
//
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) *Tracer {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Tracer{
		tracer: tp.Tracer(config.TracerName),
		filter: config.Filter,
	}
}

// ObservePass implements anchor.Observer.
func (t *Tracer) ObservePass(info anchor.PassInfo) {
	if t.filter != nil && !t.filter(info) {
		return
	}

	_, span := t.tracer.Start(
		context.Background(),
		"anchor.pass",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(info.Start),
		trace.WithAttributes(
			attribute.Int64("anchor.container_id", int64(info.ContainerID)),
			attribute.Int("anchor.depth", info.Depth),
			attribute.Int("anchor.snapshot", info.Snapshot),
			attribute.Int("anchor.invoked", info.Invoked),
			attribute.Int("anchor.stale", info.Stale),
			attribute.Int("anchor.failed", info.Failed),
		),
	)
	if info.Failed > 0 {
		span.SetStatus(codes.Error, "handler panicked")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(info.Start.Add(info.Duration)))
}

// ObserveRegistration implements anchor.Observer.
func (t *Tracer) ObserveRegistration(_, _ uint64, _ int) {}

// ObserveRemoval implements anchor.Observer.
func (t *Tracer) ObserveRemoval(subscriptionID, containerID uint64, reason anchor.RemoveReason) {
	_, span := t.tracer.Start(
		context.Background(),
		"anchor.subscription_removed",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64("anchor.subscription_id", int64(subscriptionID)),
			attribute.Int64("anchor.container_id", int64(containerID)),
			attribute.String("anchor.reason", reason.String()),
		),
	)
	span.End()
}

// ObserveHandlerError implements anchor.Observer.
func (t *Tracer) ObserveHandlerError(err *anchor.HandlerError) {
	_, span := t.tracer.Start(
		context.Background(),
		"anchor.handler_panic",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64("anchor.subscription_id", int64(err.SubscriptionID)),
			attribute.Int64("anchor.container_id", int64(err.ContainerID)),
		),
	)
	span.RecordError(err, trace.WithAttributes(attribute.String("anchor.stack", string(err.Stack))))
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
