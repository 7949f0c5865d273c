package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/labeled-input/pkg/runtime"
)

const defaultTracerName = "labeled-input"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "labeled-input").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// Context is the parent context for flush spans.
	// Default: context.Background()
	Context context.Context

	// Attributes are added to every flush span.
	Attributes []attribute.KeyValue
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracer uses t instead of the global tracer provider.
func WithTracer(t trace.Tracer) TracerOption {
	return func(c *TracerConfig) {
		c.Tracer = t
	}
}

// WithParentContext sets the parent context of flush spans.
func WithParentContext(ctx context.Context) TracerOption {
	return func(c *TracerConfig) {
		c.Context = ctx
	}
}

// WithAttributes adds attributes to every flush span.
func WithAttributes(attrs ...attribute.KeyValue) TracerOption {
	return func(c *TracerConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Tracer records each flush as a span, with one event per patched
// instance. A Tracer holds the open span, so give each Scheduler its own.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracer is given. Configure it in main() before creating schedulers:
//
//	otel.SetTracerProvider(tp)
//	sched := runtime.NewScheduler(loop, runtime.WithObserver(metrics.NewTracer()))
type Tracer struct {
	tracer trace.Tracer
	parent context.Context
	attrs  []attribute.KeyValue
	span   trace.Span
}

// NewTracer returns a flush tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(config.TracerName)
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	return &Tracer{tracer: config.Tracer, parent: config.Context, attrs: config.Attributes}
}

// FlushStarted implements runtime.Observer.
func (t *Tracer) FlushStarted() {
	_, t.span = t.tracer.Start(t.parent, "labeled-input.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(t.attrs...),
	)
}

// InstancePatched implements runtime.Observer.
func (t *Tracer) InstancePatched(component string, dirtySlots int) {
	if t.span == nil {
		return
	}
	t.span.AddEvent("patch", trace.WithAttributes(
		attribute.String("labeled_input.component", component),
		attribute.Int("labeled_input.dirty_slots", dirtySlots),
	))
}

// FlushFinished implements runtime.Observer.
func (t *Tracer) FlushFinished(stats runtime.FlushStats, err error) {
	span := t.span
	if span == nil {
		return
	}
	t.span = nil

	span.SetAttributes(
		attribute.Int("labeled_input.rounds", stats.Rounds),
		attribute.Int("labeled_input.instances", stats.Instances),
		attribute.Int("labeled_input.slots", stats.Slots),
		attribute.Int("labeled_input.callbacks", stats.Callbacks),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

var _ runtime.Observer = (*Tracer)(nil)
