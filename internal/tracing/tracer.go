// Package tracing wraps OpenTelemetry for the sync client. A queue pass is a
// "sync.pass" span with one "sync.item" child per processed item.
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/models"
)

// TracerName is the instrumentation scope of every span.
const TracerName = "github.com/MKhiriev/go-fuel-sync"

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// Tracer creates sync spans. The zero value is not usable; see [New] and
// [Noop].
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// New builds a Tracer from cfg. A disabled config or the "none" exporter
// yields a no-op tracer. out receives stdout exporter output; nil means
// os.Stdout.
func New(cfg config.Tracing, serviceName string, out io.Writer) (*Tracer, error) {
	if !cfg.Enabled || cfg.Exporter == "" || cfg.Exporter == ExporterNone {
		return Noop(), nil
	}
	if cfg.Exporter != ExporterStdout {
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
	}

	opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	if out != nil {
		opts = append(opts, stdouttrace.WithWriter(out))
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)

	return NewWithProvider(provider), nil
}

// NewWithProvider wraps an existing SDK provider.
func NewWithProvider(provider *sdktrace.TracerProvider) *Tracer {
	return &Tracer{tracer: provider.Tracer(TracerName), provider: provider}
}

// Noop returns a Tracer that records nothing.
func Noop() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
}

// Shutdown flushes and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}

// Span is a started sync span.
type Span struct {
	span trace.Span
}

// StartPass starts the span of one queue pass over total items.
func (t *Tracer) StartPass(ctx context.Context, total int) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, "sync.pass",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("sync.pass.total", total)),
	)
	return ctx, &Span{span: span}
}

// StartItem starts the span of applying a single queue item.
func (t *Tracer) StartItem(ctx context.Context, item models.QueueItem) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, "sync.item",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("sync.item.id", item.ID),
			attribute.String("sync.item.kind", string(item.Kind)),
			attribute.Int("sync.item.retry_count", item.RetryCount),
		),
	)
	return ctx, &Span{span: span}
}

// SetResult records the pass counters.
func (s *Span) SetResult(result models.PassResult) {
	s.span.SetAttributes(
		attribute.Int("sync.pass.processed", result.Processed),
		attribute.Int("sync.pass.failed", result.Failed),
		attribute.Int("sync.pass.dropped", result.Dropped),
	)
}

// End ends the span, with Error status when err is non-nil.
func (s *Span) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
