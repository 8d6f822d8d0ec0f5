// Package otelhelper provides distributed tracing bootstrap for workflow monitoring.
package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Common attribute keys.
	WorkflowIDKey  = "credentis.workflow.id"
	TenantIDKey    = "credentis.tenant.id"
	RunIDKey       = "credentis.run.id"
	TriggerIDKey   = "credentis.trigger.id"
	TriggerTypeKey = "credentis.trigger.type"
	ActionNameKey  = "credentis.action.name"
	StepIndexKey   = "credentis.step.index"
	SubjectIDKey   = "credentis.subject.id"
)

const tracerName = "credentis"

// Tracer returns the process tracer. Without Setup this resolves against
// the default no-op provider, so library code can trace unconditionally.
//
// nolint:ireturn // Returning interface is intentional for OpenTelemetry tracing
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Setup installs an OTLP/HTTP trace provider as the global provider.
func Setup(ctx context.Context, serviceName string) (*sdktrace.TracerProvider, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}))

	return tp, nil
}

// nolint:ireturn,spancheck // Returning interface is intentional for OpenTelemetry tracing
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
