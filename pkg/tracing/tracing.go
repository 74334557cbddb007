// Package tracing opens spans on the process-wide tracer. Until InitProvider
// runs every helper degrades to a no-op, so packages can trace unconditionally.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes shared by reconciler operations.
const (
	AttrKind     = attribute.Key("primrose.kind")
	AttrVendorID = attribute.Key("primrose.vendor_id")
	AttrTourID   = attribute.Key("primrose.tour_id")
)

// PropagationHeaders are the W3C trace context keys carried on outbound
// requests and events, in write order.
var PropagationHeaders = []string{"traceparent", "tracestate"}

var tracer trace.Tracer

func SetTracer(t trace.Tracer) {
	tracer = t
}

func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// PairAttrs tags a span with a record kind and its vendor/tour pair.
func PairAttrs(kind, vendorID, tourID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrKind.String(kind),
		AttrVendorID.String(vendorID),
		AttrTourID.String(tourID),
	}
}

// RecordError marks span failed. nil spans and nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func GetTraceID(ctx context.Context) string {
	sc, ok := activeSpanContext(ctx)
	if !ok {
		return ""
	}
	return sc.TraceID().String()
}

func GetSpanID(ctx context.Context) string {
	sc, ok := activeSpanContext(ctx)
	if !ok {
		return ""
	}
	return sc.SpanID().String()
}

// Propagation returns the trace context headers for ctx. Keys with no value
// are omitted; the map is empty without an active span.
func Propagation(ctx context.Context) map[string]string {
	if _, ok := activeSpanContext(ctx); !ok {
		return map[string]string{}
	}
	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)
	for k, v := range carrier {
		if v == "" {
			delete(carrier, k)
		}
	}
	return carrier
}

func activeSpanContext(ctx context.Context) (trace.SpanContext, bool) {
	if tracer == nil {
		return trace.SpanContext{}, false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	return sc, sc.IsValid()
}
