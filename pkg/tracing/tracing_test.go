package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	SetTracer(provider.Tracer("test"))
	t.Cleanup(func() {
		SetTracer(nil)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestHelpersWithoutTracer(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
	assert.Empty(t, Propagation(ctx))
	RecordError(span, errors.New("ignored"))
	RecordError(nil, errors.New("ignored"))
}

func TestStartSpanRecordsPairAttributes(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "reconciler.ResolveAssociatedRecord", PairAttrs("contact", "7", "12")...)
	traceID := GetTraceID(ctx)
	headers := Propagation(ctx)
	RecordError(span, errors.New("boom"))
	span.End()

	require.Len(t, traceID, 32)
	assert.Len(t, GetSpanID(ctx), 16)
	require.Contains(t, headers, "traceparent")
	assert.True(t, strings.Contains(headers["traceparent"], traceID))
	assert.NotContains(t, headers, "tracestate")

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "contact", attrs[string(AttrKind)])
	assert.Equal(t, "7", attrs[string(AttrVendorID)])
	assert.Equal(t, "12", attrs[string(AttrTourID)])
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}
