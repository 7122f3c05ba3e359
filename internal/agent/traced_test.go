package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exporter
}

func TestTracedCapabilityTagsSessionID(t *testing.T) {
	exporter := recordSpans(t)

	ctx := ContextWithSessionID(context.Background(), "session-7")
	got, err := withTrace(&stubCapability{name: "coingecko_get_search", result: "ok"}).Execute(ctx, "{}")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "coingecko_get_search", spans[0].Name)

	var sessionID string
	for _, attr := range spans[0].Attributes {
		if attr.Key == "session.id" {
			sessionID = attr.Value.AsString()
		}
	}
	assert.Equal(t, "session-7", sessionID)
}

func TestTracedCapabilityWithoutSession(t *testing.T) {
	exporter := recordSpans(t)

	_, err := withTrace(&stubCapability{name: "evm_get_balance", result: "{}"}).Execute(context.Background(), "{}")
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	for _, attr := range spans[0].Attributes {
		assert.NotEqual(t, "session.id", string(attr.Key))
	}
}

func TestSessionIDFromContextDefaultsEmpty(t *testing.T) {
	assert.Equal(t, "", SessionIDFromContext(context.Background()))
	ctx := ContextWithSessionID(context.Background(), "s1")
	assert.Equal(t, "s1", SessionIDFromContext(ctx))
}
