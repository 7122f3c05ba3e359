package agent

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"gekko/internal/trace"
)

type tracedCapability struct {
	Capability
}

func withTrace(c Capability) Capability {
	return &tracedCapability{Capability: c}
}

func (t *tracedCapability) Execute(ctx context.Context, input string) (string, error) {
	attrs := []attribute.KeyValue{
		attribute.String("gen_ai.tool.name", t.Name()),
		attribute.String("gen_ai.tool.input", input),
	}
	if sid := SessionIDFromContext(ctx); sid != "" {
		attrs = append(attrs, attribute.String("session.id", sid))
	}

	ctx, span := trace.Tracer().Start(ctx, t.Name(), oteltrace.WithAttributes(attrs...))
	defer span.End()

	result, err := t.Capability.Execute(ctx, input)
	span.SetAttributes(attribute.Int("gen_ai.tool.output_length", len(result)))
	return result, err
}
