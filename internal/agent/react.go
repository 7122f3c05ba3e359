package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"gekko/internal/llm"
	"gekko/internal/trace"
)

// DefaultSystemPrompt is the fixed instruction set the agent serves with.
const DefaultSystemPrompt = "You are gekko, a cryptocurrency market analyst. " +
	"Use the available tools to fetch live market data before answering. " +
	"Quote figures exactly as the tools return them, and say so when a tool " +
	"result does not contain what the user asked for."

type ReactOption func(*ReactRunner)

func WithSystemPrompt(s string) ReactOption {
	return func(r *ReactRunner) { r.systemPrompt = s }
}

// ReactRunner drives a ReAct (Reason + Act) loop over the registered
// capability set. Each Run is self-contained: the only state shared between
// concurrent runs is the read-only capability table built at registration
// time.
type ReactRunner struct {
	provider     llm.Provider
	systemPrompt string

	capabilities map[string]Capability
	tools        []responses.ToolUnionParam
}

func NewReactRunner(provider llm.Provider, opts ...ReactOption) *ReactRunner {
	r := &ReactRunner{
		provider:     provider,
		systemPrompt: DefaultSystemPrompt,
		capabilities: make(map[string]Capability),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterCapabilities installs the full capability set in one batch. It
// must be called once before serving; a duplicate name or an empty set is a
// startup error.
func (r *ReactRunner) RegisterCapabilities(caps []Capability) error {
	if len(caps) == 0 {
		return fmt.Errorf("no capabilities to register")
	}
	for _, c := range caps {
		if _, ok := r.capabilities[c.Name()]; ok {
			return fmt.Errorf("duplicate capability name: %s", c.Name())
		}
		r.capabilities[c.Name()] = c

		schema, _ := c.InputSchema().(map[string]any)
		r.tools = append(r.tools, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        c.Name(),
				Description: openai.String(c.Description()),
				Parameters:  schema,
				Strict:      openai.Bool(true),
			},
		})
	}
	slog.Info("capabilities registered", "count", len(caps))
	return nil
}

// Capabilities returns the registered set, for listings.
func (r *ReactRunner) Capabilities() []Capability {
	out := make([]Capability, 0, len(r.capabilities))
	for _, c := range r.capabilities {
		out = append(out, c)
	}
	return out
}

func (r *ReactRunner) Run(ctx context.Context, sessionID string, message string, emit func(Event)) error {
	ctx = ContextWithSessionID(ctx, sessionID)

	truncatedMsg := message
	if len(truncatedMsg) > 200 {
		truncatedMsg = truncatedMsg[:200]
	}
	ctx, span := trace.Tracer().Start(ctx, "agent.react.run",
		oteltrace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("user.message", truncatedMsg),
		),
	)
	defer span.End()

	input := []responses.ResponseInputItemUnionParam{
		responses.ResponseInputItemParamOfMessage(r.systemPrompt, "developer"),
		responses.ResponseInputItemParamOfMessage(message, "user"),
	}

	if err := r.loop(ctx, input, emit); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	emit(Event{Type: EventDone})
	return nil
}

// loop is the core ReAct cycle: one LLM call per iteration, tool results fed
// back into context, exiting when the model stops calling tools or the
// context is cancelled.
func (r *ReactRunner) loop(ctx context.Context, input []responses.ResponseInputItemUnionParam, emit func(Event)) error {
	iteration := 0

	for {
		if err := ctx.Err(); err != nil {
			emit(Event{Type: EventError, Data: "request cancelled"})
			return err
		}

		llmCtx, llmSpan := trace.Tracer().Start(ctx, "llm.react",
			oteltrace.WithAttributes(attribute.Int("llm.iteration", iteration)),
		)

		resp, err := r.provider.ChatStream(llmCtx, input, r.tools, func(token string) {
			emit(Event{Type: EventToken, Data: token})
		})
		if err == nil && resp == nil {
			err = fmt.Errorf("model stream ended without a completed response")
		}
		if err != nil {
			llmSpan.RecordError(err)
			llmSpan.SetStatus(codes.Error, err.Error())
			llmSpan.End()
			emit(Event{Type: EventError, Data: err.Error()})
			return err
		}

		llmSpan.SetAttributes(
			attribute.String("llm.model", string(resp.Model)),
			attribute.Int64("llm.input_tokens", resp.Usage.InputTokens),
			attribute.Int64("llm.output_tokens", resp.Usage.OutputTokens),
		)
		llmSpan.End()
		iteration++

		input = append(input, llm.OutputToInput(resp.Output)...)

		var calls []responses.ResponseOutputItemUnion
		for _, item := range resp.Output {
			if item.Type == "function_call" {
				calls = append(calls, item)
			}
		}

		// No tool calls: the model considers the task done.
		if len(calls) == 0 {
			return nil
		}

		input = append(input, r.act(ctx, calls, emit)...)
	}
}

// act runs capability calls in parallel and formats the results as input
// items for the next LLM turn. Capability failures arrive as text results,
// so they flow back into the model's context instead of aborting the run.
// All events are emitted from this goroutine: emit callbacks are not safe
// for concurrent use.
func (r *ReactRunner) act(ctx context.Context, calls []responses.ResponseOutputItemUnion, emit func(Event)) []responses.ResponseInputItemUnionParam {
	for _, call := range calls {
		fc := call.AsFunctionCall()
		emit(Event{Type: EventToolCall, Data: map[string]string{
			"name":      fc.Name,
			"arguments": fc.Arguments,
		}})
	}

	var wg sync.WaitGroup
	outputs := make([]string, len(calls))

	for i, call := range calls {
		wg.Add(1)
		go func(i int, call responses.ResponseOutputItemUnion) {
			defer wg.Done()
			fc := call.AsFunctionCall()

			cap, ok := r.capabilities[fc.Name]
			if !ok {
				slog.Warn("unknown capability call", "name", fc.Name)
				outputs[i] = "error: unknown capability"
				return
			}
			outputs[i], _ = withTrace(cap).Execute(ctx, fc.Arguments)
		}(i, call)
	}
	wg.Wait()

	results := make([]responses.ResponseInputItemUnionParam, len(calls))
	for i, call := range calls {
		fc := call.AsFunctionCall()
		results[i] = responses.ResponseInputItemParamOfFunctionCallOutput(fc.CallID, outputs[i])
		emit(Event{Type: EventToolResult, Data: map[string]string{
			"name":    fc.Name,
			"content": outputs[i],
		}})
	}
	return results
}
