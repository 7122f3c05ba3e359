package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gekko/internal/toolkit"
)

// Capability is a tool adapted for the agent runtime: a sanitized public
// name, a description, an input schema and an Execute that always resolves
// to text. Tool failures are reported inside the text result, never as an
// error, so a single bad call cannot take down the serving loop.
type Capability struct {
	name        string
	description string
	schema      any
	registry    *Registry
}

// Adapt wraps a tool as a capability dispatching through the registry. The
// tool must already be registered (or be registered before the first run)
// under the same sanitized name.
func Adapt(t toolkit.Tool, registry *Registry) *Capability {
	return &Capability{
		name:        SanitizeName(t.Name()),
		description: t.Description(),
		schema:      t.InputSchema(),
		registry:    registry,
	}
}

func (c *Capability) Name() string        { return c.name }
func (c *Capability) Description() string { return c.description }
func (c *Capability) InputSchema() any    { return c.schema }

// Execute resolves the capability's tool via the registry and runs it.
// The returned error is always nil.
func (c *Capability) Execute(ctx context.Context, input string) (string, error) {
	tool, ok := c.registry.Lookup(c.name)
	if !ok {
		slog.Error("capability has no registered tool", "capability", c.name)
		return c.failure("tool not found"), nil
	}

	result, err := tool.Execute(ctx, input)
	if err != nil {
		slog.Error("capability execution failed", "capability", c.name, "error", err)
		msg := err.Error()
		if msg == "" {
			msg = "Unknown error"
		}
		return c.failure(msg), nil
	}

	text, err := renderResult(result)
	if err != nil {
		slog.Error("capability result not serializable", "capability", c.name, "error", err)
		return c.failure(err.Error()), nil
	}
	return text, nil
}

func (c *Capability) failure(msg string) string {
	return fmt.Sprintf("Error executing %s: %s", c.name, msg)
}

// renderResult turns a tool result into text: strings pass through,
// anything structured is pretty-printed JSON.
func renderResult(v any) (string, error) {
	switch r := v.(type) {
	case nil:
		return "", nil
	case string:
		return r, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing result: %w", err)
	}
	return string(b), nil
}
