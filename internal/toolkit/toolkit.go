package toolkit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Tool is a single operation exposed by a plugin. Raw tool names are
// namespaced with the plugin name, e.g. "coingecko.get_trending_coins".
// Execute returns either a plain string or a structured value that the
// capability layer serializes for the agent.
type Tool interface {
	Name() string
	Description() string
	InputSchema() any
	Execute(ctx context.Context, input string) (any, error)
}

// Plugin provides a batch of related tools.
type Plugin interface {
	Name() string
	Tools(ctx context.Context) ([]Tool, error)
}

const (
	// maxDescriptionLen bounds tool descriptions before they reach the
	// model; anything longer is cut and marked.
	maxDescriptionLen = 1000
	truncationMarker  = "... (truncated)"
)

// Discover collects the tools of every plugin in order. Descriptions longer
// than maxDescriptionLen are truncated with a warning. A failing plugin
// aborts discovery.
func Discover(ctx context.Context, plugins ...Plugin) ([]Tool, error) {
	var out []Tool
	for _, p := range plugins {
		tools, err := p.Tools(ctx)
		if err != nil {
			return nil, fmt.Errorf("discovering %s tools: %w", p.Name(), err)
		}
		for _, t := range tools {
			t = clampDescription(t)
			slog.Info("tool discovered", "plugin", p.Name(), "name", t.Name())
			out = append(out, t)
		}
	}
	return out, nil
}

// Exclude drops every tool whose raw name contains substr.
func Exclude(tools []Tool, substr string) []Tool {
	out := make([]Tool, 0, len(tools))
	for _, t := range tools {
		if strings.Contains(t.Name(), substr) {
			slog.Info("tool excluded", "name", t.Name(), "match", substr)
			continue
		}
		out = append(out, t)
	}
	return out
}

type clampedTool struct {
	Tool
	description string
}

func (t *clampedTool) Description() string { return t.description }

func clampDescription(t Tool) Tool {
	d := t.Description()
	if len(d) <= maxDescriptionLen {
		return t
	}
	slog.Warn("tool description too long, truncating", "name", t.Name(), "length", len(d))

	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := maxDescriptionLen
	for cut > 0 && !utf8.RuneStart(d[cut]) {
		cut--
	}
	return &clampedTool{Tool: t, description: d[:cut] + truncationMarker}
}
