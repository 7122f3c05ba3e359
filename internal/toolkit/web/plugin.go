package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	bravesearch "github.com/cnosuke/go-brave-search"

	"gekko/internal/toolkit"
)

// Plugin adds a single web search tool backed by Brave Search. It is only
// wired in when a Brave API key is configured.
type Plugin struct {
	brave *bravesearch.Client
}

func NewPlugin(apiKey string) *Plugin {
	client, _ := bravesearch.NewClient(apiKey)
	return &Plugin{brave: client}
}

func (p *Plugin) Name() string { return "web" }

func (p *Plugin) Tools(ctx context.Context) ([]toolkit.Tool, error) {
	return []toolkit.Tool{&searchTool{brave: p.brave}}, nil
}

type searchTool struct {
	brave *bravesearch.Client
}

func (t *searchTool) Name() string { return "web.search" }
func (t *searchTool) Description() string {
	return "Search the web for recent news and articles"
}

func (t *searchTool) InputSchema() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search query",
			},
			"count": map[string]any{
				"type":        "number",
				"description": "Number of results to return (default 5, max 20)",
			},
		},
		"required":             []string{"query", "count"},
		"additionalProperties": false,
	}
}

func (t *searchTool) Execute(ctx context.Context, input string) (any, error) {
	var args struct {
		Query string `json:"query"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return nil, fmt.Errorf("parsing search input: %w", err)
	}
	if args.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if args.Count <= 0 {
		args.Count = 5
	}
	if args.Count > 20 {
		args.Count = 20
	}

	slog.Debug("web: searching", "query", args.Query, "count", args.Count)

	resp, err := t.brave.WebSearch(ctx, args.Query, &bravesearch.WebSearchParams{
		Count: args.Count,
	})
	if err != nil {
		return nil, fmt.Errorf("brave search: %w", err)
	}

	results := resp.GetWebResults()
	if len(results) == 0 {
		return "No results found.", nil
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "%s\n%s\n%s", r.Title, r.URL, r.Description)
	}
	return b.String(), nil
}
