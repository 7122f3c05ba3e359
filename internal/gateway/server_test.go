package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gekko/internal/agent"
)

type stubRunner struct {
	events []agent.Event
	err    error
	gotMsg string
}

func (r *stubRunner) Run(ctx context.Context, sessionID string, message string, emit func(agent.Event)) error {
	r.gotMsg = message
	for _, ev := range r.events {
		emit(ev)
	}
	return r.err
}

type stubCap struct{ name string }

func (c *stubCap) Name() string        { return c.name }
func (c *stubCap) Description() string { return "desc of " + c.name }
func (c *stubCap) InputSchema() any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (c *stubCap) Execute(ctx context.Context, input string) (string, error) {
	return "", nil
}

const testToken = "platform-secret"

func newTestServer(runner agent.Runner, caps ...agent.Capability) *Server {
	return NewServer(runner, testToken, caps)
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	srv := newTestServer(&stubRunner{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRejectsMissingToken(t *testing.T) {
	srv := newTestServer(&stubRunner{})
	req := httptest.NewRequest(http.MethodGet, "/v1/capabilities", nil)
	rec := httptest.NewRecorder()

	srv.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCapabilitiesListing(t *testing.T) {
	srv := newTestServer(&stubRunner{},
		&stubCap{name: "coingecko_get_trending_coins"},
		&stubCap{name: "coingecko_get_coin_prices"},
	)
	req := httptest.NewRequest(http.MethodGet, "/v1/capabilities", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	srv.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Capabilities []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Capabilities, 2)
	assert.Equal(t, "coingecko_get_trending_coins", body.Capabilities[0].Name)
}

func TestChatStreamsEvents(t *testing.T) {
	runner := &stubRunner{events: []agent.Event{
		{Type: agent.EventToken, Data: "bitcoin "},
		{Type: agent.EventToken, Data: "is up"},
		{Type: agent.EventDone},
	}}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"session_id":"s1","message":"how is bitcoin doing?"}`))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	srv.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	out := rec.Body.String()
	assert.Contains(t, out, "event: token")
	assert.Contains(t, out, "bitcoin ")
	assert.Contains(t, out, "event: done")
	assert.Contains(t, out, `"session_id":"s1"`)
	assert.Equal(t, "how is bitcoin doing?", runner.gotMsg)
}

// concurrentRunner emits tool results from parallel goroutines, the way a
// multi-tool agent turn does.
type concurrentRunner struct{ results int }

func (r *concurrentRunner) Run(ctx context.Context, sessionID string, message string, emit func(agent.Event)) error {
	var wg sync.WaitGroup
	for i := 0; i < r.results; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emit(agent.Event{Type: agent.EventToolResult, Data: map[string]string{
				"name":    fmt.Sprintf("coingecko_get_coin_prices_%d", i),
				"content": "ok",
			}})
		}(i)
	}
	wg.Wait()
	emit(agent.Event{Type: agent.EventDone})
	return nil
}

func TestChatKeepsFramesIntactUnderConcurrentEmits(t *testing.T) {
	srv := newTestServer(&concurrentRunner{results: 8})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"session_id":"s1","message":"compare these coins"}`))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	srv.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var toolResults int
	for _, frame := range strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n") {
		lines := strings.Split(frame, "\n")
		require.Len(t, lines, 2, "malformed frame: %q", frame)
		require.True(t, strings.HasPrefix(lines[0], "event: "), "malformed frame: %q", frame)
		require.True(t, strings.HasPrefix(lines[1], "data: "), "malformed frame: %q", frame)

		var data map[string]string
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &data))

		if lines[0] == "event: tool_result" {
			toolResults++
			assert.Equal(t, "ok", data["content"])
		}
	}
	assert.Equal(t, 8, toolResults)
}

func TestChatSendsSingleErrorFrame(t *testing.T) {
	runner := &stubRunner{
		events: []agent.Event{{Type: agent.EventError, Data: "model stream ended without a completed response"}},
		err:    fmt.Errorf("model stream ended without a completed response"),
	}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"session_id":"s1","message":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	srv.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "event: error"))
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv := newTestServer(&stubRunner{})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"session_id":"s1"}`))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	srv.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatGeneratesSessionID(t *testing.T) {
	runner := &stubRunner{events: []agent.Event{{Type: agent.EventDone}}}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	srv.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"`)
}
