package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"gekko/internal/agent"
)

// eventStream writes agent events to one chat response as SSE frames.
// Tool calls can finish on separate goroutines, so every write goes
// through the mutex to keep frames intact on the wire.
type eventStream struct {
	mu        sync.Mutex
	w         http.ResponseWriter
	rc        *http.ResponseController
	sentError bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &eventStream{
		w:  w,
		rc: http.NewResponseController(w),
	}
}

// forward maps one agent event onto its SSE frame.
func (s *eventStream) forward(ev agent.Event, sessionID string) {
	switch ev.Type {
	case agent.EventToken:
		s.send("token", map[string]string{"content": ev.Data.(string)})
	case agent.EventToolCall:
		s.send("tool_call", ev.Data)
	case agent.EventToolResult:
		s.send("tool_result", ev.Data)
	case agent.EventError:
		s.fail(ev.Data.(string))
	case agent.EventDone:
		s.send("done", map[string]string{"session_id": sessionID})
	}
}

// fail sends an error frame unless one was already sent for this stream.
func (s *eventStream) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sentError {
		return
	}
	s.sentError = true
	s.write("error", map[string]string{"error": msg})
}

func (s *eventStream) send(event string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(event, data)
}

func (s *eventStream) write(event string, data any) {
	b, err := json.Marshal(data)
	if err != nil {
		slog.Error("encoding sse frame", "event", event, "error", err)
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, b)
	if err := s.rc.Flush(); err != nil {
		slog.Debug("flushing sse frame", "error", err)
	}
}
