package agent

import "context"

type EventType string

const (
	EventToken      EventType = "token"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventDone       EventType = "done"
	EventError      EventType = "error"
)

type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

type Runner interface {
	Run(ctx context.Context, sessionID string, message string, emit func(Event)) error
}

// Capability is the unit of functionality the agent exposes. Execute always
// resolves to text; tool-level failures are embedded in the result so the
// serving loop never aborts on them.
type Capability interface {
	Name() string
	Description() string
	InputSchema() any
	Execute(ctx context.Context, input string) (string, error)
}
