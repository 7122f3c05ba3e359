package capability

import (
	"log/slog"

	"gekko/internal/toolkit"
)

// Registry maps sanitized capability names back to the tools they were
// adapted from. It is populated during bootstrap and read-only afterwards,
// so concurrent capability runs need no locking.
type Registry struct {
	tools map[string]toolkit.Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]toolkit.Tool)}
}

// Register inserts the tool under its sanitized name and returns that name.
// Distinct raw names can collide after sanitization; the last registration
// wins and a warning is logged.
func (r *Registry) Register(t toolkit.Tool) string {
	name := SanitizeName(t.Name())
	if prev, ok := r.tools[name]; ok {
		slog.Warn("capability name collision, keeping last registration",
			"name", name, "previous", prev.Name(), "replacement", t.Name())
	}
	r.tools[name] = t
	return name
}

func (r *Registry) Lookup(name string) (toolkit.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Len() int {
	return len(r.tools)
}
