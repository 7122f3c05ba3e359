package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"gekko/internal/agent"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, `{"error":"message is required"}`, http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	stream := newEventStream(w)

	err := s.runner.Run(r.Context(), req.SessionID, req.Message, func(ev agent.Event) {
		stream.forward(ev, req.SessionID)
	})

	if err != nil {
		stream.fail(err.Error())
	}
}

type capabilityInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      any    `json:"schema"`
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	out := make([]capabilityInfo, 0, len(s.capabilities))
	for _, c := range s.capabilities {
		out = append(out, capabilityInfo{
			Name:        c.Name(),
			Description: c.Description(),
			Schema:      c.InputSchema(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"capabilities": out})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
