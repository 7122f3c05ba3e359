package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gekko/internal/agent"
	"gekko/internal/channels"
)

// Server is the agent's serving loop: it accepts chat requests, streams
// agent events back over SSE and lists the registered capability set.
type Server struct {
	runner       agent.Runner
	capabilities []agent.Capability
	token        string
	mux          *http.ServeMux
}

// NewServer wires the routes. token guards the /v1 API; healthz stays open.
func NewServer(runner agent.Runner, token string, capabilities []agent.Capability, chs ...channels.Channel) *Server {
	s := &Server{
		runner:       runner,
		capabilities: capabilities,
		token:        token,
		mux:          http.NewServeMux(),
	}
	s.routes()
	for _, ch := range chs {
		ch.RegisterRoutes(s.mux)
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /v1/chat", s.auth(s.handleChat))
	s.mux.HandleFunc("GET /v1/capabilities", s.auth(s.handleCapabilities))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully. A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down gateway")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
