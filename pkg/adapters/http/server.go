package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/aretw0/debot/internal/logging"
	"github.com/aretw0/debot/internal/presentation/graph"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// GraphSource fetches the context graph of the served debot.
type GraphSource func(ctx context.Context) (domain.Graph, error)

// Server exposes stored sessions and the debot graph over HTTP.
type Server struct {
	Store  ports.CheckpointStore
	Graph  GraphSource
	Logger *slog.Logger
}

// SessionSummary is one entry of GET /sessions.
type SessionSummary struct {
	ID        string         `json:"id"`
	Address   domain.Address `json:"address,omitempty"`
	Current   string         `json:"current,omitempty"`
	Previous  string         `json:"previous,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// ContextView is the JSON form of a context in GET /graph.
type ContextView struct {
	ID      uint8        `json:"id"`
	Desc    string       `json:"desc"`
	Actions []ActionView `json:"actions"`
}

// ActionView is the JSON form of an action in GET /graph.
type ActionView struct {
	Name    string `json:"name"`
	Desc    string `json:"desc,omitempty"`
	Kind    string `json:"kind"`
	To      string `json:"to"`
	Instant bool   `json:"instant,omitempty"`
}

// NewHandler creates the HTTP handler. A nil store answers session routes
// with 404; a nil graph source does the same for graph routes.
func NewHandler(store ports.CheckpointStore, source GraphSource, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{Store: store, Graph: source, Logger: logger}

	r := chi.NewRouter()
	r.Get("/sessions", s.ListSessions)
	r.Get("/sessions/{id}", s.GetSession)
	r.Delete("/sessions/{id}", s.DeleteSession)
	r.Get("/graph", s.GetGraph)
	r.Get("/graph.mmd", s.GetMermaid)
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	ids, err := s.Store.List(r.Context())
	if err != nil {
		s.fail(w, "list sessions", err)
		return
	}
	sort.Strings(ids)

	out := make([]SessionSummary, 0, len(ids))
	for _, id := range ids {
		summary := SessionSummary{ID: id}
		cp, err := s.Store.Load(r.Context(), id)
		if err == nil {
			updated := cp.UpdatedAt
			summary.Address = cp.Address
			summary.Current = cp.Current.String()
			summary.Previous = cp.Previous.String()
			summary.UpdatedAt = &updated
		} else if !errors.Is(err, domain.ErrCheckpointNotFound) {
			s.Logger.Warn("failed to load session", "session_id", id, "err", err)
		}
		out = append(out, summary)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	cp, err := s.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrCheckpointNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, "load session", err)
		return
	}
	s.writeJSON(w, http.StatusOK, cp)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.fail(w, "delete session", err)
		return
	}
	s.Logger.Info("session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.fetchGraph(w, r)
	if !ok {
		return
	}
	out := make([]ContextView, 0, len(g))
	for _, c := range g {
		view := ContextView{ID: c.ID, Desc: c.Desc, Actions: make([]ActionView, 0, len(c.Actions))}
		for _, a := range c.Actions {
			view.Actions = append(view.Actions, ActionView{
				Name:    a.Name,
				Desc:    a.Desc,
				Kind:    domain.KindName(a.Kind),
				To:      a.To.String(),
				Instant: a.Instant,
			})
		}
		out = append(out, view)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetMermaid handles GET /graph.mmd. The session query parameter highlights
// the position of a stored session.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	g, ok := s.fetchGraph(w, r)
	if !ok {
		return
	}
	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session"); id != "" {
		if !s.requireStore(w) {
			return
		}
		cp, err := s.Store.Load(r.Context(), id)
		if errors.Is(err, domain.ErrCheckpointNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			s.fail(w, "load session", err)
			return
		}
		overlay = &graph.Overlay{Current: cp.Current, Previous: cp.Previous}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(g, overlay)))
}

func (s *Server) fetchGraph(w http.ResponseWriter, r *http.Request) (domain.Graph, bool) {
	if s.Graph == nil {
		http.Error(w, "no debot configured", http.StatusNotFound)
		return nil, false
	}
	g, err := s.Graph(r.Context())
	if err != nil {
		s.fail(w, "fetch graph", err)
		return nil, false
	}
	return g, true
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.Store == nil {
		http.Error(w, "no checkpoint store configured", http.StatusNotFound)
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.Logger.Error("request failed", "op", op, "err", err)
	http.Error(w, op+": "+err.Error(), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
