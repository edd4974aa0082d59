// Package server is the HTTP surface of the chat backend: it owns the
// request coordinator that ties sessions, intent detection, workflow
// execution and media extraction together.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sorennelson/the-preview-crew/internal/crew"
	"github.com/sorennelson/the-preview-crew/internal/session"
)

// Engine runs one workflow invocation to completion. *crew.Crew implements
// it; tests substitute fakes.
type Engine interface {
	KickoffChat(ctx context.Context, in crew.Inputs, n crew.Notifier) (string, error)
	KickoffPlaylist(ctx context.Context, in crew.Inputs, n crew.Notifier) (string, error)
}

type Server struct {
	store          *session.Store
	engine         Engine
	fileDir        string
	allowedOrigins []string
	port           int
	httpServer     *http.Server
	now            func() time.Time
}

func NewServer(store *session.Store, engine Engine, fileDir string, allowedOrigins []string, port int) *Server {
	return &Server{
		store:          store,
		engine:         engine,
		fileDir:        fileDir,
		allowedOrigins: allowedOrigins,
		port:           port,
		now:            time.Now,
	}
}

// Handler builds the routing table. Exposed separately from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/history/", s.handleHistory)
	mux.HandleFunc("/api/session/", s.handleDeleteSession)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/files/", http.StripPrefix("/files/", http.FileServer(http.Dir(s.fileDir))))

	return withLogging(withCORS(mux, s.allowedOrigins))
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.port),
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	log.Printf("🌐 Starting The Preview API on http://localhost:%d", s.port)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if id == "" || id == r.URL.Path {
		writeError(w, http.StatusBadRequest, "session id is required in path /api/history/{session_id}")
		return
	}

	msgs, err := s.store.Messages(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/session/")
	if id == "" || id == r.URL.Path {
		writeError(w, http.StatusBadRequest, "session id is required in path /api/session/{session_id}")
		return
	}

	s.store.Delete(id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"active_sessions": s.store.Count(),
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withCORS(next http.Handler, origins []string) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
