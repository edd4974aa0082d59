package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sorennelson/the-preview-crew/internal/crew"
	"github.com/sorennelson/the-preview-crew/internal/intent"
	"github.com/sorennelson/the-preview-crew/internal/media"
	"github.com/sorennelson/the-preview-crew/internal/session"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Mode      string `json:"mode,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	Stream    bool   `json:"stream,omitempty"`
}

type chatResponse struct {
	Response  string   `json:"response"`
	SessionID string   `json:"session_id"`
	Mode      string   `json:"mode"`
	Timestamp string   `json:"timestamp"`
	Images    []string `json:"images,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if req.Stream {
		s.streamChat(w, r, req)
		return
	}
	s.syncChat(w, r, req)
}

// syncChat is the single-response path: run the workflow to completion, then
// answer with one JSON document.
func (s *Server) syncChat(w http.ResponseWriter, r *http.Request, req chatRequest) {
	sessionID := s.intake(req)
	log.Printf("📝 Session ID: %s", sessionID)

	mode := s.resolveMode(req)
	log.Printf("🎯 Mode detected: %s", mode)

	result, err := s.dispatch(r.Context(), sessionID, mode, req, nil)
	if err != nil {
		s.store.PopLastIfRole(sessionID, session.RoleUser)
		log.Printf("❌ Error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cleaned, images := s.complete(sessionID, result)
	log.Printf("🖼️  Images in response: %d", len(images))

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  cleaned,
		SessionID: sessionID,
		Mode:      string(mode),
		Timestamp: s.now().Format(time.RFC3339),
		Images:    images,
	})
}

// intake resolves the session and records the user's turn.
func (s *Server) intake(req chatRequest) string {
	sess := s.store.GetOrCreate(req.SessionID)
	_ = s.store.AppendMessage(sess.ID, session.Message{
		Role:      session.RoleUser,
		Content:   req.Message,
		Timestamp: s.now(),
		ImageURL:  req.ImageURL,
	})
	return sess.ID
}

func (s *Server) resolveMode(req chatRequest) intent.Mode {
	if forced, ok := intent.Parse(req.Mode); ok {
		return forced
	}
	return intent.Detect(req.Message)
}

// dispatch assembles the invocation request and runs the workflow matching
// the mode.
func (s *Server) dispatch(ctx context.Context, sessionID string, mode intent.Mode, req chatRequest, n crew.Notifier) (string, error) {
	in := crew.Inputs{
		Subject:     req.Message,
		Date:        s.now().Format("January 02, 2006"),
		ChatHistory: s.historyText(sessionID),
		ImageURL:    req.ImageURL,
	}

	if mode == intent.ModePlaylist {
		return s.engine.KickoffPlaylist(ctx, in, n)
	}
	return s.engine.KickoffChat(ctx, in, n)
}

// historyText renders every prior turn, excluding the current user message,
// as "<Role>: <content>" lines.
func (s *Server) historyText(sessionID string) string {
	msgs, err := s.store.Messages(sessionID)
	if err != nil || len(msgs) <= 1 {
		return ""
	}

	lines := make([]string, 0, len(msgs)-1)
	for _, m := range msgs[:len(msgs)-1] {
		lines = append(lines, capitalize(string(m.Role))+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// complete extracts media references from the raw workflow output and records
// the assistant's turn.
func (s *Server) complete(sessionID, raw string) (string, []string) {
	cleaned, images := media.Extract(raw)
	_ = s.store.AppendMessage(sessionID, session.Message{
		Role:      session.RoleAssistant,
		Content:   cleaned,
		Timestamp: s.now(),
		Images:    images,
	})
	return cleaned, images
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
