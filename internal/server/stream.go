package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sorennelson/the-preview-crew/internal/session"
	"github.com/sorennelson/the-preview-crew/internal/stream"
)

// bridgeNotifier adapts a stream.Bridge to the workflow's Notifier interface.
type bridgeNotifier struct {
	bridge *stream.Bridge
}

func (n bridgeNotifier) Notify(eventType, message string) {
	n.bridge.Publish(stream.Event{Type: eventType, Message: message})
}

// streamChat is the SSE path: the workflow runs in its own goroutine and
// publishes progress over a bridge while this handler relays frames to the
// client. The outward sequence is connected, mode, zero or more progress
// frames, then exactly one complete or error frame.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, req chatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := s.intake(req)
	log.Printf("📝 Session ID: %s (streaming)", sessionID)

	writeFrame(w, flusher, map[string]any{"type": "connected", "session_id": sessionID})

	mode := s.resolveMode(req)
	log.Printf("🎯 Mode detected: %s", mode)
	writeFrame(w, flusher, map[string]any{"type": "mode", "mode": string(mode)})

	bridge := stream.NewBridge()
	defer bridge.Close()

	// The workflow is detached from the request context: a client disconnect
	// abandons the consumer but lets the invocation run to completion, its
	// remaining events discarded by Close.
	workCtx := context.WithoutCancel(r.Context())
	go func() {
		result, err := s.dispatch(workCtx, sessionID, mode, req, bridgeNotifier{bridge})
		if err != nil {
			bridge.Publish(stream.Event{Type: stream.EventError, Err: err.Error()})
			return
		}
		bridge.Publish(stream.Event{Type: stream.EventCrewDone, Result: result})
	}()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("🔌 Client disconnected from session %s", sessionID)
			return

		case ev := <-bridge.Events():
			switch ev.Type {
			case stream.EventCrewDone:
				cleaned, images := s.complete(sessionID, ev.Result)
				if images == nil {
					images = []string{}
				}
				writeFrame(w, flusher, map[string]any{
					"type":       "complete",
					"response":   cleaned,
					"images":     images,
					"session_id": sessionID,
					"timestamp":  s.now().Format(time.RFC3339),
				})
				return

			case stream.EventError:
				s.store.PopLastIfRole(sessionID, session.RoleUser)
				log.Printf("❌ Streaming error: %s", ev.Err)
				writeFrame(w, flusher, map[string]any{"type": "error", "error": ev.Err})
				return

			default:
				writeFrame(w, flusher, map[string]any{"type": ev.Type, "message": ev.Message})
			}
		}
	}
}

func writeFrame(w http.ResponseWriter, flusher http.Flusher, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
