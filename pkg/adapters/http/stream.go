package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/syllabus/internal/logging"
	"github.com/aretw0/syllabus/pkg/editor"
	"github.com/aretw0/syllabus/pkg/media"
	"github.com/go-chi/chi/v5"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast never blocks: a subscriber with a full buffer misses the message.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[sessionID]; ok {
		sm.logger.Debug("StreamManager: Broadcasting", "session_id", sessionID, "subscribers", len(subs), "payload_size", len(msg))
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
			}
		}
	}
}

// SubscribeEvents handles the GET /drafts/{draftID}/events request (SSE).
// The optional "watch" query parameter is a comma separated list of event
// kinds to forward; the closed event is always forwarded and ends the stream.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sessionID := sess.ID()

	watch := make(map[editor.EventKind]bool)
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, kind := range strings.Split(raw, ",") {
			watch[editor.EventKind(strings.TrimSpace(kind))] = true
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev editor.Event
			if err := json.Unmarshal([]byte(msg), &ev); err != nil {
				continue
			}
			if len(watch) > 0 && !watch[ev.Kind] && ev.Kind != editor.EventClosed {
				continue
			}

			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
			if ev.Kind == editor.EventClosed {
				return
			}
		}
	}
}

// AttachImage handles the multipart POST .../lessons/{lessonID}/image
// request. The "file" part is streamed to the ingestor without a size
// limit. The image is applied only if the lesson is still an image-text
// lesson when the read completes.
func (s *Server) AttachImage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "Invalid multipart body", http.StatusBadRequest)
		s.logger.Warn("AttachImage: Invalid multipart body", "error", err)
		return
	}
	var part *multipart.Part
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			http.Error(w, "Missing file field", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "Invalid multipart body", http.StatusBadRequest)
			s.logger.Warn("AttachImage: Invalid multipart body", "error", err)
			return
		}
		if p.FormName() == "file" {
			part = p
			break
		}
		p.Close()
	}
	defer part.Close()

	applied, err := sess.AttachImage(r.Context(), chi.URLParam(r, "moduleID"), chi.URLParam(r, "lessonID"),
		media.NamedReader{Reader: part, FileName: part.FileName()})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}
