// Package http exposes editing sessions over a chi router.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/syllabus"
	"github.com/aretw0/syllabus/internal/logging"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/editor"
	"github.com/aretw0/syllabus/pkg/observability"
	"github.com/aretw0/syllabus/pkg/ports"
	"github.com/aretw0/syllabus/pkg/publish"
	"github.com/aretw0/syllabus/pkg/render/html"
	"github.com/aretw0/syllabus/pkg/reorder"
	"github.com/aretw0/syllabus/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/oklog/ulid/v2"
)

var errInvalidBody = errors.New("invalid request body")

// Server serves the editor API.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager
	HTML     *html.Renderer
	Metrics  *observability.Metrics
	Spec     *openapi3.T
	logger   *slog.Logger

	mu      sync.Mutex
	bridged map[*editor.Session]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts /metrics for the given registry.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server over the session manager.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		HTML:     html.New(),
		logger:   logging.NewNop(),
		bridged:  make(map[*editor.Session]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	var h http.Handler = s.router()
	if s.Spec != nil {
		validate, err := requestValidator(s.Spec, s.logger)
		if err != nil {
			s.logger.Error("Request validation disabled", "error", err)
		} else {
			h = validate(h)
		}
	}
	return enableCORS(h)
}

func (s *Server) router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/drafts", func(r chi.Router) {
		r.Get("/", s.ListDrafts)
		r.Post("/", s.CreateDraft)

		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", s.GetDraft)
			r.Delete("/", s.DeleteDraft)
			r.Put("/title", s.SetTitle)
			r.Put("/preview", s.SetPreview)
			r.Post("/reorder", s.Reorder)
			r.Post("/publish", s.Publish)
			r.Get("/events", s.SubscribeEvents)

			r.Post("/modules", s.AddModule)
			r.Route("/modules/{moduleID}", func(r chi.Router) {
				r.Patch("/", s.UpdateModule)
				r.Delete("/", s.DeleteModule)
				r.Post("/lessons", s.AddLesson)
				r.Patch("/lessons/{lessonID}", s.UpdateLesson)
				r.Delete("/lessons/{lessonID}", s.DeleteLesson)
				r.Post("/lessons/{lessonID}/image", s.AttachImage)
			})
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// session resolves the draft in the URL and bridges its events into the
// stream manager once per session.
func (s *Server) session(r *http.Request) (*editor.Session, error) {
	sess, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		return nil, err
	}
	s.bridge(sess)
	return sess, nil
}

func (s *Server) bridge(sess *editor.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bridged[sess]; ok {
		return
	}
	s.bridged[sess] = struct{}{}

	id := sess.ID()
	sess.Subscribe(func(ev editor.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			s.logger.Error("Event encode failed", "session_id", id, "error", err)
			return
		}
		s.Streams.Broadcast(id, string(data))
	})
	go func() {
		<-sess.Done()
		s.mu.Lock()
		delete(s.bridged, sess)
		s.mu.Unlock()
	}()
}

// decode reads a JSON body into out through mapstructure, rejecting
// unknown keys. An empty body decodes to the zero value.
func decode(r *http.Request, out any) error {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

// writeError maps session and publish errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var svcErr *ports.ServiceError
	switch {
	case errors.Is(err, domain.ErrDraftNotFound):
		http.Error(w, "Draft not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrSessionClosed):
		http.Error(w, "Session closed", http.StatusGone)
	case errors.Is(err, domain.ErrDraftSealed):
		http.Error(w, "Draft is encrypted", http.StatusLocked)
	case errors.Is(err, domain.ErrUnknownLessonType), errors.Is(err, errInvalidBody):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, publish.ErrTitleRequired):
		http.Error(w, publish.UserMessage(err), http.StatusUnprocessableEntity)
	case errors.Is(err, publish.ErrPublishInFlight):
		http.Error(w, "Publish already in progress", http.StatusConflict)
	case errors.Is(err, editor.ErrImageRead):
		http.Error(w, "Failed to read image", http.StatusUnprocessableEntity)
	case errors.Is(err, editor.ErrNoPublisher):
		http.Error(w, "Publishing is not configured", http.StatusNotImplemented)
	case errors.As(err, &svcErr):
		http.Error(w, publish.UserMessage(err), http.StatusBadGateway)
	default:
		s.logger.Error("Request failed", "error", err)
		http.Error(w, publish.MsgSaveFailed, http.StatusInternalServerError)
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "syllabus-http",
		"version": strings.TrimSpace(syllabus.Version),
	})
}

// ListDrafts handles the GET /drafts request.
func (s *Server) ListDrafts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"drafts": ids})
}

type createRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CreateDraft handles the POST /drafts request.
func (s *Server) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := decode(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateDraft: Invalid request body", "error", err)
		return
	}
	if body.ID == "" {
		body.ID = ulid.Make().String()
	}

	sess, err := s.Sessions.Open(r.Context(), body.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.bridge(sess)
	if body.Title != "" {
		if err := sess.SetTitle(body.Title); err != nil {
			s.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID()})
}

// GetDraft handles the GET /drafts/{draftID} request. HTML is served when
// asked for with ?format=html or an Accept header.
func (s *Server) GetDraft(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	view := sess.View()

	if r.URL.Query().Get("format") == "html" || strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.HTML.Course(w, view); err != nil {
			s.logger.Error("GetDraft: HTML render failed", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteDraft handles the DELETE /drafts/{draftID} request.
func (s *Server) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "draftID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type titleRequest struct {
	Title string `json:"title"`
}

// SetTitle handles the PUT /drafts/{draftID}/title request.
func (s *Server) SetTitle(w http.ResponseWriter, r *http.Request) {
	var body titleRequest
	if err := decode(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(sess *editor.Session) error {
		return sess.SetTitle(body.Title)
	})
}

type previewRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetPreview handles the PUT /drafts/{draftID}/preview request. Without a
// body the mode is toggled.
func (s *Server) SetPreview(w http.ResponseWriter, r *http.Request) {
	var body previewRequest
	if err := decode(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(sess *editor.Session) error {
		if body.Enabled == nil {
			_, err := sess.TogglePreview()
			return err
		}
		return sess.SetPreview(*body.Enabled)
	})
}

// Reorder handles the POST /drafts/{draftID}/reorder request with the
// completed drag gesture.
func (s *Server) Reorder(w http.ResponseWriter, r *http.Request) {
	var body reorder.DragEnd
	if err := decode(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(sess *editor.Session) error {
		return sess.Reorder(body)
	})
}

// mutate applies fn to the session in the URL and responds with the
// resulting view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*editor.Session) error) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := fn(sess); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// AddModule handles the POST /drafts/{draftID}/modules request.
func (s *Server) AddModule(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := sess.AddModule()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateModule handles the PATCH /drafts/{draftID}/modules/{moduleID} request.
func (s *Server) UpdateModule(w http.ResponseWriter, r *http.Request) {
	var body titleRequest
	if err := decode(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(sess *editor.Session) error {
		return sess.UpdateModuleTitle(chi.URLParam(r, "moduleID"), body.Title)
	})
}

// DeleteModule handles the DELETE /drafts/{draftID}/modules/{moduleID} request.
func (s *Server) DeleteModule(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *editor.Session) error {
		return sess.DeleteModule(chi.URLParam(r, "moduleID"))
	})
}

type addLessonRequest struct {
	Type string `json:"type"`
}

// AddLesson handles the POST /drafts/{draftID}/modules/{moduleID}/lessons
// request. The type defaults to text.
func (s *Server) AddLesson(w http.ResponseWriter, r *http.Request) {
	var body addLessonRequest
	if err := decode(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	t := domain.LessonTypeText
	if body.Type != "" {
		var err error
		if t, err = domain.ParseLessonType(body.Type); err != nil {
			s.writeError(w, err)
			return
		}
	}

	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := sess.AddLesson(chi.URLParam(r, "moduleID"), t)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if id == "" {
		http.Error(w, "Module not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateLesson handles the PATCH .../lessons/{lessonID} request.
func (s *Server) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	var body lessonPatch
	if err := decode(r, &body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		s.logger.Warn("UpdateLesson: Invalid request body", "error", err)
		return
	}
	s.mutate(w, r, func(sess *editor.Session) error {
		return body.apply(sess, chi.URLParam(r, "moduleID"), chi.URLParam(r, "lessonID"))
	})
}

// DeleteLesson handles the DELETE .../lessons/{lessonID} request.
func (s *Server) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *editor.Session) error {
		return sess.DeleteLesson(chi.URLParam(r, "moduleID"), chi.URLParam(r, "lessonID"))
	})
}

// Publish handles the POST /drafts/{draftID}/publish request.
func (s *Server) Publish(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ref, err := sess.Publish(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":       ref.ID,
		"redirect": publish.EditPath(ref.ID),
	})
}
