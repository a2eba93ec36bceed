package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/syllabus/internal/logging"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/media"
	"github.com/aretw0/syllabus/pkg/observability"
	"github.com/aretw0/syllabus/pkg/ports"
	"github.com/aretw0/syllabus/pkg/publish"
	"github.com/aretw0/syllabus/pkg/render"
	"github.com/aretw0/syllabus/pkg/reorder"
	"github.com/aretw0/syllabus/pkg/tree"
)

var (
	// ErrNoPublisher is returned by Publish when the session has no publisher.
	ErrNoPublisher = errors.New("no publisher configured")
	// ErrImageRead wraps the failure of an image read in AttachImage.
	ErrImageRead = errors.New("failed to ingest image")
)

// Session is a single course being edited.
type Session struct {
	id string

	mu         sync.Mutex
	course     *domain.Course
	preview    bool
	errMsg     string
	closed     bool
	publishing bool
	version    uint64
	listeners  map[int]Listener
	nextSub    int

	// lifetime is cancelled by Close; late completions check it.
	lifetime context.Context
	cancel   context.CancelFunc

	ids       tree.IDGenerator
	publisher *publish.Publisher
	ingestor  *media.Ingestor
	drafts    ports.DraftStore
	autosave  bool

	saveMu       sync.Mutex
	savedVersion uint64

	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithIDGenerator replaces the default ULID generator.
func WithIDGenerator(g tree.IDGenerator) Option {
	return func(s *Session) {
		s.ids = g
	}
}

// WithPublisher enables Publish.
func WithPublisher(p *publish.Publisher) Option {
	return func(s *Session) {
		s.publisher = p
	}
}

// WithIngestor replaces the default media ingestor.
func WithIngestor(i *media.Ingestor) Option {
	return func(s *Session) {
		s.ingestor = i
	}
}

// WithDraftStore enables SaveDraft and Discard. With autosave, every change
// is written to the store after it has been applied.
func WithDraftStore(store ports.DraftStore, autosave bool) Option {
	return func(s *Session) {
		s.drafts = store
		s.autosave = autosave
	}
}

// WithMetrics records mutations and session lifetime.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New opens a session on an empty course.
func New(id string, opts ...Option) *Session {
	return open(id, tree.New(""), false, opts...)
}

// Resume opens a session on a stored draft.
func Resume(d *domain.Draft, opts ...Option) *Session {
	c := d.Course
	if c == nil {
		c = tree.New("")
	}
	return open(d.ID, c, d.PreviewMode, opts...)
}

func open(id string, c *domain.Course, preview bool, opts ...Option) *Session {
	lifetime, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:        id,
		course:    c,
		preview:   preview,
		listeners: make(map[int]Listener),
		lifetime:  lifetime,
		cancel:    cancel,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = tree.NewULIDGenerator()
	}
	if s.ingestor == nil {
		s.ingestor = media.NewIngestor(media.WithLogger(s.logger))
	}
	s.logger = s.logger.With("session_id", id)
	s.metrics.SessionOpened()
	return s
}

// ID returns the session (and draft) id.
func (s *Session) ID() string { return s.id }

// Snapshot returns the current course. The value is immutable.
func (s *Session) Snapshot() *domain.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.course
}

// Preview reports whether the session renders in preview mode.
func (s *Session) Preview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// Error returns the message currently shown to the user.
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Publishing reports whether a publish is outstanding.
func (s *Session) Publishing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishing
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.lifetime.Done()
}

// Context returns the lifetime context, cancelled when the session ends.
func (s *Session) Context() context.Context {
	return s.lifetime
}

// View renders the whole course for the current mode.
func (s *Session) View() render.CourseView {
	s.mu.Lock()
	c, mode := s.course, s.mode()
	st := render.Status{Publishing: s.publishing, Error: s.errMsg}
	s.mu.Unlock()
	return render.RenderCourse(c, render.Context{Mode: mode}, st)
}

func (s *Session) mode() render.Mode {
	if s.preview {
		return render.ModePreview
	}
	return render.ModeEdit
}

// Subscribe registers a listener and returns a function removing it.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// emit must be called with s.mu held.
func (s *Session) emit(ev Event) {
	ev.SessionID = s.id
	ev.Preview = s.preview
	ev.Error = s.errMsg
	ev.Publishing = s.publishing
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// apply runs a tree operation and adopts its result. A returned snapshot
// identical to the current one is a no-op.
func (s *Session) apply(op string, fn func(*domain.Course) *domain.Course) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	prev := s.course
	next := fn(prev)
	if next == prev {
		s.mu.Unlock()
		return nil
	}
	s.course = next
	s.version++
	s.metrics.Mutation(op)
	if diff := domain.Diff(prev, next); diff != nil {
		s.emit(Event{Kind: EventTree, Diff: diff})
	}
	s.mu.Unlock()

	s.logger.Debug("Course updated", "op", op)
	if s.autosave {
		if err := s.SaveDraft(s.lifetime); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("Failed to autosave draft", "err", err)
		}
	}
	return nil
}

// SetTitle sets the course title.
func (s *Session) SetTitle(title string) error {
	return s.apply("set_title", func(c *domain.Course) *domain.Course {
		return tree.SetTitle(c, title)
	})
}

// AddModule appends a module and returns its id.
func (s *Session) AddModule() (string, error) {
	id := s.ids.NewModuleID()
	err := s.apply("add_module", func(c *domain.Course) *domain.Course {
		return tree.AddModule(c, id)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// AddLesson appends a lesson to a module and returns its id. The id is
// empty when the module does not exist.
func (s *Session) AddLesson(moduleID string, t domain.LessonType) (string, error) {
	id := s.ids.NewLessonID()
	added := false
	err := s.apply("add_lesson", func(c *domain.Course) *domain.Course {
		next := tree.AddLesson(c, moduleID, id, t)
		added = next != c
		return next
	})
	if err != nil || !added {
		return "", err
	}
	return id, nil
}

// DeleteModule removes a module.
func (s *Session) DeleteModule(moduleID string) error {
	return s.apply("delete_module", func(c *domain.Course) *domain.Course {
		return tree.DeleteModule(c, moduleID)
	})
}

// DeleteLesson removes a lesson.
func (s *Session) DeleteLesson(moduleID, lessonID string) error {
	return s.apply("delete_lesson", func(c *domain.Course) *domain.Course {
		return tree.DeleteLesson(c, moduleID, lessonID)
	})
}

// UpdateModuleTitle renames a module.
func (s *Session) UpdateModuleTitle(moduleID, title string) error {
	return s.apply("update_module", func(c *domain.Course) *domain.Course {
		return tree.UpdateModuleTitle(c, moduleID, title)
	})
}

// UpdateLessonField sets the title, type or string content of a lesson.
func (s *Session) UpdateLessonField(moduleID, lessonID string, field tree.LessonField, value string) error {
	return s.apply("update_lesson", func(c *domain.Course) *domain.Course {
		return tree.UpdateLessonField(c, moduleID, lessonID, field, value)
	})
}

// UpdateLessonContent replaces the payload of a lesson.
func (s *Session) UpdateLessonContent(moduleID, lessonID string, content domain.Content) error {
	return s.apply("update_lesson", func(c *domain.Course) *domain.Course {
		return tree.UpdateLessonContent(c, moduleID, lessonID, content)
	})
}

// SetLessonText sets the text of an image-text lesson, keeping the image.
// Lessons of any other type are left unchanged.
func (s *Session) SetLessonText(moduleID, lessonID, text string) error {
	return s.apply("update_lesson", func(c *domain.Course) *domain.Course {
		l := tree.FindLesson(c, moduleID, lessonID)
		if l == nil || l.Type != domain.LessonTypeImageText {
			return c
		}
		it := imageTextOf(l.Content)
		it.Text = text
		return tree.UpdateLessonContent(c, moduleID, lessonID, it)
	})
}

// imageTextOf returns c as image-text content. A string payload left by an
// earlier type switch becomes the text.
func imageTextOf(c domain.Content) domain.ImageTextContent {
	if it, ok := domain.ImageTextOf(c); ok {
		return it
	}
	text, _ := domain.StringOf(c)
	return domain.ImageTextContent{Text: text}
}

// Reorder applies a module drag gesture.
func (s *Session) Reorder(ev reorder.DragEnd) error {
	return s.apply("reorder", func(c *domain.Course) *domain.Course {
		return reorder.Apply(c, ev)
	})
}

// SetPreview switches every lesson between edit and preview rendering.
// The tree is not touched.
func (s *Session) SetPreview(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.preview == on {
		return nil
	}
	s.preview = on
	s.version++
	s.emit(Event{Kind: EventStatus})
	return nil
}

// TogglePreview flips the preview flag and returns the new value.
func (s *Session) TogglePreview() (bool, error) {
	s.mu.Lock()
	on := !s.preview
	s.mu.Unlock()
	return on, s.SetPreview(on)
}

// AttachImage reads f and stores it as the image of an image-text lesson.
// The read happens outside the session lock. The result is applied only if
// the session is still open and the lesson still exists and is image-text;
// otherwise applied is false and nothing changes. A read failure leaves the
// lesson unchanged.
func (s *Session) AttachImage(ctx context.Context, moduleID, lessonID string, f media.File) (applied bool, err error) {
	if s.Closed() {
		return false, domain.ErrSessionClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.lifetime, cancel)
	defer stop()

	res := media.Await(ctx, s.ingestor.Ingest(ctx, f))
	if res.Err != nil {
		if s.lifetime.Err() != nil {
			s.metrics.MediaIngest(observability.OutcomeDiscarded)
			return false, nil
		}
		s.metrics.MediaIngest(observability.OutcomeReadFailed)
		s.logger.Warn("Image read failed, lesson left unchanged", "lesson_id", lessonID, "err", res.Err)
		return false, fmt.Errorf("%w: %w", ErrImageRead, res.Err)
	}

	err = s.apply("attach_image", func(c *domain.Course) *domain.Course {
		l := tree.FindLesson(c, moduleID, lessonID)
		if l == nil || l.Type != domain.LessonTypeImageText {
			return c
		}
		it := imageTextOf(l.Content)
		it.ImageURL = res.DataURL
		applied = true
		return tree.UpdateLessonContent(c, moduleID, lessonID, it)
	})
	if errors.Is(err, domain.ErrSessionClosed) {
		err = nil
	}
	if applied {
		s.metrics.MediaIngest(observability.OutcomeApplied)
	} else {
		s.metrics.MediaIngest(observability.OutcomeDiscarded)
		s.logger.Debug("Image discarded, lesson gone or session closed", "lesson_id", lessonID)
	}
	return applied, err
}

// Publish submits the course. On success the session is closed and its
// draft removed; on failure the tree is kept and the error message is set.
func (s *Session) Publish(ctx context.Context) (ports.CourseRef, error) {
	if s.publisher == nil {
		return ports.CourseRef{}, ErrNoPublisher
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ports.CourseRef{}, domain.ErrSessionClosed
	}
	c := s.course
	started := strings.TrimSpace(c.Title) != "" && !s.publishing
	if started {
		s.publishing = true
		s.errMsg = ""
		s.emit(Event{Kind: EventStatus})
	}
	s.mu.Unlock()

	ref, err := s.publisher.Publish(ctx, c.Title, c)

	if started {
		s.mu.Lock()
		s.publishing = false
		s.mu.Unlock()
	}

	if err != nil {
		s.mu.Lock()
		if msg := publish.UserMessage(err); msg != "" && !s.closed {
			s.errMsg = msg
		}
		if !s.closed {
			s.emit(Event{Kind: EventStatus})
		}
		s.mu.Unlock()
		return ports.CourseRef{}, err
	}

	s.closeWith(Event{Kind: EventClosed, CourseID: ref.ID})
	if s.drafts != nil {
		if err := s.drafts.Delete(context.WithoutCancel(ctx), s.id); err != nil {
			s.logger.Warn("Failed to delete draft after publish", "err", err)
		}
	}
	return ref, nil
}

// Draft returns the persistable state of the session.
func (s *Session) Draft() *domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &domain.Draft{
		ID:          s.id,
		Course:      s.course,
		PreviewMode: s.preview,
		UpdatedAt:   time.Now().UTC(),
	}
}

// SaveDraft writes the current state to the draft store. Writes are
// ordered: a save never overwrites a newer one.
func (s *Session) SaveDraft(ctx context.Context) error {
	if s.drafts == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	version := s.version
	s.mu.Unlock()
	if version != 0 && version <= s.savedVersion {
		return nil
	}

	if err := s.drafts.Save(ctx, s.id, s.Draft()); err != nil {
		return fmt.Errorf("failed to save draft %s: %w", s.id, err)
	}
	s.savedVersion = version
	return nil
}

// Close ends the session. Pending image reads are abandoned; a late
// completion changes nothing. Close is idempotent.
func (s *Session) Close() {
	s.closeWith(Event{Kind: EventClosed})
}

func (s *Session) closeWith(ev Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.emit(ev)
	s.listeners = make(map[int]Listener)
	s.mu.Unlock()

	s.metrics.SessionClosed()
	s.logger.Debug("Session closed")
}

// Discard closes the session and deletes its draft.
func (s *Session) Discard(ctx context.Context) error {
	s.Close()
	if s.drafts == nil {
		return nil
	}
	return s.drafts.Delete(ctx, s.id)
}
