package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/syllabus/internal/logging"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/editor"
	"github.com/aretw0/syllabus/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Factory builds the per-session options (publisher, ingestor, metrics...).
// It is called once for every session the Manager opens.
type Factory func(draftID string) []editor.Option

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.DraftStore

	mu       sync.Mutex            // guards locks and sessions
	locks    map[string]*lockEntry // per-id locks
	sessions map[string]*editor.Session

	factory Factory
	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithFactory configures how sessions are built.
func WithFactory(f Factory) Option {
	return func(m *Manager) {
		m.factory = f
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given draft store.
func NewManager(store ports.DraftStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*editor.Session),
		lockTTL:  30 * time.Second,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes a function while holding the lock for the draft id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, "draft:"+id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"draft_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) options(id string) []editor.Option {
	opts := []editor.Option{
		editor.WithDraftStore(m.store, true),
		editor.WithLogger(m.logger),
	}
	if m.factory != nil {
		opts = append(opts, m.factory(id)...)
	}
	return opts
}

func (m *Manager) live(id string) *editor.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if s.Closed() {
		delete(m.sessions, id)
		return nil
	}
	return s
}

func (m *Manager) track(s *editor.Session) {
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	// Forget the session once it ends (publish, discard or close).
	go func() {
		<-s.Done()
		m.mu.Lock()
		if m.sessions[s.ID()] == s {
			delete(m.sessions, s.ID())
		}
		m.mu.Unlock()
	}()
}

// Get returns an open session, resuming its draft from the store if needed.
// Returns domain.ErrDraftNotFound when neither exists and
// domain.ErrDraftSealed when the stored draft cannot be decrypted here.
func (m *Manager) Get(ctx context.Context, id string) (*editor.Session, error) {
	if s := m.live(id); s != nil {
		return s, nil
	}

	var s *editor.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if s = m.live(id); s != nil {
			return nil
		}
		draft, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		if draft.Course == nil && draft.Sealed != "" {
			return fmt.Errorf("draft %q: %w", id, domain.ErrDraftSealed)
		}
		s = editor.Resume(draft, m.options(id)...)
		m.track(s)
		m.logger.Info("Draft resumed", "draft_id", id)
		return nil
	})
	return s, err
}

// Open returns the session for id, creating an empty course when no draft
// exists. The new draft is persisted immediately to reserve the id.
func (m *Manager) Open(ctx context.Context, id string) (*editor.Session, error) {
	s, err := m.Get(ctx, id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, domain.ErrDraftNotFound) {
		return nil, fmt.Errorf("failed to check draft existence: %w", err)
	}

	err = m.WithLock(ctx, id, func(ctx context.Context) error {
		if s = m.live(id); s != nil {
			return nil
		}
		s = editor.New(id, m.options(id)...)
		if err := s.SaveDraft(ctx); err != nil {
			s.Close()
			return fmt.Errorf("failed to initialize draft: %w", err)
		}
		m.track(s)
		m.logger.Info("Draft created", "draft_id", id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Save persists the current state of an open session.
func (m *Manager) Save(ctx context.Context, id string) error {
	s := m.live(id)
	if s == nil {
		return domain.ErrDraftNotFound
	}
	return m.WithLock(ctx, id, s.SaveDraft)
}

// Close saves and closes an open session, keeping its draft.
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		s := m.live(id)
		if s == nil {
			return nil
		}
		err := s.SaveDraft(ctx)
		s.Close()
		return err
	})
}

// Delete closes the session, if open, and removes its draft.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		if s := m.live(id); s != nil {
			s.Close()
		}
		return m.store.Delete(ctx, id)
	})
}

// CloseAll saves and closes every open session.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying draft store.
func (m *Manager) Store() ports.DraftStore {
	return m.store
}
