// Package cli wires configuration into the stores, locks, repository client
// and session manager used by the syllabus commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/syllabus/internal/config"
	"github.com/aretw0/syllabus/pkg/adapters/file"
	"github.com/aretw0/syllabus/pkg/adapters/httpclient"
	"github.com/aretw0/syllabus/pkg/adapters/memory"
	redisadapter "github.com/aretw0/syllabus/pkg/adapters/redis"
	"github.com/aretw0/syllabus/pkg/editor"
	"github.com/aretw0/syllabus/pkg/media"
	"github.com/aretw0/syllabus/pkg/observability"
	"github.com/aretw0/syllabus/pkg/persistence/middleware"
	"github.com/aretw0/syllabus/pkg/ports"
	"github.com/aretw0/syllabus/pkg/publish"
	"github.com/aretw0/syllabus/pkg/session"
	"github.com/aretw0/syllabus/pkg/tree"
)

// App holds the wired components of a syllabus process.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	Store      ports.DraftStore
	Locker     ports.DistributedLocker
	Repository ports.CourseRepository
	Navigator  ports.Navigator
	Sessions   *session.Manager

	closers []func() error
}

// AppOption configures NewApp.
type AppOption func(*App)

// WithRepository replaces the HTTP course repository.
func WithRepository(repo ports.CourseRepository) AppOption {
	return func(a *App) {
		a.Repository = repo
	}
}

// WithNavigator sets where successful publishes navigate to. The default
// only logs the edit path.
func WithNavigator(nav ports.Navigator) AppOption {
	return func(a *App) {
		a.Navigator = nav
	}
}

// NewApp builds the draft store (optionally encrypted), the distributed
// locker, the repository client and the session manager described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...AppOption) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	if cfg.Store.EncryptionKey != "" {
		mw, err := encryption(cfg.Store)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Store = mw(a.Store)
	}

	if a.Repository == nil {
		a.Repository = httpclient.New(cfg.Repository.URL,
			httpclient.WithToken(cfg.Repository.Token),
			httpclient.WithTimeout(cfg.Repository.Timeout),
			httpclient.WithLogger(logger),
		)
	}
	if a.Navigator == nil {
		a.Navigator = ports.NavigatorFunc(func(_ context.Context, path string) error {
			logger.Info("Course published", "edit_path", path)
			return nil
		})
	}

	a.Sessions = session.NewManager(a.Store,
		session.WithLocker(a.Locker),
		session.WithFactory(a.sessionOptions),
		session.WithLogger(logger),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config.Store
	switch cfg.Backend {
	case config.BackendMemory:
		a.Store = memory.NewStore()
		a.Locker = memory.NewLocker()
	case config.BackendFile:
		a.Store = file.New(cfg.Path)
		a.Locker = memory.NewLocker()
	case config.BackendRedis:
		opts := []redisadapter.Option{redisadapter.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redisadapter.WithTTL(cfg.Redis.TTL))
		}
		store := redisadapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			store.Close()
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.Store = store
		a.Locker = redisadapter.NewLocker(store.Client(), cfg.Redis.Prefix)
		a.closers = append(a.closers, store.Close)
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	a.Logger.Debug("Draft store ready", "backend", cfg.Backend)
	return nil
}

func encryption(cfg config.StoreConfig) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	var fallbacks [][]byte
	for _, s := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(s)
		if err != nil {
			return nil, fmt.Errorf("fallback key: %w", err)
		}
		fallbacks = append(fallbacks, key)
	}
	return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallbacks,
	}), nil
}

// Publisher returns the publisher for one draft. Publishes of the same
// draft are exclusive across processes sharing the locker.
func (a *App) Publisher(draftID string) *publish.Publisher {
	return publish.NewPublisher(a.Repository, a.Navigator,
		publish.WithLocker(a.Locker, "publish:"+draftID),
		publish.WithMetrics(a.Metrics),
		publish.WithLogger(a.Logger.With("draft_id", draftID)),
	)
}

func (a *App) sessionOptions(draftID string) []editor.Option {
	return []editor.Option{
		editor.WithIDGenerator(tree.NewULIDGenerator()),
		editor.WithPublisher(a.Publisher(draftID)),
		editor.WithIngestor(media.NewIngestor(media.WithLogger(a.Logger))),
		editor.WithMetrics(a.Metrics),
		editor.WithLogger(a.Logger.With("draft_id", draftID)),
	}
}

// Close saves open sessions and releases backend connections.
func (a *App) Close() error {
	var errs []error
	if a.Sessions != nil {
		errs = append(errs, a.Sessions.CloseAll(context.Background()))
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
