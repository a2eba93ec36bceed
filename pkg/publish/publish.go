// Package publish validates a course and submits it to the course repository.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/syllabus/internal/logging"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/observability"
	"github.com/aretw0/syllabus/pkg/ports"
)

// User-facing messages.
const (
	MsgTitleRequired = "Course title is required"
	MsgSaveFailed    = "Failed to save course"
)

var (
	// ErrTitleRequired is returned when the trimmed course title is empty.
	ErrTitleRequired = errors.New("course title is required")

	// ErrPublishInFlight is returned when a publish is already outstanding.
	ErrPublishInFlight = errors.New("publish already in progress")
)

// EditPath is the view opened after a course has been created.
func EditPath(courseID string) string {
	return "/course/" + courseID + "/edit"
}

// UserMessage maps a Publish error to the single string shown to the user.
// A message embedded by the repository wins over the generic fallback.
// In-flight rejections are not surfaced.
func UserMessage(err error) string {
	if err == nil || errors.Is(err, ErrPublishInFlight) {
		return ""
	}
	if errors.Is(err, ErrTitleRequired) {
		return MsgTitleRequired
	}
	var se *ports.ServiceError
	if errors.As(err, &se) && strings.TrimSpace(se.Message) != "" {
		return se.Message
	}
	return MsgSaveFailed
}

// Publisher submits courses. At most one submission per Publisher is
// outstanding at any time; with a locker configured the guard also holds
// across replicas.
type Publisher struct {
	repo      ports.CourseRepository
	navigator ports.Navigator

	locker  ports.DistributedLocker
	lockKey string
	lockTTL time.Duration

	inFlight atomic.Bool

	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLocker guards submissions with a distributed try-lock on key.
func WithLocker(locker ports.DistributedLocker, key string) Option {
	return func(p *Publisher) {
		p.locker = locker
		p.lockKey = key
	}
}

// WithLockTTL bounds how long a crashed replica can hold the publish lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(p *Publisher) {
		p.lockTTL = ttl
	}
}

// WithMetrics records publish outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithLogger configures a logger for the Publisher.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a Publisher. navigator may be nil.
func NewPublisher(repo ports.CourseRepository, navigator ports.Navigator, opts ...Option) *Publisher {
	p := &Publisher{
		repo:      repo,
		navigator: navigator,
		lockTTL:   time.Minute,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// InFlight reports whether a submission is outstanding.
func (p *Publisher) InFlight() bool {
	return p.inFlight.Load()
}

// Publish validates the title, submits the course and navigates to its edit
// view. The in-flight flag is cleared on every return path.
func (p *Publisher) Publish(ctx context.Context, title string, c *domain.Course) (ports.CourseRef, error) {
	if strings.TrimSpace(title) == "" {
		p.metrics.Publish(observability.OutcomeInvalid, 0)
		return ports.CourseRef{}, ErrTitleRequired
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		p.metrics.Publish(observability.OutcomeInFlight, 0)
		return ports.CourseRef{}, ErrPublishInFlight
	}
	defer p.inFlight.Store(false)

	if p.locker != nil {
		unlock, ok, err := p.locker.TryLock(ctx, p.lockKey, p.lockTTL)
		if err != nil {
			p.metrics.Publish(observability.OutcomeFailure, 0)
			return ports.CourseRef{}, fmt.Errorf("failed to acquire publish lock: %w", err)
		}
		if !ok {
			p.metrics.Publish(observability.OutcomeInFlight, 0)
			return ports.CourseRef{}, ErrPublishInFlight
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				p.logger.Warn("Failed to release publish lock (will expire via TTL)", "key", p.lockKey, "err", err)
			}
		}()
	}

	payload := BuildPayload(title, c)

	start := time.Now()
	ref, err := p.repo.CreateCourse(ctx, payload)
	elapsed := time.Since(start)
	if err != nil {
		p.metrics.Publish(observability.OutcomeFailure, elapsed)
		p.logger.Error("Failed to publish course", "title", title, "err", err)
		return ports.CourseRef{}, fmt.Errorf("failed to publish course: %w", err)
	}
	p.metrics.Publish(observability.OutcomeSuccess, elapsed)
	p.logger.Info("Course published", "course_id", ref.ID, "modules", len(payload.Modules), "duration", elapsed)

	if p.navigator != nil {
		if err := p.navigator.Navigate(ctx, EditPath(ref.ID)); err != nil {
			p.logger.Warn("Failed to navigate after publish", "course_id", ref.ID, "err", err)
		}
	}
	return ref, nil
}
