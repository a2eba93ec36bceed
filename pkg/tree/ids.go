package tree

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator produces editor-local identifiers. Identifiers must never
// repeat within one editing session, even after deletions.
type IDGenerator interface {
	NewModuleID() string
	NewLessonID() string
}

// ULIDGenerator issues "module-<ulid>" / "lesson-<ulid>" identifiers from a
// monotonic entropy source. Safe for concurrent use.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a generator backed by crypto/rand.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *ULIDGenerator) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return prefix + "-" + ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// NewModuleID returns a fresh module identifier.
func (g *ULIDGenerator) NewModuleID() string { return g.next("module") }

// NewLessonID returns a fresh lesson identifier.
func (g *ULIDGenerator) NewLessonID() string { return g.next("lesson") }

// SequenceGenerator issues "module-1", "module-2", ... Useful for
// deterministic fixtures. Safe for concurrent use.
type SequenceGenerator struct {
	mu      sync.Mutex
	modules int
	lessons int
}

// NewModuleID returns the next module identifier.
func (g *SequenceGenerator) NewModuleID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modules++
	return fmt.Sprintf("module-%d", g.modules)
}

// NewLessonID returns the next lesson identifier.
func (g *SequenceGenerator) NewLessonID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lessons++
	return fmt.Sprintf("lesson-%d", g.lessons)
}
