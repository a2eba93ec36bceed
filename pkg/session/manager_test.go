package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/syllabus/pkg/adapters/memory"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/editor"
	"github.com/aretw0/syllabus/pkg/persistence/middleware"
	"github.com/aretw0/syllabus/pkg/session"
	"github.com/aretw0/syllabus/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
	mu    sync.Mutex
	loads int
}

func (s *SlowStore) Load(ctx context.Context, id string) (*domain.Draft, error) {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
	return s.Store.Load(ctx, id)
}

func TestManager_OpenCreatesAndReuses(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	s1, err := mgr.Open(ctx, "d1")
	require.NoError(t, err)
	s2, err := mgr.Open(ctx, "d1")
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "d1", "draft is reserved on open")
}

func TestManager_GetMissing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, err := mgr.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestManager_ConcurrentOpenResumesOnce(t *testing.T) {
	store := &SlowStore{Store: memory.NewStore()}
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "d1", &domain.Draft{ID: "d1", Course: tree.New("Stored")}))

	mgr := session.NewManager(store)

	var wg sync.WaitGroup
	got := make([]*editor.Session, 10)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := mgr.Open(ctx, "d1")
			assert.NoError(t, err)
			got[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, "Stored", got[0].Snapshot().Title)
}

func TestManager_AutosaveAndResume(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store, session.WithFactory(func(string) []editor.Option {
		return []editor.Option{editor.WithIDGenerator(&tree.SequenceGenerator{})}
	}))
	ctx := context.Background()

	s, err := mgr.Open(ctx, "d1")
	require.NoError(t, err)
	require.NoError(t, s.SetTitle("Autosaved"))
	m1, _ := s.AddModule()
	assert.Equal(t, "module-1", m1)

	require.NoError(t, mgr.Close(ctx, "d1"))
	assert.True(t, s.Closed())

	resumed, err := mgr.Get(ctx, "d1")
	require.NoError(t, err)
	assert.NotSame(t, s, resumed)
	assert.Equal(t, "Autosaved", resumed.Snapshot().Title)
	assert.Len(t, resumed.Snapshot().Modules, 1)
}

func TestManager_SealedDraftWithoutKey(t *testing.T) {
	ctx := context.Background()
	raw := memory.NewStore()
	sealed := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: make([]byte, 32)})(raw)

	course := tree.AddModule(tree.New("Secret"), "m1")
	require.NoError(t, sealed.Save(ctx, "d1", &domain.Draft{ID: "d1", Course: course}))
	before, err := raw.Load(ctx, "d1")
	require.NoError(t, err)
	require.NotEmpty(t, before.Sealed)

	mgr := session.NewManager(raw)
	_, err = mgr.Get(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrDraftSealed)

	_, err = mgr.Open(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrDraftSealed)
	require.NoError(t, mgr.CloseAll(ctx))

	after, err := raw.Load(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, before.Sealed, after.Sealed)
	assert.Nil(t, after.Course)

	d, err := sealed.Load(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Secret", d.Course.Title)
}

func TestManager_Delete(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	s, err := mgr.Open(ctx, "d1")
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, "d1"))
	assert.True(t, s.Closed())

	_, err = mgr.Get(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestManager_DistributedLock(t *testing.T) {
	locker := memory.NewLocker()
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker))
	ctx := context.Background()

	hold, err := locker.Lock(ctx, "draft:d1", time.Minute)
	require.NoError(t, err)

	tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = mgr.Open(tctx, "d1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, hold(ctx))
	_, err = mgr.Open(ctx, "d1")
	assert.NoError(t, err)
}

func TestManager_CloseAll(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	a, _ := mgr.Open(ctx, "a")
	b, _ := mgr.Open(ctx, "b")

	require.NoError(t, mgr.CloseAll(ctx))
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
}
