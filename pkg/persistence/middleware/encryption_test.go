package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"
	"time"

	"github.com/aretw0/syllabus/pkg/adapters/memory"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/persistence/middleware"
	"github.com/aretw0/syllabus/pkg/ports"
	"github.com/aretw0/syllabus/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func secretDraft(id string) *domain.Draft {
	c := tree.New("Unreleased Course")
	c = tree.AddModule(c, "m1")
	c = tree.AddLesson(c, "m1", "l1", domain.LessonTypeText)
	c = tree.UpdateLessonField(c, "m1", "l1", tree.FieldContent, "my-secret-sauce")
	return &domain.Draft{ID: id, Course: c, UpdatedAt: time.Now().UTC()}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunDraftStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)
	ctx := context.Background()

	require.NoError(t, secureStore.Save(ctx, "d1", secretDraft("d1")))

	stored, err := underlyingStore.Load(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, stored.Course, "course must not be stored in clear")
	assert.NotEmpty(t, stored.Sealed)
	assert.NotContains(t, stored.Sealed, "my-secret-sauce")

	loaded, err := secureStore.Load(ctx, "d1")
	require.NoError(t, err)
	l := tree.FindLesson(loaded.Course, "m1", "l1")
	require.NotNil(t, l)
	assert.Equal(t, domain.TextContent{Markdown: "my-secret-sauce"}, l.Content)
	assert.Equal(t, "Unreleased Course", loaded.Course.Title)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	require.NoError(t, secureStoreOld.Save(ctx, "d1", secretDraft("d1")))

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "d1")
	require.NoError(t, err, "fallback key must decrypt")

	require.NoError(t, secureStoreNew.Save(ctx, "d1", loaded))

	_, err = secureStoreOld.Load(ctx, "d1")
	assert.Error(t, err, "old key alone cannot read a draft sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainDraft(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlyingStore.Save(ctx, "d1", secretDraft("d1")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	_, err := secureStore.Load(ctx, "d1")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)

	_, err = middleware.ParseKey("not base64!")
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	trace := func(name string) middleware.Middleware {
		return func(next ports.DraftStore) ports.DraftStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(memory.NewStore(), trace("outer"), trace("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order)
}
