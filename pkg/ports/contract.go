package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractDraft(id string) *domain.Draft {
	return &domain.Draft{
		ID: id,
		Course: &domain.Course{
			Title: "Contract",
			Modules: []*domain.Module{{
				ID: "m1", Title: "Basics", Order: 1,
				Lessons: []*domain.Lesson{
					{ID: "l1", Title: "Read", Order: 1, Type: domain.LessonTypeText, Content: domain.TextContent{Markdown: "# hi"}},
					{ID: "l2", Title: "Look", Order: 2, Type: domain.LessonTypeImageText, Content: domain.ImageTextContent{Text: "t", ImageURL: "data:image/png;base64,AA=="}},
				},
			}},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// RunDraftStoreContract runs a suite of tests to verify that a DraftStore implementation
// adheres to the defined interface contract.
func RunDraftStoreContract(t *testing.T, store DraftStore) {
	ctx := context.Background()
	draftID := "contract-test-draft-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		draft := contractDraft(draftID)

		err := store.Save(ctx, draftID, draft)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, draftID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, draft.Course.Title, loaded.Course.Title)
		require.Len(t, loaded.Course.Modules, 1)
		require.Len(t, loaded.Course.Modules[0].Lessons, 2)
		assert.Equal(t, draft.Course.Modules[0].Lessons[1].Content, loaded.Course.Modules[0].Lessons[1].Content)
		assert.True(t, draft.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Loaded Draft Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, draftID)
		require.NoError(t, err)
		loaded.Course.Title = "mutated"

		again, err := store.Load(ctx, draftID)
		require.NoError(t, err)
		assert.Equal(t, "Contract", again.Course.Title)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+draftID)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, draftID, contractDraft(draftID))
		require.NoError(t, err)

		err = store.Delete(ctx, draftID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, draftID)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound, "Load after Delete should return ErrDraftNotFound")

		assert.NoError(t, store.Delete(ctx, draftID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := draftID + "-1"
		id2 := draftID + "-2"
		require.NoError(t, store.Save(ctx, id1, contractDraft(id1)))
		require.NoError(t, store.Save(ctx, id2, contractDraft(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		drafts, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, drafts, id1)
		assert.Contains(t, drafts, id2)
	})
}
