package ports

import (
	"context"

	"github.com/aretw0/syllabus/pkg/domain"
)

// DraftStore defines the interface for persisting in-progress courses.
// This allows an editing session to be closed and resumed later.
type DraftStore interface {
	// Save persists the draft under the given ID.
	Save(ctx context.Context, draftID string, draft *domain.Draft) error

	// Load retrieves the draft for a given ID.
	// Returns domain.ErrDraftNotFound if the draft does not exist.
	Load(ctx context.Context, draftID string) (*domain.Draft, error)

	// Delete removes the draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, draftID string) error

	// List returns the IDs of all stored drafts.
	List(ctx context.Context) ([]string, error)
}
