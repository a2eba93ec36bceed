package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/syllabus/pkg/domain"
)

// Store implements ports.DraftStore using the local filesystem.
// It stores drafts as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".syllabus/drafts".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".syllabus", "drafts")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(draftID string) (string, error) {
	if draftID == "" {
		return "", fmt.Errorf("draftID cannot be empty")
	}
	if strings.ContainsAny(draftID, `/\`) || draftID == "." || draftID == ".." {
		return "", fmt.Errorf("invalid draftID %q", draftID)
	}
	return filepath.Join(s.BasePath, draftID+".json"), nil
}

// Save persists the draft to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, draftID string, draft *domain.Draft) error {
	destPath, err := s.path(draftID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure draft directory: %w", err)
	}

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	// Same directory as the destination, rename is only atomic within a filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+draftID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing draft file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to draft: %w", err)
	}

	return nil
}

// Load retrieves the draft from a JSON file.
func (s *Store) Load(ctx context.Context, draftID string) (*domain.Draft, error) {
	filePath, err := s.path(draftID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to read draft file: %w", err)
	}

	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}

	return &draft, nil
}

// Delete removes the draft file.
func (s *Store) Delete(ctx context.Context, draftID string) error {
	filePath, err := s.path(draftID)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete draft file: %w", err)
	}

	return nil
}

// List returns all stored draft IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	var drafts []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		drafts = append(drafts, strings.TrimSuffix(name, ".json"))
	}

	return drafts, nil
}
