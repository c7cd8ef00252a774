package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

const (
	checkpointExt = ".json"
	autostartExt  = ".autostart"
)

// Store implements ports.Store using the local filesystem.
// It stores each checkpoint as a JSON file and each autostart marker as an empty file.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".fieldsweep".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = ".fieldsweep"
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sweepID, ext string) string {
	return filepath.Join(s.BasePath, sweepID+ext)
}

// Save persists the checkpoint to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, sweepID string, cp *domain.Checkpoint) error {
	if sweepID == "" {
		return fmt.Errorf("sweepID cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	// Same directory as the destination, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, ".tmp-"+sweepID+"-*")
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

	// Rename replaces the destination in one step, on Windows too, so a
	// reader sees either the old checkpoint or the new one.
	destPath := s.path(sweepID, checkpointExt)
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to checkpoint: %w", err)
	}
	return nil
}

// Load retrieves the checkpoint from its JSON file.
func (s *Store) Load(ctx context.Context, sweepID string) (*domain.Checkpoint, error) {
	if sweepID == "" {
		return nil, fmt.Errorf("sweepID cannot be empty")
	}

	data, err := os.ReadFile(s.path(sweepID, checkpointExt))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w: %w", domain.ErrCorruptCheckpoint, err)
	}
	return &cp, nil
}

// Delete removes the checkpoint file.
func (s *Store) Delete(ctx context.Context, sweepID string) error {
	if sweepID == "" {
		return fmt.Errorf("sweepID cannot be empty")
	}
	return removeIfExists(s.path(sweepID, checkpointExt))
}

// List returns the IDs of all stored checkpoints.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != checkpointExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, checkpointExt))
	}
	return ids, nil
}

// SetAutostart creates or removes the marker file.
func (s *Store) SetAutostart(ctx context.Context, sweepID string, on bool) error {
	path := s.path(sweepID, autostartExt)
	if !on {
		return removeIfExists(path)
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure checkpoint directory: %w", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return fmt.Errorf("failed to write autostart marker: %w", err)
	}
	return nil
}

// Autostart reports whether the marker file exists.
func (s *Store) Autostart(ctx context.Context, sweepID string) (bool, error) {
	_, err := os.Stat(s.path(sweepID, autostartExt))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat autostart marker: %w", err)
	}
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", filepath.Base(path), err)
	}
	return nil
}
