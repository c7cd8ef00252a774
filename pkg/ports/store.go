package ports

import (
	"context"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// CheckpointStore defines the interface for persisting sweep checkpoints.
// This is what makes an interrupted sweep resumable.
type CheckpointStore interface {
	// Save persists the checkpoint for a given sweep ID, replacing any previous one atomically.
	Save(ctx context.Context, sweepID string, cp *domain.Checkpoint) error

	// Load retrieves the checkpoint for a given sweep ID.
	// Returns domain.ErrCheckpointNotFound if the sweep has none.
	Load(ctx context.Context, sweepID string) (*domain.Checkpoint, error)

	// Delete removes the checkpoint for a given sweep ID. Deleting a missing checkpoint is not an error.
	Delete(ctx context.Context, sweepID string) error

	// List returns the IDs of all stored checkpoints.
	List(ctx context.Context) ([]string, error)
}

// AutostartMarker is a presence-only flag asking the next startup to resume without confirmation.
type AutostartMarker interface {
	SetAutostart(ctx context.Context, sweepID string, on bool) error
	Autostart(ctx context.Context, sweepID string) (bool, error)
}

// Store is a checkpoint backend that also keeps autostart markers.
type Store interface {
	CheckpointStore
	AutostartMarker
}
