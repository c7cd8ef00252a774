package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/fieldsweep/pkg/checkpoint"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
)

// Bootstrap decides at startup whether a stored sweep should be resumed.
//
// It returns the checkpoint to resume, or nil when there is nothing to
// resume. A checkpoint with the autostart marker is resumed without asking;
// otherwise confirm must approve, and a refusal deletes the checkpoint. A
// marker without a checkpoint is cleared and reported as
// domain.ErrChecksumlessCheckpoint.
func Bootstrap(ctx context.Context, mgr *checkpoint.Manager, sweepID string, confirm ports.Confirmer) (*domain.Checkpoint, error) {
	auto, err := mgr.Autostart(ctx, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to read autostart marker: %w", err)
	}

	cp, err := mgr.Load(ctx, sweepID)
	if errors.Is(err, domain.ErrCheckpointNotFound) {
		if auto {
			if err := mgr.SetAutostart(ctx, sweepID, false); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("sweep %s: %w", sweepID, domain.ErrChecksumlessCheckpoint)
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if auto {
		return cp, nil
	}
	if confirm != nil {
		ok, err := confirm.ConfirmResume(ctx, cp)
		if err != nil {
			return nil, err
		}
		if ok {
			return cp, nil
		}
	}
	if err := mgr.Delete(ctx, sweepID); err != nil {
		return nil, err
	}
	return nil, nil
}
