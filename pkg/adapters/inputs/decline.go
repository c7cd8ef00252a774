package inputs

import (
	"context"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// Decline answers every request by declining. It is the provider of
// unattended runs, where a pause stops the sweep.
type Decline struct{}

func (Decline) RequestInput(ctx context.Context, req domain.InputRequest) (string, error) {
	return "", domain.ErrInputDeclined
}

// AutoConfirm answers resume questions with a fixed answer.
type AutoConfirm bool

func (a AutoConfirm) ConfirmResume(ctx context.Context, cp *domain.Checkpoint) (bool, error) {
	return bool(a), nil
}
