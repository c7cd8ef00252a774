package ports

import (
	"context"
	"time"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// SolverResult is what the pipeline learns from one solver run.
type SolverResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Solver runs the external solver with dir as its working directory and waits for it.
// A process that could not be started is reported as domain.ErrSolverLaunch;
// a process that ran and exited nonzero is not an error.
type Solver interface {
	Run(ctx context.Context, dir string) (SolverResult, error)
}

// InputProvider obtains a replacement input from an operator.
// It blocks until a path is supplied, the operator declines (domain.ErrInputDeclined)
// or the context is canceled.
type InputProvider interface {
	RequestInput(ctx context.Context, req domain.InputRequest) (string, error)
}

// Confirmer asks the operator whether an existing checkpoint should be resumed.
type Confirmer interface {
	ConfirmResume(ctx context.Context, cp *domain.Checkpoint) (bool, error)
}

// Ledger records solver attempts.
type Ledger interface {
	Record(ctx context.Context, a domain.Attempt) error
	// Attempts returns the attempts of a sweep, oldest first. A limit of zero means all.
	Attempts(ctx context.Context, sweepID string, limit int) ([]domain.Attempt, error)
}
