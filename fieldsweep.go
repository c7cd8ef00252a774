package fieldsweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/adapters/memory"
	"github.com/aretw0/fieldsweep/pkg/checkpoint"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/pipeline"
	"github.com/aretw0/fieldsweep/pkg/ports"
)

// SolverFunc adapts a function to ports.Solver.
type SolverFunc func(ctx context.Context, dir string) (ports.SolverResult, error)

// Run calls f.
func (f SolverFunc) Run(ctx context.Context, dir string) (ports.SolverResult, error) {
	return f(ctx, dir)
}

// Engine is the high-level entry point for running sweeps as a library.
// It owns a checkpoint manager and builds one pipeline per run.
type Engine struct {
	solver   ports.Solver
	store    ports.Store
	sweepID  string
	inputs   ports.InputProvider
	ledger   ports.Ledger
	hooks    domain.LifecycleHooks
	root     string
	logger   *slog.Logger
	manager  *checkpoint.Manager
	mgrOpts  []checkpoint.Option
	pipeOpts []pipeline.Option

	mu      sync.Mutex
	machine *pipeline.Machine
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets where checkpoints are kept. The default is in memory.
func WithStore(s ports.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker guards each sweep with a cross-process lock.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.mgrOpts = append(e.mgrOpts, checkpoint.WithLocker(l))
	}
}

// WithSweepID sets the checkpoint key (default: "default").
func WithSweepID(id string) Option {
	return func(e *Engine) {
		e.sweepID = id
	}
}

// WithInputProvider sets who is asked for a replacement input when a point
// cannot be chained. Without one the sweep stops.
func WithInputProvider(p ports.InputProvider) Option {
	return func(e *Engine) {
		e.inputs = p
	}
}

// WithLedger records every solver attempt.
func WithLedger(l ports.Ledger) Option {
	return func(e *Engine) {
		e.ledger = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRoot sets the directory relative run directories are created under.
func WithRoot(root string) Option {
	return func(e *Engine) {
		e.root = root
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPipelineOptions passes options straight to the pipeline.
func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(e *Engine) {
		e.pipeOpts = append(e.pipeOpts, opts...)
	}
}

// New initializes an Engine around solver.
func New(solver ports.Solver, opts ...Option) (*Engine, error) {
	if solver == nil {
		return nil, errors.New("a solver is required")
	}
	e := &Engine{
		solver:  solver,
		sweepID: pipeline.DefaultSweepID,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	e.manager = checkpoint.NewManager(e.store, append([]checkpoint.Option{checkpoint.WithLogger(e.logger)}, e.mgrOpts...)...)
	return e, nil
}

// Checkpoints returns the manager of the engine's checkpoint store.
func (e *Engine) Checkpoints() *checkpoint.Manager {
	return e.manager
}

// Start stores cp as a new sweep and runs it from its next point.
func (e *Engine) Start(ctx context.Context, cp *domain.Checkpoint) error {
	if cp == nil || len(cp.Fields) == 0 {
		return errors.New("a sweep needs at least one field vector")
	}
	if err := e.manager.Save(ctx, e.sweepID, cp); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return e.run(ctx, cp)
}

// Resume runs the stored sweep if there is one and confirm approves it.
// It reports whether a sweep was resumed.
func (e *Engine) Resume(ctx context.Context, confirm ports.Confirmer) (bool, error) {
	cp, err := pipeline.Bootstrap(ctx, e.manager, e.sweepID, confirm)
	if err != nil || cp == nil {
		return false, err
	}
	return true, e.run(ctx, cp)
}

func (e *Engine) run(ctx context.Context, cp *domain.Checkpoint) error {
	opts := []pipeline.Option{
		pipeline.WithCheckpoints(e.manager, e.sweepID),
		pipeline.WithHooks(e.hooks),
		pipeline.WithRoot(e.root),
		pipeline.WithLogger(e.logger),
	}
	if e.inputs != nil {
		opts = append(opts, pipeline.WithInputProvider(e.inputs))
	}
	if e.ledger != nil {
		opts = append(opts, pipeline.WithLedger(e.ledger))
	}
	m := pipeline.New(cp, e.solver, append(opts, e.pipeOpts...)...)

	e.mu.Lock()
	e.machine = m
	e.mu.Unlock()

	return m.Resume(ctx)
}

// Snapshot returns the status of the current run, or an idle snapshot before the first.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	m := e.machine
	e.mu.Unlock()
	if m == nil {
		return domain.Snapshot{Status: domain.StatusIdle, Index: -1, LastCompleted: -1}
	}
	return m.Snapshot()
}

// Stop asks the current run to halt after the running point.
func (e *Engine) Stop() {
	e.mu.Lock()
	m := e.machine
	e.mu.Unlock()
	if m != nil {
		m.Stop()
	}
}
