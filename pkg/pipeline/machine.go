package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/adapters/inputs"
	"github.com/aretw0/fieldsweep/pkg/adapters/process"
	"github.com/aretw0/fieldsweep/pkg/checkpoint"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
	"github.com/aretw0/fieldsweep/pkg/rundir"
	"github.com/aretw0/fieldsweep/pkg/sweep"
	"github.com/google/uuid"
)

// Machine runs one sweep. It is driven by a single goroutine calling Run or
// Resume; Snapshot and Stop may be called concurrently from anywhere.
type Machine struct {
	sweepID     string
	checkpoints *checkpoint.Manager
	solver      ports.Solver
	inputs      ports.InputProvider
	ledger      ports.Ledger
	hooks       domain.LifecycleHooks
	root        string
	marker      string
	dirOpts     []rundir.Option
	logger      *slog.Logger
	now         func() time.Time

	stopped atomic.Bool

	mu         sync.Mutex
	cp         *domain.Checkpoint
	status     domain.Status
	index      int
	pending    *domain.InputRequest
	cancelWait context.CancelFunc
}

// New creates a Machine for the sweep described by cp.
// The machine owns a copy of cp; the caller's value is not modified.
func New(cp *domain.Checkpoint, solver ports.Solver, opts ...Option) *Machine {
	m := &Machine{
		sweepID: DefaultSweepID,
		cp:      cp.Clone(),
		solver:  solver,
		inputs:  inputs.Decline{},
		marker:  process.DefaultCompletionMarker,
		logger:  logging.NewNop(),
		now:     time.Now,
		status:  domain.StatusIdle,
		index:   -1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Checkpoint returns a copy of the current in-memory checkpoint.
func (m *Machine) Checkpoint() *domain.Checkpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cp.Clone()
}

// Snapshot returns the current status for interactive surfaces.
func (m *Machine) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := domain.Snapshot{
		Status:        m.status,
		Index:         m.index,
		Total:         len(m.cp.Fields),
		LastCompleted: m.cp.LastCompleted,
	}
	if m.pending != nil {
		req := *m.pending
		s.Pending = &req
	}
	return s
}

// Stop asks the machine to halt before the next point.
// A solver already running is left to finish; a pending input request is abandoned.
func (m *Machine) Stop() {
	m.stopped.Store(true)
	m.mu.Lock()
	cancel := m.cancelWait
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Resume runs the sweep from the point after the last completed one.
func (m *Machine) Resume(ctx context.Context) error {
	m.mu.Lock()
	fields := m.cp.Fields
	start := m.cp.NextIndex()
	m.mu.Unlock()
	return m.Run(ctx, sweep.Points(fields), start)
}

// Run walks points from start to the end.
//
// It returns nil when the sweep completes or is stopped, including a stop
// caused by a declined input request. Cancellation of ctx is returned as
// ctx.Err(). Only failures to lay out run directories or write inputs abort
// the run with an error.
func (m *Machine) Run(ctx context.Context, points []domain.SweepPoint, start int) error {
	if start < 0 {
		start = 0
	}
	if m.checkpoints != nil {
		release, err := m.checkpoints.Hold(ctx, m.sweepID)
		if err != nil {
			return err
		}
		defer release()
	}

	dirs := rundir.FromCheckpoint(m.root, m.Checkpoint(), append([]rundir.Option{rundir.WithLogger(m.logger)}, m.dirOpts...)...)

	// The chain directory is the last point that completed. On resume it is
	// the point just before start.
	chain := ""
	if start > 0 && start <= len(points) {
		chain = dirs.Dir(points[start-1])
	}

	m.logger.Info("sweep started", "sweep_id", m.sweepID, "start", start, "total", len(points))
	m.transition(ctx, domain.StatusRunning, start)

	for i := start; i < len(points); i++ {
		if m.stopped.Load() {
			return m.halt(ctx, i)
		}
		if err := ctx.Err(); err != nil {
			m.halt(ctx, i)
			return err
		}

		p := points[i]
		dir, err := dirs.Materialize(p, i == 0)
		if err != nil {
			m.halt(ctx, i)
			return fmt.Errorf("point %d: %w", i, err)
		}

		if i > 0 {
			verdict, err := m.prepare(chain, dir, p)
			if err != nil {
				if !pausing(err) {
					m.halt(ctx, i)
					return fmt.Errorf("point %d: %w", i, err)
				}
				m.record(ctx, p, dir, domain.OutcomePaused, 0, 0, verdict, err)
				proceed, err := m.pause(ctx, dirs, p, dir, err)
				if err != nil {
					m.halt(ctx, i)
					return err
				}
				if !proceed {
					return m.halt(ctx, i)
				}
			}
		}

		if m.launch(ctx, p, dir) {
			chain = dir
		}
		if err := ctx.Err(); err != nil {
			m.halt(ctx, i)
			return err
		}
	}

	m.complete(ctx, len(points))
	return nil
}

// launch runs the solver for one point and reports whether it succeeded.
func (m *Machine) launch(ctx context.Context, p domain.SweepPoint, dir string) bool {
	m.setIndex(p.Index)
	startEv := &domain.PointEvent{Timestamp: m.now(), Index: p.Index, Field: p.Field, Dir: dir}
	if m.hooks.OnPointStart != nil {
		m.hooks.OnPointStart(ctx, startEv)
	}
	m.logger.Info("running point", "index", p.Index, "field", p.Field.String(), "dir", dir)

	res, err := m.solver.Run(ctx, dir)

	outcome := domain.OutcomeSucceeded
	switch {
	case err != nil && ctx.Err() != nil:
		// Interrupted; the point neither failed nor completed.
		m.logger.Warn("solver interrupted", "index", p.Index, "err", err)
		return false
	case err != nil:
		outcome = domain.OutcomeLaunchError
		m.logger.Error("solver launch failed", "index", p.Index, "err", err)
	case res.ExitCode != 0:
		outcome = domain.OutcomeFailed
		err = fmt.Errorf("solver exited with code %d", res.ExitCode)
		m.logger.Error("point failed", "index", p.Index, "exit_code", res.ExitCode, "dir", dir)
	}

	m.record(ctx, p, dir, outcome, res.ExitCode, res.Duration, "", err)
	if m.hooks.OnPointDone != nil {
		m.hooks.OnPointDone(ctx, &domain.PointEvent{
			Timestamp: m.now(),
			Index:     p.Index,
			Field:     p.Field,
			Dir:       dir,
			Outcome:   outcome,
			Duration:  res.Duration,
			Err:       err,
		})
	}
	if outcome != domain.OutcomeSucceeded {
		return false
	}

	if m.marker != "" {
		if _, err := os.Stat(filepath.Join(dir, m.marker)); err != nil {
			m.logger.Warn("completion marker missing", "index", p.Index, "marker", m.marker, "dir", dir)
		}
	}

	m.mu.Lock()
	m.cp.LastCompleted = p.Index
	m.mu.Unlock()
	m.persist(ctx)
	m.logger.Info("point completed", "index", p.Index, "duration", res.Duration)
	return true
}

// pause blocks until the operator supplies an input or declines.
// It reports whether the point should be launched.
func (m *Machine) pause(ctx context.Context, dirs *rundir.Manager, p domain.SweepPoint, dir string, cause error) (bool, error) {
	req := domain.InputRequest{Index: p.Index, Dir: dir, Field: p.Field, Cause: cause.Error()}
	m.logger.Warn("point cannot be chained, waiting for input", "index", p.Index, "err", cause)

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	m.pending = &req
	m.cancelWait = cancel
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.pending = nil
		m.cancelWait = nil
		m.mu.Unlock()
	}()

	m.transition(ctx, domain.StatusPausedForInput, p.Index)
	if m.stopped.Load() {
		return false, nil
	}

	for {
		path, err := m.inputs.RequestInput(waitCtx, req)
		switch {
		case errors.Is(err, domain.ErrInputDeclined):
			m.logger.Info("replacement input declined", "index", p.Index)
			return false, nil
		case ctx.Err() != nil:
			return false, ctx.Err()
		case m.stopped.Load():
			return false, nil
		case err != nil:
			return false, fmt.Errorf("input request for point %d: %w", p.Index, err)
		}

		adopted, err := dirs.Adopt(dir, path)
		if err != nil {
			m.logger.Error("failed to adopt replacement input", "index", p.Index, "path", path, "err", err)
			req.Cause = err.Error()
			continue
		}
		// The solver picks the newest input in the directory.
		now := m.now()
		if err := os.Chtimes(adopted, now, now); err != nil {
			m.logger.Warn("failed to touch adopted input", "index", p.Index, "path", adopted, "err", err)
		}

		m.mu.Lock()
		m.cp.InputFile = adopted
		m.mu.Unlock()
		m.persist(ctx)
		m.logger.Info("replacement input adopted", "index", p.Index, "path", adopted)

		m.transition(ctx, domain.StatusRunning, p.Index)
		return true, nil
	}
}

func (m *Machine) complete(ctx context.Context, total int) {
	m.mu.Lock()
	m.cp.LastCompleted = -1
	m.mu.Unlock()

	if m.checkpoints != nil {
		if err := m.checkpoints.Reset(ctx, m.sweepID); err != nil {
			m.logger.Error("failed to remove checkpoint", "sweep_id", m.sweepID, "err", err)
		}
	}
	m.transition(ctx, domain.StatusCompleted, total)
	m.logger.Info("sweep completed", "sweep_id", m.sweepID, "total", total)
}

func (m *Machine) halt(ctx context.Context, index int) error {
	m.transition(ctx, domain.StatusStopped, index)
	m.logger.Info("sweep stopped", "sweep_id", m.sweepID, "index", index)
	return nil
}

// persist saves the checkpoint. Failures are logged; the sweep goes on and
// the point may be repeated after a restart.
func (m *Machine) persist(ctx context.Context) {
	if m.checkpoints == nil {
		return
	}
	cp := m.Checkpoint()
	if err := m.checkpoints.Save(context.WithoutCancel(ctx), m.sweepID, cp); err != nil {
		m.logger.Error("failed to save checkpoint", "sweep_id", m.sweepID, "index", cp.LastCompleted, "err", err)
	}
}

func (m *Machine) record(ctx context.Context, p domain.SweepPoint, dir string, outcome domain.Outcome, code int, d time.Duration, verdict domain.Verdict, cause error) {
	if m.ledger == nil {
		return
	}
	a := domain.Attempt{
		ID:        uuid.NewString(),
		SweepID:   m.sweepID,
		Index:     p.Index,
		Field:     p.Field,
		Dir:       dir,
		Outcome:   outcome,
		ExitCode:  code,
		Duration:  d,
		Verdict:   verdict,
		StartedAt: m.now().Add(-d),
	}
	if cause != nil {
		a.Error = cause.Error()
	}
	if err := m.ledger.Record(context.WithoutCancel(ctx), a); err != nil {
		m.logger.Warn("failed to record attempt", "index", p.Index, "err", err)
	}
}

func (m *Machine) setIndex(i int) {
	m.mu.Lock()
	m.index = i
	m.mu.Unlock()
}

func (m *Machine) transition(ctx context.Context, to domain.Status, index int) {
	m.mu.Lock()
	from := m.status
	m.status = to
	m.index = index
	m.mu.Unlock()

	if from == to {
		return
	}
	if m.hooks.OnTransition != nil {
		m.hooks.OnTransition(ctx, &domain.TransitionEvent{Timestamp: m.now(), From: from, To: to, Index: index})
	}
}
