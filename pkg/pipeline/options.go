package pipeline

import (
	"log/slog"
	"time"

	"github.com/aretw0/fieldsweep/pkg/checkpoint"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
	"github.com/aretw0/fieldsweep/pkg/rundir"
)

// DefaultSweepID is the checkpoint key used when none is given.
const DefaultSweepID = "default"

// Option configures the Machine.
type Option func(*Machine)

// WithCheckpoints persists progress through mgr under sweepID.
// Without it the machine keeps its progress in memory only.
func WithCheckpoints(mgr *checkpoint.Manager, sweepID string) Option {
	return func(m *Machine) {
		m.checkpoints = mgr
		if sweepID != "" {
			m.sweepID = sweepID
		}
	}
}

// WithInputProvider sets who is asked for a corrected input when a point cannot be chained.
// The default declines, which stops the sweep at the first pause.
func WithInputProvider(p ports.InputProvider) Option {
	return func(m *Machine) {
		m.inputs = p
	}
}

// WithLedger records every attempt.
func WithLedger(l ports.Ledger) Option {
	return func(m *Machine) {
		m.ledger = l
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = h
	}
}

// WithRoot sets the directory a relative base directory is resolved against.
func WithRoot(root string) Option {
	return func(m *Machine) {
		m.root = root
	}
}

// WithCompletionMarker sets the file a successful solver run is expected to leave behind.
// An empty name disables the check.
func WithCompletionMarker(name string) Option {
	return func(m *Machine) {
		m.marker = name
	}
}

// WithRunDirOptions passes options to the run directory manager.
func WithRunDirOptions(opts ...rundir.Option) Option {
	return func(m *Machine) {
		m.dirOpts = append(m.dirOpts, opts...)
	}
}

// WithLogger configures a logger for the Machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithClock overrides the clock used for events and attempts.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}
