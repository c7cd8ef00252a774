package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/fieldsweep/internal/config"
	"github.com/aretw0/fieldsweep/pkg/adapters/badger"
	"github.com/aretw0/fieldsweep/pkg/adapters/file"
	"github.com/aretw0/fieldsweep/pkg/adapters/memory"
	"github.com/aretw0/fieldsweep/pkg/adapters/process"
	"github.com/aretw0/fieldsweep/pkg/adapters/redis"
	"github.com/aretw0/fieldsweep/pkg/adapters/sqlite"
	"github.com/aretw0/fieldsweep/pkg/checkpoint"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/persistence/middleware"
	"github.com/aretw0/fieldsweep/pkg/ports"
)

// OpenCheckpoints builds the checkpoint manager for the configured backend.
// The returned closer releases the backend.
func (a *App) OpenCheckpoints() (*checkpoint.Manager, func() error, error) {
	sc := a.Config.Store
	closer := func() error { return nil }

	var (
		store ports.Store
		opts  = []checkpoint.Option{checkpoint.WithLogger(a.Logger)}
	)
	switch sc.Backend {
	case config.BackendFile, "":
		store = file.New(resolve(a.Root, sc.Path))
	case config.BackendMemory:
		store = memory.NewStore()
	case config.BackendBadger:
		db, err := badger.Open(badger.Config{
			Path:       resolve(a.Root, sc.Path),
			SyncWrites: true,
			Logger:     a.Logger,
		})
		if err != nil {
			return nil, nil, err
		}
		store, closer = db, db.Close
	case config.BackendRedis:
		rs := redis.New(sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB, redis.WithPrefix(sc.Redis.Prefix))
		store, closer = rs, rs.Close
		opts = append(opts, checkpoint.WithLocker(redis.NewLocker(rs.Client(), sc.Redis.Prefix)))
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}

	if sc.Checksum {
		store = middleware.Chain(store, middleware.NewChecksumMiddleware())
	}
	a.Logger.Debug("checkpoint store ready", "backend", sc.Backend)
	return checkpoint.NewManager(store, opts...), closer, nil
}

// OpenLedger opens the attempt ledger. It returns nil when none is configured.
func (a *App) OpenLedger() (*sqlite.Ledger, error) {
	if a.Config.Ledger.Path == "" {
		return nil, nil
	}
	return sqlite.Open(resolve(a.Root, a.Config.Ledger.Path), sqlite.WithLogger(a.Logger))
}

// Solver builds the process runner that launches the solver in a point directory.
// A sweep with an invocation script runs it with sh unless a command is
// configured; the command "fieldsweep" is resolved to the running executable.
func (a *App) Solver(script string) (*process.Runner, error) {
	cfg := a.Config.Solver
	if cfg.Command == config.SelfCommand && script != "" && a.Config.Script == "" {
		cfg.Command = "sh"
		cfg.Args = []string{filepath.Base(script)}
	}
	if cfg.Command == config.SelfCommand {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate the fieldsweep executable: %w", err)
		}
		cfg.Command = self
		// The wrapper must leave the marker the pipeline looks for.
		env := map[string]string{"FIELDSWEEP_SOLVER__COMPLETION_MARKER": a.markerName()}
		for k, v := range cfg.Env {
			env[k] = v
		}
		cfg.Env = env
	}
	return process.NewRunner(cfg, process.WithLogger(a.Logger)), nil
}

// newCheckpoint builds a fresh checkpoint from the configuration and sweep.
// File paths are made absolute so a resumed sweep does not depend on the
// working directory.
func (a *App) newCheckpoint(s config.Sweep) (*domain.Checkpoint, error) {
	c := a.Config
	if c.Input == "" {
		return nil, errors.New("no input file configured (set input or pass --input)")
	}
	cp := domain.NewCheckpoint(
		resolve(a.Root, c.Input),
		resolveAll(a.Root, c.Aux),
		resolve(a.Root, c.Script),
		s.Fields(),
	)
	if c.BaseDir != "" {
		cp.BaseDir = c.BaseDir
	}
	axes := s.Axes
	cp.Axes = &axes

	for _, path := range append([]string{cp.InputFile, cp.Script}, cp.AuxFiles...) {
		if path != "" && !fileExists(path) {
			return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
		}
	}
	return cp, nil
}
