package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
)

// Runner implements ports.Solver by executing a local process.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithLogger configures a logger for the Runner.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new process Runner.
func NewRunner(cfg Config, opts ...RunnerOption) *Runner {
	r := &Runner{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the configured command in dir and waits for it.
//
// A nonzero exit is reported through SolverResult.ExitCode, not as an error.
// A run killed by the configured timeout reports exit code -1. Cancellation
// of ctx is returned as ctx.Err(). Anything else that prevents the process
// from running is domain.ErrSolverLaunch.
func (r *Runner) Run(ctx context.Context, dir string) (ports.SolverResult, error) {
	runCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	args := make([]string, len(r.cfg.Args))
	for i, a := range r.cfg.Args {
		args[i] = strings.ReplaceAll(a, "{dir}", dir)
	}

	cmd := exec.CommandContext(runCtx, r.cfg.Command, args...)
	cmd.Dir = dir
	cmd.Env = append(cmd.Environ(), r.env(dir)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := ports.SolverResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		res.ExitCode = -1
		return res, ctx.Err()
	}
	if runCtx.Err() != nil {
		r.logger.Warn("solver timed out", "dir", dir, "timeout", r.cfg.Timeout)
		res.ExitCode = -1
		return res, nil
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		res.ExitCode = -1
		return res, fmt.Errorf("%s: %w: %w", r.cfg.Command, domain.ErrSolverLaunch, err)
	}
}

func (r *Runner) env(dir string) []string {
	keys := make([]string, 0, len(r.cfg.Env))
	for k := range r.cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		env = append(env, k+"="+r.cfg.Env[k])
	}
	return append(env, "FIELDSWEEP_DIR="+dir)
}
