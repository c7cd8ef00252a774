// Package solver runs the solver binary inside one point directory.
//
// It is what the per-point invocation script used to do: feed the newest
// input to the solver, capture its log, retry with a restart flag when a
// density matrix from an earlier attempt exists, and leave a completion
// marker when the log shows the run finished.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/adapters/process"
)

// StateFile keeps the attempt counter of a point directory.
const StateFile = ".fieldsweep-solve.json"

// DefaultRestartFlag is passed when a restart is possible.
const DefaultRestartFlag = "-Diagon-restart"

// tailSize is how much of the end of the log is scanned for success markers.
const tailSize = 4096

// SuccessMarkers are the lines a finished solver log ends with.
var SuccessMarkers = []string{
	"siesta: The run has finished",
	">> End of run",
	"Job completed",
}

// ErrIncomplete is returned when the solver exited but its log does not show a finished run.
var ErrIncomplete = errors.New("solver run did not finish")

// ErrNoInput is returned when the directory holds no input file.
var ErrNoInput = errors.New("no .fdf input in directory")

// State is persisted in StateFile between attempts.
type State struct {
	Attempts    int       `json:"attempts"`
	LastInput   string    `json:"last_input"`
	LastStarted time.Time `json:"last_started"`
}

// Wrapper runs the solver binary.
type Wrapper struct {
	binary      string
	args        []string
	restartFlag string
	marker      string
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures the Wrapper.
type Option func(*Wrapper)

// WithArgs adds arguments passed to the binary on every attempt.
func WithArgs(args ...string) Option {
	return func(w *Wrapper) {
		w.args = append(w.args, args...)
	}
}

// WithRestartFlag overrides DefaultRestartFlag. An empty flag disables restarts.
func WithRestartFlag(flag string) Option {
	return func(w *Wrapper) {
		w.restartFlag = flag
	}
}

// WithMarker overrides the completion marker file name.
func WithMarker(name string) Option {
	return func(w *Wrapper) {
		w.marker = name
	}
}

// WithLogger configures a logger for the Wrapper.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wrapper) {
		w.logger = logger
	}
}

// WithClock overrides the clock used for the marker timestamp.
func WithClock(now func() time.Time) Option {
	return func(w *Wrapper) {
		w.now = now
	}
}

// New creates a Wrapper around binary.
func New(binary string, opts ...Option) *Wrapper {
	w := &Wrapper{
		binary:      binary,
		restartFlag: DefaultRestartFlag,
		marker:      process.DefaultCompletionMarker,
		logger:      logging.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run solves the newest input in dir.
// It returns nil only when the log shows a finished run.
func (w *Wrapper) Run(ctx context.Context, dir string) error {
	input, err := NewestInput(dir)
	if err != nil {
		return err
	}
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	logPath := stem + ".out"

	state, err := loadState(dir)
	if err != nil {
		return err
	}
	args := append([]string(nil), w.args...)
	if w.restartFlag != "" && state.Attempts > 0 && fileExists(stem+".DM") {
		args = append(args, w.restartFlag)
		w.logger.Info("restarting from density matrix", "dir", dir, "attempt", state.Attempts+1)
	}
	state.Attempts++
	state.LastInput = filepath.Base(input)
	state.LastStarted = w.now().UTC()
	if err := saveState(dir, state); err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()
	out, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log: %w", err)
	}
	defer out.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, w.binary, args...)
	cmd.Dir = dir
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = &stderr

	w.logger.Info("solver started", "binary", w.binary, "input", filepath.Base(input), "log", filepath.Base(logPath))
	start := w.now()
	runErr := cmd.Run()
	w.logger.Info("solver exited", "duration", w.now().Sub(start), "err", runErr)
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return fmt.Errorf("failed to run %s: %w", w.binary, runErr)
		}
		if s := strings.TrimSpace(stderr.String()); s != "" {
			w.logger.Warn("solver stderr", "output", s)
		}
	}

	if err := out.Sync(); err != nil {
		return err
	}
	if err := CheckStatus(logPath); err != nil {
		if runErr != nil {
			return fmt.Errorf("%w: %v", err, runErr)
		}
		return err
	}
	return w.writeMarker(dir)
}

func (w *Wrapper) writeMarker(dir string) error {
	body := fmt.Sprintf("completed %s\n", w.now().Format(time.RFC3339))
	if err := os.WriteFile(filepath.Join(dir, w.marker), []byte(body), 0644); err != nil {
		return fmt.Errorf("failed to write completion marker: %w", err)
	}
	return nil
}

// CheckStatus reports whether the log at path shows a finished run.
func CheckStatus(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	offset := fi.Size() - tailSize
	if offset < 0 {
		offset = 0
	}
	tail, err := io.ReadAll(io.NewSectionReader(f, offset, fi.Size()-offset))
	if err != nil {
		return err
	}
	for _, m := range SuccessMarkers {
		if bytes.Contains(tail, []byte(m)) {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", filepath.Base(path), ErrIncomplete)
}

// NewestInput returns the most recently modified .fdf file in dir.
func NewestInput(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.fdf"))
	if err != nil {
		return "", err
	}
	var (
		newest string
		mtime  time.Time
	)
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			continue
		}
		if newest == "" || fi.ModTime().After(mtime) {
			newest, mtime = m, fi.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%s: %w", dir, ErrNoInput)
	}
	return newest, nil
}

func loadState(dir string) (State, error) {
	var s State
	data, err := os.ReadFile(filepath.Join(dir, StateFile))
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, nil
	}
	return s, nil
}

func saveState(dir string, s State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, StateFile), data, 0644)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
