package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/fieldsweep/pkg/adapters/memory"
	"github.com/aretw0/fieldsweep/pkg/checkpoint"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
	"github.com/stretchr/testify/require"
)

const baseInput = `SystemName water
SystemLabel water
%block LatticeVectors
  10.0  0.0  0.0
   0.0 10.0  0.0
   0.0  0.0 10.0
%endblock LatticeVectors
%block AtomicCoordinatesAndAtomicSpecies
  0.0 0.0 0.0 1
%endblock AtomicCoordinatesAndAtomicSpecies
%block ExternalElectricField
  0.0 0.0 0.0 V/Ang
%endblock ExternalElectricField
`

const relaxedLog = `siesta: begin
outcoor: Relaxed atomic coordinates (Ang):
    0.50000000    0.60000000    0.70000000   1       1  O
outcell: Unit cell vectors (Ang):
       11.000000    0.000000    0.000000
        0.000000   11.000000    0.000000
        0.000000    0.000000   11.000000
siesta: The run has finished
`

const unrelaxedLog = `siesta: begin
outcoor: Final atomic coordinates (unrelaxed) (Ang):
    0.50000000    0.60000000    0.70000000   1       1  O
outcell: Unit cell vectors (Ang):
       11.000000    0.000000    0.000000
        0.000000   11.000000    0.000000
        0.000000    0.000000   11.000000
`

// behavior decides what the fake solver does for the n-th point it runs (0-based call order).
type behavior func(dir string) (ports.SolverResult, error)

func writesLog(log string) behavior {
	return func(dir string) (ports.SolverResult, error) {
		inputs, _ := filepath.Glob(filepath.Join(dir, "*.fdf"))
		sort.Strings(inputs)
		stem := strings.TrimSuffix(inputs[len(inputs)-1], ".fdf")
		if err := os.WriteFile(stem+".out", []byte(log), 0o644); err != nil {
			return ports.SolverResult{}, err
		}
		_ = os.WriteFile(filepath.Join(dir, "concluido.txt"), []byte("ok"), 0o644)
		return ports.SolverResult{Duration: time.Second}, nil
	}
}

func exits(code int) behavior {
	return func(string) (ports.SolverResult, error) {
		return ports.SolverResult{ExitCode: code}, nil
	}
}

type fakeSolver struct {
	mu     sync.Mutex
	dirs   []string
	script map[int]behavior
	before func(call int)
}

func (s *fakeSolver) Run(ctx context.Context, dir string) (ports.SolverResult, error) {
	s.mu.Lock()
	call := len(s.dirs)
	s.dirs = append(s.dirs, filepath.Base(dir))
	b, ok := s.script[call]
	before := s.before
	s.mu.Unlock()

	if before != nil {
		before(call)
	}
	if !ok {
		b = writesLog(relaxedLog)
	}
	return b(dir)
}

func (s *fakeSolver) ran() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dirs...)
}

type memLedger struct {
	mu       sync.Mutex
	attempts []domain.Attempt
}

func (l *memLedger) Record(_ context.Context, a domain.Attempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append(l.attempts, a)
	return nil
}

func (l *memLedger) Attempts(_ context.Context, _ string, _ int) ([]domain.Attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Attempt(nil), l.attempts...), nil
}

func (l *memLedger) outcomes() []domain.Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Outcome
	for _, a := range l.attempts {
		out = append(out, a.Outcome)
	}
	return out
}

type env struct {
	root string
	cp   *domain.Checkpoint
	mgr  *checkpoint.Manager
}

func newEnv(t *testing.T, fields ...domain.FieldVector) env {
	t.Helper()
	root := t.TempDir()
	input := filepath.Join(root, "water.fdf")
	psf := filepath.Join(root, "O.psf")
	require.NoError(t, os.WriteFile(input, []byte(baseInput), 0o644))
	require.NoError(t, os.WriteFile(psf, []byte("pseudo"), 0o644))

	cp := domain.NewCheckpoint(input, []string{psf}, "", fields)
	cp.BaseDir = filepath.Join(root, "calc")
	return env{root: root, cp: cp, mgr: checkpoint.NewManager(memory.NewStore())}
}

func zAxis(n int) []domain.FieldVector {
	out := make([]domain.FieldVector, n)
	for i := range out {
		out[i] = domain.FieldVector{0, 0, float64(i) * 0.1}
	}
	return out
}
