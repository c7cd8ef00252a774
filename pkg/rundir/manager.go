// Package rundir lays out the per-point run directories of a sweep.
package rundir

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/fdf"
)

// Manager materializes point directories under a base directory.
// It only ever creates or overwrites files; it never deletes.
type Manager struct {
	baseDir string
	input   string
	aux     []string
	script  string
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithAuxFiles sets the files copied into every point directory.
func WithAuxFiles(paths ...string) Option {
	return func(m *Manager) {
		m.aux = append(m.aux, paths...)
	}
}

// WithScript sets the solver-invocation script copied into every point directory.
func WithScript(path string) Option {
	return func(m *Manager) {
		m.script = path
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a Manager for the given base directory and base input file.
func New(baseDir, input string, opts ...Option) *Manager {
	if baseDir == "" {
		baseDir = domain.DefaultBaseDir
	}
	m := &Manager{
		baseDir: baseDir,
		input:   input,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromCheckpoint creates a Manager from the file set recorded in cp.
// Relative base directories are resolved against root.
func FromCheckpoint(root string, cp *domain.Checkpoint, opts ...Option) *Manager {
	base := cp.BaseDir
	if base == "" {
		base = domain.DefaultBaseDir
	}
	if !filepath.IsAbs(base) {
		base = filepath.Join(root, base)
	}
	opts = append([]Option{WithAuxFiles(cp.AuxFiles...), WithScript(cp.Script)}, opts...)
	return New(base, cp.InputFile, opts...)
}

// BaseDir returns the directory point directories are created under.
func (m *Manager) BaseDir() string { return m.baseDir }

// Dir returns the directory of p.
func (m *Manager) Dir(p domain.SweepPoint) string {
	return filepath.Join(m.baseDir, p.Dir)
}

// Materialize creates the directory of p and fills it.
//
// For the first point the base input is written with its field block set to
// p.Field. Auxiliary files and the script are copied for every point, and
// existing copies are overwritten.
func (m *Manager) Materialize(p domain.SweepPoint, isFirst bool) (string, error) {
	dir := m.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	if isFirst {
		if err := m.writeFirstInput(dir, p.Field); err != nil {
			return "", err
		}
	}

	for _, src := range m.copies() {
		if err := copyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func (m *Manager) copies() []string {
	out := make([]string, 0, len(m.aux)+1)
	out = append(out, m.aux...)
	if m.script != "" {
		out = append(out, m.script)
	}
	return out
}

func (m *Manager) writeFirstInput(dir string, v domain.FieldVector) error {
	lines, err := fdf.ReadLines(m.input)
	if err != nil {
		return fmt.Errorf("failed to read base input: %w", err)
	}
	if nb, err := fdf.Locate(lines, fdf.ElectricField); err == nil && nb.Commented {
		m.logger.Debug("activating commented field block", "input", m.input, "line", nb.Start+1)
	}
	lines, err = fdf.Replace(lines, fdf.FieldBlock(v, false))
	if err != nil {
		return fmt.Errorf("failed to set field in %s: %w", m.input, err)
	}
	return fdf.WriteLines(filepath.Join(dir, filepath.Base(m.input)), lines)
}

// PrepareAll materializes every point up front.
func (m *Manager) PrepareAll(points []domain.SweepPoint) error {
	for i, p := range points {
		if _, err := m.Materialize(p, i == 0); err != nil {
			return fmt.Errorf("point %d: %w", p.Index, err)
		}
	}
	m.logger.Info("prepared run directories", "count", len(points), "base", m.baseDir)
	return nil
}

// Adopt copies a replacement input into dir and returns its new path.
func (m *Manager) Adopt(dir, src string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// ChainedInputName names the input synthesized for v from a base input path.
func ChainedInputName(base string, v domain.FieldVector) string {
	stem := strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
	r := strings.NewReplacer(".", "_", "-", "m")
	return fmt.Sprintf("%s_E_%s_%s_%s.fdf", stem,
		r.Replace(fmt.Sprintf("%.4f", v[0])),
		r.Replace(fmt.Sprintf("%.4f", v[1])),
		r.Replace(fmt.Sprintf("%.4f", v[2])),
	)
}
