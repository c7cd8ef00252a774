package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/fdf"
	"github.com/aretw0/fieldsweep/pkg/geometry"
	"github.com/aretw0/fieldsweep/pkg/rundir"
)

// prepare writes the input of p into dir, seeded from the outputs left in chain.
// Errors that an operator can resolve by supplying an input are reported as
// pausing errors; the returned verdict is what the extraction concluded.
func (m *Machine) prepare(chain, dir string, p domain.SweepPoint) (domain.Verdict, error) {
	if chain == "" {
		return "", fmt.Errorf("no completed point to chain from: %w", domain.ErrMissingPriorOutput)
	}
	logPath, inputPath, err := rundir.PriorOutputs(chain)
	if err != nil {
		return "", err
	}
	g, err := geometry.ExtractFiles(logPath, inputPath)
	if err != nil {
		return "", err
	}
	if !g.Complete() {
		return g.Verdict, fmt.Errorf("%s has no relaxed geometry: %w", filepath.Base(logPath), domain.ErrUnconvergedRun)
	}

	lines, err := fdf.ReadLines(inputPath)
	if err != nil {
		return g.Verdict, fmt.Errorf("failed to read prior input: %w", err)
	}
	field := fdf.FieldBlock(p.Field, true)
	lines, found, err := fdf.Rewrite(lines, field, fdf.LatticeBlock(g.Lattice), fdf.CoordinatesBlock(g.Coordinates))
	if err != nil {
		return g.Verdict, err
	}
	if !found[fdf.ElectricField] {
		lines = fdf.AppendBlock(lines, field)
	}

	m.mu.Lock()
	base := m.cp.InputFile
	m.mu.Unlock()

	target := filepath.Join(dir, rundir.ChainedInputName(base, p.Field))
	if err := fdf.WriteLines(target, lines); err != nil {
		return g.Verdict, fmt.Errorf("failed to write %s: %w", target, err)
	}
	m.logger.Debug("chained input written", "index", p.Index, "from", chain, "input", target)
	return g.Verdict, nil
}

// pausing reports whether err is resolved by asking for a replacement input.
func pausing(err error) bool {
	return errors.Is(err, domain.ErrUnconvergedRun) ||
		errors.Is(err, domain.ErrMissingPriorOutput) ||
		errors.Is(err, domain.ErrMalformedBlock)
}
