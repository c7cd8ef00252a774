// Package geometry extracts the final structure from a solver log.
//
// The number of lattice vectors printed after "outcell: Unit cell vectors"
// is not marked in the log itself. It is taken from the LatticeVectors block
// of the input that produced the log, so the log and the input must belong
// to the same run.
package geometry

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unicode"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/fdf"
)

// Log markers.
const (
	MarkerRelaxed   = "outcoor: Relaxed atomic coordinates (Ang):"
	MarkerUnrelaxed = "outcoor: Final atomic coordinates (unrelaxed) (Ang):"
	MarkerCell      = "outcell: Unit cell vectors (Ang):"
)

type scanState int

const (
	seeking scanState = iota
	inCoords
	inCell
)

// CountLatticeVectors counts the vector lines of the first LatticeVectors block.
// Blank and comment lines are not counted. A missing block counts as zero.
func CountLatticeVectors(input []string) int {
	count := 0
	in := false
	for _, line := range input {
		if !in {
			in = fdf.IsBlockStart(line, fdf.LatticeVectors)
			continue
		}
		if strings.Contains(line, "%endblock "+fdf.LatticeVectors) {
			break
		}
		t := strings.TrimSpace(line)
		if t != "" && !strings.HasPrefix(t, "#") && !strings.HasPrefix(t, "!") {
			count++
		}
	}
	return count
}

// Extract scans log for the last printed geometry.
//
// Each coordinates marker discards what was buffered before it, so the
// result always reflects the last section of the log. Coordinate lines keep
// their first four fields. The cell section is read for exactly n lines,
// where n comes from CountLatticeVectors on the matching input.
func Extract(log []string, n int) domain.GeometryResult {
	unrelaxed := domain.GeometryResult{Verdict: domain.VerdictUnrelaxed}
	if n == 0 {
		return unrelaxed
	}

	var (
		state     = seeking
		candidate = domain.VerdictUnrelaxed
		coordBuf  []string
		cellBuf   []string
		coords    []string
		lattice   []string
	)

	for _, line := range log {
		switch {
		case strings.Contains(line, MarkerRelaxed):
			coordBuf, state, candidate = nil, inCoords, domain.VerdictRelaxed
			continue
		case strings.Contains(line, MarkerUnrelaxed):
			coordBuf, state, candidate = nil, inCoords, domain.VerdictUnrelaxed
			continue
		}

		switch state {
		case inCoords:
			if strings.Contains(line, MarkerCell) {
				coords = coordinateLines(coordBuf)
				cellBuf = nil
				state = inCell
				continue
			}
			coordBuf = append(coordBuf, line)
		case inCell:
			if len(cellBuf) < n {
				cellBuf = append(cellBuf, line)
			}
			if len(cellBuf) == n {
				lattice = cellLines(cellBuf)
				state = seeking
			}
		}
	}
	// Log truncated inside the cell section.
	if state == inCell {
		lattice = cellLines(cellBuf)
	}

	if len(coords) == 0 {
		return unrelaxed
	}
	return domain.GeometryResult{Lattice: lattice, Coordinates: coords, Verdict: candidate}
}

func coordinateLines(buf []string) []string {
	var out []string
	for _, line := range buf {
		if strings.Contains(line, "outcoor:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 4 {
			continue
		}
		out = append(out, strings.Join(parts[:4], " "))
	}
	return out
}

func cellLines(buf []string) []string {
	var out []string
	for _, line := range buf {
		if strings.Contains(line, "outcell:") || strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, strings.TrimLeftFunc(line, unicode.IsSpace))
	}
	return out
}

// ExtractFiles reads the input and log of a finished run and extracts its geometry.
// A missing file is reported as ErrMissingPriorOutput.
func ExtractFiles(logPath, inputPath string) (domain.GeometryResult, error) {
	input, err := fdf.ReadLines(inputPath)
	if err != nil {
		return domain.GeometryResult{}, wrapMissing(inputPath, err)
	}
	log, err := fdf.ReadLines(logPath)
	if err != nil {
		return domain.GeometryResult{}, wrapMissing(logPath, err)
	}
	return Extract(log, CountLatticeVectors(input)), nil
}

func wrapMissing(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, domain.ErrMissingPriorOutput)
	}
	return fmt.Errorf("read %s: %w", path, err)
}
