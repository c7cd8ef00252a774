package fdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// NamedBlock is the location of a block, inclusive of both markers.
type NamedBlock struct {
	Start     int
	End       int
	Commented bool
}

// Locate finds the first occurrence of the named block.
// The first line mentioning name is taken as the start.
func Locate(lines []string, name string) (NamedBlock, error) {
	for i, line := range lines {
		if !strings.Contains(line, name) {
			continue
		}
		nb := NamedBlock{Start: i, End: -1, Commented: isComment(line)}
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], "%endblock "+name) {
				nb.End = j
				return nb, nil
			}
		}
		return nb, fmt.Errorf("%s at line %d: %w", name, i+1, domain.ErrMalformedBlock)
	}
	return NamedBlock{Start: -1, End: -1}, fmt.Errorf("%s: %w", name, domain.ErrBlockNotFound)
}

// Replace returns a copy of lines with the named block replaced by block.
//
// An existing block, commented or not, is replaced at its position, which
// leaves it active. A missing
// block is inserted with a header comment before the first substantive line.
// A block with no end marker is refused and lines are left untouched.
func Replace(lines []string, block Block) ([]string, error) {
	nb, err := Locate(lines, block.Name)
	switch {
	case err == nil:
		out := make([]string, 0, len(lines)-(nb.End-nb.Start+1)+len(block.Body)+2)
		out = append(out, lines[:nb.Start]...)
		out = append(out, block.Lines()...)
		out = append(out, lines[nb.End+1:]...)
		return out, nil
	case errors.Is(err, domain.ErrBlockNotFound):
		pos := firstSubstantive(lines)
		out := make([]string, 0, len(lines)+len(block.Body)+3)
		out = append(out, lines[:pos]...)
		out = append(out, header(block.Name))
		out = append(out, block.Lines()...)
		out = append(out, lines[pos:]...)
		return out, nil
	default:
		return lines, err
	}
}

func firstSubstantive(lines []string) int {
	for i, l := range lines {
		if strings.TrimSpace(l) != "" && !isComment(l) {
			return i
		}
	}
	return 0
}

var headers = map[string]string{
	ElectricField:     "ELECTRIC FIELD",
	LatticeVectors:    "LATTICE VECTORS",
	AtomicCoordinates: "ATOMIC COORDINATES",
}

func header(name string) string {
	title, ok := headers[name]
	if !ok {
		title = strings.ToUpper(name)
	}
	return "# -- " + title + " --"
}
