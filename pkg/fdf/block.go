package fdf

import (
	"fmt"
	"strings"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// Block names understood by the pipeline.
const (
	ElectricField     = "ExternalElectricField"
	LatticeVectors    = "LatticeVectors"
	AtomicCoordinates = "AtomicCoordinatesAndAtomicSpecies"
)

const indent = "    "

// Block is a named block with its body lines, markers excluded.
type Block struct {
	Name string
	Body []string
}

// Lines renders the block including its start and end markers.
func (b Block) Lines() []string {
	out := make([]string, 0, len(b.Body)+2)
	out = append(out, "%block "+b.Name)
	out = append(out, b.Body...)
	out = append(out, "%endblock "+b.Name)
	return out
}

// FieldBlock builds the electric-field block for v.
func FieldBlock(v domain.FieldVector, indented bool) Block {
	line := fmt.Sprintf("%.6f %.6f %.6f V/Ang", v[0], v[1], v[2])
	if indented {
		line = indent + line
	}
	return Block{Name: ElectricField, Body: []string{line}}
}

// LatticeBlock builds a LatticeVectors block from extracted lines.
func LatticeBlock(lines []string) Block {
	return Block{Name: LatticeVectors, Body: reindent(lines)}
}

// CoordinatesBlock builds an AtomicCoordinatesAndAtomicSpecies block from extracted lines.
func CoordinatesBlock(lines []string) Block {
	return Block{Name: AtomicCoordinates, Body: reindent(lines)}
}

func reindent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = indent + strings.TrimSpace(l)
	}
	return out
}

// IsBlockStart reports whether line opens the named block, commented or not.
func IsBlockStart(line, name string) bool {
	return strings.Contains(line, name) && strings.Contains(line, "%block")
}

func isBlockEnd(line, name string) bool {
	return strings.Contains(line, "endblock "+name)
}

func isComment(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "#") || strings.HasPrefix(t, "!")
}
