package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/sweep"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// DefaultSweepFile is looked up in the working directory when no sweep file is given.
const DefaultSweepFile = "sweep.hcl"

// Sweep is a sweep definition: generated axes plus explicit points.
type Sweep struct {
	Axes   domain.SweepConfig
	Points []domain.FieldVector
}

// Fields expands the definition into the ordered field list.
// Generated points come first. Explicit points alone replace the generated
// zero point an empty definition would produce.
func (s Sweep) Fields() []domain.FieldVector {
	active := s.Axes.X.Active || s.Axes.Y.Active || s.Axes.Z.Active
	var out []domain.FieldVector
	if active || len(s.Points) == 0 {
		out = sweep.Generate(s.Axes)
	}
	return append(out, s.Points...)
}

type sweepFile struct {
	Axes   []*axisBlock `hcl:"axis,block"`
	Points [][]float64  `hcl:"points,optional"`
	Remain hcl.Body     `hcl:",remain"`
}

type axisBlock struct {
	Name  string  `hcl:"name,label"`
	Start float64 `hcl:"start,optional"`
	End   float64 `hcl:"end,optional"`
	Step  float64 `hcl:"step,optional"`
}

// LoadSweep parses an HCL sweep definition:
//
//	axis "z" {
//	  start = 0
//	  end   = 0.5
//	  step  = 0.1
//	}
//	points = [[0.1, 0, 0]]
func LoadSweep(path string) (Sweep, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Sweep{}, fmt.Errorf("failed to parse sweep file %s: %w", path, diags)
	}
	var root sweepFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return Sweep{}, fmt.Errorf("failed to decode sweep file %s: %w", path, diags)
	}

	var s Sweep
	for _, a := range root.Axes {
		spec := domain.AxisSpec{Start: a.Start, End: a.End, Step: a.Step, Active: true}
		if err := sweep.ValidateAxis(spec); err != nil {
			return Sweep{}, fmt.Errorf("%s: axis %q: %w", path, a.Name, err)
		}
		if err := setAxis(&s.Axes, a.Name, spec); err != nil {
			return Sweep{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	for i, p := range root.Points {
		if len(p) != 3 {
			return Sweep{}, fmt.Errorf("%s: point %d has %d components, want 3", path, i, len(p))
		}
		for _, c := range p {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return Sweep{}, fmt.Errorf("%s: point %d is not finite", path, i)
			}
		}
		s.Points = append(s.Points, domain.FieldVector{p[0], p[1], p[2]})
	}
	return s, nil
}

func setAxis(cfg *domain.SweepConfig, name string, spec domain.AxisSpec) error {
	switch strings.ToLower(name) {
	case "x":
		cfg.X = spec
	case "y":
		cfg.Y = spec
	case "z":
		cfg.Z = spec
	default:
		return fmt.Errorf("unknown axis %q", name)
	}
	return nil
}

// ParseAxis parses "start:end:step" as an active axis.
// A single value "v" is the axis fixed at v.
func ParseAxis(s string) (domain.AxisSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 1 && len(parts) != 3 {
		return domain.AxisSpec{}, fmt.Errorf("axis %q: want start:end:step", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.AxisSpec{}, fmt.Errorf("axis %q: %w", s, err)
		}
		vals[i] = v
	}
	spec := domain.AxisSpec{Start: vals[0], End: vals[0], Active: true}
	if len(vals) == 3 {
		spec = domain.AxisSpec{Start: vals[0], End: vals[1], Step: vals[2], Active: true}
	}
	if err := sweep.ValidateAxis(spec); err != nil {
		return domain.AxisSpec{}, fmt.Errorf("axis %q: %w", s, err)
	}
	return spec, nil
}

// SetAxisFlag applies a parsed axis flag to s.
func (s *Sweep) SetAxisFlag(name, value string) error {
	spec, err := ParseAxis(value)
	if err != nil {
		return err
	}
	return setAxis(&s.Axes, name, spec)
}
