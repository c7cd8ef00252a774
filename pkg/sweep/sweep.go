// Package sweep generates the field vectors of a parameter sweep.
//
// Points are the Cartesian product of three independent axes, X outermost
// and Z innermost. All functions are pure.
package sweep

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"gonum.org/v1/gonum/floats/scalar"
)

// Precision is the number of decimals every generated value is rounded to.
const Precision = 6

// MaxAxisPoints caps the values one axis may expand to.
const MaxAxisPoints = 100000

// ErrInvalidAxis is returned for an axis that cannot be expanded.
var ErrInvalidAxis = errors.New("invalid axis")

// ValidateAxis rejects non-finite bounds or steps and axes that would expand
// to more than MaxAxisPoints values.
func ValidateAxis(a domain.AxisSpec) error {
	for _, v := range []float64{a.Start, a.End, a.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v is not a finite number", ErrInvalidAxis, v)
		}
	}
	if !a.Active || a.Start == a.End || a.Step == 0 {
		return nil
	}
	if n := math.Abs(a.End-a.Start) / math.Abs(a.Step); n+1 > MaxAxisPoints {
		return fmt.Errorf("%w: %g to %g by %g gives more than %d values", ErrInvalidAxis, a.Start, a.End, a.Step, MaxAxisPoints)
	}
	return nil
}

// AxisValues expands one axis into its ordered values.
//
// An inactive axis contributes a single zero. An axis whose start equals its
// end, or whose step is zero, contributes its start. Otherwise the values run
// from start towards end by |step|, and end is included when the last step
// lands within half a step of it.
//
// An axis rejected by ValidateAxis expands to no values.
func AxisValues(a domain.AxisSpec) []float64 {
	if !a.Active {
		return []float64{0}
	}
	if ValidateAxis(a) != nil {
		return nil
	}
	if a.Start == a.End || a.Step == 0 {
		return []float64{a.Start}
	}

	step := math.Abs(a.Step)
	dir := 1.0
	if a.End < a.Start {
		dir = -1
	}
	span := math.Abs(a.End - a.Start)
	n := int(math.Ceil(span/step + 0.5))

	values := make([]float64, 0, n)
	for k := 0; k < n; k++ {
		v := scalar.Round(a.Start+dir*float64(k)*step, Precision)
		if v == 0 {
			v = 0 // normalize -0
		}
		values = append(values, v)
	}
	return values
}

// Generate returns the full product of the configured axes.
func Generate(cfg domain.SweepConfig) []domain.FieldVector {
	xs, ys, zs := AxisValues(cfg.X), AxisValues(cfg.Y), AxisValues(cfg.Z)

	fields := make([]domain.FieldVector, 0, len(xs)*len(ys)*len(zs))
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				fields = append(fields, domain.FieldVector{x, y, z})
			}
		}
	}
	return fields
}

// Points binds fields to their index and directory name.
func Points(fields []domain.FieldVector) []domain.SweepPoint {
	points := make([]domain.SweepPoint, len(fields))
	for i, f := range fields {
		points[i] = domain.SweepPoint{Index: i, Field: f, Dir: DirName(f)}
	}
	return points
}

// DirName derives a filesystem-safe directory name from a field vector.
// Vectors that agree to 4 decimals share a name.
func DirName(v domain.FieldVector) string {
	name := fmt.Sprintf("E_%.4f_%.4f_%.4f", v[0], v[1], v[2])
	return strings.NewReplacer(".", "p", "-", "m").Replace(name)
}

// ParseVector parses "x,y,z" into a field vector.
func ParseVector(s string) (domain.FieldVector, error) {
	var v domain.FieldVector
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("field vector %q: want 3 components, got %d", s, len(parts))
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, fmt.Errorf("field vector %q: component %d: %w", s, i, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v, fmt.Errorf("field vector %q: component %d is not a finite number", s, i)
		}
		v[i] = f
	}
	return v, nil
}
