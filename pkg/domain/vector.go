package domain

import "fmt"

// FieldVector is an applied electric field (x, y, z) in V/Ang.
type FieldVector [3]float64

func (v FieldVector) X() float64 { return v[0] }
func (v FieldVector) Y() float64 { return v[1] }
func (v FieldVector) Z() float64 { return v[2] }

func (v FieldVector) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v[0], v[1], v[2])
}

// AxisSpec describes the values one axis takes during a sweep.
type AxisSpec struct {
	Start  float64 `json:"start" yaml:"start" hcl:"start,optional"`
	End    float64 `json:"end" yaml:"end" hcl:"end,optional"`
	Step   float64 `json:"step" yaml:"step" hcl:"step,optional"`
	Active bool    `json:"active" yaml:"active" hcl:"active,optional"`
}

// SweepConfig holds the three independent axes of a sweep.
type SweepConfig struct {
	X AxisSpec `json:"x" yaml:"x"`
	Y AxisSpec `json:"y" yaml:"y"`
	Z AxisSpec `json:"z" yaml:"z"`
}

// SweepPoint is a field vector bound to its position in the sweep.
type SweepPoint struct {
	Index int         `json:"index"`
	Field FieldVector `json:"field"`
	Dir   string      `json:"dir"` // Directory name, derived from Field.
}
