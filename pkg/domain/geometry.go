package domain

// Verdict tells whether a solver log ended with a relaxed geometry.
type Verdict string

const (
	VerdictRelaxed   Verdict = "relaxed"
	VerdictUnrelaxed Verdict = "unrelaxed"
)

// GeometryResult is the final structure harvested from a solver log.
type GeometryResult struct {
	Lattice     []string `json:"lattice"`
	Coordinates []string `json:"coordinates"`
	Verdict     Verdict  `json:"verdict"`
}

// Complete reports whether the result can seed the next run.
func (g GeometryResult) Complete() bool {
	return g.Verdict == VerdictRelaxed && len(g.Lattice) > 0 && len(g.Coordinates) > 0
}
