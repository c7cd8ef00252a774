package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/sweep"
)

// ChainOverlay marks the progress of a sweep on its chain diagram.
type ChainOverlay struct {
	LastCompleted int
	// Failed lists points whose last attempt did not succeed.
	Failed map[int]bool
}

// GenerateMermaid draws the point chain of a sweep as a Mermaid flowchart.
// Completed points are styled done, the resume point current and failed
// points failed. Each point links to the next, which is seeded from it.
func GenerateMermaid(points []domain.SweepPoint, overlay *ChainOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, p := range points {
		id := fmt.Sprintf("p%d", p.Index)
		fmt.Fprintf(&sb, "    %s[\"%d: %s\"]\n", id, p.Index, p.Dir)
		if i > 0 {
			fmt.Fprintf(&sb, "    p%d --> %s\n", points[i-1].Index, id)
		}
	}

	if overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    classDef done fill:#d1fae5,stroke:#10b981\n")
	sb.WriteString("    classDef current fill:#fef3c7,stroke:#f59e0b,stroke-width:2px\n")
	sb.WriteString("    classDef failed fill:#fee2e2,stroke:#ef4444\n")
	for _, p := range points {
		class := ""
		switch {
		case overlay.Failed[p.Index]:
			class = "failed"
		case p.Index <= overlay.LastCompleted:
			class = "done"
		case p.Index == overlay.LastCompleted+1:
			class = "current"
		}
		if class != "" {
			fmt.Fprintf(&sb, "    class p%d %s\n", p.Index, class)
		}
	}
	return sb.String()
}

// CheckpointMermaid draws the chain of a stored checkpoint.
func CheckpointMermaid(cp *domain.Checkpoint, failed map[int]bool) string {
	return GenerateMermaid(sweep.Points(cp.Fields), &ChainOverlay{LastCompleted: cp.LastCompleted, Failed: failed})
}
