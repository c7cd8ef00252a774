package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// PreviewLimit is how many points a preview lists.
const PreviewLimit = 10

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PreviewMarkdown lists the first points of a sweep as a markdown table.
func PreviewMarkdown(points []domain.SweepPoint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Sweep preview: %d points\n\n", len(points))
	sb.WriteString("| # | Ex (V/Ang) | Ey (V/Ang) | Ez (V/Ang) | Directory |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for i, p := range points {
		if i == PreviewLimit {
			break
		}
		fmt.Fprintf(&sb, "| %d | %.4f | %.4f | %.4f | `%s` |\n", p.Index, p.Field.X(), p.Field.Y(), p.Field.Z(), p.Dir)
	}
	if rest := len(points) - PreviewLimit; rest > 0 {
		fmt.Fprintf(&sb, "\n_... and %d more._\n", rest)
	}
	return sb.String()
}

// CheckpointMarkdown summarizes a stored checkpoint.
func CheckpointMarkdown(id string, cp *domain.Checkpoint, autostart bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Checkpoint `%s`\n\n", id)
	fmt.Fprintf(&sb, "- **Input:** `%s`\n", cp.InputFile)
	if len(cp.AuxFiles) > 0 {
		fmt.Fprintf(&sb, "- **Aux files:** `%s`\n", strings.Join(cp.AuxFiles, "`, `"))
	}
	if cp.Script != "" {
		fmt.Fprintf(&sb, "- **Script:** `%s`\n", cp.Script)
	}
	fmt.Fprintf(&sb, "- **Base directory:** `%s`\n", cp.BaseDir)
	fmt.Fprintf(&sb, "- **Progress:** %d of %d points completed\n", cp.LastCompleted+1, len(cp.Fields))
	if next := cp.NextIndex(); next < len(cp.Fields) {
		fmt.Fprintf(&sb, "- **Resumes at:** point %d %s\n", next, cp.Fields[next])
	}
	fmt.Fprintf(&sb, "- **Autostart:** %t\n", autostart)
	if !cp.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Updated:** %s\n", cp.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return sb.String()
}

// HistoryMarkdown lists ledger attempts as a table.
func HistoryMarkdown(attempts []domain.Attempt) string {
	if len(attempts) == 0 {
		return "_No attempts recorded._\n"
	}
	var sb strings.Builder
	sb.WriteString("| Started | # | Field | Outcome | Exit | Duration | Verdict |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for _, a := range attempts {
		fmt.Fprintf(&sb, "| %s | %d | %s | %s | %d | %s | %s |\n",
			a.StartedAt.Format("2006-01-02 15:04:05"), a.Index, a.Field, a.Outcome, a.ExitCode, a.Duration.Round(1e6), a.Verdict)
	}
	return sb.String()
}
