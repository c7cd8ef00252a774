package tui_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/aretw0/fieldsweep/internal/presentation/tui"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/sweep"
	"github.com/stretchr/testify/assert"
)

func TestPreviewMarkdown(t *testing.T) {
	fields := make([]domain.FieldVector, 13)
	for i := range fields {
		fields[i] = domain.FieldVector{0, 0, float64(i) * 0.1}
	}
	md := tui.PreviewMarkdown(sweep.Points(fields))

	assert.Contains(t, md, "13 points")
	assert.Contains(t, md, "| 0 | 0.0000 | 0.0000 | 0.0000 | `E_0p0000_0p0000_0p0000` |")
	assert.Contains(t, md, "| 9 |")
	assert.NotContains(t, md, "| 10 |")
	assert.Contains(t, md, "and 3 more")

	short := tui.PreviewMarkdown(sweep.Points(fields[:2]))
	assert.NotContains(t, short, "more")
}

func TestCheckpointMarkdown(t *testing.T) {
	cp := domain.NewCheckpoint("water.fdf", []string{"O.psf", "H.psf"}, "run.sh", []domain.FieldVector{{}, {0, 0, 0.1}})
	cp.LastCompleted = 0
	md := tui.CheckpointMarkdown("water", cp, true)

	assert.Contains(t, md, "`water`")
	assert.Contains(t, md, "`O.psf`, `H.psf`")
	assert.Contains(t, md, "1 of 2 points")
	assert.Contains(t, md, "point 1 (0.0000, 0.0000, 0.1000)")
	assert.Contains(t, md, "**Autostart:** true")
}

func TestHistoryMarkdown(t *testing.T) {
	assert.Contains(t, tui.HistoryMarkdown(nil), "No attempts")

	md := tui.HistoryMarkdown([]domain.Attempt{{
		Index:     1,
		Outcome:   domain.OutcomeFailed,
		ExitCode:  2,
		Duration:  1500 * time.Millisecond,
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}})
	assert.Contains(t, md, "| 2026-01-02 03:04:05 | 1 |")
	assert.Contains(t, md, "| failed | 2 | 1.5s |")
}

func TestRendererAndBanner(t *testing.T) {
	out, err := tui.NewRenderer()("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")

	var buf bytes.Buffer
	tui.PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")

	assert.Contains(t, tui.StatusLabel(domain.StatusCompleted), "completed")
}
