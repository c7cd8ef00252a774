package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the fieldsweep banner to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"   __ _      _     _                              ", "#38bdf8"},
		{"  / _(_) ___| | __| |_____      _____  ___ _ __   ", "#22d3ee"},
		{" | |_| |/ _ \\ |/ _` / __\\ \\ /\\ / / _ \\/ _ \\ '_ \\  ", "#2dd4bf"},
		{" |  _| |  __/ | (_| \\__ \\\\ V  V /  __/  __/ |_) | ", "#34d399"},
		{" |_| |_|\\___|_|\\__,_|___/ \\_/\\_/ \\___|\\___| .__/  ", "#a3e635"},
		{"                                          |_|     ", "#facc15"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, " %s\n\n", termenv.String(version).Faint())
}

// StatusLabel colours a pipeline status for terminal output.
func StatusLabel(s domain.Status) string {
	p := termenv.ColorProfile()
	color := "#9ca3af"
	switch s {
	case domain.StatusRunning:
		color = "#38bdf8"
	case domain.StatusPausedForInput:
		color = "#f59e0b"
	case domain.StatusCompleted:
		color = "#10b981"
	case domain.StatusStopped:
		color = "#ef4444"
	}
	return termenv.String(string(s)).Foreground(p.Color(color)).Bold().String()
}
