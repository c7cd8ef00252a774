package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/fieldsweep/internal/presentation/graph"
	"github.com/aretw0/fieldsweep/internal/presentation/tui"
	"github.com/aretw0/fieldsweep/pkg/adapters/mcp"
	"github.com/aretw0/fieldsweep/pkg/adapters/process"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/rundir"
	"github.com/aretw0/fieldsweep/pkg/solver"
	"github.com/aretw0/fieldsweep/pkg/sweep"
)

// Output formats.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatMermaid = "mermaid"
)

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func (a *App) render(markdown string) error {
	out, err := tui.NewRenderer()(markdown)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.Out(), out)
	return err
}

// Prepare creates every point directory of the configured sweep without running the solver.
func Prepare(a *App, opts SweepOptions) error {
	a.apply(opts)
	s, err := a.LoadSweep(opts.Sweep)
	if err != nil {
		return err
	}
	cp, err := a.newCheckpoint(s)
	if err != nil {
		return err
	}
	dirs := rundir.FromCheckpoint(a.Root, cp, rundir.WithLogger(a.Logger))
	points := sweep.Points(cp.Fields)
	if err := dirs.PrepareAll(points); err != nil {
		return err
	}
	printSystemMessage(a.Out(), "Prepared %d point directories under %s", len(points), dirs.BaseDir())
	return nil
}

// Preview lists the points of the configured sweep.
func Preview(a *App, flags SweepFlags, format string) error {
	s, err := a.LoadSweep(flags)
	if err != nil {
		return err
	}
	points := sweep.Points(s.Fields())
	switch format {
	case FormatJSON:
		return writeJSON(a.Out(), points)
	case FormatMermaid:
		_, err := fmt.Fprint(a.Out(), graph.GenerateMermaid(points, nil))
		return err
	default:
		return a.render(tui.PreviewMarkdown(points))
	}
}

// ListCheckpoints prints the stored sweeps.
func ListCheckpoints(ctx context.Context, a *App) error {
	mgr, closeStore, err := a.OpenCheckpoints()
	if err != nil {
		return err
	}
	defer closeStore()

	ids, err := mgr.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(a.Out(), "No stored checkpoints found.")
		return nil
	}
	fmt.Fprintln(a.Out(), "Stored checkpoints:")
	for _, id := range ids {
		cp, err := mgr.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(a.Out(), "- %s (unreadable: %v)\n", id, err)
			continue
		}
		auto, _ := mgr.Autostart(ctx, id)
		line := fmt.Sprintf("- %s: %d/%d points", id, cp.LastCompleted+1, len(cp.Fields))
		if auto {
			line += " [autostart]"
		}
		fmt.Fprintln(a.Out(), line)
	}
	return nil
}

// InspectCheckpoint prints one stored checkpoint.
func InspectCheckpoint(ctx context.Context, a *App, id, format string) error {
	mgr, closeStore, err := a.OpenCheckpoints()
	if err != nil {
		return err
	}
	defer closeStore()

	cp, err := mgr.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint %q: %w", id, err)
	}
	switch format {
	case FormatJSON:
		return writeJSON(a.Out(), cp)
	case FormatMermaid:
		failed, err := a.failedPoints(ctx, id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(a.Out(), graph.CheckpointMermaid(cp, failed))
		return err
	default:
		auto, err := mgr.Autostart(ctx, id)
		if err != nil {
			return err
		}
		return a.render(tui.CheckpointMarkdown(id, cp, auto))
	}
}

// failedPoints reads from the ledger which points last ended in a failure.
func (a *App) failedPoints(ctx context.Context, id string) (map[int]bool, error) {
	ledger, err := a.OpenLedger()
	if err != nil || ledger == nil {
		return nil, err
	}
	defer ledger.Close()

	attempts, err := ledger.Attempts(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	failed := make(map[int]bool)
	for _, at := range attempts {
		switch at.Outcome {
		case domain.OutcomeFailed, domain.OutcomeLaunchError:
			failed[at.Index] = true
		case domain.OutcomeSucceeded:
			delete(failed, at.Index)
		}
	}
	return failed, nil
}

// RemoveCheckpoints deletes checkpoints and their autostart markers.
func RemoveCheckpoints(ctx context.Context, a *App, ids []string) error {
	mgr, closeStore, err := a.OpenCheckpoints()
	if err != nil {
		return err
	}
	defer closeStore()

	var errs []error
	for _, id := range ids {
		if err := mgr.Reset(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %q: %w", id, err))
			continue
		}
		fmt.Fprintf(a.Out(), "Removed checkpoint '%s'\n", id)
	}
	return errors.Join(errs...)
}

// Autostart stores the configured sweep and marks it to resume without
// confirmation on the next run. With off it only clears the marker.
func Autostart(ctx context.Context, a *App, opts SweepOptions, off bool) error {
	a.apply(opts)
	mgr, closeStore, err := a.OpenCheckpoints()
	if err != nil {
		return err
	}
	defer closeStore()

	id := a.Config.SweepID
	if off {
		if err := mgr.SetAutostart(ctx, id, false); err != nil {
			return err
		}
		printSystemMessage(a.Out(), "Autostart disabled for %s", id)
		return nil
	}

	if a.Config.Script == "" {
		return errors.New("autostart needs an invocation script (set script or pass --script)")
	}
	s, err := a.LoadSweep(opts.Sweep)
	if err != nil {
		return err
	}
	if len(s.Points) == 0 && !(s.Axes.X.Active || s.Axes.Y.Active || s.Axes.Z.Active) {
		return errors.New("autostart needs at least one axis or point")
	}
	cp, err := a.newCheckpoint(s)
	if err != nil {
		return err
	}
	if err := mgr.Save(ctx, id, cp); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	if err := mgr.SetAutostart(ctx, id, true); err != nil {
		return err
	}
	printSystemMessage(a.Out(), "Sweep %s (%d points) will start on the next run", id, len(cp.Fields))
	return nil
}

// History prints the attempt ledger of a sweep.
func History(ctx context.Context, a *App, id string, limit int, format string) error {
	if id == "" {
		id = a.Config.SweepID
	}
	ledger, err := a.OpenLedger()
	if err != nil {
		return err
	}
	if ledger == nil {
		return errors.New("no attempt ledger configured (set ledger.path)")
	}
	defer ledger.Close()

	attempts, err := ledger.Attempts(ctx, id, limit)
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return writeJSON(a.Out(), attempts)
	}
	return a.render(tui.HistoryMarkdown(attempts))
}

// SolveOptions configures Solve.
type SolveOptions struct {
	Binary      string
	RestartFlag string
	Args        []string
}

// Solve runs the solver binary once in dir. It fails when the run did not finish.
func Solve(ctx context.Context, a *App, dir string, opts SolveOptions) error {
	w := solver.New(opts.Binary,
		solver.WithArgs(opts.Args...),
		solver.WithRestartFlag(opts.RestartFlag),
		solver.WithMarker(a.markerName()),
		solver.WithLogger(a.Logger),
	)
	return w.Run(ctx, resolve(a.Root, dir))
}

func (a *App) markerName() string {
	if m := a.Config.Solver.CompletionMarker; m != "" {
		return m
	}
	return process.DefaultCompletionMarker
}

// ServeMCP exposes the stored checkpoints to MCP clients, over stdio or,
// with a port, over SSE.
func ServeMCP(ctx context.Context, a *App, version string, ssePort int) error {
	mgr, closeStore, err := a.OpenCheckpoints()
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(mgr, version, mcp.WithLogger(a.Logger))
	if ssePort > 0 {
		return srv.ServeSSE(ctx, ssePort)
	}
	return srv.ServeStdio()
}
