/*
Package pipeline drives a sweep point by point.

A Machine walks the points in order from a start index. Every point after
the first is seeded with the relaxed geometry of the last point that
completed; when no relaxed geometry is available the machine pauses and asks
an operator for a corrected input. Solver failures are logged and skipped.
After every successful point the checkpoint is persisted so that an
interrupted sweep resumes where it left off.

	m := pipeline.New(cp, solver,
		pipeline.WithCheckpoints(mgr, "default"),
		pipeline.WithInputProvider(inputs.NewPrompt(os.Stdin, os.Stdout)),
	)
	err := m.Resume(ctx)

Status transitions:

	idle -> running -> completed
	running -> paused_for_input -> running
	running | paused_for_input -> stopped
*/
package pipeline
