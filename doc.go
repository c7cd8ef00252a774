/*
Package fieldsweep runs resumable sweeps of an applied electric field through an
external DFT solver.

A sweep is an ordered list of field vectors. Each point gets its own run
directory; the first point starts from the user's input, and every later point
starts from the relaxed geometry the previous successful point produced. After
every successful point a checkpoint is written, so an interrupted sweep resumes
at the next point instead of starting over.

When a point cannot be chained (the previous run did not relax, or its outputs
are missing) the sweep pauses and asks an operator for a corrected input
through an InputProvider. Declining stops the sweep with the checkpoint intact.

# Usage

	engine, err := fieldsweep.New(mySolver,
		fieldsweep.WithStore(file.New(".fieldsweep")),
		fieldsweep.WithRoot(workdir),
	)
	if err != nil {
		log.Fatal(err)
	}

	resumed, err := engine.Resume(ctx, inputs.AutoConfirm(true))
	if err == nil && !resumed {
		cp := domain.NewCheckpoint("water.fdf", []string{"O.psf", "H.psf"}, "", sweep.Generate(axes))
		err = engine.Start(ctx, cp)
	}

The fieldsweep command wraps this package with configuration files, a choice
of checkpoint stores, an HTTP control surface and an attempt ledger.
*/
package fieldsweep
