package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/fieldsweep/internal/presentation/tui"
	api "github.com/aretw0/fieldsweep/pkg/adapters/http"
	"github.com/aretw0/fieldsweep/pkg/adapters/inputs"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/observability"
	"github.com/aretw0/fieldsweep/pkg/pipeline"
	"github.com/aretw0/fieldsweep/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// SweepOptions override the configured file set and sweep.
type SweepOptions struct {
	Input  string
	Aux    []string
	Script string
	Sweep  SweepFlags
}

func (a *App) apply(opts SweepOptions) {
	if opts.Input != "" {
		a.Config.Input = opts.Input
	}
	if len(opts.Aux) > 0 {
		a.Config.Aux = opts.Aux
	}
	if opts.Script != "" {
		a.Config.Script = opts.Script
	}
}

// RunOptions configures RunSweep.
type RunOptions struct {
	SweepOptions
	// HTTPAddr overrides http.addr. Empty keeps the configured address.
	HTTPAddr string
	// Fresh discards any stored checkpoint before starting.
	Fresh bool
	// Interactive forces terminal prompts on or off. Nil detects a terminal.
	Interactive *bool
}

// RunSweep resumes the stored sweep or starts a new one and runs it to the end.
//
// The first interrupt stops the sweep after the running point; the second
// cancels the running solver.
func RunSweep(ctx context.Context, a *App, opts RunOptions) (domain.Snapshot, error) {
	a.apply(opts.SweepOptions)
	cfg := a.Config
	logger := a.Logger

	mgr, closeStore, err := a.OpenCheckpoints()
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer closeStore()

	interactive := a.globals.Stdin == os.Stdin && inputs.StdinIsTerminal()
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}
	var prompt *inputs.Prompt
	var confirm ports.Confirmer = inputs.AutoConfirm(true)
	if interactive {
		prompt = inputs.NewPrompt(a.globals.Stdin, a.globals.Stdout)
		confirm = prompt
	}

	if opts.Fresh {
		if err := mgr.Reset(ctx, cfg.SweepID); err != nil {
			return domain.Snapshot{}, fmt.Errorf("failed to discard checkpoint: %w", err)
		}
	}
	cp, err := pipeline.Bootstrap(ctx, mgr, cfg.SweepID, confirm)
	if errors.Is(err, domain.ErrChecksumlessCheckpoint) {
		// Bootstrap has cleared the marker; the next run starts a new sweep.
		return domain.Snapshot{}, fmt.Errorf("%w: checkpoint lost, rerun to start over or pass --fresh", err)
	}
	if err != nil {
		return domain.Snapshot{}, err
	}

	if cp != nil {
		printSystemMessage(a.Out(), "Resuming sweep %s at point %d of %d", cfg.SweepID, cp.NextIndex()+1, len(cp.Fields))
	} else {
		s, err := a.LoadSweep(opts.Sweep)
		if err != nil {
			return domain.Snapshot{}, err
		}
		if cp, err = a.newCheckpoint(s); err != nil {
			return domain.Snapshot{}, err
		}
		if err := mgr.Save(ctx, cfg.SweepID, cp); err != nil {
			return domain.Snapshot{}, fmt.Errorf("failed to save checkpoint: %w", err)
		}
		printSystemMessage(a.Out(), "Starting sweep %s with %d points", cfg.SweepID, len(cp.Fields))
	}

	solver, err := a.Solver(cp.Script)
	if err != nil {
		return domain.Snapshot{}, err
	}

	reg := prometheus.NewRegistry()
	hookSets := []domain.LifecycleHooks{
		observability.LoggingHooks(logger),
		observability.NewMetrics(reg).Hooks(),
	}

	addr := cfg.HTTP.Addr
	if opts.HTTPAddr != "" {
		addr = opts.HTTPAddr
	}

	var providers []ports.InputProvider
	var mailbox *inputs.Mailbox
	var streams *api.StreamManager
	if addr != "" {
		mailbox = inputs.NewMailbox()
		streams = api.NewStreamManager(logger)
		providers = append(providers, mailbox)
		hookSets = append(hookSets, streams.Hooks())
	}
	if cfg.Inputs.WatchDir != "" {
		w := inputs.NewWatcher(resolve(a.Root, cfg.Inputs.WatchDir), inputs.WithWatcherLogger(logger))
		providers = append(providers, w)
		logger.Info("watching for replacement inputs", "dir", w.Dir())
	}
	if prompt != nil {
		providers = append(providers, prompt)
	}
	var provider ports.InputProvider = inputs.Decline{}
	if len(providers) > 0 {
		provider = inputs.Race(providers...)
	}

	pipeOpts := []pipeline.Option{
		pipeline.WithCheckpoints(mgr, cfg.SweepID),
		pipeline.WithInputProvider(provider),
		pipeline.WithHooks(observability.CombineHooks(hookSets...)),
		pipeline.WithRoot(a.Root),
		pipeline.WithLogger(logger),
	}
	if cfg.Solver.CompletionMarker != "" {
		pipeOpts = append(pipeOpts, pipeline.WithCompletionMarker(cfg.Solver.CompletionMarker))
	}
	ledger, err := a.OpenLedger()
	if err != nil {
		return domain.Snapshot{}, err
	}
	if ledger != nil {
		defer ledger.Close()
		pipeOpts = append(pipeOpts, pipeline.WithLedger(ledger))
	}
	machine := pipeline.New(cp, solver, pipeOpts...)

	sc := NewSignalContext(ctx)
	defer sc.Cancel()

	done := make(chan struct{})
	g, gctx := errgroup.WithContext(sc)

	g.Go(func() error {
		defer close(done)
		return machine.Resume(sc)
	})

	g.Go(func() error {
		select {
		case <-sc.Stopping():
			printSystemMessage(a.Out(), "Stopping after the current point (interrupt again to abort)")
			machine.Stop()
		case <-done:
		}
		return nil
	})

	if addr != "" {
		handler := api.NewHandler(machine,
			api.WithInputSink(mailbox),
			api.WithGatherer(reg),
			api.WithStreams(streams),
			api.WithAllowedOrigins(cfg.HTTP.AllowedOrigins...),
			api.WithLogger(logger),
		)
		g.Go(func() error {
			srvCtx, cancel := context.WithCancel(gctx)
			defer cancel()
			go func() {
				select {
				case <-done:
					cancel()
				case <-srvCtx.Done():
				}
			}()
			if err := api.ListenAndServe(srvCtx, addr, handler, logger); err != nil {
				machine.Stop()
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	snap := machine.Snapshot()
	reportFinal(a, snap)
	return snap, err
}

func reportFinal(a *App, snap domain.Snapshot) {
	switch snap.Status {
	case domain.StatusCompleted:
		printSystemMessage(a.Out(), "%s: %d points", tui.StatusLabel(snap.Status), snap.Total)
	default:
		printSystemMessage(a.Out(), "%s at point %d of %d (last completed %d)",
			tui.StatusLabel(snap.Status), snap.Index+1, snap.Total, snap.LastCompleted)
	}
}
