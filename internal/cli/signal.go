package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalContext escalates on repeated signals. The first SIGINT or SIGTERM
// closes Stopping so the sweep can halt after the running point; the second
// cancels the context, which kills the running solver.
type SignalContext struct {
	context.Context
	Cancel   func()
	stopping chan struct{}
	sigCh    chan os.Signal
	stopOnce sync.Once
	mu       sync.Mutex
	sigVal   os.Signal
	count    int
}

// NewSignalContext creates a SignalContext and starts listening.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context:  ctx,
		Cancel:   cancel,
		stopping: make(chan struct{}),
		sigCh:    make(chan os.Signal, 2),
	}
	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go sc.loop()
	return sc
}

func (sc *SignalContext) loop() {
	defer signal.Stop(sc.sigCh)
	for {
		select {
		case sig := <-sc.sigCh:
			if sc.receive(sig) {
				sc.Cancel()
				return
			}
		case <-sc.Done():
			return
		}
	}
}

// receive records sig and reports whether the context must be canceled.
func (sc *SignalContext) receive(sig os.Signal) bool {
	sc.mu.Lock()
	sc.sigVal = sig
	sc.count++
	n := sc.count
	sc.mu.Unlock()

	sc.stopOnce.Do(func() { close(sc.stopping) })
	return n > 1
}

// Stopping is closed by the first signal.
func (sc *SignalContext) Stopping() <-chan struct{} {
	return sc.stopping
}

// Signal returns the last signal received, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}
