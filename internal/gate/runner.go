package gate

import (
	"sync"

	"github.com/jsfix-ci/react-router-dispatcher/internal/render"
)

// #region runner
// Runner is the concurrency shell around a Gate: it serializes
// activation, change notifications, and resolutions under one mutex, and
// funnels each cycle's completion channel back into OnDispatchResolved
// from a waiter goroutine. Notifications never wait for an in-flight
// cycle.
type Runner struct {
	mu           sync.Mutex
	gate         *Gate
	onTransition func(Readiness)
}

// NewRunner wraps a gate. The gate must not be used directly afterwards.
func NewRunner(g *Gate) *Runner {
	return &Runner{gate: g}
}

// OnTransition registers a callback invoked (outside the lock) after
// every readiness transition: cycle start and applied resolution. Set it
// before Activate.
func (r *Runner) OnTransition(fn func(Readiness)) {
	r.onTransition = fn
}

// #endregion runner

// #region lifecycle
// Activate activates the gate and starts watching any initial cycle.
func (r *Runner) Activate(input Input) {
	r.mu.Lock()
	c := r.gate.Activate(input)
	state := r.gate.State()
	r.mu.Unlock()

	if c != nil {
		r.notify(state)
		r.watch(c)
	}
}

// Notify applies a change notification. Processing is synchronous; a
// pending cycle is never awaited.
func (r *Runner) Notify(change Change) {
	r.mu.Lock()
	c := r.gate.OnInputChange(change)
	state := r.gate.State()
	r.mu.Unlock()

	if c != nil {
		r.notify(state)
		r.watch(c)
	}
}

// watch waits for one cycle's resolution and applies it.
func (r *Runner) watch(c *Cycle) {
	if c.Done == nil {
		return
	}
	go func() {
		err := <-c.Done

		r.mu.Lock()
		applied := r.gate.OnDispatchResolved(c.Seq, err)
		state := r.gate.State()
		r.mu.Unlock()

		if applied {
			r.notify(state)
		}
	}()
}

// notify invokes the transition callback, if any.
func (r *Runner) notify(state Readiness) {
	if r.onTransition != nil {
		r.onTransition(state)
	}
}

// #endregion lifecycle

// #region accessors
// Ready reports whether the output is safe to render now.
func (r *Runner) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gate.Ready()
}

// State returns the observable readiness state.
func (r *Runner) State() Readiness {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gate.State()
}

// Location returns the gate's current location input.
func (r *Runner) Location() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gate.CurrentLocation()
}

// Render produces the current output under the lock.
func (r *Runner) Render() render.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gate.Render()
}

// #endregion accessors
