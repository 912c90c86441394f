package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

// #region registry
// Registry maps action identifiers to functions and dispatches normalized
// action groups: groups run in order, the members of one group run
// together as one logical unit. A failing action does not stop the run;
// the first error is reported on the completion channel once everything
// has settled.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]ActionFunc
}

// NewRegistry creates an empty action registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]ActionFunc)}
}

// Register binds an identifier to an action function. Re-registering an
// identifier replaces the previous binding.
func (r *Registry) Register(name string, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// Names returns the registered identifiers (for diagnostics).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}

// #endregion registry

// #region dispatch
// Dispatch runs the groups and returns a completion channel delivering
// exactly one result. An unknown identifier counts as a failed action.
func (r *Registry) Dispatch(ctx context.Context, groups [][]string, rctx route.Context) <-chan error {
	done := make(chan error, 1)

	go func() {
		var firstErr error
		for _, group := range groups {
			if err := r.runGroup(ctx, group, rctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		done <- firstErr
	}()

	return done
}

// runGroup runs the members of one group concurrently and waits for all
// of them, returning the first error observed.
func (r *Registry) runGroup(ctx context.Context, group []string, rctx route.Context) error {
	errs := make([]error, len(group))
	var wg sync.WaitGroup

	for i, name := range group {
		r.mu.RLock()
		fn, ok := r.actions[name]
		r.mu.RUnlock()
		if !ok {
			errs[i] = fmt.Errorf("dispatch: unknown action %q", name)
			continue
		}

		wg.Add(1)
		go func(i int, fn ActionFunc) {
			defer wg.Done()
			errs[i] = fn(ctx, rctx)
		}(i, fn)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// #endregion dispatch
