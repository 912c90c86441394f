package dispatch

import (
	"context"

	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

// #region dispatcher
// Dispatcher is the single call-out boundary of the gate. Dispatch starts
// the given action groups for the route context and returns a channel that
// delivers exactly one result when every action has settled. The result is
// never delivered synchronously, and Dispatch must tolerate being called
// again before a prior call resolves.
type Dispatcher interface {
	Dispatch(ctx context.Context, groups [][]string, rctx route.Context) <-chan error
}

// Func adapts a plain function to the Dispatcher interface.
type Func func(ctx context.Context, groups [][]string, rctx route.Context) <-chan error

// Dispatch calls f.
func (f Func) Dispatch(ctx context.Context, groups [][]string, rctx route.Context) <-chan error {
	return f(ctx, groups, rctx)
}

// #endregion dispatcher

// #region action
// ActionFunc performs one named preparation action (a data fetch, a store
// mutation). The route context is passed through untouched.
type ActionFunc func(ctx context.Context, rctx route.Context) error

// #endregion action
