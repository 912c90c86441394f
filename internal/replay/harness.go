package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/jsfix-ci/react-router-dispatcher/internal/actionset"
	"github.com/jsfix-ci/react-router-dispatcher/internal/gate"
	"github.com/jsfix-ci/react-router-dispatcher/internal/render"
	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

// #region types
// Step is one recorded event in a navigation session.
type Step struct {
	Kind     string // "activate" | "navigate" | "actions" | "resolve"
	Location string
	Actions  actionset.Set // for "activate" and "actions" steps
	Fail     bool          // for "resolve": resolve with an error
}

// Script bundles the routes, gate config, and steps for a replay run.
type Script struct {
	Routes      []route.Descriptor
	Config      gate.Config
	Placeholder string
	Steps       []Step
}

// StepResult captures the observable gate state after one step.
type StepResult struct {
	Index      int
	Kind       string
	Dispatched bool   // a dispatch cycle was triggered by this step
	Applied    bool   // for "resolve": the resolution was not stale
	Ready      bool   // readiness after the step
	InFlight   bool   // a previous-location baseline is set
	Output     string // rendered output after the step
}

// Summary aggregates a replay run.
type Summary struct {
	Steps      int
	Dispatches int
	Stale      int
	FinalReady bool
}

// #endregion types

// #region dispatcher
// scriptDispatcher counts calls; resolution is driven manually by the
// harness through OnDispatchResolved.
type scriptDispatcher struct {
	calls int
}

func (d *scriptDispatcher) Dispatch(ctx context.Context, groups [][]string, rctx route.Context) <-chan error {
	d.calls++
	return make(chan error, 1)
}

// #endregion dispatcher

// #region run
// Run drives a gate through the script. Resolve steps settle the oldest
// unresolved cycle, so out-of-order sessions exercise the staleness
// guard. Operates entirely in-memory.
func Run(script Script) ([]StepResult, error) {
	table := route.NewTable(script.Routes...)
	d := &scriptDispatcher{}
	g := gate.NewGate(d, script.Config)

	var pending []*gate.Cycle
	results := make([]StepResult, 0, len(script.Steps))

	for i, step := range script.Steps {
		res := StepResult{Index: i, Kind: step.Kind}

		switch step.Kind {
		case "activate":
			matched, _ := table.Match(step.Location)
			c := g.Activate(gate.Input{
				Location:    step.Location,
				Routes:      matched,
				Actions:     step.Actions,
				Placeholder: render.FromMarkup(script.Placeholder),
			})
			res.Dispatched = trackCycle(&pending, c)

		case "navigate":
			matched, _ := table.Match(step.Location)
			c := g.OnInputChange(gate.Change{Location: step.Location, Routes: matched})
			res.Dispatched = trackCycle(&pending, c)

		case "actions":
			set := step.Actions
			c := g.OnInputChange(gate.Change{Actions: &set})
			res.Dispatched = trackCycle(&pending, c)

		case "resolve":
			if len(pending) == 0 {
				return nil, fmt.Errorf("step %d: resolve with no pending cycle", i)
			}
			c := pending[0]
			pending = pending[1:]
			var dispatchErr error
			if step.Fail {
				dispatchErr = errors.New("scripted failure")
			}
			res.Applied = g.OnDispatchResolved(c.Seq, dispatchErr)

		default:
			return nil, fmt.Errorf("step %d: unknown kind %q", i, step.Kind)
		}

		state := g.State()
		res.Ready = state.HasDispatched
		res.InFlight = state.PreviousLocation != nil
		res.Output = g.Render().String()
		results = append(results, res)
	}

	return results, nil
}

// trackCycle appends a triggered cycle to the pending list.
func trackCycle(pending *[]*gate.Cycle, c *gate.Cycle) bool {
	if c == nil {
		return false
	}
	*pending = append(*pending, c)
	return true
}

// Summarize computes aggregate stats from step results.
func Summarize(results []StepResult) Summary {
	s := Summary{Steps: len(results)}
	for _, r := range results {
		if r.Dispatched {
			s.Dispatches++
		}
		if r.Kind == "resolve" && !r.Applied {
			s.Stale++
		}
	}
	if len(results) > 0 {
		s.FinalReady = results[len(results)-1].Ready
	}
	return s
}

// #endregion run
