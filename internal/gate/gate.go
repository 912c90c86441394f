package gate

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/jsfix-ci/react-router-dispatcher/internal/actionset"
	"github.com/jsfix-ci/react-router-dispatcher/internal/dispatch"
	"github.com/jsfix-ci/react-router-dispatcher/internal/render"
	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

// #region gate
// Gate decides when preparation actions must run as the observed location
// and the configured action set change, and exposes the resulting
// readiness state to the render decision.
//
// Gate is a plain state object: Activate, OnInputChange, and
// OnDispatchResolved mutate it synchronously and must be serialized by
// the owner (see Runner). A returned *Cycle means a dispatch cycle was
// triggered; its Done channel eventually funnels back into
// OnDispatchResolved.
type Gate struct {
	dispatcher dispatch.Dispatcher
	recorder   Recorder
	config     Config

	location    Location
	routes      []route.Descriptor
	actions     actionset.Set
	placeholder render.Renderable
	renderFn    RenderFunc
	props       map[string]any

	hasDispatched    bool
	previousLocation Location
	seq              uint64
	inflight         map[uint64]*Cycle
}

// NewGate creates a gate around the injected dispatcher.
func NewGate(d dispatch.Dispatcher, config Config) *Gate {
	return &Gate{
		dispatcher: d,
		config:     config,
		inflight:   make(map[uint64]*Cycle),
	}
}

// SetRecorder attaches a cycle recorder. Call before Activate.
func (g *Gate) SetRecorder(r Recorder) {
	g.recorder = r
}

// #endregion gate

// #region activate
// Activate stores the activation input and initializes readiness:
// hasDispatched starts as the negation of DispatchOnActivate. When
// DispatchOnActivate is set, one cycle is triggered immediately with the
// current location as both old and new.
func (g *Gate) Activate(input Input) *Cycle {
	g.location = input.Location
	g.routes = input.Routes
	g.actions = input.Actions
	g.placeholder = input.Placeholder
	g.renderFn = input.Render
	g.props = input.Props

	g.hasDispatched = !g.config.DispatchOnActivate
	g.previousLocation = nil

	if !g.config.DispatchOnActivate {
		return nil
	}
	return g.startCycle(TriggerActivate, g.location)
}

// #endregion activate

// #region input-change
// OnInputChange applies a partial input update. Redundant notifications
// (nothing changed) mutate no state and trigger no dispatch. When the
// location or the action set changed, the pre-change location becomes the
// in-flight baseline and one cycle is triggered. With ReloadOnChange off,
// the stored inputs still update but no cycle runs.
func (g *Gate) OnInputChange(change Change) *Cycle {
	locationChanged := change.Location != nil && change.Location != g.location
	actionsChanged := change.Actions != nil && !actionset.Equal(*change.Actions, g.actions)

	if !locationChanged && !actionsChanged {
		return nil
	}

	previous := g.location
	if change.Location != nil {
		g.location = change.Location
	}
	if change.Routes != nil {
		g.routes = change.Routes
	}
	if actionsChanged {
		g.actions = *change.Actions
	}

	if !g.config.ReloadOnChange {
		return nil
	}

	trigger := TriggerActions
	if locationChanged {
		trigger = TriggerLocation
	}
	return g.startCycle(trigger, previous)
}

// #endregion input-change

// #region dispatch-cycle
// startCycle flips the gate to not-ready and invokes the dispatcher
// exactly once with the resolved groups and route context. previous
// holds the pre-change location for the in-flight baseline.
func (g *Gate) startCycle(trigger Trigger, previous Location) *Cycle {
	g.hasDispatched = false
	g.previousLocation = previous
	g.seq++

	rctx := route.Context{Location: g.location, Routes: g.routes}
	c := &Cycle{
		Seq:      g.seq,
		ID:       uuid.New().String(),
		Trigger:  trigger,
		Location: g.location,
		Groups:   g.actions.Resolve(rctx),
		Context:  rctx,
	}

	if g.recorder != nil {
		if err := g.recorder.CycleStarted(c); err != nil {
			log.Printf("[GATE] record cycle start: %v", err)
		}
	}

	// No cancellation primitive: a triggered cycle runs to resolution.
	c.Done = g.dispatcher.Dispatch(context.Background(), c.Groups, rctx)
	g.inflight[c.Seq] = c

	log.Printf("[GATE] dispatch: trigger=%s seq=%d groups=%d", trigger, c.Seq, len(c.Groups))
	return c
}

// OnDispatchResolved applies the resolution of cycle seq. Success and
// failure are both "done" for gating purposes. A stale seq (a newer cycle
// has been triggered since) is ignored so it cannot clear state set by
// its successor; it reports false and is journaled as superseded.
func (g *Gate) OnDispatchResolved(seq uint64, dispatchErr error) bool {
	c, ok := g.inflight[seq]
	if !ok {
		log.Printf("[GATE] resolution for unknown cycle seq=%d ignored", seq)
		return false
	}
	delete(g.inflight, seq)

	if seq != g.seq {
		g.record(c, OutcomeSuperseded, dispatchErr)
		log.Printf("[GATE] stale resolution seq=%d (latest=%d) ignored", seq, g.seq)
		return false
	}

	g.hasDispatched = true
	g.previousLocation = nil

	outcome := OutcomeOK
	if dispatchErr != nil {
		outcome = OutcomeFailed
		log.Printf("[GATE] cycle seq=%d resolved with error: %v", seq, dispatchErr)
	}
	g.record(c, outcome, dispatchErr)
	return true
}

// record reports a cycle resolution to the recorder, if any.
func (g *Gate) record(c *Cycle, outcome Outcome, dispatchErr error) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.CycleResolved(c, outcome, dispatchErr); err != nil {
		log.Printf("[GATE] record cycle resolution: %v", err)
	}
}

// #endregion dispatch-cycle

// #region state
// Ready reports whether the output is safe to render now.
func (g *Gate) Ready() bool {
	return g.hasDispatched
}

// State returns the observable readiness state.
func (g *Gate) State() Readiness {
	return Readiness{
		HasDispatched:    g.hasDispatched,
		PreviousLocation: g.previousLocation,
	}
}

// CurrentLocation returns the stored location descriptor.
func (g *Gate) CurrentLocation() Location {
	return g.location
}

// Routes returns the stored matched routes.
func (g *Gate) Routes() []route.Descriptor {
	return g.routes
}

// #endregion state

// #region render-decision
// reservedProps are the keys the gate consumes itself; everything else in
// the prop bag passes through to the render callback.
var reservedProps = map[string]struct{}{
	"location":           {},
	"actions":            {},
	"routes":             {},
	"dispatchOnActivate": {},
	"reloadOnChange":     {},
	"loading":            {},
	"placeholder":        {},
}

// Render produces the current output: the placeholder while not ready;
// once ready, the render callback with the matched routes and the
// pass-through props, or empty output when nothing matched and no
// callback was supplied.
func (g *Gate) Render() render.Node {
	if !g.hasDispatched {
		return g.placeholder.Render()
	}

	if g.renderFn != nil {
		return g.renderFn(g.routes, g.extraProps())
	}

	if len(g.routes) == 0 {
		return render.Node{}
	}

	children := make([]render.Node, len(g.routes))
	for i, r := range g.routes {
		children[i] = render.Node{Tag: "view", Text: r.Name}
	}
	return render.Node{Tag: "div", Children: children}
}

// extraProps copies the prop bag minus the reserved keys.
func (g *Gate) extraProps() map[string]any {
	extra := make(map[string]any, len(g.props))
	for k, v := range g.props {
		if _, consumed := reservedProps[k]; consumed {
			continue
		}
		extra[k] = v
	}
	return extra
}

// #endregion render-decision
