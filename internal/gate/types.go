package gate

import (
	"github.com/jsfix-ci/react-router-dispatcher/internal/actionset"
	"github.com/jsfix-ci/react-router-dispatcher/internal/render"
	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

// #region location
// Location is an opaque descriptor of "where the user currently is".
// The gate never inspects it; it only compares values with ==, so callers
// must supply comparable values. A path string is the minimal form.
type Location = any

// #endregion location

// #region config
// Config holds the two dispatch-control flags.
type Config struct {
	DispatchOnActivate bool // run one dispatch cycle immediately on Activate
	ReloadOnChange     bool // re-dispatch when location or action set changes
}

// DefaultConfig enables both flags.
func DefaultConfig() Config {
	return Config{
		DispatchOnActivate: true,
		ReloadOnChange:     true,
	}
}

// #endregion config

// #region input
// RenderFunc renders the matched routes once the gate is ready. extra is
// the caller's prop bag minus the keys the gate consumes itself.
type RenderFunc func(routes []route.Descriptor, extra map[string]any) render.Node

// Input is the activation payload.
type Input struct {
	Location    Location
	Routes      []route.Descriptor
	Actions     actionset.Set
	Placeholder render.Renderable
	Render      RenderFunc
	Props       map[string]any
}

// Change is a partial update: a nil field means "unchanged". Routes ride
// along with a location change but never participate in change detection;
// an empty non-nil Routes slice means the new location matched nothing.
type Change struct {
	Location Location
	Actions  *actionset.Set
	Routes   []route.Descriptor
}

// #endregion input

// #region readiness
// Readiness is the externally observable gate state. PreviousLocation is
// non-nil exactly while a dispatch cycle is in flight; it holds the
// location that was active immediately before the triggering change.
type Readiness struct {
	HasDispatched    bool
	PreviousLocation Location
}

// #endregion readiness

// #region cycle
// Trigger names what caused a dispatch cycle.
type Trigger string

const (
	TriggerActivate Trigger = "activate"
	TriggerLocation Trigger = "location_change"
	TriggerActions  Trigger = "actions_change"
)

// Outcome classifies how a cycle ended.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeFailed     Outcome = "failed"
	OutcomeSuperseded Outcome = "superseded"
)

// Cycle captures one dispatch cycle's closure: the location, groups, and
// route context it was triggered for. Seq increases monotonically and is
// the staleness guard for overlapping cycles; ID is stable for journaling.
type Cycle struct {
	Seq      uint64
	ID       string
	Trigger  Trigger
	Location Location
	Groups   [][]string
	Context  route.Context
	Done     <-chan error
}

// #endregion cycle

// #region recorder
// Recorder observes cycle starts and resolutions, typically for a
// persistent journal. The gate's owner serializes all calls.
type Recorder interface {
	CycleStarted(c *Cycle) error
	CycleResolved(c *Cycle, outcome Outcome, dispatchErr error) error
}

// #endregion recorder
