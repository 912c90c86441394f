package navd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/jsfix-ci/react-router-dispatcher/internal/actionset"
	"github.com/jsfix-ci/react-router-dispatcher/internal/dispatch"
	"github.com/jsfix-ci/react-router-dispatcher/internal/gate"
	"github.com/jsfix-ci/react-router-dispatcher/internal/journal"
	"github.com/jsfix-ci/react-router-dispatcher/internal/render"
	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

// #region server
// Server is the navigation demo: HTTP navigation requests drive a gate
// runner over simulated preparation actions, and readiness transitions
// stream out over WebSocket.
type Server struct {
	config  Config
	table   *route.Table
	runner  *gate.Runner
	journal *journal.Journal
	hub     *Hub
	router  *mux.Router
	server  *http.Server
}

// NewServer wires the registry, gate, journal, and routes from config.
func NewServer(cfg Config) (*Server, error) {
	jnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	table := route.NewTable(cfg.Routes...)
	registry := buildRegistry(cfg)

	g := gate.NewGate(registry, gate.Config{
		DispatchOnActivate: cfg.DispatchOnActivate,
		ReloadOnChange:     cfg.ReloadOnChange,
	})
	g.SetRecorder(jnl)

	s := &Server{
		config:  cfg,
		table:   table,
		runner:  gate.NewRunner(g),
		journal: jnl,
		hub:     NewHub(),
		router:  mux.NewRouter(),
	}

	s.runner.OnTransition(func(state gate.Readiness) {
		msg, _ := json.Marshal(map[string]any{
			"ready":    state.HasDispatched,
			"inFlight": state.PreviousLocation != nil,
		})
		s.hub.Broadcast(msg)
	})

	s.registerRoutes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// buildRegistry registers one simulated action per identifier named in
// the route table, sleeping for the configured latency.
func buildRegistry(cfg Config) *dispatch.Registry {
	registry := dispatch.NewRegistry()
	for _, r := range cfg.Routes {
		for _, group := range r.Actions {
			for _, name := range group {
				latency := cfg.DefaultLatencyMs
				if ms, ok := cfg.Latencies[name]; ok {
					latency = ms
				}
				registry.Register(name, sleeper(name, latency))
			}
		}
	}
	return registry
}

// sleeper simulates one preparation action.
func sleeper(name string, latencyMs int) dispatch.ActionFunc {
	return func(ctx context.Context, rctx route.Context) error {
		select {
		case <-time.After(time.Duration(latencyMs) * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// routeActions collects action groups from every matched route, in table
// order. This is the provider handed to the gate: it resolves per cycle
// against that cycle's route context.
func routeActions(rctx route.Context) [][]string {
	var groups [][]string
	for _, r := range rctx.Routes {
		groups = append(groups, r.Actions...)
	}
	return groups
}

// #endregion server

// #region lifecycle
// Start activates the gate at the initial location and serves HTTP.
func (s *Server) Start() {
	s.Activate()
	go func() {
		log.Printf("[NAVD] listening on %s", s.config.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[NAVD] server error: %v", err)
		}
	}()
}

// Activate activates the gate at the configured initial location.
func (s *Server) Activate() {
	matched, _ := s.table.Match(s.config.InitialLocation)
	s.runner.Activate(gate.Input{
		Location:    s.config.InitialLocation,
		Routes:      matched,
		Actions:     actionset.Dynamic(routeActions),
		Placeholder: render.FromMarkup(s.config.Placeholder),
	})
}

// Stop shuts down the HTTP server and closes the journal.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.Printf("[NAVD] shutdown: %v", err)
	}
	if err := s.journal.Close(); err != nil {
		log.Printf("[NAVD] close journal: %v", err)
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// #endregion lifecycle

// #region handlers
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/navigate", s.handleNavigate).Methods("POST")
	s.router.HandleFunc("/view", s.handleView).Methods("GET")
	s.router.HandleFunc("/cycles", s.handleCycles).Methods("GET")
	s.router.HandleFunc("/ws", s.hub.HandleWebSocket)
}

// viewState is the JSON shape of the current gate output.
type viewState struct {
	Location any         `json:"location"`
	Ready    bool        `json:"ready"`
	InFlight bool        `json:"inFlight"`
	Output   render.Node `json:"output"`
}

// handleNavigate applies a location change and returns the immediate
// (typically not-ready) state.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if to == "" {
		http.Error(w, "missing 'to' query parameter", http.StatusBadRequest)
		return
	}

	matched, _ := s.table.Match(to)
	s.runner.Notify(gate.Change{Location: to, Routes: matched})
	log.Printf("[NAVD] navigate to=%s matched=%d", to, len(matched))

	s.writeView(w)
}

// handleView returns the current render state.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.writeView(w)
}

// handleCycles lists recent journal entries.
func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.journal.ListCycles(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// writeView serializes the current gate state.
func (s *Server) writeView(w http.ResponseWriter) {
	state := s.runner.State()
	writeJSON(w, viewState{
		Location: s.runner.Location(),
		Ready:    state.HasDispatched,
		InFlight: state.PreviousLocation != nil,
		Output:   s.runner.Render(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[NAVD] encode response: %v", err)
	}
}

// #endregion handlers
