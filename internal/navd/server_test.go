package navd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jsfix-ci/react-router-dispatcher/internal/journal"
	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.JournalPath = filepath.Join(t.TempDir(), "navd.db")
	cfg.InitialLocation = "/"
	cfg.DefaultLatencyMs = 50
	cfg.Routes = []route.Descriptor{
		{Name: "home", Pattern: "/", Actions: [][]string{{"loadHome"}}},
		{Name: "article", Pattern: "/articles/:id", Actions: [][]string{{"loadArticle"}, {"loadComments"}}},
	}
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(testConfig(t))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		if err := s.journal.Close(); err != nil {
			t.Errorf("close journal: %v", err)
		}
	})
	s.Activate()
	return s
}

func getView(t *testing.T, s *Server) viewState {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/view", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("view status = %d, want 200", rec.Code)
	}
	var v viewState
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

// waitReady polls the view endpoint until the gate reports ready.
func waitReady(t *testing.T, s *Server) viewState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v := getView(t, s); v.Ready {
			return v
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("gate never became ready")
	return viewState{}
}

func TestServerActivationDispatches(t *testing.T) {
	s := newTestServer(t)

	v := waitReady(t, s)
	if v.Location != "/" {
		t.Errorf("location = %v, want /", v.Location)
	}
	if v.InFlight {
		t.Error("ready view should not report an in-flight cycle")
	}
	if v.Output.Tag != "div" {
		t.Errorf("output tag = %q, want div", v.Output.Tag)
	}
}

func TestServerNavigateGoesNotReadyThenReady(t *testing.T) {
	s := newTestServer(t)
	waitReady(t, s)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/navigate?to=/articles/42", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("navigate status = %d, want 200", rec.Code)
	}
	var v viewState
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode navigate response: %v", err)
	}
	if v.Ready {
		t.Error("navigate response should report not ready while actions run")
	}
	if v.Location != "/articles/42" {
		t.Errorf("location = %v, want /articles/42", v.Location)
	}

	final := waitReady(t, s)
	if final.Location != "/articles/42" {
		t.Errorf("final location = %v, want /articles/42", final.Location)
	}
}

func TestServerNavigateToUnmatchedPathRendersEmpty(t *testing.T) {
	s := newTestServer(t)
	waitReady(t, s)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/navigate?to=/nope", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("navigate status = %d, want 200", rec.Code)
	}

	v := waitReady(t, s)
	if v.Location != "/nope" {
		t.Errorf("location = %v, want /nope", v.Location)
	}
	if !v.Output.IsZero() {
		t.Errorf("zero matched routes must yield empty output, got %q", v.Output.String())
	}
}

func TestServerNavigateRequiresTarget(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/navigate", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestServerCyclesEndpoint(t *testing.T) {
	s := newTestServer(t)
	waitReady(t, s)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/navigate?to=/articles/7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("navigate status = %d", rec.Code)
	}
	waitReady(t, s)

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cycles", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cycles status = %d, want 200", rec.Code)
	}
	var records []journal.CycleRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode cycles: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d cycle records, want 2", len(records))
	}
	// Newest first.
	if records[0].Trigger != "location_change" {
		t.Errorf("records[0].Trigger = %q, want location_change", records[0].Trigger)
	}
	if records[1].Trigger != "activate" {
		t.Errorf("records[1].Trigger = %q, want activate", records[1].Trigger)
	}
}

func TestBuildRegistryCoversRouteActions(t *testing.T) {
	registry := buildRegistry(testConfig(t))
	names := registry.Names()

	want := map[string]bool{"loadHome": false, "loadArticle": false, "loadComments": false}
	for _, n := range names {
		if _, ok := want[n]; !ok {
			t.Errorf("unexpected registered action %q", n)
		}
		want[n] = true
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("action %q not registered", n)
		}
	}
}

func TestRouteActionsCollectsGroupsInOrder(t *testing.T) {
	rctx := route.Context{
		Routes: []route.Descriptor{
			{Name: "layout", Actions: [][]string{{"loadUser"}}},
			{Name: "page", Actions: [][]string{{"loadPage", "loadSidebar"}}},
		},
	}
	groups := routeActions(rctx)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0][0] != "loadUser" {
		t.Errorf("groups[0] = %v, want [loadUser]", groups[0])
	}
	if len(groups[1]) != 2 || groups[1][0] != "loadPage" {
		t.Errorf("groups[1] = %v, want [loadPage loadSidebar]", groups[1])
	}
}
