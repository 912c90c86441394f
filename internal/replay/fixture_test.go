package replay

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleFixture = `
description: navigate home then to a user page
routes:
  - name: home
    pattern: /
  - name: user
    pattern: /users/:id
config:
  dispatch_on_activate: true
  reload_on_change: true
placeholder: "Loading..."
actions: [loadSession]
steps:
  - kind: activate
    location: /
  - kind: resolve
  - kind: navigate
    location: /users/7
  - kind: actions
    actions:
      - [loadUser]
      - [loadPosts, loadComments]
  - kind: resolve
  - kind: resolve
expected:
  - {dispatched: true, ready: false}
  - {dispatched: false, ready: true}
  - {dispatched: true, ready: false}
  - {dispatched: true, ready: false}
  - {dispatched: false, ready: false}
  - {dispatched: false, ready: true}
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture(writeFixture(t, sampleFixture))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(f.Routes) != 2 || f.Routes[1].Pattern != "/users/:id" {
		t.Fatalf("routes not parsed: %+v", f.Routes)
	}
	if len(f.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(f.Steps))
	}
	if len(f.Expected) != 6 {
		t.Fatalf("expected 6 expectations, got %d", len(f.Expected))
	}
}

func TestFixtureToScript(t *testing.T) {
	f, err := LoadFixture(writeFixture(t, sampleFixture))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	script, err := f.ToScript()
	if err != nil {
		t.Fatalf("to script: %v", err)
	}

	if !script.Config.DispatchOnActivate || !script.Config.ReloadOnChange {
		t.Fatalf("config not converted: %+v", script.Config)
	}

	// Fixture-level actions flow into the activate step.
	groups := script.Steps[0].Actions.Groups()
	if len(groups) != 1 || groups[0][0] != "loadSession" {
		t.Fatalf("activate actions wrong: %v", groups)
	}

	// Step-level actions keep their grouping.
	groups = script.Steps[3].Actions.Groups()
	if len(groups) != 2 || len(groups[1]) != 2 || groups[1][1] != "loadComments" {
		t.Fatalf("step actions wrong: %v", groups)
	}
}

func TestFixtureRunMatchesExpectations(t *testing.T) {
	f, err := LoadFixture(writeFixture(t, sampleFixture))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	script, err := f.ToScript()
	if err != nil {
		t.Fatalf("to script: %v", err)
	}

	results, err := Run(script)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != len(f.Expected) {
		t.Fatalf("expected %d results, got %d", len(f.Expected), len(results))
	}
	for i, exp := range f.Expected {
		if results[i].Dispatched != exp.Dispatched || results[i].Ready != exp.Ready {
			t.Fatalf("step %d: expected dispatched=%v ready=%v, got %+v",
				i, exp.Dispatched, exp.Ready, results[i])
		}
	}
}

func TestFixtureRejectsMalformedActions(t *testing.T) {
	bad := `
config: {dispatch_on_activate: true, reload_on_change: true}
actions: 42
steps:
  - kind: activate
    location: /
`
	f, err := LoadFixture(writeFixture(t, bad))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := f.ToScript(); err == nil {
		t.Fatal("expected error for malformed action set")
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	if _, err := LoadFixture("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
