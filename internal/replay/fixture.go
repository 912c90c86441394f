package replay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jsfix-ci/react-router-dispatcher/internal/actionset"
	"github.com/jsfix-ci/react-router-dispatcher/internal/gate"
	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

// #region fixture-types
// Fixture is the top-level YAML structure for a replay fixture.
type Fixture struct {
	Description string               `yaml:"description"`
	Routes      []route.Descriptor   `yaml:"routes"`
	Config      FixtureConfig        `yaml:"config"`
	Placeholder string               `yaml:"placeholder"`
	Actions     any                  `yaml:"actions"` // any static action-set shape
	Steps       []FixtureStep        `yaml:"steps"`
	Expected    []FixtureExpectation `yaml:"expected"`
}

// FixtureConfig mirrors gate.Config with YAML tags.
type FixtureConfig struct {
	DispatchOnActivate bool `yaml:"dispatch_on_activate"`
	ReloadOnChange     bool `yaml:"reload_on_change"`
}

// FixtureStep mirrors Step with YAML tags. Actions accepts any static
// action-set shape (identifier, list, or list of groups).
type FixtureStep struct {
	Kind     string `yaml:"kind"`
	Location string `yaml:"location,omitempty"`
	Actions  any    `yaml:"actions,omitempty"`
	Fail     bool   `yaml:"fail,omitempty"`
}

// FixtureExpectation is the expected observable state after one step.
type FixtureExpectation struct {
	Dispatched bool `yaml:"dispatched"`
	Ready      bool `yaml:"ready"`
}

// #endregion fixture-types

// #region fixture-loader
// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToScript converts a fixture to a runnable script, normalizing every
// action-set shape. Malformed shapes fail here, before the run starts.
func (f *Fixture) ToScript() (Script, error) {
	script := Script{
		Routes: f.Routes,
		Config: gate.Config{
			DispatchOnActivate: f.Config.DispatchOnActivate,
			ReloadOnChange:     f.Config.ReloadOnChange,
		},
		Placeholder: f.Placeholder,
	}

	base := actionset.Set{}
	if f.Actions != nil {
		set, err := actionset.Static(f.Actions)
		if err != nil {
			return Script{}, fmt.Errorf("fixture actions: %w", err)
		}
		base = set
	}

	for i, fs := range f.Steps {
		step := Step{
			Kind:     fs.Kind,
			Location: fs.Location,
			Fail:     fs.Fail,
		}
		switch {
		case fs.Actions != nil:
			set, err := actionset.Static(fs.Actions)
			if err != nil {
				return Script{}, fmt.Errorf("step %d actions: %w", i, err)
			}
			step.Actions = set
		case fs.Kind == "activate":
			step.Actions = base
		}
		script.Steps = append(script.Steps, step)
	}

	return script, nil
}

// #endregion fixture-loader
