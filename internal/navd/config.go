package navd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

// #region config
// Config is the YAML configuration for the navigation demo server.
type Config struct {
	Addr               string             `yaml:"addr"`
	JournalPath        string             `yaml:"journal"`
	Placeholder        string             `yaml:"placeholder"`
	InitialLocation    string             `yaml:"initial_location"`
	DispatchOnActivate bool               `yaml:"dispatch_on_activate"`
	ReloadOnChange     bool               `yaml:"reload_on_change"`
	Routes             []route.Descriptor `yaml:"routes"`

	// Simulated action latencies in milliseconds, keyed by identifier.
	// Actions without an entry use DefaultLatencyMs.
	Latencies        map[string]int `yaml:"latencies"`
	DefaultLatencyMs int            `yaml:"default_latency_ms"`
}

// DefaultConfig returns a runnable local setup.
func DefaultConfig() Config {
	return Config{
		Addr:               ":8080",
		JournalPath:        "navd.db",
		Placeholder:        "Loading...",
		InitialLocation:    "/",
		DispatchOnActivate: true,
		ReloadOnChange:     true,
		DefaultLatencyMs:   150,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Routes) == 0 {
		return Config{}, fmt.Errorf("config %s: no routes defined", path)
	}
	return cfg, nil
}

// #endregion config
