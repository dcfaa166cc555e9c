// Package config carries every dispatch-relevant knob as an explicit,
// passed-in record instead of process-wide mutable state (spec §9,
// "Runtime-mutable global configuration" design note). A Store wraps one
// Config behind a mutex so an admin operation can swap it at request
// boundaries without any caller needing to take a lock of its own.
package config

import (
	"fmt"
	"os"
	"sync"

	"dispatch-service/internal/domain"

	"gopkg.in/yaml.v3"
)

// Weights are the six scorer sub-score weights; they must sum to 1.00.
type Weights struct {
	Distance      float64 `yaml:"distance"`
	Capacity      float64 `yaml:"capacity"`
	Urgency       float64 `yaml:"urgency"`
	Compatibility float64 `yaml:"compatibility"`
	Performance   float64 `yaml:"performance"`
	Interference  float64 `yaml:"interference"`
}

// DefaultWeights is the newer of the two historical weight vectors (spec §9
// Open Question, resolved in favor of the interference-aware split).
func DefaultWeights() Weights {
	return Weights{
		Distance:      0.25,
		Capacity:      0.15,
		Urgency:       0.25,
		Compatibility: 0.10,
		Performance:   0.10,
		Interference:  0.15,
	}
}

// Sum returns the total of all six weights, for validation.
func (w Weights) Sum() float64 {
	return w.Distance + w.Capacity + w.Urgency + w.Compatibility + w.Performance + w.Interference
}

// ZoneDef is the YAML-friendly form of a domain.Zone.
type ZoneDef struct {
	Name     string   `yaml:"name"`
	North    float64  `yaml:"north"`
	South    float64  `yaml:"south"`
	East     float64  `yaml:"east"`
	West     float64  `yaml:"west"`
	Adjacent []string `yaml:"adjacent"`
}

// Config is the full set of dispatch-relevant knobs, passed explicitly to
// every component that needs it.
type Config struct {
	Weights Weights `yaml:"weights"`

	DefaultAvgSpeedKPH   float64 `yaml:"default_avg_speed_kph"`
	ServiceTimeMin       float64 `yaml:"service_time_min"`
	DefaultSearchRadiusM float64 `yaml:"default_search_radius_m"`

	ZoneDefs []ZoneDef `yaml:"zones"`

	FastModeK           int     `yaml:"fast_mode_k"`
	SingleOrderBudgetS  float64 `yaml:"single_order_time_budget_s"`
	BatchOrderBudgetS   float64 `yaml:"batch_order_time_budget_s"`
	SequencerBudgetS    float64 `yaml:"sequencer_time_budget_s"`
	GeocodeRateLimitRPS float64 `yaml:"geocode_rate_limit_rps"`
}

// Default returns a Config with every knob set to the spec's documented
// defaults and no zones configured.
func Default() Config {
	return Config{
		Weights:              DefaultWeights(),
		DefaultAvgSpeedKPH:   domain.DefaultAvgSpeedKPH,
		ServiceTimeMin:       domain.ServiceTimeMin,
		DefaultSearchRadiusM: domain.DefaultSearchRadiusM,
		FastModeK:            3,
		SingleOrderBudgetS:   5,
		BatchOrderBudgetS:    30,
		SequencerBudgetS:     5,
		GeocodeRateLimitRPS:  1,
	}
}

// Validate checks the invariants a Config must satisfy before it is used.
func (c Config) Validate() error {
	const tolerance = 1e-9
	if sum := c.Weights.Sum(); sum < 1-tolerance || sum > 1+tolerance {
		return fmt.Errorf("config: scoring weights must sum to 1.00, got %.6f", sum)
	}
	if c.FastModeK <= 0 {
		return fmt.Errorf("config: fast_mode_k must be positive")
	}
	seen := make(map[string]struct{}, len(c.ZoneDefs))
	for _, z := range c.ZoneDefs {
		if z.Name == "" {
			return fmt.Errorf("config: zone with empty name")
		}
		if _, ok := seen[z.Name]; ok {
			return fmt.Errorf("config: duplicate zone name %q", z.Name)
		}
		seen[z.Name] = struct{}{}
	}
	return nil
}

// Load reads a YAML config file and overlays it on Default(). A missing
// file is not an error: the defaults are used as-is, mirroring the
// teacher's "no .env file found" non-fatal startup behavior.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Zones converts the YAML zone definitions into domain.Zone values.
func (c Config) Zones() []domain.Zone {
	out := make([]domain.Zone, 0, len(c.ZoneDefs))
	for _, z := range c.ZoneDefs {
		adj := make(map[string]struct{}, len(z.Adjacent))
		for _, a := range z.Adjacent {
			adj[a] = struct{}{}
		}
		out = append(out, domain.Zone{
			Name:     z.Name,
			North:    z.North,
			South:    z.South,
			East:     z.East,
			West:     z.West,
			Adjacent: adj,
		})
	}
	return out
}

// Store guards a Config behind a mutex so it can be swapped at request
// boundaries by an admin operation without callers holding their own lock
// (spec §9 design note).
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// NewStore wraps cfg in a Store.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Get returns the current Config. The returned value is a copy; mutating it
// has no effect on the Store.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Swap atomically replaces the current Config after validating it.
func (s *Store) Swap(next Config) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = next
	return nil
}
