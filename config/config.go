// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Board      BoardConfig             `yaml:"board"`
	Seed       int64                   `yaml:"seed"`
	TickRate   float64                 `yaml:"tick_rate"`
	Population map[string]int          `yaml:"population"`
	Scatter    ScatterConfig           `yaml:"scatter"`
	Animals    map[string]AnimalConfig `yaml:"animals"`
	Plants     map[string]PlantConfig  `yaml:"plants"`
	Events     map[string]float64      `yaml:"events"`
	Telemetry  TelemetryConfig         `yaml:"telemetry"`
}

// BoardConfig holds grid dimensions.
type BoardConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// ScatterConfig controls board dressing placed after the initial creatures.
type ScatterConfig struct {
	DecorationChance float64 `yaml:"decoration_chance"` // chance per free tile of a rock/shell
	PlantChance      float64 `yaml:"plant_chance"`      // chance per free tile of a mature kelp
}

// AnimalConfig holds the per-species stat table for animals.
// Edibility and mate compatibility are explicit data here rather than code.
type AnimalConfig struct {
	MaxHP          int      `yaml:"max_hp"`
	MaxHunger      int      `yaml:"max_hunger"`
	HungryAt       int      `yaml:"hungry_at"`       // hunger at or below this triggers eating behavior
	HungerDecay    int      `yaml:"hunger_decay"`    // hunger lost per tick
	StarveDamage   int      `yaml:"starve_damage"`   // HP lost per tick once hunger hits 0
	Regen          int      `yaml:"regen"`           // HP regained per tick while not hungry
	Speed          int      `yaml:"speed"`           // tiles moved per tick (per axis)
	MaxAge         int      `yaml:"max_age"`         // ticks before dying of old age
	Sexual         bool     `yaml:"sexual"`          // true: mating needs male x female; false: any pair
	MatingCooldown int      `yaml:"mating_cooldown"` // ticks between matings
	Nutrition      int      `yaml:"nutrition"`       // hunger restored to whoever eats this
	Attack         int      `yaml:"attack"`          // damage dealt per bite
	Retaliation    int      `yaml:"retaliation"`     // damage returned when bitten alive
	Eats           []string `yaml:"eats"`            // species names this animal may eat
}

// PlantConfig holds the per-stage stat table for plants.
type PlantConfig struct {
	HP              int    `yaml:"hp"`               // bites the plant survives
	GrowthThreshold int    `yaml:"growth_threshold"` // growth level to advance a stage / spread seeds
	MaxAge          int    `yaml:"max_age"`          // 0 = never dies of age
	Nutrition       int    `yaml:"nutrition"`        // hunger restored per bite taken from it
	GrowsInto       string `yaml:"grows_into"`       // next stage species name; empty = terminal stage
	SeedsSpread     int    `yaml:"seeds_spread"`     // max seeds placed on adjacent tiles when mature
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowTicks int `yaml:"window_ticks"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigError reports an invalid configuration detected before the first tick.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration for errors that would leave the
// simulation in an invalid state before it starts.
func (c *Config) Validate() error {
	if c.Board.Rows <= 0 || c.Board.Cols <= 0 {
		return &ConfigError{
			Field:  "board",
			Reason: fmt.Sprintf("dimensions must be positive, got %dx%d", c.Board.Rows, c.Board.Cols),
		}
	}

	capacity := c.Board.Rows * c.Board.Cols
	total := 0
	for name, count := range c.Population {
		if count < 0 {
			return &ConfigError{Field: "population." + name, Reason: "count must be non-negative"}
		}
		if _, ok := c.Animals[name]; !ok {
			return &ConfigError{Field: "population." + name, Reason: "unknown species"}
		}
		total += count
	}
	if total > capacity {
		return &ConfigError{
			Field:  "population",
			Reason: fmt.Sprintf("%d creatures exceed board capacity %d", total, capacity),
		}
	}

	if c.TickRate <= 0 {
		return &ConfigError{Field: "tick_rate", Reason: "must be positive"}
	}

	for name, freq := range c.Events {
		if freq < 0 || freq > 1 {
			return &ConfigError{Field: "events." + name, Reason: "frequency must be in [0, 1]"}
		}
	}

	for name, a := range c.Animals {
		if a.MaxHP <= 0 || a.MaxHunger <= 0 {
			return &ConfigError{Field: "animals." + name, Reason: "max_hp and max_hunger must be positive"}
		}
		for _, prey := range a.Eats {
			if _, animal := c.Animals[prey]; animal {
				continue
			}
			if _, plant := c.Plants[prey]; plant {
				continue
			}
			return &ConfigError{Field: "animals." + name + ".eats", Reason: "unknown prey species " + prey}
		}
	}

	for name, p := range c.Plants {
		if p.GrowsInto != "" {
			if _, ok := c.Plants[p.GrowsInto]; !ok {
				return &ConfigError{Field: "plants." + name + ".grows_into", Reason: "unknown plant stage " + p.GrowsInto}
			}
		}
	}

	return nil
}

// EventNames returns the configured event names in a stable order.
func (c *Config) EventNames() []string {
	names := make([]string, 0, len(c.Events))
	for name := range c.Events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
