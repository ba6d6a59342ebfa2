package entity

import (
	"github.com/pelagic-sim/abyss/config"
)

// Rules binds the config stat tables to species values. Edibility and the
// plant growth chain are resolved once at startup so the per-tick paths
// work with plain map lookups.
type Rules struct {
	animals map[Species]config.AnimalConfig
	plants  map[Species]config.PlantConfig
	eats    map[Species]map[Species]bool
	grows   map[Species]Species
}

// NewRules resolves cfg's species names into typed tables. Unknown names
// surface as ConfigError so a bad config fails before the first tick.
func NewRules(cfg *config.Config) (*Rules, error) {
	r := &Rules{
		animals: make(map[Species]config.AnimalConfig, len(cfg.Animals)),
		plants:  make(map[Species]config.PlantConfig, len(cfg.Plants)),
		eats:    make(map[Species]map[Species]bool, len(cfg.Animals)),
		grows:   make(map[Species]Species),
	}

	for name, stats := range cfg.Animals {
		sp, ok := SpeciesByName(name)
		if !ok || !sp.IsAnimal() {
			return nil, &config.ConfigError{Field: "animals." + name, Reason: "not an animal species"}
		}
		r.animals[sp] = stats

		prey := make(map[Species]bool, len(stats.Eats))
		for _, target := range stats.Eats {
			tsp, ok := SpeciesByName(target)
			if !ok {
				return nil, &config.ConfigError{Field: "animals." + name + ".eats", Reason: "unknown species " + target}
			}
			prey[tsp] = true
		}
		r.eats[sp] = prey
	}

	for name, stats := range cfg.Plants {
		sp, ok := SpeciesByName(name)
		if !ok || !sp.IsPlant() {
			return nil, &config.ConfigError{Field: "plants." + name, Reason: "not a plant species"}
		}
		r.plants[sp] = stats
		if stats.GrowsInto != "" {
			next, ok := SpeciesByName(stats.GrowsInto)
			if !ok || !next.IsPlant() {
				return nil, &config.ConfigError{Field: "plants." + name + ".grows_into", Reason: "unknown plant " + stats.GrowsInto}
			}
			r.grows[sp] = next
		}
	}

	return r, nil
}

// CanEat reports whether eater's species preys on target's species.
func (r *Rules) CanEat(eater, target Species) bool {
	return r.eats[eater][target]
}

// AnimalStats returns the stat table for an animal species.
func (r *Rules) AnimalStats(sp Species) (config.AnimalConfig, bool) {
	s, ok := r.animals[sp]
	return s, ok
}

// NewAnimal builds a fresh animal of the given species and sex.
func (r *Rules) NewAnimal(sp Species, sex Sex) (*Animal, bool) {
	stats, ok := r.animals[sp]
	if !ok {
		return nil, false
	}
	return newAnimal(sp, stats, sex), true
}

// NewPlant builds a fresh plant of the given stage.
func (r *Rules) NewPlant(sp Species) (*Plant, bool) {
	stats, ok := r.plants[sp]
	if !ok {
		return nil, false
	}
	return newPlant(sp, stats), true
}

// NextStage returns what sp grows into, if anything.
func (r *Rules) NextStage(sp Species) (Species, bool) {
	next, ok := r.grows[sp]
	return next, ok
}
