package entity

import (
	"github.com/pelagic-sim/abyss/config"
	"github.com/pelagic-sim/abyss/world"
)

// Plant is a rooted growth stage: seed, sprout or mature kelp. Plants never
// move; they age, accumulate growth, and either advance to the next stage
// or spread seeds once mature.
type Plant struct {
	id      world.ID
	species Species
	stats   config.PlantConfig

	hp     int // bites remaining
	growth int
	age    int
	dead   bool

	growthStalled bool // set by events that suppress growth
}

func newPlant(species Species, stats config.PlantConfig) *Plant {
	return &Plant{species: species, stats: stats, hp: stats.HP}
}

func (p *Plant) Tracked() bool     { return true }
func (p *Plant) ID() world.ID      { return p.id }
func (p *Plant) SetID(id world.ID) { p.id = id }
func (p *Plant) Species() Species  { return p.species }
func (p *Plant) HP() int           { return p.hp }
func (p *Plant) Growth() int       { return p.growth }
func (p *Plant) Alive() bool       { return !p.dead }

// StallGrowth suppresses growth accumulation for the next update. Events
// re-apply it every tick they are active.
func (p *Plant) StallGrowth() { p.growthStalled = true }

// Kill marks the plant dead regardless of remaining bites.
func (p *Plant) Kill() {
	p.hp = 0
	p.dead = true
}

// TakeBite implements Edible. Plant HP counts bites, not damage, and
// plants never fight back.
func (p *Plant) TakeBite(int) (killed bool, retaliation int) {
	p.hp--
	if p.hp <= 0 {
		p.hp = 0
		p.dead = true
		return true, 0
	}
	return false, 0
}

// BiteReward implements Edible. Every bite of a plant feeds the attacker.
func (p *Plant) BiteReward(bool) int { return p.stats.Nutrition }

// ReadyToSpread reports whether a terminal-stage plant has banked enough
// growth to scatter seeds.
func (p *Plant) ReadyToSpread() bool {
	return p.stats.GrowsInto == "" && p.stats.SeedsSpread > 0 && p.growth >= p.stats.GrowthThreshold
}

// SeedBudget is how many seeds one spread attempt may place.
func (p *Plant) SeedBudget() int { return p.stats.SeedsSpread }

// ResetGrowth restarts the growth counter after a stage change or spread.
func (p *Plant) ResetGrowth() { p.growth = 0 }

// LateProcess ages the plant and accumulates growth. Grew is reported when
// a non-terminal stage crosses its threshold; the replacement itself is a
// board operation and happens in the sequential apply step.
func (p *Plant) LateProcess() LateOutcome {
	if p.dead {
		return LateOutcome{Died: true, Cause: CauseEaten}
	}

	p.age++
	if p.stats.MaxAge > 0 && p.age >= p.stats.MaxAge {
		p.dead = true
		return LateOutcome{Died: true, Cause: CauseOldAge}
	}

	if p.growthStalled {
		p.growthStalled = false
	} else {
		p.growth++
	}
	if p.stats.GrowsInto != "" && p.growth >= p.stats.GrowthThreshold {
		return LateOutcome{Grew: true}
	}
	return LateOutcome{}
}
