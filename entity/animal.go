package entity

import (
	"github.com/pelagic-sim/abyss/config"
	"github.com/pelagic-sim/abyss/world"
)

// Animal is a mobile creature. All stat values come from the config table
// for its species; the struct itself only tracks mutable state.
type Animal struct {
	id      world.ID
	species Species
	stats   config.AnimalConfig
	sex     Sex

	hp          int
	hunger      int
	age         int
	sinceMating int
	dead        bool
	fed         bool // ate this tick; suppresses this tick's hunger decay

	// Mode is owned by the behavior layer.
	Mode Mode
}

func newAnimal(species Species, stats config.AnimalConfig, sex Sex) *Animal {
	return &Animal{
		species:     species,
		stats:       stats,
		sex:         sex,
		hp:          stats.MaxHP,
		hunger:      stats.MaxHunger,
		sinceMating: stats.MatingCooldown, // newborns and seeded animals start ready
	}
}

func (a *Animal) Tracked() bool     { return true }
func (a *Animal) ID() world.ID      { return a.id }
func (a *Animal) SetID(id world.ID) { a.id = id }
func (a *Animal) Species() Species  { return a.species }
func (a *Animal) Sex() Sex          { return a.sex }
func (a *Animal) HP() int           { return a.hp }
func (a *Animal) Hunger() int       { return a.hunger }
func (a *Animal) Age() int          { return a.age }
func (a *Animal) Alive() bool       { return !a.dead }
func (a *Animal) Speed() int        { return a.stats.Speed }
func (a *Animal) Sexual() bool      { return a.stats.Sexual }
func (a *Animal) Attack() int       { return a.stats.Attack }

// Hungry reports whether the animal should be looking for food.
func (a *Animal) Hungry() bool { return a.hunger <= a.stats.HungryAt }

// Starving reports whether hunger has bottomed out and HP is draining.
func (a *Animal) Starving() bool { return a.hunger <= 0 }

// MateReady reports whether the mating cooldown has elapsed.
func (a *Animal) MateReady() bool { return a.sinceMating >= a.stats.MatingCooldown }

// CompatibleMate reports whether o is an acceptable partner: same species,
// both off cooldown, and opposite sexes when the species mates sexually.
func (a *Animal) CompatibleMate(o *Animal) bool {
	if o == nil || a.species != o.species {
		return false
	}
	if !a.MateReady() || !o.MateReady() {
		return false
	}
	if a.stats.Sexual && a.sex == o.sex {
		return false
	}
	return true
}

// ResetMating restarts the cooldown after producing offspring.
func (a *Animal) ResetMating() { a.sinceMating = 0 }

// Feed restores hunger, clamped to the species maximum, and marks the
// animal fed for this tick.
func (a *Animal) Feed(n int) {
	a.hunger += n
	if a.hunger > a.stats.MaxHunger {
		a.hunger = a.stats.MaxHunger
	}
	a.fed = true
}

// SetHunger forces hunger to n, clamped to the species range. Events use
// this to drain or top up animals directly.
func (a *Animal) SetHunger(n int) {
	if n < 0 {
		n = 0
	}
	if n > a.stats.MaxHunger {
		n = a.stats.MaxHunger
	}
	a.hunger = n
}

// Damage applies raw damage, killing the animal at zero HP.
func (a *Animal) Damage(n int) {
	a.hp -= n
	if a.hp <= 0 {
		a.hp = 0
		a.dead = true
	}
}

// Kill marks the animal dead regardless of HP. Used by events.
func (a *Animal) Kill() {
	a.hp = 0
	a.dead = true
}

// TakeBite implements Edible. A bite deals the attacker's strength in
// damage; a surviving animal fights back.
func (a *Animal) TakeBite(attack int) (killed bool, retaliation int) {
	a.Damage(attack)
	if a.dead {
		return true, 0
	}
	return false, a.stats.Retaliation
}

// BiteReward implements Edible. Animals only yield nutrition as a kill.
func (a *Animal) BiteReward(killed bool) int {
	if killed {
		return a.stats.Nutrition
	}
	return 0
}

// LateProcess runs the end-of-tick life-state update: hunger decay (unless
// the animal ate this tick), starvation damage, regeneration, aging and the
// mating cooldown. Touches no other entity.
func (a *Animal) LateProcess() LateOutcome {
	if a.dead {
		return LateOutcome{Died: true, Cause: CauseEaten}
	}

	if a.fed {
		a.fed = false
	} else {
		a.hunger -= a.stats.HungerDecay
		if a.hunger < 0 {
			a.hunger = 0
		}
	}

	if a.Starving() {
		a.Damage(a.stats.StarveDamage)
		if a.dead {
			return LateOutcome{Died: true, Cause: CauseStarved}
		}
	} else if !a.Hungry() && a.hp < a.stats.MaxHP {
		a.hp += a.stats.Regen
		if a.hp > a.stats.MaxHP {
			a.hp = a.stats.MaxHP
		}
	}

	a.age++
	if a.stats.MaxAge > 0 && a.age >= a.stats.MaxAge {
		a.dead = true
		return LateOutcome{Died: true, Cause: CauseOldAge}
	}

	if a.sinceMating < a.stats.MatingCooldown {
		a.sinceMating++
	}
	return LateOutcome{}
}
