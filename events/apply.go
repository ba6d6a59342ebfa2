package events

import (
	"math/rand"

	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/world"
)

// Durations and magnitudes of the event effects. Contained spills clear
// in half the time; the toll numbers are small because events fire rarely
// but hit the whole board.
const (
	spillDuration          = 16
	spillContainedDuration = 8
	spillTickDamage        = 1
	cullCount              = 2
	welcomeCount           = 3
	partyMeal              = 5
)

// Active is an event that has been decided and is applying its effects.
// One-shot events have a single tick of life; the oil spill lingers.
type Active struct {
	Kind      Kind
	Decision  Decision
	TicksLeft int
}

// Activate turns a decided event into an active one.
func Activate(kind Kind, decision Decision) *Active {
	if decision == DecisionNone {
		decision = Default(kind)
	}
	a := &Active{Kind: kind, Decision: decision, TicksLeft: 1}
	if kind == OilSpill {
		if decision == Accept {
			a.TicksLeft = spillContainedDuration
		} else {
			a.TicksLeft = spillDuration
		}
	}
	return a
}

// Report summarizes one tick of event effects for telemetry.
type Report struct {
	Killed  int // animals and plants removed
	Spawned int // animals added
	Stalled int // plants prevented from growing
	Fed     int // animals fed
}

// Done reports whether the event has burned out.
func (a *Active) Done() bool { return a.TicksLeft <= 0 }

// Apply runs one tick of the event against the board. Called from the
// sequential part of the tick, so direct mutation and rng use are safe.
func (a *Active) Apply(b *world.Board, rules *entity.Rules, rng *rand.Rand) Report {
	if a.Done() {
		return Report{}
	}
	a.TicksLeft--
	switch a.Kind {
	case OilSpill:
		return applySpill(a.Decision, b)
	case InvasiveSchool:
		return applySchool(a.Decision, b, rules, rng)
	case ColonyParty:
		return applyParty(a.Decision, b)
	}
	return Report{}
}

// applySpill stalls every plant for the tick. An uncontained spill also
// poisons the animals.
func applySpill(d Decision, b *world.Board) Report {
	var rep Report
	for _, h := range b.Manager().Snapshot() {
		t, ok := b.At(h.Pos)
		if !ok || !t.Occupied() {
			continue
		}
		switch e := t.Entity().(type) {
		case *entity.Plant:
			e.StallGrowth()
			rep.Stalled++
		case *entity.Animal:
			if d != Decline {
				continue
			}
			e.Damage(spillTickDamage)
			if !e.Alive() {
				t.Remove()
				rep.Killed++
			}
		}
	}
	return rep
}

// applySchool either drives the invaders off at the cost of a few native
// fish, or welcomes them, adding mouths the kelp has to feed.
func applySchool(d Decision, b *world.Board, rules *entity.Rules, rng *rand.Rand) Report {
	var rep Report
	if d == Accept {
		removed := 0
		for _, h := range b.Manager().Snapshot() {
			if removed >= cullCount {
				break
			}
			t, ok := b.At(h.Pos)
			if !ok || !t.Occupied() {
				continue
			}
			if fish, isFish := t.Entity().(*entity.Animal); isFish && fish.Species() == entity.Fish {
				fish.Kill()
				t.Remove()
				removed++
			}
		}
		rep.Killed = removed
		return rep
	}

	free := freeTiles(b)
	for i := 0; i < welcomeCount && len(free) > 0; i++ {
		idx := rng.Intn(len(free))
		pos := free[idx]
		free = append(free[:idx], free[idx+1:]...)
		sex := entity.Male
		if rng.Intn(2) == 1 {
			sex = entity.Female
		}
		newcomer, ok := rules.NewAnimal(entity.Fish, sex)
		if !ok {
			break
		}
		if err := b.Place(newcomer, pos); err == nil {
			rep.Spawned++
		}
	}
	return rep
}

// applyParty feeds every animal that shows up.
func applyParty(d Decision, b *world.Board) Report {
	var rep Report
	if d != Accept {
		return rep
	}
	for _, h := range b.Manager().Snapshot() {
		t, ok := b.At(h.Pos)
		if !ok || !t.Occupied() {
			continue
		}
		if a, isAnimal := t.Entity().(*entity.Animal); isAnimal {
			a.Feed(partyMeal)
			rep.Fed++
		}
	}
	return rep
}

func freeTiles(b *world.Board) []world.Position {
	var out []world.Position
	for y := 0; y < b.Rows(); y++ {
		for x := 0; x < b.Cols(); x++ {
			p := world.Position{X: x, Y: y}
			if t, _ := b.At(p); !t.Occupied() {
				out = append(out, p)
			}
		}
	}
	return out
}
