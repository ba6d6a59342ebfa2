// Package behavior drives animal decision making. It owns the mode state
// machine (idle, eating, mating) and the movement and interaction steps
// each mode produces; entities only store which mode they are in.
package behavior

import (
	"math/rand"

	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/world"
)

// Env bundles what a behavior decision can see: the board and the species
// rule tables. Behavior reads through it, the tick loop owns mutation.
type Env struct {
	Board *world.Board
	Rules *entity.Rules
}

// animalAt returns the animal occupying p, if any.
func (e *Env) animalAt(p world.Position) *entity.Animal {
	t, ok := e.Board.At(p)
	if !ok || !t.Occupied() {
		return nil
	}
	a, _ := t.Entity().(*entity.Animal)
	return a
}

// edibleAt returns the occupant of p as prey for a, if it is one.
func (e *Env) edibleAt(a *entity.Animal, p world.Position) entity.Edible {
	t, ok := e.Board.At(p)
	if !ok || !t.Occupied() {
		return nil
	}
	ed, ok := t.Entity().(entity.Edible)
	if !ok || !e.Rules.CanEat(a.Species(), ed.Species()) {
		return nil
	}
	if prey, isAnimal := ed.(*entity.Animal); isAnimal && !prey.Alive() {
		return nil
	}
	return ed
}

// nearest scans the registry snapshot for the closest position satisfying
// want. Snapshot order is ID-ascending, so distance ties always resolve to
// the oldest entity and the scan is deterministic.
func (e *Env) nearest(from world.Position, self world.ID, want func(world.Position) bool) (world.Position, bool) {
	best := world.Position{}
	bestDist := -1
	for _, h := range e.Board.Manager().Snapshot() {
		if h.ID == self {
			continue
		}
		if !want(h.Pos) {
			continue
		}
		d := from.Dist(h.Pos)
		if bestDist < 0 || d < bestDist {
			best, bestDist = h.Pos, d
		}
	}
	return best, bestDist >= 0
}

// NearestPrey finds the closest entity a may eat.
func (e *Env) NearestPrey(a *entity.Animal, from world.Position) (world.Position, bool) {
	return e.nearest(from, a.ID(), func(p world.Position) bool {
		return e.edibleAt(a, p) != nil
	})
}

// NearestMate finds the closest compatible partner.
func (e *Env) NearestMate(a *entity.Animal, from world.Position) (world.Position, bool) {
	return e.nearest(from, a.ID(), func(p world.Position) bool {
		mate := e.animalAt(p)
		return mate != nil && mate.Alive() && a.CompatibleMate(mate)
	})
}

func eatingCanStart(a *entity.Animal, from world.Position, env *Env) bool {
	if !a.Hungry() {
		return false
	}
	_, ok := env.NearestPrey(a, from)
	return ok
}

func matingCanStart(a *entity.Animal, from world.Position, env *Env) bool {
	if a.Hungry() || !a.MateReady() {
		return false
	}
	_, ok := env.NearestMate(a, from)
	return ok
}

func matingShouldContinue(a *entity.Animal, from world.Position, env *Env) bool {
	if !a.MateReady() {
		return false
	}
	_, ok := env.NearestMate(a, from)
	return ok
}

// Select re-evaluates a's mode. Eating outranks mating outranks idle; a
// running mode keeps going only while its own conditions hold.
func Select(a *entity.Animal, from world.Position, env *Env) entity.Mode {
	switch {
	case eatingCanStart(a, from, env):
		a.Mode = entity.ModeEating
	case a.Mode == entity.ModeMating && matingShouldContinue(a, from, env):
		// keep courting
	case matingCanStart(a, from, env):
		a.Mode = entity.ModeMating
	default:
		a.Mode = entity.ModeIdle
	}
	return a.Mode
}

// Step picks a's move for this tick: a greedy step toward the current
// mode's target, or a random drift while idle. Returns false when the
// animal stays put.
func Step(a *entity.Animal, from world.Position, env *Env, rng *rand.Rand) (world.Position, bool) {
	var target world.Position
	var ok bool
	switch a.Mode {
	case entity.ModeEating:
		target, ok = env.NearestPrey(a, from)
	case entity.ModeMating:
		target, ok = env.NearestMate(a, from)
	}
	if !ok {
		return drift(from, env, rng)
	}
	if from.Dist(target) <= 1 {
		// Close enough to interact; no move needed.
		return from, false
	}
	return stepToward(from, target, a.Speed(), env)
}

// drift moves to a random free adjacent tile, or stays put when boxed in.
func drift(from world.Position, env *Env, rng *rand.Rand) (world.Position, bool) {
	free := env.Board.FreeNeighbors(from, 1)
	if len(free) == 0 {
		return from, false
	}
	return free[rng.Intn(len(free))], true
}

// stepToward takes the greedy step that most closes the distance to
// target, trying the diagonal first and falling back to the single-axis
// moves. Blocked on all three, the animal waits.
func stepToward(from, target world.Position, speed int, env *Env) (world.Position, bool) {
	dx := clamp(target.X-from.X, speed)
	dy := clamp(target.Y-from.Y, speed)

	cands := []world.Position{
		{X: from.X + dx, Y: from.Y + dy},
		{X: from.X + dx, Y: from.Y},
		{X: from.X, Y: from.Y + dy},
	}
	if speed > 1 {
		// A full-speed step can overshoot onto the target's own tile;
		// single steps are always worth trying.
		sx, sy := clamp(dx, 1), clamp(dy, 1)
		cands = append(cands,
			world.Position{X: from.X + sx, Y: from.Y + sy},
			world.Position{X: from.X + sx, Y: from.Y},
			world.Position{X: from.X, Y: from.Y + sy},
		)
	}
	// On an axis-aligned approach a diagonal dodge still closes distance
	// and gets around a blocker sitting straight ahead.
	if dy == 0 && dx != 0 {
		sx := clamp(dx, 1)
		cands = append(cands,
			world.Position{X: from.X + sx, Y: from.Y - 1},
			world.Position{X: from.X + sx, Y: from.Y + 1},
		)
	} else if dx == 0 && dy != 0 {
		sy := clamp(dy, 1)
		cands = append(cands,
			world.Position{X: from.X - 1, Y: from.Y + sy},
			world.Position{X: from.X + 1, Y: from.Y + sy},
		)
	}
	cur := from.Dist(target)
	for _, c := range cands {
		if c == from {
			continue
		}
		t, ok := env.Board.At(c)
		if !ok || t.Occupied() {
			continue
		}
		if c.Dist(target) < cur {
			return c, true
		}
	}
	return from, false
}

func clamp(v, limit int) int {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
