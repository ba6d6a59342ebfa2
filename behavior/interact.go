package behavior

import (
	"math/rand"

	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/world"
)

// Result reports what an interaction did, for the tick summary and
// telemetry counters.
type Result struct {
	Ate       bool           // a bite landed
	Fed       int            // hunger restored to the actor
	Killed    entity.Species // prey removed from the board, if any
	Born      *entity.Animal // offspring placed on the board, if any
	ActorDied bool           // retaliation killed the actor
}

// Interact runs a's current mode against its neighbors. The caller has
// detached a from the board at from, so the actor can never alias a tile
// it is mutating. Runs in the sequential phase; rng use here is safe.
func Interact(a *entity.Animal, from world.Position, env *Env, rng *rand.Rand) Result {
	switch a.Mode {
	case entity.ModeEating:
		return bite(a, from, env)
	case entity.ModeMating:
		return court(a, from, env, rng)
	}
	return Result{}
}

// bite attacks the first adjacent prey in scan order. Kills remove the
// prey from the board; survivors retaliate.
func bite(a *entity.Animal, from world.Position, env *Env) Result {
	for _, p := range env.Board.Neighbors(from, 1) {
		prey := env.edibleAt(a, p)
		if prey == nil {
			continue
		}

		killed, retaliation := prey.TakeBite(a.Attack())
		res := Result{Ate: true, Fed: prey.BiteReward(killed)}
		if res.Fed > 0 {
			a.Feed(res.Fed)
		}
		if killed {
			res.Killed = prey.Species()
			t, _ := env.Board.At(p)
			t.Remove()
		}
		if retaliation > 0 {
			a.Damage(retaliation)
			res.ActorDied = !a.Alive()
		}
		return res
	}
	return Result{}
}

// court mates with the first adjacent compatible partner, placing one
// offspring on a free tile next to the actor. With nowhere to put the
// offspring the pair skips this tick and neither cooldown resets.
func court(a *entity.Animal, from world.Position, env *Env, rng *rand.Rand) Result {
	var mate *entity.Animal
	for _, p := range env.Board.Neighbors(from, 1) {
		m := env.animalAt(p)
		if m != nil && m.Alive() && a.CompatibleMate(m) {
			mate = m
			break
		}
	}
	if mate == nil {
		return Result{}
	}

	free := env.Board.FreeNeighbors(from, 1)
	if len(free) == 0 {
		return Result{}
	}

	sex := entity.Male
	if rng.Intn(2) == 1 {
		sex = entity.Female
	}
	child, ok := env.Rules.NewAnimal(a.Species(), sex)
	if !ok {
		return Result{}
	}
	child.ResetMating()
	if err := env.Board.Place(child, free[0]); err != nil {
		return Result{}
	}
	a.ResetMating()
	mate.ResetMating()
	return Result{Born: child}
}
