package behavior

import (
	"math/rand"
	"testing"

	"github.com/pelagic-sim/abyss/config"
	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/world"
)

func testEnv(t *testing.T, rows, cols int) *Env {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	rules, err := entity.NewRules(cfg)
	if err != nil {
		t.Fatalf("building rules: %v", err)
	}
	return &Env{
		Board: world.NewBoard(rows, cols, world.NewEntityManager()),
		Rules: rules,
	}
}

func place(t *testing.T, env *Env, e world.Entity, p world.Position) {
	t.Helper()
	if err := env.Board.Place(e, p); err != nil {
		t.Fatalf("placing at %v: %v", p, err)
	}
}

func spawnAnimal(t *testing.T, env *Env, sp entity.Species, sex entity.Sex, p world.Position) *entity.Animal {
	t.Helper()
	a, ok := env.Rules.NewAnimal(sp, sex)
	if !ok {
		t.Fatalf("no stats for %v", sp)
	}
	place(t, env, a, p)
	return a
}

func spawnPlant(t *testing.T, env *Env, sp entity.Species, p world.Position) *entity.Plant {
	t.Helper()
	pl, ok := env.Rules.NewPlant(sp)
	if !ok {
		t.Fatalf("no stats for %v", sp)
	}
	place(t, env, pl, p)
	return pl
}

func drainToHungry(a *entity.Animal) {
	for !a.Hungry() {
		a.LateProcess()
	}
}

func TestSelectPrefersEating(t *testing.T) {
	env := testEnv(t, 8, 8)
	crab := spawnAnimal(t, env, entity.Crab, entity.Male, world.Position{X: 2, Y: 2})
	spawnPlant(t, env, entity.Kelp, world.Position{X: 5, Y: 5})
	spawnAnimal(t, env, entity.Crab, entity.Female, world.Position{X: 3, Y: 2})

	// Well fed with a mate in reach: mating wins over idle.
	if got := Select(crab, world.Position{X: 2, Y: 2}, env); got != entity.ModeMating {
		t.Errorf("fed crab mode = %v, want mating", got)
	}

	// Hungry with food on the board: eating outranks mating.
	drainToHungry(crab)
	if got := Select(crab, world.Position{X: 2, Y: 2}, env); got != entity.ModeEating {
		t.Errorf("hungry crab mode = %v, want eating", got)
	}
}

func TestSelectIdleWhenNothingToDo(t *testing.T) {
	env := testEnv(t, 8, 8)
	shark := spawnAnimal(t, env, entity.Shark, entity.Male, world.Position{X: 4, Y: 4})

	// Alone on the board: no prey, no mates.
	drainToHungry(shark)
	if got := Select(shark, world.Position{X: 4, Y: 4}, env); got != entity.ModeIdle {
		t.Errorf("lone shark mode = %v, want idle", got)
	}
}

func TestNearestPreyPicksClosest(t *testing.T) {
	env := testEnv(t, 10, 10)
	fish := spawnAnimal(t, env, entity.Fish, entity.Male, world.Position{X: 0, Y: 0})
	spawnPlant(t, env, entity.Kelp, world.Position{X: 7, Y: 7})
	spawnPlant(t, env, entity.Kelp, world.Position{X: 2, Y: 3})

	got, ok := env.NearestPrey(fish, world.Position{X: 0, Y: 0})
	if !ok {
		t.Fatal("no prey found")
	}
	if want := (world.Position{X: 2, Y: 3}); got != want {
		t.Errorf("nearest prey at %v, want %v", got, want)
	}
}

func TestNearestPreyTieBreaksByAge(t *testing.T) {
	env := testEnv(t, 10, 10)
	fish := spawnAnimal(t, env, entity.Fish, entity.Male, world.Position{X: 5, Y: 5})
	first := spawnPlant(t, env, entity.Kelp, world.Position{X: 7, Y: 5})
	spawnPlant(t, env, entity.Kelp, world.Position{X: 3, Y: 5})

	got, ok := env.NearestPrey(fish, world.Position{X: 5, Y: 5})
	if !ok {
		t.Fatal("no prey found")
	}
	pos, _ := env.Board.Manager().Lookup(first.ID())
	if got != pos {
		t.Errorf("tie resolved to %v, want oldest entity at %v", got, pos)
	}
}

func TestStepTowardPrey(t *testing.T) {
	env := testEnv(t, 10, 10)
	fish := spawnAnimal(t, env, entity.Fish, entity.Male, world.Position{X: 1, Y: 1})
	spawnPlant(t, env, entity.Kelp, world.Position{X: 4, Y: 4})
	fish.Mode = entity.ModeEating

	from := world.Position{X: 1, Y: 1}
	got, moved := Step(fish, from, env, rand.New(rand.NewSource(1)))
	if !moved {
		t.Fatal("fish did not move toward prey")
	}
	if want := (world.Position{X: 2, Y: 2}); got != want {
		t.Errorf("step = %v, want diagonal %v", got, want)
	}
}

func TestStepHoldsWhenAdjacent(t *testing.T) {
	env := testEnv(t, 10, 10)
	fish := spawnAnimal(t, env, entity.Fish, entity.Male, world.Position{X: 3, Y: 3})
	spawnPlant(t, env, entity.Kelp, world.Position{X: 4, Y: 3})
	fish.Mode = entity.ModeEating

	_, moved := Step(fish, world.Position{X: 3, Y: 3}, env, rand.New(rand.NewSource(1)))
	if moved {
		t.Error("fish moved while already adjacent to prey")
	}
}

func TestStepRoutesAroundBlocker(t *testing.T) {
	env := testEnv(t, 10, 10)
	fish := spawnAnimal(t, env, entity.Fish, entity.Male, world.Position{X: 1, Y: 1})
	spawnPlant(t, env, entity.Kelp, world.Position{X: 5, Y: 1})
	place(t, env, entity.NewDecoration(entity.Rock), world.Position{X: 2, Y: 1})
	fish.Mode = entity.ModeEating

	got, moved := Step(fish, world.Position{X: 1, Y: 1}, env, rand.New(rand.NewSource(1)))
	if !moved {
		t.Fatal("fish gave up at the first blocker")
	}
	if got.Dist(world.Position{X: 5, Y: 1}) >= 4 {
		t.Errorf("step to %v did not close distance", got)
	}
}

func TestIdleDriftStaysWhenBoxedIn(t *testing.T) {
	env := testEnv(t, 3, 3)
	fish := spawnAnimal(t, env, entity.Fish, entity.Male, world.Position{X: 0, Y: 0})
	place(t, env, entity.NewDecoration(entity.Rock), world.Position{X: 1, Y: 0})
	place(t, env, entity.NewDecoration(entity.Rock), world.Position{X: 0, Y: 1})
	place(t, env, entity.NewDecoration(entity.Rock), world.Position{X: 1, Y: 1})

	got, moved := Step(fish, world.Position{X: 0, Y: 0}, env, rand.New(rand.NewSource(1)))
	if moved {
		t.Errorf("boxed-in fish moved to %v", got)
	}
}

func TestBiteFeedsAndClampsHunger(t *testing.T) {
	env := testEnv(t, 6, 6)
	crab := spawnAnimal(t, env, entity.Crab, entity.Male, world.Position{X: 2, Y: 2})
	kelp := spawnPlant(t, env, entity.Kelp, world.Position{X: 3, Y: 2})
	drainToHungry(crab)
	crab.Mode = entity.ModeEating

	// Interact runs with the actor detached.
	tile, _ := env.Board.At(world.Position{X: 2, Y: 2})
	tile.Remove()
	res := Interact(crab, world.Position{X: 2, Y: 2}, env, rand.New(rand.NewSource(1)))

	if !res.Ate {
		t.Fatal("crab did not bite adjacent kelp")
	}
	if res.Fed == 0 {
		t.Error("bite restored no hunger")
	}
	// Kelp nutrition far exceeds crab capacity; hunger clamps to full.
	stats, _ := env.Rules.AnimalStats(entity.Crab)
	if crab.Hunger() != stats.MaxHunger {
		t.Errorf("hunger = %d after kelp bite, want full %d", crab.Hunger(), stats.MaxHunger)
	}
	// And the fed flag carries the full value through this tick's decay.
	crab.LateProcess()
	if crab.Hunger() != stats.MaxHunger {
		t.Errorf("hunger = %d after same-tick update, want full %d", crab.Hunger(), stats.MaxHunger)
	}
	if !kelp.Alive() && res.Killed == entity.SpeciesNone {
		t.Error("kelp died but kill not reported")
	}
}

func TestBiteKillRemovesPrey(t *testing.T) {
	env := testEnv(t, 6, 6)
	shark := spawnAnimal(t, env, entity.Shark, entity.Male, world.Position{X: 2, Y: 2})
	fishPos := world.Position{X: 2, Y: 3}
	fish := spawnAnimal(t, env, entity.Fish, entity.Female, fishPos)
	drainToHungry(shark)
	shark.Mode = entity.ModeEating

	tile, _ := env.Board.At(world.Position{X: 2, Y: 2})
	tile.Remove()
	res := Interact(shark, world.Position{X: 2, Y: 2}, env, rand.New(rand.NewSource(1)))

	if res.Killed != entity.Fish {
		t.Fatalf("kill = %v, want fish", res.Killed)
	}
	if fish.Alive() {
		t.Error("fish still alive after lethal bite")
	}
	ft, _ := env.Board.At(fishPos)
	if ft.Occupied() {
		t.Error("eaten fish still on the board")
	}
	if _, ok := env.Board.Manager().Lookup(fish.ID()); ok {
		t.Error("eaten fish still registered")
	}
}

func TestBiteRetaliation(t *testing.T) {
	env := testEnv(t, 6, 6)
	fish := spawnAnimal(t, env, entity.Fish, entity.Male, world.Position{X: 2, Y: 2})
	spawnAnimal(t, env, entity.Crab, entity.Female, world.Position{X: 3, Y: 2})
	drainToHungry(fish)
	fish.Mode = entity.ModeEating
	hpBefore := fish.HP()

	tile, _ := env.Board.At(world.Position{X: 2, Y: 2})
	tile.Remove()
	res := Interact(fish, world.Position{X: 2, Y: 2}, env, rand.New(rand.NewSource(1)))

	if !res.Ate {
		t.Fatal("fish did not bite the crab")
	}
	if res.Killed != entity.SpeciesNone {
		t.Fatal("crab died to a single fish bite")
	}
	if res.Fed != 0 {
		t.Error("fish fed from a surviving crab")
	}
	stats, _ := env.Rules.AnimalStats(entity.Crab)
	if fish.HP() != hpBefore-stats.Retaliation {
		t.Errorf("fish HP = %d, want %d after retaliation", fish.HP(), hpBefore-stats.Retaliation)
	}
}

func TestCourtPlacesOffspring(t *testing.T) {
	env := testEnv(t, 6, 6)
	mom := spawnAnimal(t, env, entity.Fish, entity.Female, world.Position{X: 2, Y: 2})
	dad := spawnAnimal(t, env, entity.Fish, entity.Male, world.Position{X: 3, Y: 2})
	mom.Mode = entity.ModeMating

	tile, _ := env.Board.At(world.Position{X: 2, Y: 2})
	tile.Remove()
	res := Interact(mom, world.Position{X: 2, Y: 2}, env, rand.New(rand.NewSource(1)))
	tile.Place(mom)

	if res.Born == nil {
		t.Fatal("no offspring produced")
	}
	if res.Born.Species() != entity.Fish {
		t.Errorf("offspring species = %v, want fish", res.Born.Species())
	}
	pos, ok := env.Board.Manager().Lookup(res.Born.ID())
	if !ok {
		t.Fatal("offspring not registered")
	}
	if pos.Dist(world.Position{X: 2, Y: 2}) != 1 {
		t.Errorf("offspring at %v, want adjacent to parent", pos)
	}
	if mom.MateReady() || dad.MateReady() {
		t.Error("parent cooldowns did not reset")
	}
	if res.Born.MateReady() {
		t.Error("newborn ready to mate immediately")
	}
}

func TestCourtSkipsWhenNoSpace(t *testing.T) {
	// 1x3 board: mate on one side, a rock on the other, nowhere to put a child.
	env := testEnv(t, 1, 3)
	mom := spawnAnimal(t, env, entity.Fish, entity.Female, world.Position{X: 1, Y: 0})
	dad := spawnAnimal(t, env, entity.Fish, entity.Male, world.Position{X: 2, Y: 0})
	place(t, env, entity.NewDecoration(entity.Rock), world.Position{X: 0, Y: 0})
	mom.Mode = entity.ModeMating

	tile, _ := env.Board.At(world.Position{X: 1, Y: 0})
	tile.Remove()
	res := Interact(mom, world.Position{X: 1, Y: 0}, env, rand.New(rand.NewSource(1)))
	tile.Place(mom)

	if res.Born != nil {
		t.Fatal("offspring produced with no free tile")
	}
	if !mom.MateReady() || !dad.MateReady() {
		t.Error("cooldowns reset without offspring")
	}
}
