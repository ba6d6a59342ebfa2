package events

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pelagic-sim/abyss/config"
	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/world"
)

func testWorld(t *testing.T) (*world.Board, *entity.Rules) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	rules, err := entity.NewRules(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return world.NewBoard(8, 8, world.NewEntityManager()), rules
}

func addAnimal(t *testing.T, b *world.Board, r *entity.Rules, sp entity.Species, p world.Position) *entity.Animal {
	t.Helper()
	a, ok := r.NewAnimal(sp, entity.Male)
	if !ok {
		t.Fatalf("no stats for %v", sp)
	}
	if err := b.Place(a, p); err != nil {
		t.Fatal(err)
	}
	return a
}

func addPlant(t *testing.T, b *world.Board, r *entity.Rules, sp entity.Species, p world.Position) *entity.Plant {
	t.Helper()
	pl, ok := r.NewPlant(sp)
	if !ok {
		t.Fatalf("no stats for %v", sp)
	}
	if err := b.Place(pl, p); err != nil {
		t.Fatal(err)
	}
	return pl
}

func TestRollerRejectsUnknownEvent(t *testing.T) {
	_, err := NewRoller(map[string]float64{"meteor": 0.5})
	var cerr *config.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("NewRoller = %v, want ConfigError", err)
	}
}

func TestRollerDeterministic(t *testing.T) {
	freqs := map[string]float64{
		"oil_spill":       0.2,
		"invasive_school": 0.2,
		"colony_party":    0.2,
	}
	a, err := NewRoller(freqs)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRoller(freqs)

	rngA := rand.New(rand.NewSource(7))
	rngB := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		ka, oka := a.Roll(rngA)
		kb, okb := b.Roll(rngB)
		if ka != kb || oka != okb {
			t.Fatalf("draw %d diverged: %v/%v vs %v/%v", i, ka, oka, kb, okb)
		}
	}
}

func TestRollerZeroFrequenciesNeverFire(t *testing.T) {
	r, err := NewRoller(map[string]float64{"oil_spill": 0, "colony_party": 0})
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		if k, ok := r.Roll(rng); ok {
			t.Fatalf("zero-frequency table fired %v", k)
		}
	}
}

func TestRollerAlwaysFiresAtFullFrequency(t *testing.T) {
	r, err := NewRoller(map[string]float64{"colony_party": 1.0})
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		k, ok := r.Roll(rng)
		if !ok || k != ColonyParty {
			t.Fatalf("draw %d = %v, %v; want colony_party", i, k, ok)
		}
	}
}

func TestActivateDefaultsDecision(t *testing.T) {
	a := Activate(OilSpill, DecisionNone)
	if a.Decision != Accept {
		t.Errorf("decision = %v, want default accept", a.Decision)
	}
	if a.TicksLeft != spillContainedDuration {
		t.Errorf("contained spill lasts %d ticks, want %d", a.TicksLeft, spillContainedDuration)
	}
	if Activate(OilSpill, Decline).TicksLeft != spillDuration {
		t.Error("declined spill did not get the full duration")
	}
	if Activate(ColonyParty, Accept).TicksLeft != 1 {
		t.Error("party is not one-shot")
	}
}

func TestSpillStallsPlantsAndPoisons(t *testing.T) {
	b, rules := testWorld(t)
	plant := addPlant(t, b, rules, entity.Seed, world.Position{X: 1, Y: 1})
	fish := addAnimal(t, b, rules, entity.Fish, world.Position{X: 3, Y: 3})
	rng := rand.New(rand.NewSource(1))

	t.Run("contained spares animals", func(t *testing.T) {
		hp := fish.HP()
		rep := Activate(OilSpill, Accept).Apply(b, rules, rng)
		if rep.Stalled != 1 {
			t.Errorf("stalled %d plants, want 1", rep.Stalled)
		}
		if fish.HP() != hp {
			t.Errorf("contained spill damaged fish: %d -> %d", hp, fish.HP())
		}
		plant.LateProcess()
		if plant.Growth() != 0 {
			t.Errorf("plant grew %d under a spill, want 0", plant.Growth())
		}
	})

	t.Run("declined poisons animals", func(t *testing.T) {
		hp := fish.HP()
		Activate(OilSpill, Decline).Apply(b, rules, rng)
		if fish.HP() != hp-spillTickDamage {
			t.Errorf("fish HP = %d, want %d", fish.HP(), hp-spillTickDamage)
		}
	})

	t.Run("spill removes the dead", func(t *testing.T) {
		ev := Activate(OilSpill, Decline)
		ev.TicksLeft = 1000
		var killed int
		for i := 0; i < 100 && fish.Alive(); i++ {
			killed += ev.Apply(b, rules, rng).Killed
		}
		if fish.Alive() {
			t.Fatal("fish survived a hundred ticks of poison")
		}
		if killed != 1 {
			t.Errorf("reported %d kills, want 1", killed)
		}
		if _, ok := b.Manager().Lookup(fish.ID()); ok {
			t.Error("dead fish still registered")
		}
	})
}

func TestSchoolCullRemovesFish(t *testing.T) {
	b, rules := testWorld(t)
	for i := 0; i < 4; i++ {
		addAnimal(t, b, rules, entity.Fish, world.Position{X: i, Y: 0})
	}
	crab := addAnimal(t, b, rules, entity.Crab, world.Position{X: 0, Y: 2})

	rep := Activate(InvasiveSchool, Accept).Apply(b, rules, rand.New(rand.NewSource(1)))
	if rep.Killed != cullCount {
		t.Errorf("culled %d fish, want %d", rep.Killed, cullCount)
	}
	if b.Manager().Len() != 4-cullCount+1 {
		t.Errorf("%d entities remain, want %d", b.Manager().Len(), 4-cullCount+1)
	}
	if !crab.Alive() {
		t.Error("cull touched a non-fish")
	}
}

func TestSchoolWelcomeSpawnsFish(t *testing.T) {
	b, rules := testWorld(t)
	before := b.Manager().Len()

	rep := Activate(InvasiveSchool, Decline).Apply(b, rules, rand.New(rand.NewSource(1)))
	if rep.Spawned != welcomeCount {
		t.Errorf("spawned %d fish, want %d", rep.Spawned, welcomeCount)
	}
	if b.Manager().Len() != before+welcomeCount {
		t.Errorf("registry grew by %d, want %d", b.Manager().Len()-before, welcomeCount)
	}
}

func TestPartyFeedsAnimals(t *testing.T) {
	b, rules := testWorld(t)
	fish := addAnimal(t, b, rules, entity.Fish, world.Position{X: 2, Y: 2})
	for fish.Hunger() > 3 {
		fish.LateProcess()
	}
	before := fish.Hunger()

	rep := Activate(ColonyParty, Accept).Apply(b, rules, rand.New(rand.NewSource(1)))
	if rep.Fed != 1 {
		t.Errorf("fed %d animals, want 1", rep.Fed)
	}
	if fish.Hunger() != before+partyMeal {
		t.Errorf("hunger = %d, want %d", fish.Hunger(), before+partyMeal)
	}

	t.Run("skipped party does nothing", func(t *testing.T) {
		h := fish.Hunger()
		Activate(ColonyParty, Decline).Apply(b, rules, rand.New(rand.NewSource(1)))
		if fish.Hunger() != h {
			t.Error("declined party still fed the fish")
		}
	})
}
