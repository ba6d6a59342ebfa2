package sim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pelagic-sim/abyss/config"
	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/world"
)

// placementAttempts is how many random probes a placement makes before
// falling back to a linear scan for a free tile.
const placementAttempts = 32

// populate seats the configured starting population, then dresses the
// remaining free tiles with scenery and kelp.
func (s *Sandbox) populate() error {
	for _, name := range sortedKeys(s.cfg.Population) {
		count := s.cfg.Population[name]
		sp, ok := entity.SpeciesByName(name)
		if !ok {
			return &config.ConfigError{Field: "population." + name, Reason: "unknown species"}
		}
		for i := 0; i < count; i++ {
			if err := s.spawnAnimal(sp); err != nil {
				return &config.ConfigError{
					Field:  "population." + name,
					Reason: fmt.Sprintf("placing %d of %d: %v", i+1, count, err),
				}
			}
		}
	}
	s.scatter()
	return nil
}

// spawnAnimal places one new animal of sp on a free tile, probing randomly
// first and scanning as a last resort. A full board returns ErrOccupied.
func (s *Sandbox) spawnAnimal(sp entity.Species) error {
	sex := entity.Male
	if s.rng.Intn(2) == 1 {
		sex = entity.Female
	}
	a, ok := s.rules.NewAnimal(sp, sex)
	if !ok {
		return fmt.Errorf("no stats for species %s", sp)
	}

	for i := 0; i < placementAttempts; i++ {
		pos := world.Position{X: s.rng.Intn(s.board.Cols()), Y: s.rng.Intn(s.board.Rows())}
		err := s.board.Place(a, pos)
		if err == nil {
			return nil
		}
		if !errors.Is(err, world.ErrOccupied) {
			return err
		}
	}
	for y := 0; y < s.board.Rows(); y++ {
		for x := 0; x < s.board.Cols(); x++ {
			if err := s.board.Place(a, world.Position{X: x, Y: y}); err == nil {
				return nil
			}
		}
	}
	return world.ErrOccupied
}

// scatter dresses free tiles with decorations and mature kelp at the
// configured densities.
func (s *Sandbox) scatter() {
	decoChance := s.cfg.Scatter.DecorationChance
	plantChance := s.cfg.Scatter.PlantChance
	for y := 0; y < s.board.Rows(); y++ {
		for x := 0; x < s.board.Cols(); x++ {
			pos := world.Position{X: x, Y: y}
			t, _ := s.board.At(pos)
			if t.Occupied() {
				continue
			}
			draw := s.rng.Float64()
			switch {
			case draw < decoChance:
				deco := entity.Rock
				if s.rng.Intn(2) == 1 {
					deco = entity.Shell
				}
				s.board.Place(entity.NewDecoration(deco), pos)
			case draw < decoChance+plantChance:
				if kelp, ok := s.rules.NewPlant(entity.Kelp); ok {
					s.board.Place(kelp, pos)
				}
			}
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
