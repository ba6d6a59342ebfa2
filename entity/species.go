// Package entity holds the concrete creatures, plants and scenery that
// occupy board tiles, plus the data-driven rules binding them together.
package entity

// Species enumerates everything that can sit on a tile.
type Species uint8

const (
	SpeciesNone Species = iota
	Fish
	Crab
	Shark
	Kelp
	Sprout
	Seed
	Rock
	Shell
)

var speciesNames = map[Species]string{
	Fish:   "fish",
	Crab:   "crab",
	Shark:  "shark",
	Kelp:   "kelp",
	Sprout: "sprout",
	Seed:   "seed",
	Rock:   "rock",
	Shell:  "shell",
}

var speciesByName = func() map[string]Species {
	m := make(map[string]Species, len(speciesNames))
	for s, n := range speciesNames {
		m[n] = s
	}
	return m
}()

func (s Species) String() string {
	if n, ok := speciesNames[s]; ok {
		return n
	}
	return "unknown"
}

// SpeciesByName resolves a config species name.
func SpeciesByName(name string) (Species, bool) {
	s, ok := speciesByName[name]
	return s, ok
}

func (s Species) IsAnimal() bool     { return s == Fish || s == Crab || s == Shark }
func (s Species) IsPlant() bool      { return s == Kelp || s == Sprout || s == Seed }
func (s Species) IsDecoration() bool { return s == Rock || s == Shell }

// Sex of a sexually reproducing animal.
type Sex uint8

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// Mode is the behavior an animal is currently committed to. Mode selection
// lives in the behavior package; entities just carry the value.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeEating
	ModeMating
)

func (m Mode) String() string {
	switch m {
	case ModeEating:
		return "eating"
	case ModeMating:
		return "mating"
	default:
		return "idle"
	}
}
