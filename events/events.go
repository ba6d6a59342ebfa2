// Package events implements the random happenings that interrupt the
// steady tick cycle. Each tick ends with one weighted draw against the
// configured frequency table; a fired event waits one tick for a decision
// (a player's, or its own default) and then applies its effects.
package events

import (
	"math/rand"
	"sort"

	"github.com/pelagic-sim/abyss/config"
)

// Kind identifies an event.
type Kind uint8

const (
	None Kind = iota
	OilSpill
	InvasiveSchool
	ColonyParty
)

var kindNames = map[Kind]string{
	OilSpill:       "oil_spill",
	InvasiveSchool: "invasive_school",
	ColonyParty:    "colony_party",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "none"
}

// KindByName resolves a config event name.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return None, false
}

// Decision is the binary answer an event waits for.
type Decision uint8

const (
	DecisionNone Decision = iota
	// Accept takes the event's suggested response: contain the spill,
	// cull the invaders, join the party.
	Accept
	// Decline lets the event run its course.
	Decline
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Decline:
		return "decline"
	default:
		return "none"
	}
}

// Default is the decision applied when nobody answers in time.
func Default(Kind) Decision { return Accept }

// Roller draws at most one event per tick from the configured frequency
// table. Entries iterate in name order so the same seed always produces
// the same draws.
type Roller struct {
	entries []rollEntry
}

type rollEntry struct {
	kind Kind
	freq float64
}

// NewRoller builds a roller from the config event table. Unknown event
// names are a config error.
func NewRoller(freqs map[string]float64) (*Roller, error) {
	names := make([]string, 0, len(freqs))
	for name := range freqs {
		names = append(names, name)
	}
	sort.Strings(names)

	r := &Roller{entries: make([]rollEntry, 0, len(names))}
	for _, name := range names {
		k, ok := KindByName(name)
		if !ok {
			return nil, &config.ConfigError{Field: "events." + name, Reason: "unknown event"}
		}
		r.entries = append(r.entries, rollEntry{kind: k, freq: freqs[name]})
	}
	return r, nil
}

// Roll makes this tick's single draw. At most one event fires; the first
// entry whose frequency band covers the draw wins.
func (r *Roller) Roll(rng *rand.Rand) (Kind, bool) {
	if len(r.entries) == 0 {
		return None, false
	}
	draw := rng.Float64()
	acc := 0.0
	for _, e := range r.entries {
		acc += e.freq
		if draw < acc {
			return e.kind, true
		}
	}
	return None, false
}
