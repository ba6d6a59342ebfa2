// Package telemetry accumulates what happens each tick into windowed
// statistics suitable for logging and CSV output.
package telemetry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pelagic-sim/abyss/entity"
)

// Sample is the board state handed to the collector at a window boundary.
type Sample struct {
	Fish   int
	Crabs  int
	Sharks int
	Plants int

	Hunger []float64 // one entry per living animal
	HP     []float64
}

// Collector accumulates events within tick windows and produces
// WindowStats at each boundary.
type Collector struct {
	windowTicks uint64
	windowStart uint64

	births        int
	deathsStarved int
	deathsEaten   int
	deathsOldAge  int
	deathsEvent   int
	meals         int
	eventsFired   int
}

// NewCollector creates a collector that closes a window every windowTicks
// ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: uint64(windowTicks)}
}

func (c *Collector) RecordBirth() { c.births++ }
func (c *Collector) RecordMeal()  { c.meals++ }
func (c *Collector) RecordEvent() { c.eventsFired++ }

// RecordDeath records a death under its cause. Unknown causes count as
// event casualties.
func (c *Collector) RecordDeath(cause string) {
	switch cause {
	case entity.CauseStarved:
		c.deathsStarved++
	case entity.CauseEaten:
		c.deathsEaten++
	case entity.CauseOldAge:
		c.deathsOldAge++
	default:
		c.deathsEvent++
	}
}

// EndTick closes the window if tick is a boundary, returning the window's
// stats and resetting the counters. The sample is only consulted on a
// boundary, so callers may build it lazily.
func (c *Collector) EndTick(tick uint64, sample func() Sample) (WindowStats, bool) {
	if tick == 0 || tick < c.windowStart+c.windowTicks {
		return WindowStats{}, false
	}

	s := sample()
	ws := WindowStats{
		WindowStart:   c.windowStart,
		WindowEnd:     tick,
		Fish:          s.Fish,
		Crabs:         s.Crabs,
		Sharks:        s.Sharks,
		Plants:        s.Plants,
		Births:        c.births,
		DeathsStarved: c.deathsStarved,
		DeathsEaten:   c.deathsEaten,
		DeathsOldAge:  c.deathsOldAge,
		DeathsEvent:   c.deathsEvent,
		Meals:         c.meals,
		EventsFired:   c.eventsFired,
	}
	ws.HungerMean, ws.HungerP10, ws.HungerP50, ws.HungerP90 = Distribution(s.Hunger)
	if len(s.HP) > 0 {
		ws.HPMean = stat.Mean(s.HP, nil)
	}

	c.windowStart = tick
	c.births = 0
	c.deathsStarved = 0
	c.deathsEaten = 0
	c.deathsOldAge = 0
	c.deathsEvent = 0
	c.meals = 0
	c.eventsFired = 0
	return ws, true
}
