// Package sim runs the tick pipeline: movement, processing, late
// processing, then the event roll. The Sandbox owns the board, the rng
// and the telemetry hooks, and is driven one Step at a time.
package sim

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pelagic-sim/abyss/behavior"
	"github.com/pelagic-sim/abyss/config"
	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/events"
	"github.com/pelagic-sim/abyss/telemetry"
	"github.com/pelagic-sim/abyss/world"
)

// Command is an outside request applied at the next tick boundary.
type Command interface{ isCommand() }

// SpawnCommand asks for one new animal on a random free tile.
type SpawnCommand struct {
	Species entity.Species
}

// EventResponse answers the pending event.
type EventResponse struct {
	Decision events.Decision
}

// StopCommand ends the run after the current tick.
type StopCommand struct{}

func (SpawnCommand) isCommand()  {}
func (EventResponse) isCommand() {}
func (StopCommand) isCommand()   {}

// Summary reports what one tick did.
type Summary struct {
	Tick    uint64
	Animals int
	Plants  int
	Births  int
	Deaths  int
	Meals   int
	// Fired is the event drawn at the end of this tick, awaiting a
	// decision before the next one.
	Fired events.Kind
	// Applied is the event whose effects ran this tick.
	Applied events.Kind
}

// Sandbox is one running simulation.
type Sandbox struct {
	cfg       *config.Config
	rules     *entity.Rules
	board     *world.Board
	manager   *world.EntityManager
	env       *behavior.Env
	roller    *events.Roller
	rng       *rand.Rand
	late      *lateState
	collector *telemetry.Collector
	logger    *slog.Logger

	tick    uint64
	stopped bool

	pending  events.Kind     // fired, awaiting a decision
	response events.Decision // queued answer for the pending event
	active   *events.Active

	commands chan Command
	views    chan View
}

// New builds a sandbox from a validated config and places the starting
// population. A config that cannot seat its population comes back as an
// error before any tick runs.
func New(cfg *config.Config, logger *slog.Logger) (*Sandbox, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules, err := entity.NewRules(cfg)
	if err != nil {
		return nil, err
	}
	roller, err := events.NewRoller(cfg.Events)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	manager := world.NewEntityManager()
	board := world.NewBoard(cfg.Board.Rows, cfg.Board.Cols, manager)
	s := &Sandbox{
		cfg:       cfg,
		rules:     rules,
		board:     board,
		manager:   manager,
		env:       &behavior.Env{Board: board, Rules: rules},
		roller:    roller,
		rng:       rand.New(rand.NewSource(seed)),
		late:      newLateState(),
		collector: telemetry.NewCollector(cfg.Telemetry.WindowTicks),
		logger:    logger,
		commands:  make(chan Command, 16),
		views:     make(chan View, 1),
	}
	if err := s.populate(); err != nil {
		return nil, err
	}
	s.logger.Info("sandbox ready",
		"rows", cfg.Board.Rows, "cols", cfg.Board.Cols,
		"entities", manager.Len(), "seed", seed)
	return s, nil
}

// Do queues a command for the next tick. Commands are dropped, with a log
// line, when the queue is full.
func (s *Sandbox) Do(cmd Command) {
	select {
	case s.commands <- cmd:
	default:
		s.logger.Warn("command queue full, dropping", "command", cmd)
	}
}

// Views delivers board snapshots, latest wins. Slow consumers only ever
// miss intermediate frames.
func (s *Sandbox) Views() <-chan View { return s.views }

// Pending returns the event waiting on a decision, if any.
func (s *Sandbox) Pending() events.Kind { return s.pending }

// Tick returns how many ticks have completed.
func (s *Sandbox) Tick() uint64 { return s.tick }

// Collector exposes the telemetry collector for window flushing.
func (s *Sandbox) Collector() *telemetry.Collector { return s.collector }

// IsFinished reports whether the run is over: stopped from outside, or no
// active entities left to simulate. Plants count; a board of live kelp is
// still an ecosystem.
func (s *Sandbox) IsFinished() bool {
	if s.stopped {
		return true
	}
	return s.manager.Len() == 0
}

// Close releases the worker pool.
func (s *Sandbox) Close() { s.late.stopWorkers() }

// Step advances the simulation one tick through all four phases.
func (s *Sandbox) Step() Summary {
	s.tick++
	sum := Summary{Tick: s.tick}

	s.drainCommands()
	s.applyEvents(&sum)

	// One snapshot drives all three phases. Entities born mid-tick are
	// absent from it, so newborns neither act nor decay until next tick.
	snap := s.manager.Snapshot()
	s.movement(snap)
	s.processing(snap, &sum)
	s.lateProcessing(snap, &sum)
	s.rollEvent(&sum)

	sum.Animals = s.countAnimals()
	sum.Plants = s.countPlants()
	s.publish(sum)
	return sum
}

func (s *Sandbox) drainCommands() {
	for {
		select {
		case cmd := <-s.commands:
			switch c := cmd.(type) {
			case SpawnCommand:
				if err := s.spawnAnimal(c.Species); err != nil {
					s.logger.Warn("spawn failed", "species", c.Species.String(), "err", err)
				}
			case EventResponse:
				if s.pending == events.None {
					s.logger.Debug("event response with nothing pending")
					continue
				}
				s.response = c.Decision
			case StopCommand:
				s.stopped = true
			}
		default:
			return
		}
	}
}

// applyEvents promotes the pending event using the queued (or default)
// decision, then runs one tick of whatever event is active.
func (s *Sandbox) applyEvents(sum *Summary) {
	if s.pending != events.None && s.active == nil {
		decision := s.response
		if decision == events.DecisionNone {
			decision = events.Default(s.pending)
		}
		s.active = events.Activate(s.pending, decision)
		s.logger.Info("event begins",
			"event", s.pending.String(), "decision", decision.String())
		s.pending = events.None
		s.response = events.DecisionNone
	}

	if s.active == nil {
		return
	}
	rep := s.active.Apply(s.board, s.rules, s.rng)
	sum.Applied = s.active.Kind
	sum.Deaths += rep.Killed
	sum.Births += rep.Spawned
	for i := 0; i < rep.Killed; i++ {
		s.collector.RecordDeath(entity.CauseEvent)
	}
	for i := 0; i < rep.Spawned; i++ {
		s.collector.RecordBirth()
	}
	if s.active.Done() {
		s.logger.Info("event over", "event", s.active.Kind.String())
		s.active = nil
	}
}

// movement gives every animal its step for the tick. The snapshot fixes
// the turn order; positions are re-read from the registry so each mover
// sees where earlier movers actually ended up.
func (s *Sandbox) movement(snap []world.Handle) {
	for _, h := range snap {
		pos, ok := s.manager.Lookup(h.ID)
		if !ok {
			continue
		}
		a := s.animalAt(pos)
		if a == nil || !a.Alive() {
			continue
		}
		behavior.Select(a, pos, s.env)
		to, moved := behavior.Step(a, pos, s.env, s.rng)
		if !moved {
			continue
		}
		if err := s.board.Move(pos, to); err != nil {
			// Losing a race for a tile is normal; anything else is a
			// desync worth surfacing.
			if !errors.Is(err, world.ErrOccupied) {
				s.logger.Error("move failed", "id", h.ID, "from", pos.String(), "to", to.String(), "err", err)
			}
		}
	}
}

// processing runs each animal's interaction with the board: mode
// selection, then the bite or the courtship. The actor is detached for
// the duration of its turn.
func (s *Sandbox) processing(snap []world.Handle, sum *Summary) {
	for _, h := range snap {
		pos, ok := s.manager.Lookup(h.ID)
		if !ok {
			continue // eaten earlier this tick
		}

		if p := s.plantAt(pos); p != nil {
			s.spreadSeeds(p, pos, sum)
			continue
		}

		a := s.animalAt(pos)
		if a == nil || !a.Alive() {
			continue
		}
		err := s.board.WithEntity(pos, func(e world.Entity, b *world.Board) world.Outcome {
			behavior.Select(a, pos, s.env)
			res := behavior.Interact(a, pos, s.env, s.rng)
			if res.Ate {
				sum.Meals++
				s.collector.RecordMeal()
			}
			if res.Killed != entity.SpeciesNone {
				sum.Deaths++
				s.collector.RecordDeath(entity.CauseEaten)
			}
			if res.Born != nil {
				sum.Births++
				s.collector.RecordBirth()
			}
			if res.ActorDied {
				sum.Deaths++
				s.collector.RecordDeath(entity.CauseEaten)
				return world.Drop
			}
			return world.Keep
		})
		if err != nil {
			s.logger.Error("processing detach failed", "id", h.ID, "pos", pos.String(), "err", err)
		}
	}
}

// spreadSeeds lets a mature terminal-stage plant scatter seeds onto free
// neighboring tiles.
func (s *Sandbox) spreadSeeds(p *entity.Plant, pos world.Position, sum *Summary) {
	if !p.ReadyToSpread() {
		return
	}
	free := s.board.FreeNeighbors(pos, 1)
	budget := p.SeedBudget()
	placed := 0
	for i := 0; i < budget && len(free) > 0; i++ {
		idx := s.rng.Intn(len(free))
		target := free[idx]
		free = append(free[:idx], free[idx+1:]...)
		seed, ok := s.rules.NewPlant(entity.Seed)
		if !ok {
			break
		}
		if err := s.board.Place(seed, target); err == nil {
			sum.Births++
			placed++
		}
	}
	// A boxed-in plant keeps its banked growth and retries next tick.
	if placed > 0 {
		p.ResetGrowth()
	}
}

// lateProcessing runs every entity's self update, concurrently above the
// pool threshold, then applies deaths and growth-stage changes in
// registry order.
func (s *Sandbox) lateProcessing(snap []world.Handle, sum *Summary) {
	s.late.jobs = s.late.jobs[:0]
	for _, h := range snap {
		pos, ok := s.manager.Lookup(h.ID)
		if !ok {
			continue // died earlier this tick
		}
		t, ok := s.board.At(pos)
		if !ok || !t.Occupied() {
			continue
		}
		proc, ok := t.Entity().(entity.LateProcessor)
		if !ok {
			continue
		}
		s.late.jobs = append(s.late.jobs, lateJob{id: h.ID, pos: pos, proc: proc})
	}

	s.late.compute()

	for i, job := range s.late.jobs {
		out := s.late.outcomes[i]
		switch {
		case out.Died:
			t, ok := s.board.At(job.pos)
			if !ok || !t.Occupied() {
				continue
			}
			t.Remove()
			sum.Deaths++
			s.collector.RecordDeath(out.Cause)
		case out.Grew:
			s.growPlant(job.pos)
		}
	}
}

// growPlant swaps the plant at pos for its next stage, keeping its ID.
func (s *Sandbox) growPlant(pos world.Position) {
	p := s.plantAt(pos)
	if p == nil {
		return
	}
	next, ok := s.rules.NextStage(p.Species())
	if !ok {
		return
	}
	repl, ok := s.rules.NewPlant(next)
	if !ok {
		return
	}
	if err := s.board.Replace(pos, repl); err != nil {
		s.logger.Error("growth replace failed", "pos", pos.String(), "err", err)
	}
}

// rollEvent makes the tick's single event draw. A fired event waits one
// tick for a decision before its effects begin.
func (s *Sandbox) rollEvent(sum *Summary) {
	if s.pending != events.None || s.active != nil {
		return
	}
	kind, ok := s.roller.Roll(s.rng)
	if !ok {
		return
	}
	s.pending = kind
	sum.Fired = kind
	s.collector.RecordEvent()
	s.logger.Info("event fired", "event", kind.String(), "tick", s.tick)
}

func (s *Sandbox) animalAt(pos world.Position) *entity.Animal {
	t, ok := s.board.At(pos)
	if !ok || !t.Occupied() {
		return nil
	}
	a, _ := t.Entity().(*entity.Animal)
	return a
}

func (s *Sandbox) plantAt(pos world.Position) *entity.Plant {
	t, ok := s.board.At(pos)
	if !ok || !t.Occupied() {
		return nil
	}
	p, _ := t.Entity().(*entity.Plant)
	return p
}

func (s *Sandbox) countAnimals() int {
	n := 0
	for _, h := range s.manager.Snapshot() {
		if a := s.animalAt(h.Pos); a != nil && a.Alive() {
			n++
		}
	}
	return n
}

func (s *Sandbox) countPlants() int {
	n := 0
	for _, h := range s.manager.Snapshot() {
		if p := s.plantAt(h.Pos); p != nil {
			n++
		}
	}
	return n
}

// Sample builds the telemetry sample for the current board state.
func (s *Sandbox) Sample() telemetry.Sample {
	var sample telemetry.Sample
	for _, h := range s.manager.Snapshot() {
		if p := s.plantAt(h.Pos); p != nil {
			sample.Plants++
			continue
		}
		a := s.animalAt(h.Pos)
		if a == nil {
			continue
		}
		switch a.Species() {
		case entity.Fish:
			sample.Fish++
		case entity.Crab:
			sample.Crabs++
		case entity.Shark:
			sample.Sharks++
		}
		sample.Hunger = append(sample.Hunger, float64(a.Hunger()))
		sample.HP = append(sample.HP, float64(a.HP()))
	}
	return sample
}
