package sim

import (
	"context"
	"time"

	"github.com/pelagic-sim/abyss/telemetry"
)

// Run steps the sandbox until the context ends, maxTicks is reached
// (0 means unbounded), or the ecosystem dies out. With throttle set, ticks
// pace themselves to the configured tick rate; without it the loop runs
// flat out. Window stats go to the logger and, when out is non-nil, to CSV.
func (s *Sandbox) Run(ctx context.Context, maxTicks uint64, throttle bool, out *telemetry.OutputManager) error {
	defer s.Close()

	var tickC <-chan time.Time
	if throttle {
		interval := time.Duration(float64(time.Second) / s.cfg.TickRate)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		if s.IsFinished() {
			s.logger.Info("simulation finished", "tick", s.tick)
			return nil
		}
		if maxTicks > 0 && s.tick >= maxTicks {
			s.logger.Info("tick limit reached", "tick", s.tick)
			return nil
		}

		if tickC != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tickC:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		sum := s.Step()
		if ws, ok := s.collector.EndTick(s.tick, s.Sample); ok {
			s.logger.Info("window stats", "stats", ws)
			if err := out.WriteStats(ws); err != nil {
				s.logger.Error("stats write failed", "err", err)
			}
		}
		s.logger.Debug("tick",
			"tick", sum.Tick, "animals", sum.Animals, "plants", sum.Plants,
			"births", sum.Births, "deaths", sum.Deaths, "meals", sum.Meals)
	}
}
