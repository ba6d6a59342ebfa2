package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one reporting window.
type WindowStats struct {
	WindowStart uint64 `csv:"-"`
	WindowEnd   uint64 `csv:"window_end"`

	// Population counts at window end
	Fish   int `csv:"fish"`
	Crabs  int `csv:"crabs"`
	Sharks int `csv:"sharks"`
	Plants int `csv:"plants"`

	// Flow during the window
	Births        int `csv:"births"`
	DeathsStarved int `csv:"deaths_starved"`
	DeathsEaten   int `csv:"deaths_eaten"`
	DeathsOldAge  int `csv:"deaths_old_age"`
	DeathsEvent   int `csv:"deaths_event"`
	Meals         int `csv:"meals"`
	EventsFired   int `csv:"events_fired"`

	// Animal condition distribution sampled at window end
	HungerMean float64 `csv:"hunger_mean"`
	HungerP10  float64 `csv:"hunger_p10"`
	HungerP50  float64 `csv:"hunger_p50"`
	HungerP90  float64 `csv:"hunger_p90"`
	HPMean     float64 `csv:"hp_mean"`
}

// Distribution summarizes a sample with its mean and spread quantiles.
// Empty samples yield zeros.
func Distribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStart),
		slog.Uint64("window_end", s.WindowEnd),
		slog.Int("fish", s.Fish),
		slog.Int("crabs", s.Crabs),
		slog.Int("sharks", s.Sharks),
		slog.Int("plants", s.Plants),
		slog.Int("births", s.Births),
		slog.Int("deaths_starved", s.DeathsStarved),
		slog.Int("deaths_eaten", s.DeathsEaten),
		slog.Int("deaths_old_age", s.DeathsOldAge),
		slog.Int("deaths_event", s.DeathsEvent),
		slog.Int("meals", s.Meals),
		slog.Int("events_fired", s.EventsFired),
		slog.Float64("hunger_mean", s.HungerMean),
		slog.Float64("hunger_p50", s.HungerP50),
		slog.Float64("hp_mean", s.HPMean),
	)
}
