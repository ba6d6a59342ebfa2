package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pelagic-sim/abyss/config"
)

// OutputManager writes windowed stats to a CSV file in a run directory.
// A nil manager is valid and discards everything, so callers never need
// to branch on whether output is enabled.
type OutputManager struct {
	dir       string
	statsFile *os.File

	statsHeaderWritten bool
}

// NewOutputManager initializes the output directory. Returns nil when dir
// is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	return &OutputManager{dir: dir, statsFile: f}, nil
}

// WriteConfig saves the run's configuration next to its stats.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats appends one window record to stats.csv, emitting the header
// on the first write.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}
	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Close flushes and closes the output files.
func (om *OutputManager) Close() error {
	if om == nil || om.statsFile == nil {
		return nil
	}
	return om.statsFile.Close()
}
