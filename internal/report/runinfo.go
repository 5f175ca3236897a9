package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/config"
)

// RunInfoFileName is the provenance manifest written next to the results.
const RunInfoFileName = "bbcount_run.json"

// SeriesOutcome records how one series ended.
type SeriesOutcome struct {
	Container string `json:"container"`
	Series    string `json:"series"`
	Cells     int    `json:"cells"`
	Spots     int    `json:"spots"`
	Skipped   bool   `json:"skipped,omitempty"` // Operator skip (no ROIs drawn)
	Error     string `json:"error,omitempty"`   // Non-fatal failure, series not analyzed
}

// RunInfo is the provenance manifest for one analysis run: configuration
// used, inputs seen, and per-series outcomes.
type RunInfo struct {
	Version  int             `json:"version"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	InputDir string          `json:"input_dir"`
	Config   *config.Config  `json:"config"`
	Series   []SeriesOutcome `json:"series"`
}

// NewRunInfo creates a manifest for a run starting now.
func NewRunInfo(inputDir string, cfg *config.Config) *RunInfo {
	return &RunInfo{
		Version:  1,
		Started:  time.Now(),
		InputDir: inputDir,
		Config:   cfg,
	}
}

// Record appends one series outcome.
func (ri *RunInfo) Record(o SeriesOutcome) {
	ri.Series = append(ri.Series, o)
}

// Save stamps the finish time and writes the manifest into dir.
func (ri *RunInfo) Save(dir string) error {
	ri.Finished = time.Now()

	data, err := json.MarshalIndent(ri, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, RunInfoFileName), data, 0644)
}
