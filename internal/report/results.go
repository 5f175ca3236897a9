// Package report writes the per-series images and tables produced by an
// analysis run: detection composites, cell overlays, ROI archives,
// per-cell coordinate tables and the consolidated results table.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"
)

// CoordsDirName is the subdirectory holding per-cell coordinate tables.
const CoordsDirName = "X_Y_Coords"

// ResultsFileName is the consolidated results table filename.
const ResultsFileName = "Full_Results.csv"

// ResultRow is one line of the consolidated table: one (series, cell) pair.
type ResultRow struct {
	Filename string // Series name the cell came from
	Cell     string // Cell label, e.g. "Cell_1"
	NoSpots  int    // Detected basal-body count
	ROIArea  int    // Cell area in pixels
}

// Accumulator collects result rows across the whole run. Appends are
// synchronized so ROIs may be aggregated concurrently while preserving
// a consistent snapshot for checkpointing.
type Accumulator struct {
	mu   sync.Mutex
	rows []ResultRow
}

// Append adds one row.
func (a *Accumulator) Append(r ResultRow) {
	a.mu.Lock()
	a.rows = append(a.rows, r)
	a.mu.Unlock()
}

// Rows returns a snapshot of the accumulated rows.
func (a *Accumulator) Rows() []ResultRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ResultRow, len(a.rows))
	copy(out, a.rows)
	return out
}

// Len returns the number of accumulated rows.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.rows)
}

// WriteResults writes the consolidated table, replacing any previous
// version atomically so an interrupted run never leaves a torn file.
func WriteResults(dir string, rows []ResultRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"Filename", "Cell", "No_Spots", "ROI_Area"})
	for _, r := range rows {
		records = append(records, []string{
			r.Filename, r.Cell, strconv.Itoa(r.NoSpots), strconv.Itoa(r.ROIArea),
		})
	}
	return writeCSVAtomic(filepath.Join(dir, ResultsFileName), records)
}

// WriteCoords writes one cell's spot coordinates to
// X_Y_Coords/<seriesName>_Cell<n>.csv under the output directory.
func WriteCoords(dir, seriesName string, cellIndex int, pts []geometry.PointInt) error {
	coordsDir := filepath.Join(dir, CoordsDirName)
	if err := os.MkdirAll(coordsDir, 0755); err != nil {
		return fmt.Errorf("failed to create coordinates directory: %w", err)
	}

	records := make([][]string, 0, len(pts)+1)
	records = append(records, []string{"X", "Y"})
	for _, p := range pts {
		records = append(records, []string{strconv.Itoa(p.X), strconv.Itoa(p.Y)})
	}

	name := fmt.Sprintf("%s_Cell%d.csv", seriesName, cellIndex+1)
	return writeCSVAtomic(filepath.Join(coordsDir, name), records)
}

// writeCSVAtomic writes records to a temporary file and renames it into
// place, so readers never observe a partially written table.
func writeCSVAtomic(path string, records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
