package report

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the spot-count distribution across all processed cells.
type Summary struct {
	Cells       int
	TotalSpots  int
	MeanSpots   float64
	MedianSpots float64
	StdDev      float64
	MeanArea    float64
}

// Summarize computes distribution statistics over the accumulated rows.
func Summarize(rows []ResultRow) Summary {
	s := Summary{Cells: len(rows)}
	if len(rows) == 0 {
		return s
	}

	counts := make([]float64, len(rows))
	areas := make([]float64, len(rows))
	for i, r := range rows {
		counts[i] = float64(r.NoSpots)
		areas[i] = float64(r.ROIArea)
		s.TotalSpots += r.NoSpots
	}

	s.MeanSpots = stat.Mean(counts, nil)
	s.StdDev = stat.StdDev(counts, nil)
	s.MeanArea = stat.Mean(areas, nil)

	sort.Float64s(counts)
	s.MedianSpots = stat.Quantile(0.5, stat.Empirical, counts, nil)

	return s
}

// String formats the summary for the run log.
func (s Summary) String() string {
	if s.Cells == 0 {
		return "no cells analyzed"
	}
	return fmt.Sprintf("%d cells, %d spots (mean %.2f, median %.1f, sd %.2f per cell; mean area %.0f px)",
		s.Cells, s.TotalSpots, s.MeanSpots, s.MedianSpots, s.StdDev, s.MeanArea)
}
