// Package pipeline orchestrates the analysis run: container discovery,
// series reading, projection, ROI acquisition, spot detection and report
// writing. All state is carried explicitly in a Context; nothing is
// global, so providers and outputs can be substituted in tests.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/config"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/discover"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/lif"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/report"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/roi"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/spots"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/stack"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"
)

// ErrCanceled is returned by a ROIProvider when the operator aborts the
// whole run. The pipeline stops after finishing the current series's
// bookkeeping; outputs written so far remain valid.
var ErrCanceled = errors.New("pipeline: run canceled by operator")

// ROIProvider supplies cell regions for one series. Implementations
// block until the operator (or a programmatic source) is done; an empty
// list is the explicit "skip this series" signal.
type ROIProvider interface {
	AcquireROIs(seriesName string, display image.Image) ([]roi.ROI, error)
}

// Context carries the state of one analysis run.
type Context struct {
	Config    *config.Config
	InputDir  string
	OutputDir string
	Provider  ROIProvider

	Results *report.Accumulator
	RunInfo *report.RunInfo
}

// NewContext prepares a run over inputDir writing to outputDir.
func NewContext(cfg *config.Config, inputDir, outputDir string, provider ROIProvider) *Context {
	return &Context{
		Config:    cfg,
		InputDir:  inputDir,
		OutputDir: outputDir,
		Provider:  provider,
		Results:   &report.Accumulator{},
		RunInfo:   report.NewRunInfo(inputDir, cfg),
	}
}

// Run executes the whole pipeline. Per-container and per-series failures
// are logged and recorded but do not abort the run; only an unreadable
// input root, an unwritable output root, or operator cancellation stop it.
func (c *Context) Run() (report.Summary, error) {
	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return report.Summary{}, fmt.Errorf("output root unwritable: %w", err)
	}

	containers, err := discover.Containers(c.InputDir)
	if err != nil {
		return report.Summary{}, err
	}
	log.Printf("Found %d container file(s) under %s", len(containers), c.InputDir)

	canceled := false
	for _, path := range containers {
		if err := c.processContainer(path); err != nil {
			if errors.Is(err, ErrCanceled) {
				log.Printf("Run canceled by operator")
				canceled = true
				break
			}
			// Corrupt or unreadable container: skip it, keep going.
			log.Printf("Skipping container %s: %v", path, err)
			c.RunInfo.Record(report.SeriesOutcome{Container: path, Error: err.Error()})
		}
	}

	rows := c.Results.Rows()
	if err := report.WriteResults(c.OutputDir, rows); err != nil {
		return report.Summary{}, err
	}
	if err := c.RunInfo.Save(c.OutputDir); err != nil {
		log.Printf("Warning: failed to write run manifest: %v", err)
	}

	summary := report.Summarize(rows)
	log.Printf("Run complete: %s", summary)
	if canceled {
		return summary, ErrCanceled
	}
	return summary, nil
}

// processContainer analyzes every matching series in one container file.
func (c *Context) processContainer(path string) error {
	ctr, err := lif.Open(path)
	if err != nil {
		return err
	}
	defer ctr.Close()

	pattern := c.Config.Pattern()
	for i, info := range ctr.Series() {
		if pattern != "" && !strings.Contains(info.Name, pattern) {
			// Filtered series are excluded from all outputs entirely.
			continue
		}

		err := c.processSeries(ctr, i)
		if errors.Is(err, ErrCanceled) {
			return err
		}
		if err != nil {
			log.Printf("Skipping series %q in %s: %v", info.Name, path, err)
			c.RunInfo.Record(report.SeriesOutcome{
				Container: path,
				Series:    info.Name,
				Error:     err.Error(),
			})
		}
	}
	return nil
}

// processSeries runs projection, ROI acquisition, detection and output
// writing for a single series.
func (c *Context) processSeries(ctr *lif.Container, index int) error {
	info := ctr.Series()[index]

	series, err := ctr.ReadSeries(index)
	if err != nil {
		return err
	}

	proj, err := stack.Project(series)
	if err != nil {
		return err
	}

	quant := c.Config.Detection.QuantChannel - 1
	plane := proj.Channel(quant)
	if plane == nil {
		return fmt.Errorf("series %q has %d channel(s), quantification channel %d missing",
			series.Name, len(proj.Channels), c.Config.Detection.QuantChannel)
	}

	display := stack.RenderProjection(proj)
	rois, err := c.Provider.AcquireROIs(series.Name, display)
	if err != nil {
		return err
	}
	if len(rois) == 0 {
		// Operator skip: no outputs at all for this series.
		log.Printf("Series %q skipped by operator", series.Name)
		c.RunInfo.Record(report.SeriesOutcome{
			Container: ctr.Path(),
			Series:    series.Name,
			Skipped:   true,
		})
		return nil
	}

	params := spots.Params{
		ToleranceProminence: c.Config.Detection.MaximaTolerance,
		TopHatRadius:        c.Config.Detection.TopHatRadius,
		MedianRadius:        c.Config.Detection.MedianRadius,
	}

	var allPts []geometry.PointInt
	totalSpots := 0
	analyzed := 0
	for _, r := range rois {
		pts, area, err := spots.DetectInROI(plane, r, params)
		if errors.Is(err, roi.ErrGeometry) {
			// Bad ROI geometry: drop this cell, keep the rest.
			log.Printf("Series %q: %v", series.Name, err)
			continue
		}
		if err != nil {
			return err
		}

		c.Results.Append(report.ResultRow{
			Filename: series.Name,
			Cell:     r.Label,
			NoSpots:  len(pts),
			ROIArea:  area,
		})
		if err := report.WriteCoords(c.OutputDir, series.Name, r.Index, pts); err != nil {
			return err
		}

		allPts = append(allPts, pts...)
		totalSpots += len(pts)
		analyzed++
	}

	if err := c.writeSeriesImages(proj, plane, series.Name, rois, allPts); err != nil {
		return err
	}

	// Checkpoint the consolidated table so a crash loses at most the
	// current series.
	if err := report.WriteResults(c.OutputDir, c.Results.Rows()); err != nil {
		return err
	}

	log.Printf("Series %q: %d cell(s), %d spot(s)", series.Name, analyzed, totalSpots)
	c.RunInfo.Record(report.SeriesOutcome{
		Container: ctr.Path(),
		Series:    series.Name,
		Cells:     analyzed,
		Spots:     totalSpots,
	})
	return nil
}

// writeSeriesImages writes the detection composite, the cell overlay and
// the ROI archive for one series.
func (c *Context) writeSeriesImages(proj *stack.Projection, plane *stack.Plane,
	name string, rois []roi.ROI, pts []geometry.PointInt) error {

	composite := report.RenderSpotsComposite(plane, pts)
	if err := report.SaveTIFF(c.outPath(name+"_spots.tiff"), composite); err != nil {
		return err
	}

	overlay := report.RenderCellOverlay(proj, rois)
	if err := report.SaveTIFF(c.outPath(name+"_CellOverlay.tiff"), overlay); err != nil {
		return err
	}

	return roi.ExportZip(c.outPath(name+"_RoiSet.zip"), rois)
}

func (c *Context) outPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}
