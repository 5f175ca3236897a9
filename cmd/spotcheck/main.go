// Command spotcheck runs spot detection on one series of a LIF container
// and prints the detected coordinates. Useful for tuning the detection
// parameters without running the full interactive pipeline.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/lif"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/report"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/spots"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/stack"
)

func main() {
	lifPath := flag.String("lif", "", "Path to the .lif container")
	seriesIdx := flag.Int("series", 0, "Series index within the container")
	channel := flag.Int("channel", 2, "1-indexed quantification channel")
	tolerance := flag.Float64("tolerance", spots.DefaultParams().ToleranceProminence, "Maxima prominence tolerance")
	topHat := flag.Int("tophat", spots.DefaultParams().TopHatRadius, "Top-hat filter radius in pixels")
	median := flag.Int("median", spots.DefaultParams().MedianRadius, "Median filter radius in pixels")
	outPath := flag.String("out", "", "Optional path for the detection composite TIFF")
	flag.Parse()

	if *lifPath == "" {
		fmt.Println("Usage: spotcheck -lif <path> [-series 0] [-channel 2] [-tolerance 20] [-tophat 6] [-median 2] [-out spots.tiff]")
		os.Exit(1)
	}

	ctr, err := lif.Open(*lifPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open container: %v\n", err)
		os.Exit(1)
	}
	defer ctr.Close()

	if *seriesIdx < 0 || *seriesIdx >= ctr.SeriesCount() {
		fmt.Fprintf(os.Stderr, "Series %d out of range, container has %d series\n",
			*seriesIdx, ctr.SeriesCount())
		os.Exit(1)
	}

	series, err := ctr.ReadSeries(*seriesIdx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read series: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded series %q: %dx%d px, %d channel(s), %d z-slice(s)\n",
		series.Name, series.Width, series.Height, series.Channels, series.Slices)

	proj, err := stack.Project(series)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Projection failed: %v\n", err)
		os.Exit(1)
	}

	plane := proj.Channel(*channel - 1)
	if plane == nil {
		fmt.Fprintf(os.Stderr, "Channel %d missing, series has %d channel(s)\n",
			*channel, len(proj.Channels))
		os.Exit(1)
	}

	params := spots.Params{
		ToleranceProminence: *tolerance,
		TopHatRadius:        *topHat,
		MedianRadius:        *median,
	}
	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Prominence tolerance: %.1f\n", params.ToleranceProminence)
	fmt.Printf("  Top-hat radius: %d px\n", params.TopHatRadius)
	fmt.Printf("  Median radius: %d px\n", params.MedianRadius)

	pts, err := spots.Detect(plane, nil, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDetected %d spot(s):\n", len(pts))
	fmt.Printf("%8s %8s\n", "X", "Y")
	for _, p := range pts {
		fmt.Printf("%8d %8d\n", p.X, p.Y)
	}

	if *outPath != "" {
		composite := report.RenderSpotsComposite(plane, pts)
		if err := report.SaveTIFF(*outPath, composite); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write composite: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote detection composite to %s\n", *outPath)
	}
}
