// Package main provides the entry point for the basal body counting
// application.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/config"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/pipeline"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/report"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/roi"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/version"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/ui/prefs"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/ui/roidraw"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

const appTitle = "Basal Body Counter"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s %s", appTitle, version.Version)

	configPath := flag.String("config", defaultConfigPath(), "analysis configuration YAML")
	inputDir := flag.String("input", "", "input root directory (skips the folder prompt)")
	outputDir := flag.String("output", "", "output directory (skips the folder prompt)")
	roiDir := flag.String("rois", "", "reprocess using RoiSet archives from this directory (headless)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}

	// Replay mode: ROIs come from archived RoiSet zips, no operator needed.
	if *roiDir != "" {
		if *inputDir == "" || *outputDir == "" {
			log.Fatalf("-rois requires -input and -output")
		}
		ctx := pipeline.NewContext(cfg, *inputDir, *outputDir, &roi.ZipProvider{Dir: *roiDir})
		summary, err := ctx.Run()
		if err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		fmt.Println(summary)
		return
	}

	runGUI(cfg, *inputDir, *outputDir)
}

// runGUI prompts for the input and output folders, then runs the
// pipeline with the interactive ROI drawing provider.
func runGUI(cfg *config.Config, inputDir, outputDir string) {
	a := app.New()
	win := a.NewWindow(appTitle)

	appPrefs := prefs.Load()
	win.Resize(fyne.NewSize(
		float32(appPrefs.FloatWithFallback("windowWidth", 960)),
		float32(appPrefs.FloatWithFallback("windowHeight", 720)),
	))
	var failed atomic.Bool

	chooseDirs(win, appPrefs, inputDir, outputDir, func(in, out string) {
		appPrefs.SetString("lastInputDir", in)
		appPrefs.SetString("lastOutputDir", out)
		if err := appPrefs.Save(); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}

		provider := roidraw.New(win)
		// Closing the window cancels the run; the pipeline goroutine
		// finishes the current series bookkeeping and closes the window
		// itself, so no file write is cut off mid-stream.
		win.SetCloseIntercept(provider.Cancel)

		go func() {
			ctx := pipeline.NewContext(cfg, in, out, provider)
			summary, err := ctx.Run()
			if err != nil && !errors.Is(err, pipeline.ErrCanceled) {
				failed.Store(true)
			}
			saveWindowSize(appPrefs, win)
			win.SetCloseIntercept(nil)
			notifyCompletion(win, summary, err)
		}()
	})

	win.ShowAndRun()
	if failed.Load() {
		os.Exit(1)
	}
}

// chooseDirs walks the operator through the two folder prompts,
// preferring directories given on the command line.
func chooseDirs(win fyne.Window, p *prefs.Prefs, inputDir, outputDir string, run func(in, out string)) {
	if inputDir != "" && outputDir != "" {
		run(inputDir, outputDir)
		return
	}

	askFolder(win, "Select the folder containing .lif files", p.String("lastInputDir"), func(in string) {
		askFolder(win, "Select the save location for results", p.String("lastOutputDir"), func(out string) {
			run(in, out)
		})
	})
}

// askFolder shows one folder-selection prompt and closes the window if
// the operator cancels it.
func askFolder(win fyne.Window, title, last string, chosen func(string)) {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			log.Printf("Folder selection aborted")
			win.Close()
			return
		}
		chosen(uri.Path())
	}, win)
	d.SetConfirmText(title)
	if last != "" {
		if lu, err := storage.ListerForURI(storage.NewFileURI(last)); err == nil {
			d.SetLocation(lu)
		}
	}
	d.Show()
}

// notifyCompletion shows the end-of-run notice.
func notifyCompletion(win fyne.Window, summary report.Summary, err error) {
	switch {
	case err == nil:
		dialog.ShowInformation("Analysis complete", summary.String(), win)
	case errors.Is(err, pipeline.ErrCanceled):
		log.Printf("Canceled: %s", summary)
		win.Close()
	default:
		dialog.ShowError(err, win)
	}
}

// saveWindowSize remembers the window dimensions for the next run.
func saveWindowSize(p *prefs.Prefs, win fyne.Window) {
	size := win.Canvas().Size()
	p.SetFloat("windowWidth", float64(size.Width))
	p.SetFloat("windowHeight", float64(size.Height))
	if err := p.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

// defaultConfigPath puts the analysis config next to the preferences.
func defaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "bbcount", "config.yaml")
}
