// Package roidraw provides the interactive ROI drawing surface. It
// implements the pipeline's ROIProvider: for each series the operator
// outlines cells on the projected image by clicking polygon vertices,
// then signals done or skips the image.
package roidraw

import (
	"fmt"
	"image"
	"sync"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/pipeline"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/roi"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/colorutil"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Provider shows a drawing session per series in a shared window and
// blocks the pipeline goroutine until the operator finishes.
type Provider struct {
	win fyne.Window

	mu       sync.Mutex
	canceled bool
	active   *session
}

// New creates a Provider rendering into the given window.
func New(win fyne.Window) *Provider {
	return &Provider{win: win}
}

// Cancel aborts the run: a session in progress is unblocked with
// pipeline.ErrCanceled and every subsequent acquisition fails the same
// way. The pipeline goroutine observes the error and finishes its own
// bookkeeping before shutting down.
func (p *Provider) Cancel() {
	p.mu.Lock()
	p.canceled = true
	s := p.active
	p.active = nil
	p.mu.Unlock()

	if s != nil {
		s.cancel()
	}
}

// AcquireROIs blocks until the operator has outlined every cell on the
// displayed projection, or skipped the series. Zero regions means "skip".
func (p *Provider) AcquireROIs(seriesName string, display image.Image) ([]roi.ROI, error) {
	s := newSession(seriesName, display, p)

	p.mu.Lock()
	if p.canceled {
		p.mu.Unlock()
		return nil, pipeline.ErrCanceled
	}
	p.active = s
	p.mu.Unlock()

	p.win.SetContent(s.content)
	p.win.Canvas().Refresh(s.content)

	res := <-s.done

	p.mu.Lock()
	if p.active == s {
		p.active = nil
	}
	p.mu.Unlock()

	return res.rois, res.err
}

type sessionResult struct {
	rois []roi.ROI
	err  error
}

// session is the drawing state for one series.
type session struct {
	provider *Provider
	display  image.Image
	bounds   image.Rectangle

	mu        sync.Mutex
	pending   []geometry.Point2D // Vertices of the polygon being drawn
	finished  []roi.ROI
	delivered bool

	surface *drawSurface
	status  *widget.Label
	content fyne.CanvasObject
	done    chan sessionResult
}

func newSession(seriesName string, display image.Image, p *Provider) *session {
	s := &session{
		provider: p,
		display:  display,
		bounds:   display.Bounds(),
		done:     make(chan sessionResult, 1),
	}

	s.status = widget.NewLabel(seriesName + ": outline each cell, then press Done")
	s.surface = newDrawSurface(s)

	closeBtn := widget.NewButton("Close Cell", s.closeCell)
	undoBtn := widget.NewButton("Undo Point", s.undoPoint)
	doneBtn := widget.NewButton("Done", func() { s.finish(false) })
	skipBtn := widget.NewButton("Skip Image", func() { s.finish(true) })

	buttons := container.NewHBox(closeBtn, undoBtn, doneBtn, skipBtn)
	s.content = container.NewBorder(s.status, buttons, nil, nil, s.surface)
	return s
}

// addVertex appends a clicked point to the in-progress polygon.
func (s *session) addVertex(pt geometry.Point2D) {
	s.mu.Lock()
	s.pending = append(s.pending, pt)
	s.mu.Unlock()
	s.surface.Refresh()
}

// undoPoint removes the most recent in-progress vertex.
func (s *session) undoPoint() {
	s.mu.Lock()
	if n := len(s.pending); n > 0 {
		s.pending = s.pending[:n-1]
	}
	s.mu.Unlock()
	s.surface.Refresh()
}

// closeCell finalizes the in-progress polygon as the next cell.
func (s *session) closeCell() {
	s.mu.Lock()
	if len(s.pending) >= 3 {
		s.finished = append(s.finished, roi.New(len(s.finished), s.pending))
		s.pending = nil
	}
	n := len(s.finished)
	s.mu.Unlock()

	s.status.SetText(formatCellCount(n))
	s.surface.Refresh()
}

// finish ends the session. Skip discards any drawn cells, making the
// empty list the explicit skip signal.
func (s *session) finish(skip bool) {
	s.mu.Lock()
	rois := s.finished
	if skip {
		rois = nil
	}
	s.mu.Unlock()

	s.deliver(sessionResult{rois: rois})
}

// cancel aborts the session, unblocking the acquiring goroutine.
func (s *session) cancel() {
	s.deliver(sessionResult{err: pipeline.ErrCanceled})
}

// deliver hands the result to the acquiring goroutine exactly once;
// later deliveries (a button press racing a cancel) are dropped.
func (s *session) deliver(res sessionResult) {
	s.mu.Lock()
	if s.delivered {
		s.mu.Unlock()
		return
	}
	s.delivered = true
	s.mu.Unlock()

	s.done <- res
}

func formatCellCount(n int) string {
	if n == 1 {
		return "1 cell outlined"
	}
	return fmt.Sprintf("%d cells outlined", n)
}

// drawSurface renders the projection with drawn outlines and turns taps
// into polygon vertices.
type drawSurface struct {
	widget.BaseWidget
	session *session
	img     *fynecanvas.Image
}

func newDrawSurface(s *session) *drawSurface {
	ds := &drawSurface{session: s}
	ds.img = fynecanvas.NewImageFromImage(s.render())
	ds.img.FillMode = fynecanvas.ImageFillContain
	ds.img.ScaleMode = fynecanvas.ImageScaleSmooth
	ds.ExtendBaseWidget(ds)
	return ds
}

func (ds *drawSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ds.img)
}

func (ds *drawSurface) MinSize() fyne.Size {
	return fyne.NewSize(480, 360)
}

// Tapped converts a tap into image pixel coordinates, accounting for the
// contain-fit letterboxing.
func (ds *drawSurface) Tapped(ev *fyne.PointEvent) {
	size := ds.Size()
	iw := float64(ds.session.bounds.Dx())
	ih := float64(ds.session.bounds.Dy())
	if iw == 0 || ih == 0 || size.Width == 0 || size.Height == 0 {
		return
	}

	scale := float64(size.Width) / iw
	if s := float64(size.Height) / ih; s < scale {
		scale = s
	}
	offX := (float64(size.Width) - iw*scale) / 2
	offY := (float64(size.Height) - ih*scale) / 2

	x := (float64(ev.Position.X) - offX) / scale
	y := (float64(ev.Position.Y) - offY) / scale
	if x < 0 || x >= iw || y < 0 || y >= ih {
		return
	}
	ds.session.addVertex(geometry.Point2D{X: x, Y: y})
}

// Refresh re-renders the annotated image.
func (ds *drawSurface) Refresh() {
	ds.img.Image = ds.session.render()
	ds.img.Refresh()
	ds.BaseWidget.Refresh()
}

// render paints the display image with finished outlines in yellow and
// the in-progress polyline in cyan.
func (s *session) render() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := image.NewRGBA(s.bounds)
	for y := s.bounds.Min.Y; y < s.bounds.Max.Y; y++ {
		for x := s.bounds.Min.X; x < s.bounds.Max.X; x++ {
			out.Set(x, y, s.display.At(x, y))
		}
	}

	for _, r := range s.finished {
		drawPolyline(out, r.Vertices, true, colorutil.Yellow)
	}
	drawPolyline(out, s.pending, false, colorutil.Cyan)
	for _, p := range s.pending {
		drawDot(out, int(p.X), int(p.Y), colorutil.Cyan)
	}
	return out
}
