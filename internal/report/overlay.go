package report

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/roi"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/stack"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/colorutil"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"
)

// RenderCellOverlay renders the full-color projection with every ROI
// boundary and its label burned in.
func RenderCellOverlay(proj *stack.Projection, rois []roi.ROI) *image.RGBA {
	img := stack.RenderProjection(proj)
	for _, r := range rois {
		drawPolygon(img, r.Vertices, colorutil.Yellow)
		c := r.Centroid()
		drawLabel(img, r.Label, int(c.X), int(c.Y), colorutil.Yellow)
	}
	return img
}

// RenderSpotsComposite renders the quantification channel in grayscale
// with every detected maximum marked, the two layers flattened together.
func RenderSpotsComposite(plane *stack.Plane, pts []geometry.PointInt) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, plane.Width, plane.Height))
	draw.Draw(img, img.Bounds(), plane.ToGray(), image.Point{}, draw.Src)
	for _, p := range pts {
		drawCross(img, p.X, p.Y, colorutil.Magenta)
	}
	return img
}

// SaveTIFF writes an image losslessly with deflate compression. The
// image is encoded to a temporary file and renamed into place, so an
// interrupted run never leaves a truncated image behind.
func SaveTIFF(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	opts := &tiff.Options{Compression: tiff.Deflate, Predictor: true}
	if err := tiff.Encode(tmp, img, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// drawPolygon draws the closed outline of a polygon.
func drawPolygon(img *image.RGBA, vs []geometry.Point2D, col color.RGBA) {
	n := len(vs)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		a, b := vs[i], vs[(i+1)%n]
		drawLine(img, int(a.X), int(a.Y), int(b.X), int(b.Y), col)
	}
}

// drawLine draws a 1px line with Bresenham's algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := int(math.Abs(float64(x1 - x0)))
	dy := -int(math.Abs(float64(y1 - y0)))
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		setIfInside(img, x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawCross marks a point with a 5px cross.
func drawCross(img *image.RGBA, x, y int, col color.RGBA) {
	for d := -2; d <= 2; d++ {
		setIfInside(img, x+d, y, col)
		setIfInside(img, x, y+d, col)
	}
}

func setIfInside(img *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, col)
	}
}

// drawLabel burns a text label centered on (x, y).
func drawLabel(img *image.RGBA, text string, x, y int, col color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
	}
	w := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.I(x) - w/2,
		Y: fixed.I(y),
	}
	d.DrawString(text)
}
