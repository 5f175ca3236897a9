// Package roi provides operator-drawn cell regions: polygon geometry,
// rasterized masks, and RoiSet archive persistence.
package roi

import (
	"errors"
	"fmt"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"
)

// ErrGeometry indicates ROI geometry that does not fit the target image.
var ErrGeometry = errors.New("roi: geometry outside image bounds")

// ROI is a closed polygon delimiting one cell, in image pixel coordinates.
type ROI struct {
	Index    int                `json:"index"` // Creation order within the series
	Label    string             `json:"label"` // e.g. "Cell_1"
	Vertices []geometry.Point2D `json:"vertices"`
}

// New creates an ROI with the conventional label for its creation index.
func New(index int, vertices []geometry.Point2D) ROI {
	return ROI{
		Index:    index,
		Label:    fmt.Sprintf("Cell_%d", index+1),
		Vertices: vertices,
	}
}

// Validate checks the ROI against the target image dimensions.
// A polygon with fewer than 3 vertices or any vertex outside the image
// is rejected with ErrGeometry.
func (r ROI) Validate(width, height int) error {
	if len(r.Vertices) < 3 {
		return fmt.Errorf("%w: %s has %d vertices", ErrGeometry, r.Label, len(r.Vertices))
	}
	if !geometry.PolygonInBounds(r.Vertices, float64(width), float64(height)) {
		return fmt.Errorf("%w: %s extends outside %dx%d image", ErrGeometry, r.Label, width, height)
	}
	return nil
}

// Centroid returns the vertex centroid, used for label placement.
func (r ROI) Centroid() geometry.Point2D {
	return geometry.Centroid(r.Vertices)
}

// Mask is a rasterized ROI: the set of pixels whose centers fall inside
// the polygon.
type Mask struct {
	Inside []bool // Row-major, Width*Height
	Width  int
	Height int
	Area   int // Number of inside pixels
}

// Rasterize builds the pixel mask of the ROI over a width x height image.
// Pixel (x, y) is inside when its center (x+0.5, y+0.5) is inside the
// polygon, matching how drawn outlines are filled on screen.
// Returns ErrGeometry if the ROI does not fit the image.
func (r ROI) Rasterize(width, height int) (*Mask, error) {
	if err := r.Validate(width, height); err != nil {
		return nil, err
	}

	m := &Mask{
		Inside: make([]bool, width*height),
		Width:  width,
		Height: height,
	}

	// Restrict the scan to the polygon's bounding box.
	bb := geometry.BoundingBox(r.Vertices)
	x0, y0 := int(bb.X), int(bb.Y)
	x1, y1 := int(bb.X+bb.Width)+1, int(bb.Y+bb.Height)+1
	if x1 > width {
		x1 = width
	}
	if y1 > height {
		y1 = height
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			center := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if geometry.PointInPolygon(center, r.Vertices) {
				m.Inside[y*width+x] = true
				m.Area++
			}
		}
	}

	return m, nil
}

// Contains reports whether pixel (x, y) is inside the mask.
func (m *Mask) Contains(x, y int) bool {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return false
	}
	return m.Inside[y*m.Width+x]
}
