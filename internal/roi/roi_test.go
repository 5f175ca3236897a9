package roi

import (
	"errors"
	"testing"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"
)

func squareROI(index int, x, y, side float64) ROI {
	return New(index, []geometry.Point2D{
		{X: x, Y: y},
		{X: x + side, Y: y},
		{X: x + side, Y: y + side},
		{X: x, Y: y + side},
	})
}

func TestNewAssignsLabel(t *testing.T) {
	r := squareROI(0, 0, 0, 5)
	if r.Label != "Cell_1" {
		t.Errorf("label = %q, want Cell_1", r.Label)
	}
	if r := squareROI(4, 0, 0, 5); r.Label != "Cell_5" {
		t.Errorf("label = %q, want Cell_5", r.Label)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		roi     ROI
		wantErr bool
	}{
		{"fits", squareROI(0, 1, 1, 5), false},
		{"touches edge", squareROI(0, 0, 0, 10), false},
		{"too few vertices", New(0, []geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}}), true},
		{"past right edge", squareROI(0, 8, 0, 5), true},
		{"negative vertex", squareROI(0, -1, 0, 5), true},
	}
	for _, tt := range tests {
		err := tt.roi.Validate(10, 10)
		if tt.wantErr && !errors.Is(err, ErrGeometry) {
			t.Errorf("%s: error = %v, want ErrGeometry", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
	}
}

func TestRasterizeSquareArea(t *testing.T) {
	// A 0..10 square over a 20x20 image covers exactly the 100 pixels
	// whose centers fall in (0,10)x(0,10).
	r := squareROI(0, 0, 0, 10)
	m, err := r.Rasterize(20, 20)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	if m.Area != 100 {
		t.Errorf("area = %d, want 100", m.Area)
	}
	if !m.Contains(5, 5) {
		t.Error("center pixel should be inside")
	}
	if m.Contains(10, 5) {
		t.Error("pixel right of the polygon should be outside")
	}
	if m.Contains(-1, 5) || m.Contains(5, 25) {
		t.Error("out-of-bounds pixels should be outside")
	}
}

func TestRasterizeRejectsBadGeometry(t *testing.T) {
	if _, err := squareROI(0, 5, 5, 10).Rasterize(10, 10); !errors.Is(err, ErrGeometry) {
		t.Errorf("error = %v, want ErrGeometry", err)
	}
}

func TestCentroid(t *testing.T) {
	r := squareROI(0, 2, 2, 4)
	c := r.Centroid()
	if c.X != 4 || c.Y != 4 {
		t.Errorf("centroid = %v, want (4,4)", c)
	}
}
