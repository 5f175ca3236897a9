package report

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/roi"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/stack"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/colorutil"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"

	"golang.org/x/image/tiff"
)

func TestRenderSpotsCompositeMarksSpots(t *testing.T) {
	plane := stack.NewPlane(20, 20)
	pts := []geometry.PointInt{{X: 10, Y: 10}}

	img := RenderSpotsComposite(plane, pts)

	if got := img.RGBAAt(10, 10); got != colorutil.Magenta {
		t.Errorf("spot pixel = %v, want magenta", got)
	}
	if got := img.RGBAAt(12, 10); got != colorutil.Magenta {
		t.Errorf("cross arm pixel = %v, want magenta", got)
	}
	if got := img.RGBAAt(5, 5); got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("background pixel = %v, want black", got)
	}
}

func TestRenderSpotsCompositeClipsEdgeCross(t *testing.T) {
	plane := stack.NewPlane(5, 5)
	// Cross at the corner must not panic on out-of-bounds arms.
	img := RenderSpotsComposite(plane, []geometry.PointInt{{X: 0, Y: 0}})
	if got := img.RGBAAt(0, 0); got != colorutil.Magenta {
		t.Errorf("corner spot pixel = %v, want magenta", got)
	}
}

func TestRenderCellOverlayDrawsOutline(t *testing.T) {
	proj := &stack.Projection{
		Width:    40,
		Height:   40,
		Channels: []*stack.Plane{stack.NewPlane(40, 40)},
	}
	r := roi.New(0, []geometry.Point2D{
		{X: 5, Y: 5}, {X: 30, Y: 5}, {X: 30, Y: 30}, {X: 5, Y: 30},
	})

	img := RenderCellOverlay(proj, []roi.ROI{r})

	// A point on the top edge of the polygon outline.
	if got := img.RGBAAt(15, 5); got != colorutil.Yellow {
		t.Errorf("outline pixel = %v, want yellow", got)
	}
	// The interior stays unpainted apart from the label glyphs.
	if got := img.RGBAAt(7, 25); got == colorutil.Yellow {
		t.Error("interior pixel should not be part of the outline")
	}
}

func TestSaveTIFFRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	img.SetRGBA(3, 2, colorutil.Magenta)

	path := filepath.Join(t.TempDir(), "out.tiff")
	if err := SaveTIFF(path, img); err != nil {
		t.Fatalf("SaveTIFF failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	decoded, err := tiff.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode written TIFF: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
	r, g, b, _ := decoded.At(3, 2).RGBA()
	wr, wg, wb, _ := colorutil.Magenta.RGBA()
	if r != wr || g != wg || b != wb {
		t.Errorf("pixel (3,2) = (%d,%d,%d), want magenta", r>>8, g>>8, b>>8)
	}
}

func TestSaveTIFFReplacesExistingCleanly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.tiff")

	if err := SaveTIFF(path, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("SaveTIFF failed: %v", err)
	}
	if err := SaveTIFF(path, image.NewRGBA(image.Rect(0, 0, 9, 7))); err != nil {
		t.Fatalf("SaveTIFF rewrite failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := tiff.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode rewritten TIFF: %v", err)
	}
	if got := decoded.Bounds(); got.Dx() != 9 || got.Dy() != 7 {
		t.Errorf("rewritten bounds = %v, want 9x7", got)
	}

	// The temp file must be renamed away, not left next to the output.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("output dir has %d entries after rewrite, want only the image", len(entries))
	}
}
