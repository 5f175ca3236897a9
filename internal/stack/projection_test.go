package stack

import (
	"errors"
	"testing"
)

func planeFrom(width, height int, pix []uint8) *Plane {
	p := NewPlane(width, height)
	copy(p.Pix, pix)
	return p
}

func TestProjectMaxAcrossSlices(t *testing.T) {
	s := &Series{
		Name:     "test",
		Width:    2,
		Height:   2,
		Channels: 1,
		Slices:   3,
		Planes: [][]*Plane{{
			planeFrom(2, 2, []uint8{10, 0, 5, 200}),
			planeFrom(2, 2, []uint8{0, 90, 5, 100}),
			planeFrom(2, 2, []uint8{50, 20, 5, 0}),
		}},
	}

	proj, err := Project(s)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	want := []uint8{50, 90, 5, 200}
	got := proj.Channels[0].Pix
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pixel %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestProjectSingleSliceIsCopy(t *testing.T) {
	pix := []uint8{1, 2, 3, 4}
	s := &Series{
		Name:     "flat",
		Width:    2,
		Height:   2,
		Channels: 1,
		Slices:   1,
		Planes:   [][]*Plane{{planeFrom(2, 2, pix)}},
	}

	proj, err := Project(s)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	for i, v := range pix {
		if proj.Channels[0].Pix[i] != v {
			t.Errorf("pixel %d = %d, want %d", i, proj.Channels[0].Pix[i], v)
		}
	}

	// The projection must be an independent copy, not an alias.
	s.Planes[0][0].Pix[0] = 99
	if proj.Channels[0].Pix[0] != 1 {
		t.Error("projection aliases the source plane")
	}
}

func TestProjectPerChannel(t *testing.T) {
	s := &Series{
		Name:     "twochan",
		Width:    1,
		Height:   1,
		Channels: 2,
		Slices:   2,
		Planes: [][]*Plane{
			{planeFrom(1, 1, []uint8{10}), planeFrom(1, 1, []uint8{30})},
			{planeFrom(1, 1, []uint8{200}), planeFrom(1, 1, []uint8{100})},
		},
	}

	proj, err := Project(s)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if got := proj.Channel(0).At(0, 0); got != 30 {
		t.Errorf("channel 0 = %d, want 30", got)
	}
	if got := proj.Channel(1).At(0, 0); got != 200 {
		t.Errorf("channel 1 = %d, want 200", got)
	}
	if proj.Channel(2) != nil {
		t.Error("missing channel should be nil")
	}
}

func TestProjectShapeMismatch(t *testing.T) {
	s := &Series{
		Name:     "bad",
		Width:    2,
		Height:   2,
		Channels: 1,
		Slices:   2,
		Planes: [][]*Plane{{
			planeFrom(2, 2, []uint8{0, 0, 0, 0}),
			planeFrom(3, 2, make([]uint8, 6)),
		}},
	}
	if _, err := Project(s); !errors.Is(err, ErrShape) {
		t.Errorf("Project error = %v, want ErrShape", err)
	}

	empty := &Series{Name: "empty"}
	if _, err := Project(empty); !errors.Is(err, ErrShape) {
		t.Errorf("Project(empty) error = %v, want ErrShape", err)
	}
}

func TestRenderProjectionScreenBlend(t *testing.T) {
	// Two saturated channels on one pixel: screen(green, magenta) is white.
	proj := &Projection{
		Width:  1,
		Height: 1,
		Channels: []*Plane{
			planeFrom(1, 1, []uint8{255}),
			planeFrom(1, 1, []uint8{255}),
		},
	}

	img := RenderProjection(proj)
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("blended pixel = (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestRenderProjectionDarkPixelStaysDark(t *testing.T) {
	proj := &Projection{
		Width:    1,
		Height:   1,
		Channels: []*Plane{planeFrom(1, 1, []uint8{0})},
	}
	img := RenderProjection(proj)
	r, g, b, a := img.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("dark pixel = (%d,%d,%d), want black", r>>8, g>>8, b>>8)
	}
	if a>>8 != 255 {
		t.Errorf("alpha = %d, want 255", a>>8)
	}
}
