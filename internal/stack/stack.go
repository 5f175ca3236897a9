// Package stack provides the in-memory model for multi-channel z-stack
// image series and their 2D projections.
package stack

import (
	"errors"
	"image"
)

// ErrShape indicates a slice/channel dimension mismatch.
var ErrShape = errors.New("stack: plane dimension mismatch")

// Plane is a single-channel 8-bit 2D pixel plane.
type Plane struct {
	Pix    []uint8 // Row-major, Width*Height samples
	Width  int
	Height int
}

// NewPlane allocates a zeroed plane.
func NewPlane(width, height int) *Plane {
	return &Plane{
		Pix:    make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
}

// At returns the sample at (x, y). Out-of-bounds coordinates return 0.
func (p *Plane) At(x, y int) uint8 {
	if x < 0 || x >= p.Width || y < 0 || y >= p.Height {
		return 0
	}
	return p.Pix[y*p.Width+x]
}

// Set writes the sample at (x, y). Out-of-bounds coordinates are ignored.
func (p *Plane) Set(x, y int, v uint8) {
	if x < 0 || x >= p.Width || y < 0 || y >= p.Height {
		return
	}
	p.Pix[y*p.Width+x] = v
}

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	out := NewPlane(p.Width, p.Height)
	copy(out.Pix, p.Pix)
	return out
}

// ToGray converts the plane to a stdlib grayscale image.
func (p *Plane) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	copy(img.Pix, p.Pix)
	return img
}

// Series is one multi-channel, multi-slice acquisition read from a
// container file. Planes are indexed [channel][slice].
type Series struct {
	Name     string
	Width    int
	Height   int
	Channels int
	Slices   int
	Planes   [][]*Plane
}

// Projection is a Series collapsed to a single slice per channel.
type Projection struct {
	Name     string
	Width    int
	Height   int
	Channels []*Plane
}

// Channel returns the projected plane for the given zero-based channel,
// or nil if the channel does not exist.
func (p *Projection) Channel(i int) *Plane {
	if i < 0 || i >= len(p.Channels) {
		return nil
	}
	return p.Channels[i]
}
