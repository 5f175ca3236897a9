package stack

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/colorutil"
)

// Composite renders a multi-channel projection to RGB.
type Composite struct {
	Width     int
	Height    int
	Layers    []*CompositeLayer
	BackColor color.Color
}

// CompositeLayer pairs a plane with its display pseudocolor.
type CompositeLayer struct {
	Plane *Plane
	Color color.RGBA
}

// NewComposite creates a new Composite with the specified dimensions.
func NewComposite(width, height int) *Composite {
	return &Composite{
		Width:     width,
		Height:    height,
		BackColor: color.RGBA{0, 0, 0, 255},
	}
}

// AddLayer adds a pseudocolored plane to the composite.
func (c *Composite) AddLayer(plane *Plane, col color.RGBA) {
	c.Layers = append(c.Layers, &CompositeLayer{Plane: plane, Color: col})
}

// RenderProjection renders all channels of a projection with the default
// channel palette, screen-blended the way fluorescence merges are displayed.
func RenderProjection(p *Projection) *image.RGBA {
	c := NewComposite(p.Width, p.Height)
	for i, plane := range p.Channels {
		c.AddLayer(plane, colorutil.ChannelColor(i))
	}
	return c.Render()
}

// Render produces the final composited image.
func (c *Composite) Render() *image.RGBA {
	result := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(result, result.Bounds(), &image.Uniform{c.BackColor}, image.Point{}, draw.Src)

	for _, cl := range c.Layers {
		if cl.Plane == nil {
			continue
		}
		c.screenLayer(result, cl)
	}

	return result
}

// screenLayer blends a tinted plane onto the result with the screen
// operator: out = 1 - (1-src)(1-dst). Screen blending is additive-like
// without clipping, so overlapping channels stay distinguishable.
func (c *Composite) screenLayer(dst *image.RGBA, cl *CompositeLayer) {
	w, h := cl.Plane.Width, cl.Plane.Height
	if w > c.Width {
		w = c.Width
	}
	if h > c.Height {
		h = c.Height
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := colorutil.Scale(cl.Color, cl.Plane.Pix[y*cl.Plane.Width+x])
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = screen(dst.Pix[i+0], src.R)
			dst.Pix[i+1] = screen(dst.Pix[i+1], src.G)
			dst.Pix[i+2] = screen(dst.Pix[i+2], src.B)
			dst.Pix[i+3] = 255
		}
	}
}

func screen(d, s uint8) uint8 {
	return uint8(255 - (uint32(255-d)*uint32(255-s))/255)
}
