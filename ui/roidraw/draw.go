package roidraw

import (
	"image"
	"image/color"
	"math"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"
)

// drawPolyline draws line segments between consecutive vertices, closing
// the shape when closed is true.
func drawPolyline(img *image.RGBA, vs []geometry.Point2D, closed bool, col color.RGBA) {
	n := len(vs)
	if n < 2 {
		return
	}
	last := n - 1
	for i := 0; i < last; i++ {
		drawLine(img, vs[i], vs[i+1], col)
	}
	if closed {
		drawLine(img, vs[last], vs[0], col)
	}
}

// drawLine draws a 1px Bresenham line between two points.
func drawLine(img *image.RGBA, a, b geometry.Point2D, col color.RGBA) {
	x0, y0 := int(a.X), int(a.Y)
	x1, y1 := int(b.X), int(b.Y)

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
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetRGBA(x0, y0, col)
		}
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

// drawDot marks a vertex with a 3x3 square.
func drawDot(img *image.RGBA, x, y int, col color.RGBA) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if image.Pt(x+dx, y+dy).In(img.Bounds()) {
				img.SetRGBA(x+dx, y+dy, col)
			}
		}
	}
}
