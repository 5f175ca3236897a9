package geometry

import "math"

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PolygonArea computes the area enclosed by a polygon using the shoelace
// formula. The vertex order (clockwise or counter-clockwise) does not matter.
// Returns 0 for degenerate polygons with fewer than 3 vertices.
func PolygonArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}

	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}

	return math.Abs(sum) / 2
}

// PolygonInBounds reports whether every vertex of the polygon lies inside
// the rectangle [0,width] x [0,height].
func PolygonInBounds(polygon []Point2D, width, height float64) bool {
	for _, p := range polygon {
		if p.X < 0 || p.X > width || p.Y < 0 || p.Y > height {
			return false
		}
	}
	return true
}
