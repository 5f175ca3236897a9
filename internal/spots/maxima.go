package spots

import (
	"sort"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"
)

// findMaxima locates local intensity maxima with prominence of at least
// tol.
//
// Candidates are eligible pixels that are 8-neighborhood maxima. They are
// processed in descending intensity order; each floods the connected
// region of pixels brighter than (candidate - tol). A candidate whose
// flood reaches a brighter pixel, or territory claimed by an earlier
// (taller or equal) candidate, sits within tolerance of another peak and
// is rejected; either way the flooded region is claimed so dimmer
// candidates inside it cannot fire again. The tolerance comparison is
// inclusive: a peak whose height above its separating saddle equals tol
// exactly still fires, because the flood stops at pixels at or below
// (candidate - tol). Ties are broken by raster order, which makes the
// result deterministic for fixed input.
func findMaxima(data []uint8, width, height int, eligible []bool, tol float64) []geometry.PointInt {
	type candidate struct {
		idx int
		val uint8
	}

	var candidates []candidate
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !eligible[i] {
				continue
			}
			if isNeighborhoodMax(data, width, height, x, y) {
				candidates = append(candidates, candidate{idx: i, val: data[i]})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].val != candidates[j].val {
			return candidates[i].val > candidates[j].val
		}
		return candidates[i].idx < candidates[j].idx
	})

	// claimedBy records which candidate's flood owns each pixel
	// (1-based ordinal, 0 = unclaimed).
	claimedBy := make([]int, len(data))
	var queue []int
	var maxima []geometry.PointInt

	for ci, c := range candidates {
		if claimedBy[c.idx] != 0 {
			continue
		}

		id := ci + 1
		floor := float64(c.val) - tol
		higherFound := false

		claimedBy[c.idx] = id
		queue = append(queue[:0], c.idx)
		for len(queue) > 0 {
			i := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			if data[i] > c.val {
				higherFound = true
			}

			x, y := i%width, i/width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					j := ny*width + nx
					if float64(data[j]) <= floor {
						continue
					}
					if claimedBy[j] != 0 {
						// Another flood's territory above our floor
						// belongs to a peak processed earlier, which is
						// at least as tall as this candidate.
						if claimedBy[j] != id {
							higherFound = true
						}
						continue
					}
					claimedBy[j] = id
					queue = append(queue, j)
				}
			}
		}

		if !higherFound {
			maxima = append(maxima, geometry.PointInt{X: c.idx % width, Y: c.idx / width})
		}
	}

	return maxima
}

// isNeighborhoodMax reports whether (x, y) is at least as bright as all
// of its 8 neighbors.
func isNeighborhoodMax(data []uint8, width, height, x, y int) bool {
	v := data[y*width+x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			if data[ny*width+nx] > v {
				return false
			}
		}
	}
	return true
}
