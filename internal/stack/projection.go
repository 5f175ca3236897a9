package stack

import "fmt"

// Project collapses a z-stack to a single plane per channel by per-pixel
// maximum across slices. A single-slice stack projects to an identical
// copy of itself. Returns ErrShape if any plane's dimensions disagree
// with the series dimensions.
func Project(s *Series) (*Projection, error) {
	if len(s.Planes) == 0 {
		return nil, fmt.Errorf("%w: series %q has no planes", ErrShape, s.Name)
	}

	proj := &Projection{
		Name:   s.Name,
		Width:  s.Width,
		Height: s.Height,
	}

	for ci, slices := range s.Planes {
		if len(slices) == 0 {
			return nil, fmt.Errorf("%w: series %q channel %d has no slices", ErrShape, s.Name, ci)
		}

		out := NewPlane(s.Width, s.Height)
		for zi, plane := range slices {
			if plane.Width != s.Width || plane.Height != s.Height {
				return nil, fmt.Errorf("%w: series %q channel %d slice %d is %dx%d, want %dx%d",
					ErrShape, s.Name, ci, zi, plane.Width, plane.Height, s.Width, s.Height)
			}
			for i, v := range plane.Pix {
				if v > out.Pix[i] {
					out.Pix[i] = v
				}
			}
		}
		proj.Channels = append(proj.Channels, out)
	}

	return proj, nil
}
