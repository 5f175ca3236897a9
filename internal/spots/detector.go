// Package spots detects basal-body puncta as prominence-filtered local
// intensity maxima on a background-suppressed channel.
package spots

import (
	"fmt"
	"image"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/roi"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/stack"
	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"

	"gocv.io/x/gocv"
)

// Detect finds local intensity maxima in a plane after background
// suppression, optionally restricted to a mask.
//
// Preprocessing runs unconditionally in this order: top-hat (removes
// broad background), median (removes salt-and-pepper noise), then an
// Otsu dark-background threshold whose foreground limits where maxima
// may sit. The prominence tolerance is compared on the filtered image's
// 0-255 scale, before thresholding.
func Detect(plane *stack.Plane, mask *roi.Mask, params Params) ([]geometry.PointInt, error) {
	if plane == nil || len(plane.Pix) == 0 {
		return nil, fmt.Errorf("spots: empty plane")
	}
	if mask != nil && (mask.Width != plane.Width || mask.Height != plane.Height) {
		return nil, fmt.Errorf("%w: mask is %dx%d, plane is %dx%d",
			roi.ErrGeometry, mask.Width, mask.Height, plane.Width, plane.Height)
	}

	filtered, foreground, err := preprocess(plane, params)
	if err != nil {
		return nil, err
	}

	eligible := make([]bool, len(filtered))
	for i := range eligible {
		if foreground[i] == 0 {
			continue
		}
		if mask != nil && !mask.Inside[i] {
			continue
		}
		eligible[i] = true
	}

	return findMaxima(filtered, plane.Width, plane.Height, eligible, params.ToleranceProminence), nil
}

// preprocess applies the top-hat/median/Otsu sequence and returns the
// filtered intensities alongside the binary foreground.
func preprocess(plane *stack.Plane, params Params) (filtered, foreground []uint8, err error) {
	src, err := gocv.NewMatFromBytes(plane.Height, plane.Width, gocv.MatTypeCV8UC1, plane.Pix)
	if err != nil {
		return nil, nil, fmt.Errorf("spots: failed to wrap plane: %w", err)
	}
	defer src.Close()

	flat := gocv.NewMat()
	defer flat.Close()

	if params.TopHatRadius > 0 {
		k := 2*params.TopHatRadius + 1
		kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: k, Y: k})
		defer kernel.Close()
		gocv.MorphologyEx(src, &flat, gocv.MorphTophat, kernel)
	} else {
		src.CopyTo(&flat)
	}

	if params.MedianRadius > 0 {
		smoothed := gocv.NewMat()
		defer smoothed.Close()
		gocv.MedianBlur(flat, &smoothed, 2*params.MedianRadius+1)
		smoothed.CopyTo(&flat)
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(flat, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	filtered = flat.ToBytes()
	foreground = binary.ToBytes()
	if len(filtered) != len(plane.Pix) || len(foreground) != len(plane.Pix) {
		return nil, nil, fmt.Errorf("spots: unexpected filter output size")
	}
	return filtered, foreground, nil
}

// DetectInROI rasterizes an ROI and detects spots inside it, returning
// the coordinates and the ROI's pixel area.
func DetectInROI(plane *stack.Plane, r roi.ROI, params Params) ([]geometry.PointInt, int, error) {
	mask, err := r.Rasterize(plane.Width, plane.Height)
	if err != nil {
		return nil, 0, err
	}
	pts, err := Detect(plane, mask, params)
	if err != nil {
		return nil, 0, err
	}
	return pts, mask.Area, nil
}
