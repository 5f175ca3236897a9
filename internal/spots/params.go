package spots

// DefaultParams returns default spot detection parameters.
// These are tuned for diffraction-limited basal-body puncta in confocal
// projections after 16-to-8-bit scaling.
func DefaultParams() Params {
	return Params{
		// Prominence on the 0-255 scale of the filtered image. Spots
		// dimmer than this above their surrounding saddle are noise.
		ToleranceProminence: 20,

		// Top-hat structuring element radius in pixels. Must be larger
		// than a spot but smaller than the cell-scale background.
		TopHatRadius: 6,

		// Median filter radius for salt-and-pepper suppression.
		MedianRadius: 2,
	}
}

// Params holds spot detection parameters.
type Params struct {
	// ToleranceProminence is the minimum height of a local maximum above
	// the highest saddle separating it from a taller peak, measured on
	// the filtered image's intensity scale.
	ToleranceProminence float64

	// TopHatRadius is the background-removal structuring element radius
	// in pixels. Zero disables the top-hat step.
	TopHatRadius int

	// MedianRadius is the denoising median filter radius in pixels.
	// Zero disables the median step.
	MedianRadius int
}
