// Package colorutil provides shared color utilities for overlay and
// channel rendering.
package colorutil

import "image/color"

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// channelPalette is the default pseudocolor assignment for fluorescence
// channels, in acquisition order. Follows the common green/magenta
// convention for two-channel data, with extra channels falling back to
// distinguishable colors.
var channelPalette = []color.RGBA{Green, Magenta, Cyan, Yellow, Red, Blue}

// ChannelColor returns the pseudocolor for the given zero-based channel
// index. Channels beyond the palette wrap around.
func ChannelColor(channel int) color.RGBA {
	if channel < 0 {
		channel = 0
	}
	return channelPalette[channel%len(channelPalette)]
}

// Scale multiplies an 8-bit intensity into a pseudocolor, preserving the
// color's hue. Used to tint grayscale channel data for display.
func Scale(c color.RGBA, intensity uint8) color.RGBA {
	f := uint32(intensity)
	return color.RGBA{
		R: uint8(uint32(c.R) * f / 255),
		G: uint8(uint32(c.G) * f / 255),
		B: uint8(uint32(c.B) * f / 255),
		A: 255,
	}
}
