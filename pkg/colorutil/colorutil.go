// Package colorutil provides shared color utilities for the legend matcher.
package colorutil

import "image/color"

// Overlay colors used by the legend canvas.
var (
	Background = color.RGBA{R: 0xF8, G: 0xFA, B: 0xFC, A: 255}
	Blue       = color.RGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 255} // selected symbol
	Amber      = color.RGBA{R: 0xF5, G: 0x9E, B: 0x0B, A: 255} // selected text
	Green      = color.RGBA{R: 0x10, G: 0xB9, B: 0x81, A: 255} // matched
	Gray       = color.RGBA{R: 0x6B, G: 0x72, B: 0x80, A: 255} // unmatched
)
