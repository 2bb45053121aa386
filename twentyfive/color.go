package twentyfive

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// DebugColor returns the overlay colour for the region at col, row.
// Colours vary smoothly across the grid so that neighbouring regions are
// easy to tell apart.
func DebugColor(col, row int) colorful.Color {
	return colorful.Color{
		R: float64(col) / 4,
		G: float64(row) / 4,
		B: float64(col+row) / 8,
	}.Clamped()
}

// ToNRGBA converts a colorful.Color to the nearest representable color.NRGBA.
func ToNRGBA(c colorful.Color) color.NRGBA {
	r, g, b, a := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// Colors assigns a colour to every region of the grid, indexed [row][col].
// With debug unset every region receives base; otherwise each region gets
// its DebugColor, opaque. Geometry is unaffected.
func (g Grid) Colors(base color.NRGBA, debug bool) [BandCount][BandCount]color.NRGBA {
	var out [BandCount][BandCount]color.NRGBA
	for row := range out {
		for col := range out[row] {
			if debug {
				out[row][col] = ToNRGBA(DebugColor(col, row))
			} else {
				out[row][col] = base
			}
		}
	}
	return out
}
