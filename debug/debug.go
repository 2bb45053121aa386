/*
Package debug provides tools for debugging 25-slice layouts in Gio.
*/
package debug

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"git.sr.ht/~gioverse/slicer/twentyfive"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// Outline traces a small black outline around the provided widget.
func Outline(gtx C, w func(gtx C) D) D {
	return widget.Border{
		Color: color.NRGBA{A: 255},
		Width: unit.Dp(1),
	}.Layout(gtx, w)
}

// Alpha of the region overlay.
const Alpha = 120

// Regions fills every drawable region of g with its translucent debug
// colour. Height is the pixel height the grid was computed for.
func Regions(gtx C, g twentyfive.Grid, height int) D {
	colors := g.Colors(color.NRGBA{}, true)
	var bounds image.Rectangle
	for _, r := range g.Drawable() {
		_, dst := r.TopDown(twentyfive.Vec2{}, float32(height))
		rect := image.Rect(int(dst.Min.X+0.5), int(dst.Min.Y+0.5), int(dst.Max.X+0.5), int(dst.Max.Y+0.5))
		if rect.Empty() {
			continue
		}
		c := colors[r.Row][r.Col]
		c.A = Alpha
		paint.FillShape(gtx.Ops, c, clip.Rect(rect).Op())
		bounds = bounds.Union(rect)
	}
	return D{Size: bounds.Max}
}

// Lines draws the band boundaries of g as one pixel lines.
func Lines(gtx C, g twentyfive.Grid, height int, c color.NRGBA) D {
	var (
		minX = int(g.X[0] + 0.5)
		maxX = int(g.X[twentyfive.BandCount] + 0.5)
		minY = height - int(g.Y[twentyfive.BandCount]+0.5)
		maxY = height - int(g.Y[0]+0.5)
	)
	for _, x := range g.X {
		px := int(x + 0.5)
		paint.FillShape(gtx.Ops, c, clip.Rect(image.Rect(px, minY, px+1, maxY)).Op())
	}
	for _, y := range g.Y {
		py := height - int(y+0.5)
		paint.FillShape(gtx.Ops, c, clip.Rect(image.Rect(minX, py, maxX, py+1)).Op())
	}
	return D{Size: image.Pt(maxX, maxY)}
}
