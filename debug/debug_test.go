package debug

import (
	"image"
	"image/color"
	"testing"

	"gioui.org/layout"
	"gioui.org/op"
	"git.sr.ht/~gioverse/slicer/twentyfive"
)

func TestRegionsCoverGrid(t *testing.T) {
	g, err := twentyfive.ComputeGrid(
		twentyfive.DefaultBorders(),
		twentyfive.Source{Width: 50, Height: 50, UV: twentyfive.FullUV},
		twentyfive.Target{Width: 100, Height: 50},
		twentyfive.DefaultOptions(),
	)
	if err != nil {
		t.Fatalf("computing grid: %v", err)
	}
	gtx := layout.Context{Ops: new(op.Ops)}
	if d := Regions(gtx, g, 50); d.Size != image.Pt(100, 50) {
		t.Fatalf("regions size: got %v, want %v", d.Size, image.Pt(100, 50))
	}
	if d := Lines(gtx, g, 50, color.NRGBA{A: 255}); d.Size != image.Pt(100, 50) {
		t.Fatalf("lines size: got %v, want %v", d.Size, image.Pt(100, 50))
	}
}
