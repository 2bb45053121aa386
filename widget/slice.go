// Package widget presents 25-slice sprites in Gio.
package widget

import (
	"context"
	"image"
	"log"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"git.sr.ht/~gioverse/slicer/async"
	"git.sr.ht/~gioverse/slicer/sprite"
	"git.sr.ht/~gioverse/slicer/store"
	"git.sr.ht/~gioverse/slicer/twentyfive"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// Slice is the resolved border data of a sprite.
type Slice struct {
	Borders twentyfive.BorderSet
	// Found reports whether the store had a record. Sprites without one are
	// drawn as a single stretched quad.
	Found bool
}

// SliceImage is a 25-slice themed rectangle container that lays content in
// the content area.
//
// Border data is looked up through Loader so that store access never blocks
// layout. Until the lookup completes, or when the store has no record for
// the sprite, the whole sprite is stretched over the surface.
type SliceImage struct {
	// Sprite to draw.
	Sprite *sprite.Sprite
	// Store holds the border data.
	Store store.Store
	// Loader schedules store lookups.
	Loader *async.Loader
	// Options control band masks and mirroring.
	Options twentyfive.Options
	// Scale converts source pixels into Dp. Zero means one Dp per pixel.
	Scale float32
	// Inset overrides the content inset. When nil the content is inset by
	// the natural size of the outermost bands.
	Inset *layout.Inset

	image CachedImage
	key   string
	keyOf *sprite.Sprite
}

// Layout content atop the 25-slice surface.
func (s *SliceImage) Layout(gtx C, w layout.Widget) D {
	sl := s.Resolve()
	inset := s.inset(sl)
	return layout.Stack{}.Layout(
		gtx,
		layout.Expanded(func(gtx C) D {
			return s.Surface(gtx, gtx.Constraints.Min, sl)
		}),
		layout.Stacked(func(gtx C) D {
			return inset.Layout(gtx, w)
		}),
	)
}

// Resolve returns the border data for the sprite, scheduling a lookup if it
// is not loaded yet. Call it during layout.
func (s *SliceImage) Resolve() Slice {
	if s.Sprite == nil || s.Store == nil || s.Loader == nil {
		return Slice{}
	}
	var (
		key = s.Key()
		st  = s.Store
	)
	r := s.Loader.Schedule(key, func(ctx context.Context) (interface{}, error) {
		b, ok, err := store.Resolve(ctx, st, key, twentyfive.DefaultBorders())
		if err != nil {
			log.Printf("loading slice data for %s: %v", key, err)
			return nil, err
		}
		return Slice{Borders: b, Found: ok}, nil
	})
	if !r.Ready() || r.Err != nil {
		return Slice{}
	}
	sl, _ := r.Value.(Slice)
	return sl
}

// Key returns the store key of the sprite, hashing its pixels only when the
// sprite changes.
func (s *SliceImage) Key() string {
	if s.keyOf != s.Sprite {
		s.keyOf = s.Sprite
		s.key = ""
		if s.Sprite != nil {
			s.key = s.Sprite.Key()
		}
	}
	return s.key
}

// Surface paints the sprite sliced into a rectangle of the given size.
func (s *SliceImage) Surface(gtx C, size image.Point, sl Slice) D {
	if s.Sprite == nil || size.X <= 0 || size.Y <= 0 {
		return D{Size: size}
	}
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	img := s.image.Op(s.Sprite)
	tex := s.Sprite.TextureSize()
	if !sl.Found {
		src := twentyfive.Region{
			Size:  twentyfive.Vec2{X: float32(size.X), Y: float32(size.Y)},
			UVMin: twentyfive.Vec2{X: s.Sprite.UV().UMin, Y: s.Sprite.UV().VMin},
			UVMax: twentyfive.Vec2{X: s.Sprite.UV().UMax, Y: s.Sprite.UV().VMax},
		}
		if s.Options.FlipX {
			src.UVMin.X, src.UVMax.X = src.UVMax.X, src.UVMin.X
		}
		if s.Options.FlipY {
			src.UVMin.Y, src.UVMax.Y = src.UVMax.Y, src.UVMin.Y
		}
		drawRegion(gtx.Ops, img, src, tex, float32(size.Y))
		return D{Size: size}
	}
	g, err := s.Grid(gtx, size, sl.Borders)
	if err != nil {
		log.Printf("slicing %s: %v", s.Sprite.Name, err)
		return D{Size: size}
	}
	for _, r := range g.Drawable() {
		drawRegion(gtx.Ops, img, r, tex, float32(size.Y))
	}
	return D{Size: size}
}

// Grid computes the grid for a surface of the given pixel size. Fixed
// bands keep their natural size in Dp.
func (s *SliceImage) Grid(gtx C, size image.Point, b twentyfive.BorderSet) (twentyfive.Grid, error) {
	src := s.Sprite.Source()
	px := s.pxPerPixel(gtx)
	src.Width *= px
	src.Height *= px
	return twentyfive.ComputeGrid(b, src, twentyfive.Target{
		Width:  float32(size.X),
		Height: float32(size.Y),
	}, s.options())
}

func (s *SliceImage) options() twentyfive.Options {
	if s.Options.FixedColumns == (twentyfive.Mask{}) && s.Options.FixedRows == (twentyfive.Mask{}) {
		opts := twentyfive.DefaultOptions()
		opts.FlipX, opts.FlipY = s.Options.FlipX, s.Options.FlipY
		return opts
	}
	return s.Options
}

// pxPerPixel is the number of screen pixels covered by one source pixel.
func (s *SliceImage) pxPerPixel(gtx C) float32 {
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	return scale * gtx.Metric.PxPerDp
}

func (s *SliceImage) inset(sl Slice) layout.Inset {
	if s.Inset != nil {
		return *s.Inset
	}
	if s.Sprite == nil || !sl.Found {
		return layout.Inset{}
	}
	return ContentInset(sl.Borders, s.Sprite.Size(), s.Scale)
}

// ContentInset insets content by the natural size of the outermost bands
// of a sprite of the given pixel size. Scale converts pixels into Dp.
func ContentInset(b twentyfive.BorderSet, size twentyfive.Vec2, scale float32) layout.Inset {
	if scale <= 0 {
		scale = 1
	}
	v, h := b.Vertical, b.Horizontal
	return layout.Inset{
		Left:   unit.Dp(v[0] / 100 * size.X * scale),
		Right:  unit.Dp((100 - v[3]) / 100 * size.X * scale),
		Top:    unit.Dp(h[0] / 100 * size.Y * scale),
		Bottom: unit.Dp((100 - h[3]) / 100 * size.Y * scale),
	}
}

// drawRegion paints the texture span of r into its destination.
func drawRegion(ops *op.Ops, img paint.ImageOp, r twentyfive.Region, tex twentyfive.Vec2, height float32) {
	src, dst := r.TopDown(tex, height)
	if dst.Size().X <= 0 || dst.Size().Y <= 0 || src.Size().X == 0 || src.Size().Y == 0 {
		return
	}
	bounds := image.Rect(round(dst.Min.X), round(dst.Min.Y), round(dst.Max.X), round(dst.Max.Y))
	if bounds.Empty() {
		return
	}
	defer clip.Rect(bounds).Push(ops).Pop()
	defer op.Affine(RegionTransform(src, dst)).Push(ops).Pop()
	img.Add(ops)
	paint.PaintOp{}.Add(ops)
}

// RegionTransform maps texture pixel space onto the destination so that
// src.Min lands on dst.Min and src.Max on dst.Max. Reversed source spans
// produce a mirrored transform.
func RegionTransform(src, dst twentyfive.Span) f32.Affine2D {
	var (
		ss = src.Size()
		ds = dst.Size()
	)
	return f32.Affine2D{}.
		Offset(f32.Pt(-src.Min.X, -src.Min.Y)).
		Scale(f32.Point{}, f32.Pt(ds.X/ss.X, ds.Y/ss.Y)).
		Offset(f32.Pt(dst.Min.X, dst.Min.Y))
}

func round(v float32) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
