package twentyfive

// Span is an axis-aligned rectangle given by two corners. Spans produced
// for texture sampling may have Min greater than Max on a mirrored axis.
type Span struct {
	Min, Max Vec2
}

// Size returns Max-Min, which may be negative on mirrored axes.
func (s Span) Size() Vec2 {
	return s.Max.Sub(s.Min)
}

// TopDown converts the region into top-down pixel spans, as used by image
// and Gio backends.
//
// tex is the size in pixels of the whole texture the UVs refer to, and
// height is the height of the destination the grid was computed for, with
// the grid's target origin at the destination's bottom-left corner. The
// returned src span walks the texture in the order the region should be
// painted, so it is reversed on flipped axes. The dst span is always
// ascending.
func (r Region) TopDown(tex Vec2, height float32) (src, dst Span) {
	src = Span{
		Min: Vec2{X: r.UVMin.X * tex.X, Y: (1 - r.UVMax.Y) * tex.Y},
		Max: Vec2{X: r.UVMax.X * tex.X, Y: (1 - r.UVMin.Y) * tex.Y},
	}
	dst = Span{
		Min: Vec2{X: r.Pos.X, Y: height - r.Pos.Y - r.Size.Y},
		Max: Vec2{X: r.Pos.X + r.Size.X, Y: height - r.Pos.Y},
	}
	return src, dst
}
