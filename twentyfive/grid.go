// Package twentyfive computes 25-slice geometry.
//
// A 25-slice extends the 9-patch idea with two extra border lines per axis,
// giving five bands per axis and 25 regions in total. Each band is either
// fixed (keeps its natural size) or stretchable (absorbs the remaining
// space). The computation is pure: it maps a border configuration, the
// source metrics and a target rectangle to a grid of regions, each with a
// position, a size and a texture-coordinate rectangle.
//
// Coordinates are bottom-up: row 0 is the bottom row of the target and V
// grows upward in texture space.
package twentyfive

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrMalformedSource is returned when source dimensions are negative or not
// numbers.
var ErrMalformedSource = errors.New("malformed source metrics")

// ErrMalformedTarget is returned when the target origin is not finite.
var ErrMalformedTarget = errors.New("malformed target origin")

// Vec2 is a two dimensional vector.
type Vec2 struct {
	X, Y float32
}

// Add returns v+u.
func (v Vec2) Add(u Vec2) Vec2 {
	return Vec2{X: v.X + u.X, Y: v.Y + u.Y}
}

// Sub returns v-u.
func (v Vec2) Sub(u Vec2) Vec2 {
	return Vec2{X: v.X - u.X, Y: v.Y - u.Y}
}

// UVRect is a rectangle in normalized texture space.
type UVRect struct {
	UMin, VMin, UMax, VMax float32
}

// FullUV covers the whole texture.
var FullUV = UVRect{UMax: 1, VMax: 1}

// Source describes the sliced sprite.
type Source struct {
	// Width and Height of the sprite in source pixels.
	Width, Height float32
	// UV locates the sprite within its texture.
	UV UVRect
}

// Target is the rectangle the 25-slice is laid into.
type Target struct {
	X, Y          float32
	Width, Height float32
}

// Options control band behaviour and mirroring.
type Options struct {
	// FixedColumns and FixedRows select the bands that keep their natural
	// size along each axis.
	FixedColumns, FixedRows Mask
	// FlipX and FlipY mirror the texture without moving geometry.
	FlipX, FlipY bool
}

// DefaultOptions uses FixedMask on both axes, without flipping.
func DefaultOptions() Options {
	return Options{
		FixedColumns: FixedMask,
		FixedRows:    FixedMask,
	}
}

// Region is one cell of the grid.
type Region struct {
	// Col and Row locate the region. Row 0 is the bottom row.
	Col, Row int
	// Pos is the bottom-left corner of the region.
	Pos Vec2
	// Size is the width and height of the region.
	Size Vec2
	// UVMin and UVMax are the texture coordinates at Pos and Pos+Size.
	// On a flipped axis UVMin exceeds UVMax.
	UVMin, UVMax Vec2
}

// Max returns the top-right corner of the region.
func (r Region) Max() Vec2 {
	return r.Pos.Add(r.Size)
}

// Empty reports whether the region has no drawable area.
func (r Region) Empty() bool {
	return r.Size.X <= Epsilon || r.Size.Y <= Epsilon
}

// Grid is the result of ComputeGrid.
type Grid struct {
	// Regions indexed [row][col].
	Regions [BandCount][BandCount]Region
	// Columns and Rows are the final band sizes.
	Columns, Rows Sizes
	// X and Y are the band boundaries in target space.
	X, Y Breaks
	// U and V are the band boundaries in texture space, after flipping.
	U, V Breaks
}

// At returns the region at col, row.
func (g Grid) At(col, row int) Region {
	return g.Regions[row][col]
}

// Drawable returns the non-empty regions in row-major order.
func (g Grid) Drawable() []Region {
	out := make([]Region, 0, BandCount*BandCount)
	for _, row := range g.Regions {
		for _, r := range row {
			if !r.Empty() {
				out = append(out, r)
			}
		}
	}
	return out
}

// ComputeGrid lays a 25-slice of src into dst.
//
// Borders are validated rather than clamped; callers that edit borders
// interactively should use BorderSet.SetVertical and SetHorizontal to keep
// them valid. A target smaller than the sum of the fixed bands is not an
// error: fixed bands shrink proportionally and stretch bands vanish. A
// negative or non-finite target size counts as zero.
func ComputeGrid(b BorderSet, src Source, dst Target, opts Options) (Grid, error) {
	if err := b.Validate(); err != nil {
		return Grid{}, err
	}
	if err := src.validate(); err != nil {
		return Grid{}, err
	}
	if err := dst.validate(); err != nil {
		return Grid{}, err
	}
	var (
		xp = b.xPercents()
		yp = b.yPercents()
		g  Grid
	)
	g.U = xp.lerp(src.UV.UMin, src.UV.UMax)
	g.V = yp.lerp(src.UV.VMin, src.UV.VMax)
	g.Columns = distribute(dst.Width, xp.naturalSizes(src.Width), opts.FixedColumns)
	g.Rows = distribute(dst.Height, yp.naturalSizes(src.Height), opts.FixedRows)
	g.X = accumulate(dst.X, g.Columns)
	g.Y = accumulate(dst.Y, g.Rows)
	if opts.FlipX {
		g.U = g.U.Reverse()
	}
	if opts.FlipY {
		g.V = g.V.Reverse()
	}
	for row := 0; row < BandCount; row++ {
		for col := 0; col < BandCount; col++ {
			g.Regions[row][col] = Region{
				Col:   col,
				Row:   row,
				Pos:   Vec2{X: g.X[col], Y: g.Y[row]},
				Size:  Vec2{X: g.Columns[col], Y: g.Rows[row]},
				UVMin: Vec2{X: g.U[col], Y: g.V[row]},
				UVMax: Vec2{X: g.U[col+1], Y: g.V[row+1]},
			}
		}
	}
	return g, nil
}

func (t Target) validate() error {
	for _, v := range []float32{t.X, t.Y} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("%w: origin %v,%v", ErrMalformedTarget, t.X, t.Y)
		}
	}
	return nil
}

func (s Source) validate() error {
	for _, v := range []float32{s.Width, s.Height} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: size %vx%v", ErrMalformedSource, s.Width, s.Height)
		}
	}
	return nil
}
