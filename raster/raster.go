// Package raster paints 25-slice grids into images on the CPU.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"git.sr.ht/~gioverse/slicer/sprite"
	"git.sr.ht/~gioverse/slicer/twentyfive"
	"github.com/chewxy/math32"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Interpolation selects how each region is resampled.
type Interpolation string

const (
	Nearest    Interpolation = "nearest"
	Bilinear   Interpolation = "bilinear"
	CatmullRom Interpolation = "catmullrom"
	Lanczos    Interpolation = "lanczos"
)

// ParseInterpolation validates an interpolation name. The empty string
// selects Nearest.
func ParseInterpolation(s string) (Interpolation, error) {
	switch i := Interpolation(s); i {
	case "":
		return Nearest, nil
	case Nearest, Bilinear, CatmullRom, Lanczos:
		return i, nil
	}
	return "", fmt.Errorf("unknown interpolation %q", s)
}

// Options for Draw.
type Options struct {
	Interpolation Interpolation
	// Color modulates every pixel. The zero value leaves pixels unchanged.
	Color color.NRGBA
	// Debug modulates each region by its debug colour instead.
	Debug bool
}

// Draw paints every drawable region of g into r of dst, sampling from tex.
//
// g must have been computed for a target at the origin with r's size, from
// a source whose UVs refer to tex.
func Draw(dst draw.Image, r image.Rectangle, g twentyfive.Grid, tex image.Image, opts Options) {
	var (
		tb     = tex.Bounds()
		texSz  = twentyfive.Vec2{X: float32(tb.Dx()), Y: float32(tb.Dy())}
		height = float32(r.Dy())
		tint   = opts.Color
	)
	if tint == (color.NRGBA{}) {
		tint = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	colors := g.Colors(tint, opts.Debug)
	for _, region := range g.Drawable() {
		src, dstSpan := region.TopDown(texSz, height)
		dr := pixels(dstSpan).Add(r.Min)
		if dr.Empty() {
			continue
		}
		patch := sample(tex, src, dr.Size(), opts.Interpolation)
		if patch == nil {
			continue
		}
		if c := colors[region.Row][region.Col]; c != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
			patch = modulate(patch, c)
		}
		draw.Draw(dst, dr, patch, patch.Bounds().Min, draw.Over)
	}
}

// Slice renders s into a new image of the given size using borders b.
func Slice(s *sprite.Sprite, b twentyfive.BorderSet, size image.Point, opts Options, gopts twentyfive.Options) (*image.NRGBA, error) {
	g, err := twentyfive.ComputeGrid(b, s.Source(), twentyfive.Target{
		Width:  float32(size.X),
		Height: float32(size.Y),
	}, gopts)
	if err != nil {
		return nil, err
	}
	out := image.NewNRGBA(image.Rectangle{Max: size})
	Draw(out, out.Bounds(), g, s.Texture, opts)
	return out, nil
}

// sample crops the texture span, mirrors it where the span is reversed and
// resamples it to size.
func sample(tex image.Image, s twentyfive.Span, size image.Point, interp Interpolation) image.Image {
	var (
		flipX = s.Max.X < s.Min.X
		flipY = s.Max.Y < s.Min.Y
	)
	if flipX {
		s.Min.X, s.Max.X = s.Max.X, s.Min.X
	}
	if flipY {
		s.Min.Y, s.Max.Y = s.Max.Y, s.Min.Y
	}
	sr := texels(s).Add(tex.Bounds().Min).Intersect(tex.Bounds())
	if sr.Empty() {
		return nil
	}
	var patch image.Image = imaging.Crop(tex, sr)
	if flipX {
		patch = imaging.FlipH(patch)
	}
	if flipY {
		patch = imaging.FlipV(patch)
	}
	return scale(patch, size, interp)
}

func scale(src image.Image, size image.Point, interp Interpolation) image.Image {
	if src.Bounds().Size() == size {
		return src
	}
	if interp == Lanczos {
		return resize.Resize(uint(size.X), uint(size.Y), src, resize.Lanczos3)
	}
	var s xdraw.Scaler
	switch interp {
	case Bilinear:
		s = xdraw.BiLinear
	case CatmullRom:
		s = xdraw.CatmullRom
	default:
		s = xdraw.NearestNeighbor
	}
	out := image.NewNRGBA(image.Rectangle{Max: size})
	s.Scale(out, out.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return out
}

// modulate multiplies every pixel by c, like a vertex colour.
func modulate(img image.Image, c color.NRGBA) image.Image {
	return imaging.AdjustFunc(img, func(p color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: mul(p.R, c.R),
			G: mul(p.G, c.G),
			B: mul(p.B, c.B),
			A: mul(p.A, c.A),
		}
	})
}

func mul(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}

// pixels rounds a span to whole pixels.
func pixels(s twentyfive.Span) image.Rectangle {
	return image.Rect(round(s.Min.X), round(s.Min.Y), round(s.Max.X), round(s.Max.Y))
}

// snap absorbs float error in texel coordinates that should be whole.
const snap = 1e-3

// texels widens a span to the whole texels it touches, at least one per axis.
// A band narrower than a texel still samples the texel it lies in.
func texels(s twentyfive.Span) image.Rectangle {
	r := image.Rect(
		int(math32.Floor(s.Min.X+snap)), int(math32.Floor(s.Min.Y+snap)),
		int(math32.Ceil(s.Max.X-snap)), int(math32.Ceil(s.Max.Y-snap)),
	)
	if r.Dx() == 0 {
		r.Max.X++
	}
	if r.Dy() == 0 {
		r.Max.Y++
	}
	return r
}

func round(v float32) int {
	return int(math32.Floor(v + 0.5))
}
