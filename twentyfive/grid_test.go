package twentyfive

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
)

const tolerance = 0.001

func near(a, b float32) bool {
	return math32.Abs(a-b) <= tolerance
}

func sizesNear(a, b Sizes) bool {
	for ii := range a {
		if !near(a[ii], b[ii]) {
			return false
		}
	}
	return true
}

func breaksNear(a, b Breaks) bool {
	for ii := range a {
		if !near(a[ii], b[ii]) {
			return false
		}
	}
	return true
}

var square = Source{Width: 100, Height: 100, UV: FullUV}

// TestComputeGridScenario checks the reference layout: equal borders on a
// 100px sprite stretched to 200px.
func TestComputeGridScenario(t *testing.T) {
	g, err := ComputeGrid(DefaultBorders(), square, Target{Width: 200, Height: 200}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Sizes{20, 70, 20, 70, 20}
	if !sizesNear(g.Columns, want) {
		t.Fatalf("columns:\n got: %v\nwant: %v", g.Columns, want)
	}
	if !sizesNear(g.Rows, want) {
		t.Fatalf("rows:\n got: %v\nwant: %v", g.Rows, want)
	}
	wantX := Breaks{0, 20, 90, 110, 180, 200}
	if !breaksNear(g.X, wantX) {
		t.Fatalf("x positions:\n got: %v\nwant: %v", g.X, wantX)
	}
	center := g.At(2, 2)
	if !near(center.Pos.X, 90) || !near(center.Pos.Y, 90) || !near(center.Size.X, 20) {
		t.Fatalf("center region: %+v", center)
	}
}

// TestDistribute exercises the partition, invariance and shrink properties
// of band distribution.
func TestDistribute(t *testing.T) {
	for _, tt := range []struct {
		Label   string
		Total   float32
		Natural Sizes
		Mask    Mask
		Want    Sizes
	}{
		{
			Label:   "exact fit",
			Total:   100,
			Natural: Sizes{20, 20, 20, 20, 20},
			Mask:    FixedMask,
			Want:    Sizes{20, 20, 20, 20, 20},
		},
		{
			Label:   "uneven stretch weights",
			Total:   160,
			Natural: Sizes{10, 10, 20, 30, 10},
			Mask:    FixedMask,
			Want:    Sizes{10, 30, 20, 90, 10},
		},
		{
			Label:   "shrink fixed bands",
			Total:   30,
			Natural: Sizes{20, 20, 20, 20, 20},
			Mask:    FixedMask,
			Want:    Sizes{10, 0, 10, 0, 10},
		},
		{
			Label:   "zero target",
			Total:   0,
			Natural: Sizes{20, 20, 20, 20, 20},
			Mask:    FixedMask,
			Want:    Sizes{},
		},
		{
			Label:   "negative target",
			Total:   -50,
			Natural: Sizes{20, 20, 20, 20, 20},
			Mask:    FixedMask,
			Want:    Sizes{},
		},
		{
			Label:   "no stretch weight",
			Total:   200,
			Natural: Sizes{40, 0, 20, 0, 40},
			Mask:    FixedMask,
			Want:    Sizes{40, 0, 20, 0, 40},
		},
		{
			Label:   "no fixed content",
			Total:   50,
			Natural: Sizes{0, 30, 0, 10, 0},
			Mask:    FixedMask,
			Want:    Sizes{0, 37.5, 0, 12.5, 0},
		},
		{
			Label:   "all fixed",
			Total:   500,
			Natural: Sizes{20, 20, 20, 20, 20},
			Mask:    Mask{true, true, true, true, true},
			Want:    Sizes{20, 20, 20, 20, 20},
		},
	} {
		t.Run(tt.Label, func(t *testing.T) {
			got := distribute(tt.Total, tt.Natural, tt.Mask)
			if !sizesNear(got, tt.Want) {
				t.Fatalf("\n got: %v\nwant: %v", got, tt.Want)
			}
			for ii, v := range got {
				if v < 0 {
					t.Fatalf("band %d is negative: %v", ii, v)
				}
			}
		})
	}
}

// TestGridProperties checks invariants across a range of target sizes.
func TestGridProperties(t *testing.T) {
	borders := BorderSet{
		Vertical:   [4]float32{10, 25, 70, 95},
		Horizontal: [4]float32{5, 50, 50, 80},
	}
	src := Source{Width: 64, Height: 48, UV: UVRect{UMin: 0.25, VMin: 0.5, UMax: 0.75, VMax: 1}}
	natural := borders.xPercents().naturalSizes(src.Width)
	var fixed float32
	for ii, v := range natural {
		if FixedMask[ii] {
			fixed += v
		}
	}
	for _, width := range []float32{0, 1, fixed / 2, fixed, fixed + 1, 64, 333} {
		dst := Target{X: 7, Y: -3, Width: width, Height: 48}
		g, err := ComputeGrid(borders, src, dst, DefaultOptions())
		if err != nil {
			t.Fatalf("width %v: unexpected error: %v", width, err)
		}
		if g.X[0] != dst.X || g.Y[0] != dst.Y {
			t.Fatalf("width %v: origin %v,%v, want %v,%v", width, g.X[0], g.Y[0], dst.X, dst.Y)
		}
		for ii := 1; ii < len(g.X); ii++ {
			if g.X[ii] < g.X[ii-1] {
				t.Fatalf("width %v: positions not monotonic: %v", width, g.X)
			}
		}
		if width >= fixed {
			if !near(g.Columns.Sum(), width) {
				t.Fatalf("width %v: columns sum to %v", width, g.Columns.Sum())
			}
			if !near(g.X[BandCount], dst.X+width) {
				t.Fatalf("width %v: last break %v", width, g.X[BandCount])
			}
			for _, b := range []Band{Leading, Center, Trailing} {
				if !near(g.Columns.Of(b), natural.Of(b)) {
					t.Fatalf("width %v: fixed band %d is %v, want %v", width, b, g.Columns.Of(b), natural.Of(b))
				}
			}
		} else {
			scale := width / fixed
			for _, b := range []Band{Leading, Center, Trailing} {
				if !near(g.Columns.Of(b), natural.Of(b)*scale) {
					t.Fatalf("width %v: fixed band %d is %v, want %v", width, b, g.Columns.Of(b), natural.Of(b)*scale)
				}
			}
			for _, b := range []Band{LeadingStretch, TrailingStretch} {
				if g.Columns.Of(b) != 0 {
					t.Fatalf("width %v: stretch band %d is %v, want 0", width, b, g.Columns.Of(b))
				}
			}
		}
	}
}

// TestUVBreaks checks texture coordinates for evenly spaced borders.
func TestUVBreaks(t *testing.T) {
	g, err := ComputeGrid(DefaultBorders(), square, Target{Width: 10, Height: 10}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Breaks{0, 0.2, 0.4, 0.6, 0.8, 1}
	if !breaksNear(g.U, want) {
		t.Fatalf("u:\n got: %v\nwant: %v", g.U, want)
	}
	if !breaksNear(g.V, want) {
		t.Fatalf("v:\n got: %v\nwant: %v", g.V, want)
	}
	r := g.At(1, 3)
	if !near(r.UVMin.X, 0.2) || !near(r.UVMax.X, 0.4) || !near(r.UVMin.Y, 0.6) || !near(r.UVMax.Y, 0.8) {
		t.Fatalf("region uv: %+v", r)
	}
}

// TestHorizontalBordersAuthoredTopDown checks that horizontal borders are
// measured from the top edge while rows are laid out bottom-up.
func TestHorizontalBordersAuthoredTopDown(t *testing.T) {
	borders := DefaultBorders()
	borders.Horizontal = [4]float32{10, 20, 30, 40}
	g, err := ComputeGrid(borders, square, Target{Width: 100, Height: 100}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Bottom row spans from 40% below the top to the bottom edge.
	want := Sizes{60, 10, 10, 10, 10}
	if !sizesNear(g.Rows, want) {
		t.Fatalf("rows:\n got: %v\nwant: %v", g.Rows, want)
	}
	wantV := Breaks{0, 0.6, 0.7, 0.8, 0.9, 1}
	if !breaksNear(g.V, wantV) {
		t.Fatalf("v:\n got: %v\nwant: %v", g.V, wantV)
	}
}

// TestFlip checks that flipping mirrors texture coordinates only.
func TestFlip(t *testing.T) {
	borders := BorderSet{
		Vertical:   [4]float32{10, 30, 60, 90},
		Horizontal: [4]float32{15, 35, 55, 75},
	}
	dst := Target{X: 3, Y: 4, Width: 180, Height: 90}
	plain, err := ComputeGrid(borders, square, dst, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := DefaultOptions()
	opts.FlipX = true
	flipped, err := ComputeGrid(borders, square, dst, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flipped.U != plain.U.Reverse() {
		t.Fatalf("flipped u:\n got: %v\nwant: %v", flipped.U, plain.U.Reverse())
	}
	if flipped.V != plain.V {
		t.Fatalf("v changed by horizontal flip: %v vs %v", flipped.V, plain.V)
	}
	if flipped.X != plain.X || flipped.Y != plain.Y || flipped.Columns != plain.Columns {
		t.Fatalf("geometry changed by flip")
	}
	opts.FlipX, opts.FlipY = false, true
	flipped, err = ComputeGrid(borders, square, dst, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flipped.V != plain.V.Reverse() {
		t.Fatalf("flipped v:\n got: %v\nwant: %v", flipped.V, plain.V.Reverse())
	}
	r := flipped.At(0, 0)
	if r.UVMin.Y <= r.UVMax.Y {
		t.Fatalf("bottom-left region should sample downward after flip: %+v", r)
	}
}

// TestDrawable checks that empty regions are dropped.
func TestDrawable(t *testing.T) {
	for _, tt := range []struct {
		Label   string
		Borders BorderSet
		Target  Target
		Want    int
	}{
		{
			Label:   "all regions",
			Borders: DefaultBorders(),
			Target:  Target{Width: 200, Height: 200},
			Want:    25,
		},
		{
			Label:   "stretch bands collapsed",
			Borders: DefaultBorders(),
			Target:  Target{Width: 30, Height: 30},
			Want:    9,
		},
		{
			Label:   "stretch columns collapsed",
			Borders: DefaultBorders(),
			Target:  Target{Width: 60, Height: 200},
			Want:    15,
		},
		{
			Label: "coincident borders",
			Borders: BorderSet{
				Vertical:   [4]float32{0, 40, 60, 100},
				Horizontal: [4]float32{20, 40, 60, 80},
			},
			Target: Target{Width: 200, Height: 200},
			Want:   15,
		},
		{
			Label:   "zero target",
			Borders: DefaultBorders(),
			Target:  Target{},
			Want:    0,
		},
	} {
		t.Run(tt.Label, func(t *testing.T) {
			g, err := ComputeGrid(tt.Borders, square, tt.Target, DefaultOptions())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := g.Drawable()
			if len(got) != tt.Want {
				t.Fatalf("got %d drawable regions, want %d", len(got), tt.Want)
			}
			for _, r := range got {
				if r.Empty() {
					t.Fatalf("empty region emitted: %+v", r)
				}
			}
		})
	}
}

// TestComputeGridRejectsMalformedInput checks border and source validation.
func TestComputeGridRejectsMalformedInput(t *testing.T) {
	for _, tt := range []struct {
		Label   string
		Borders BorderSet
		Source  Source
		Want    error
	}{
		{
			Label:   "descending vertical",
			Borders: BorderSet{Vertical: [4]float32{20, 60, 40, 80}, Horizontal: DefaultBorders().Horizontal},
			Source:  square,
			Want:    ErrMalformedBorders,
		},
		{
			Label:   "horizontal above range",
			Borders: BorderSet{Vertical: DefaultBorders().Vertical, Horizontal: [4]float32{20, 40, 60, 101}},
			Source:  square,
			Want:    ErrMalformedBorders,
		},
		{
			Label:   "negative border",
			Borders: BorderSet{Vertical: [4]float32{-1, 40, 60, 80}, Horizontal: DefaultBorders().Horizontal},
			Source:  square,
			Want:    ErrMalformedBorders,
		},
		{
			Label:   "nan border",
			Borders: BorderSet{Vertical: [4]float32{math32.NaN(), 40, 60, 80}, Horizontal: DefaultBorders().Horizontal},
			Source:  square,
			Want:    ErrMalformedBorders,
		},
		{
			Label:   "negative source",
			Borders: DefaultBorders(),
			Source:  Source{Width: -1, Height: 10, UV: FullUV},
			Want:    ErrMalformedSource,
		},
	} {
		t.Run(tt.Label, func(t *testing.T) {
			_, err := ComputeGrid(tt.Borders, tt.Source, Target{Width: 10, Height: 10}, DefaultOptions())
			if !errors.Is(err, tt.Want) {
				t.Fatalf("got error %v, want %v", err, tt.Want)
			}
		})
	}
}

func TestComputeGridNonFiniteTarget(t *testing.T) {
	for _, tt := range []struct {
		Label  string
		Target Target
		Want   error
	}{
		{Label: "infinite width", Target: Target{Width: math32.Inf(1), Height: 10}},
		{Label: "negative infinite height", Target: Target{Width: 10, Height: math32.Inf(-1)}},
		{Label: "nan size", Target: Target{Width: math32.NaN(), Height: math32.NaN()}},
		{Label: "infinite x", Target: Target{X: math32.Inf(1), Width: 10, Height: 10}, Want: ErrMalformedTarget},
		{Label: "nan y", Target: Target{Y: math32.NaN(), Width: 10, Height: 10}, Want: ErrMalformedTarget},
	} {
		t.Run(tt.Label, func(t *testing.T) {
			g, err := ComputeGrid(DefaultBorders(), square, tt.Target, DefaultOptions())
			if tt.Want != nil {
				if !errors.Is(err, tt.Want) {
					t.Fatalf("got error %v, want %v", err, tt.Want)
				}
				return
			}
			if err != nil {
				t.Fatalf("computing grid: %v", err)
			}
			for _, b := range append(g.X[:], g.Y[:]...) {
				if math32.IsNaN(b) || math32.IsInf(b, 0) {
					t.Fatalf("non-finite break in\n x: %v\n y: %v", g.X, g.Y)
				}
			}
			for _, sizes := range []Sizes{g.Columns, g.Rows} {
				for _, v := range sizes {
					if v < 0 || math32.IsInf(v, 0) || math32.IsNaN(v) {
						t.Fatalf("bad band size in %v", sizes)
					}
				}
			}
		})
	}
}

// TestTopDown checks conversion into top-down pixel spans.
func TestTopDown(t *testing.T) {
	g, err := ComputeGrid(DefaultBorders(), square, Target{Width: 200, Height: 200}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Top-left region in a bottom-up grid is col 0, row 4.
	src, dst := g.At(0, 4).TopDown(Vec2{X: 100, Y: 100}, 200)
	if !near(dst.Min.X, 0) || !near(dst.Min.Y, 0) || !near(dst.Max.X, 20) || !near(dst.Max.Y, 20) {
		t.Fatalf("dst span: %+v", dst)
	}
	if !near(src.Min.X, 0) || !near(src.Min.Y, 0) || !near(src.Max.X, 20) || !near(src.Max.Y, 20) {
		t.Fatalf("src span: %+v", src)
	}
	opts := DefaultOptions()
	opts.FlipX = true
	g, err = ComputeGrid(DefaultBorders(), square, Target{Width: 200, Height: 200}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src, _ = g.At(0, 4).TopDown(Vec2{X: 100, Y: 100}, 200)
	if !near(src.Min.X, 100) || !near(src.Max.X, 80) {
		t.Fatalf("flipped src span: %+v", src)
	}
}

// TestColors checks the debug colour pass.
func TestColors(t *testing.T) {
	var g Grid
	base := ToNRGBA(DebugColor(0, 0))
	plain := g.Colors(base, false)
	if plain[3][1] != base {
		t.Fatalf("got %v, want base %v", plain[3][1], base)
	}
	debug := g.Colors(base, true)
	if c := debug[4][4]; c.R != 255 || c.G != 255 || c.B != 255 || c.A != 255 {
		t.Fatalf("top-right debug colour: %v", c)
	}
	if c := debug[0][4]; c.R != 255 || c.G != 0 || c.B != 128 {
		t.Fatalf("bottom-right debug colour: %v", c)
	}
}
