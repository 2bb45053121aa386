package twentyfive

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrMalformedBorders is returned for border sets that are out of range or
// not ascending.
var ErrMalformedBorders = errors.New("malformed border configuration")

// BorderSet positions the four vertical and four horizontal border lines of
// a 25-slice, in percent of the source dimensions.
//
// Vertical borders are measured from the left edge. Horizontal borders are
// authored from the top edge, while the grid itself is laid out bottom-up;
// ComputeGrid performs the conversion.
type BorderSet struct {
	Vertical   [4]float32
	Horizontal [4]float32
}

// DefaultBorders splits both axes into five equal bands.
func DefaultBorders() BorderSet {
	return BorderSet{
		Vertical:   [4]float32{20, 40, 60, 80},
		Horizontal: [4]float32{20, 40, 60, 80},
	}
}

// Validate reports whether every border is a number within [0,100] and
// each axis is non-decreasing.
func (b BorderSet) Validate() error {
	if err := validateAxis("vertical", b.Vertical); err != nil {
		return err
	}
	if err := validateAxis("horizontal", b.Horizontal); err != nil {
		return err
	}
	return nil
}

func validateAxis(name string, axis [4]float32) error {
	for ii, v := range axis {
		if math32.IsNaN(v) || v < 0 || v > 100 {
			return fmt.Errorf("%w: %s border %d is %v, want [0,100]", ErrMalformedBorders, name, ii, v)
		}
		if ii > 0 && v < axis[ii-1] {
			return fmt.Errorf("%w: %s border %d (%v) precedes border %d (%v)",
				ErrMalformedBorders, name, ii, v, ii-1, axis[ii-1])
		}
	}
	return nil
}

// Clamp returns a valid border set as close as possible to b: values are
// clamped to [0,100] and each border is raised to at least its predecessor.
// NaN values collapse onto their predecessor.
func (b BorderSet) Clamp() BorderSet {
	return BorderSet{
		Vertical:   clampAxis(b.Vertical),
		Horizontal: clampAxis(b.Horizontal),
	}
}

func clampAxis(axis [4]float32) [4]float32 {
	var (
		out  [4]float32
		prev float32
	)
	for ii, v := range axis {
		if math32.IsNaN(v) {
			v = prev
		}
		v = clamp(v, prev, 100)
		out[ii] = v
		prev = v
	}
	return out
}

// SetVertical moves vertical border i to v, constrained by its neighbours so
// that handles never cross. It returns the value actually applied.
func (b *BorderSet) SetVertical(i int, v float32) float32 {
	return setBorder(&b.Vertical, i, v)
}

// SetHorizontal moves horizontal border i to v, constrained by its
// neighbours. It returns the value actually applied.
func (b *BorderSet) SetHorizontal(i int, v float32) float32 {
	return setBorder(&b.Horizontal, i, v)
}

func setBorder(axis *[4]float32, i int, v float32) float32 {
	if i < 0 || i >= len(axis) {
		return 0
	}
	lo, hi := float32(0), float32(100)
	if i > 0 {
		lo = axis[i-1]
	}
	if i < len(axis)-1 {
		hi = axis[i+1]
	}
	if math32.IsNaN(v) {
		v = axis[i]
	}
	axis[i] = clamp(v, lo, hi)
	return axis[i]
}

// xPercents is the ascending percentage sequence for the horizontal axis
// of the grid.
func (b BorderSet) xPercents() Breaks {
	v := b.Vertical
	return Breaks{0, v[0], v[1], v[2], v[3], 100}
}

// yPercents is the ascending percentage sequence for the vertical axis of
// the grid, measured from the bottom edge.
func (b BorderSet) yPercents() Breaks {
	h := b.Horizontal
	return Breaks{0, 100 - h[3], 100 - h[2], 100 - h[1], 100 - h[0], 100}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
