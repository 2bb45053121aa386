package sprite

import (
	"errors"
	"fmt"
	"image"

	"git.sr.ht/~gioverse/slicer/twentyfive"
	"github.com/disintegration/imaging"
)

// ErrMarkers is returned when a marked image does not carry exactly two
// stretch markers along an axis.
var ErrMarkers = errors.New("invalid 25-slice markers")

// axis along which markers are walked.
type axis int

const (
	horizontal axis = iota
	vertical
)

// convert maps a main/cross axis point to image space.
func (a axis) convert(main, cross int) (x, y int) {
	if a == horizontal {
		return main, cross
	}
	return cross, main
}

// line encodes a one-dimensional run of marked pixels, End exclusive.
type line struct {
	Start, End int
}

// DecodeMarked reads 25-slice borders from a marked image.
//
// Marked images carry a 1px frame, like a 9-Patch. Along the top row two
// runs of coloured pixels mark the two stretchable columns; along the left
// column two runs mark the two stretchable rows, from top to bottom. The
// returned image has the frame removed, and the borders are expressed in
// percent of that inner image.
//
// Note: Any pixel with a non-zero colour is considered a marker.
func DecodeMarked(src image.Image) (*image.NRGBA, twentyfive.BorderSet, error) {
	b := src.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return nil, twentyfive.BorderSet{}, fmt.Errorf("%w: image %dx%d has no room for a frame", ErrMarkers, b.Dx(), b.Dy())
	}
	var (
		inner   = image.Rect(b.Min.X+1, b.Min.Y+1, b.Max.X-1, b.Max.Y-1)
		borders twentyfive.BorderSet
	)
	cols := walk(src, horizontal, b.Min.Y, b.Min.X+1, b.Max.X-1)
	if len(cols) != 2 {
		return nil, borders, fmt.Errorf("%w: found %d column markers, want 2", ErrMarkers, len(cols))
	}
	rows := walk(src, vertical, b.Min.X, b.Min.Y+1, b.Max.Y-1)
	if len(rows) != 2 {
		return nil, borders, fmt.Errorf("%w: found %d row markers, want 2", ErrMarkers, len(rows))
	}
	borders.Vertical = percents(cols, inner.Min.X, inner.Dx())
	borders.Horizontal = percents(rows, inner.Min.Y, inner.Dy())
	return imaging.Crop(src, inner), borders, nil
}

// percents converts two runs into four borders relative to an inner span
// starting at origin.
func percents(runs []line, origin, length int) [4]float32 {
	var out [4]float32
	for ii, r := range runs {
		out[ii*2] = float32(r.Start-origin) * 100 / float32(length)
		out[ii*2+1] = float32(r.End-origin) * 100 / float32(length)
	}
	return out
}

// walk pixels along the main axis from start to end (exclusive) at the
// given cross axis offset, returning every run of coloured pixels.
func walk(src image.Image, a axis, offset, start, end int) []line {
	var (
		runs    []line
		current = line{Start: -1}
	)
	for ii := start; ii < end; ii++ {
		x, y := a.convert(ii, offset)
		r, g, b, alpha := src.At(x, y).RGBA()
		colorIsSet := r > 0 || g > 0 || b > 0 || alpha > 0
		startIsSet := current.Start > -1
		if colorIsSet && !startIsSet {
			current.Start = ii
		}
		if !colorIsSet && startIsSet {
			current.End = ii
			runs = append(runs, current)
			current = line{Start: -1}
		}
	}
	if current.Start > -1 {
		current.End = end
		runs = append(runs, current)
	}
	return runs
}
