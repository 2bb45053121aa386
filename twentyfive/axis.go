package twentyfive

import "github.com/chewxy/math32"

// Epsilon is the size below which a band is considered empty.
const Epsilon float32 = 0.0001

// Band identifies one of the five bands along an axis.
type Band int

const (
	// Leading is the band touching the origin edge of the axis.
	Leading Band = iota
	// LeadingStretch sits between Leading and Center.
	LeadingStretch
	// Center is the middle band.
	Center
	// TrailingStretch sits between Center and Trailing.
	TrailingStretch
	// Trailing is the band touching the far edge of the axis.
	Trailing
)

// BandCount is the number of bands per axis.
const BandCount = 5

// Sizes holds one length per band.
type Sizes [BandCount]float32

// Of returns the size of band b.
func (s Sizes) Of(b Band) float32 {
	return s[b]
}

// Sum of all bands.
func (s Sizes) Sum() float32 {
	var total float32
	for _, v := range s {
		total += v
	}
	return total
}

// Mask marks which bands keep their natural size.
type Mask [BandCount]bool

// FixedMask keeps both edge bands and the center band at their natural
// size, letting the two bands in between stretch.
var FixedMask = Mask{true, false, true, false, true}

// Fixed reports whether band b is fixed.
func (m Mask) Fixed(b Band) bool {
	return m[b]
}

// Breaks are the six boundaries of the five bands along an axis.
// Band i spans Breaks[i] to Breaks[i+1].
type Breaks [BandCount + 1]float32

// Span returns the boundaries of band b.
func (br Breaks) Span(b Band) (min, max float32) {
	return br[b], br[b+1]
}

// Reverse returns the breaks in opposite order.
func (br Breaks) Reverse() Breaks {
	var out Breaks
	for ii := range br {
		out[ii] = br[len(br)-1-ii]
	}
	return out
}

// lerp breaks expressed as percentages onto the range [min, max].
func (br Breaks) lerp(min, max float32) Breaks {
	var out Breaks
	for ii, p := range br {
		out[ii] = min + (max-min)*(p/100)
	}
	// Pin the ends so that the full range is covered exactly.
	out[0], out[BandCount] = min, max
	return out
}

// naturalSizes converts percentage breaks to band lengths for an axis of
// the given dimension.
func (br Breaks) naturalSizes(dimension float32) Sizes {
	var out Sizes
	for ii := range out {
		out[ii] = (br[ii+1] - br[ii]) * dimension / 100
	}
	return out
}

// distribute assigns each band its final size within total.
//
// Fixed bands keep their natural size and stretch bands share whatever
// remains, weighted by their natural size. When total cannot hold the fixed
// bands, they shrink uniformly and stretch bands collapse to zero.
func distribute(total float32, natural Sizes, mask Mask) Sizes {
	if math32.IsNaN(total) || math32.IsInf(total, 0) || total < 0 {
		total = 0
	}
	var fixed, weight float32
	for ii, size := range natural {
		if mask[ii] {
			fixed += size
		} else {
			weight += size
		}
	}
	var out Sizes
	if total < fixed {
		var scale float32
		if fixed > Epsilon {
			scale = total / fixed
		}
		for ii, size := range natural {
			if mask[ii] {
				out[ii] = size * scale
			}
		}
		return out
	}
	remaining := total - fixed
	for ii, size := range natural {
		switch {
		case mask[ii]:
			out[ii] = size
		case weight > Epsilon:
			out[ii] = remaining * (size / weight)
		}
	}
	return out
}

// accumulate lays sizes end to end starting at origin.
func accumulate(origin float32, sizes Sizes) Breaks {
	var out Breaks
	out[0] = origin
	for ii, size := range sizes {
		out[ii+1] = out[ii] + size
	}
	return out
}
