package widget

import (
	"gioui.org/op/paint"
	"git.sr.ht/~gioverse/slicer/sprite"
)

// CachedImage bakes a sprite texture into an image operation.
//
// Uploading a texture is expensive, so the operation is computed on first
// use and reused until a different sprite is given.
type CachedImage struct {
	sprite *sprite.Sprite
	op     paint.ImageOp
}

// Changer can report that is has changed since the last call.
type Changer interface {
	Changed() bool
}

// Op returns the image operation for the sprite's texture, baking it if
// needed. If the texture implements Changer and reports a change the
// operation is re-computed.
func (img *CachedImage) Op(s *sprite.Sprite) paint.ImageOp {
	if s == nil || s.Texture == nil {
		return paint.ImageOp{}
	}
	changed := img.sprite != s || img.op == (paint.ImageOp{})
	if c, ok := s.Texture.(Changer); ok && c.Changed() {
		changed = true
	}
	if changed {
		img.op = paint.NewImageOp(s.Texture)
		img.sprite = s
	}
	return img.op
}

// Reset drops the baked operation, for when the texture pixels were
// modified in place.
func (img *CachedImage) Reset() {
	*img = CachedImage{}
}
