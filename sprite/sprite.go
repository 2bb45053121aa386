// Package sprite describes sliceable images and their content identity.
package sprite

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~gioverse/slicer/twentyfive"
	_ "golang.org/x/image/bmp"
)

// DefaultPixelsPerUnit is used when a sprite does not specify one.
const DefaultPixelsPerUnit = 100

// Sprite is a rectangular region of a texture.
type Sprite struct {
	// Name identifies the texture, typically its file name without extension.
	Name string
	// Texture holds the pixels.
	Texture image.Image
	// Rect selects the sprite within Texture. Empty selects the whole texture.
	Rect image.Rectangle
	// PixelsPerUnit converts pixels to world units. Zero uses
	// DefaultPixelsPerUnit.
	PixelsPerUnit float32
	// Pivot is the sprite's origin, in pixels from its bottom-left corner.
	Pivot twentyfive.Vec2
}

// New wraps a whole image as a sprite with a centered pivot.
func New(name string, img image.Image) *Sprite {
	b := img.Bounds()
	return &Sprite{
		Name:    name,
		Texture: img,
		Pivot:   twentyfive.Vec2{X: float32(b.Dx()) / 2, Y: float32(b.Dy()) / 2},
	}
}

// Load decodes a PNG, JPEG or BMP file into a sprite named after the file.
func Load(path string) (*Sprite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sprite: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding sprite %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, img), nil
}

// Bounds returns the sprite rectangle within the texture.
func (s *Sprite) Bounds() image.Rectangle {
	tb := s.Texture.Bounds()
	if s.Rect.Empty() {
		return tb
	}
	return s.Rect.Intersect(tb)
}

// Size of the sprite in pixels.
func (s *Sprite) Size() twentyfive.Vec2 {
	b := s.Bounds()
	return twentyfive.Vec2{X: float32(b.Dx()), Y: float32(b.Dy())}
}

// TextureSize returns the size of the whole texture in pixels.
func (s *Sprite) TextureSize() twentyfive.Vec2 {
	tb := s.Texture.Bounds()
	return twentyfive.Vec2{X: float32(tb.Dx()), Y: float32(tb.Dy())}
}

// PPU returns the effective pixels per unit.
func (s *Sprite) PPU() float32 {
	if s.PixelsPerUnit > 0 {
		return s.PixelsPerUnit
	}
	return DefaultPixelsPerUnit
}

// UV returns the sprite rectangle in normalized texture space, with V
// growing upward from the bottom of the texture.
func (s *Sprite) UV() twentyfive.UVRect {
	var (
		tb = s.Texture.Bounds()
		b  = s.Bounds()
		w  = float32(tb.Dx())
		h  = float32(tb.Dy())
	)
	if w == 0 || h == 0 {
		return twentyfive.FullUV
	}
	return twentyfive.UVRect{
		UMin: float32(b.Min.X-tb.Min.X) / w,
		UMax: float32(b.Max.X-tb.Min.X) / w,
		VMin: float32(tb.Max.Y-b.Max.Y) / h,
		VMax: float32(tb.Max.Y-b.Min.Y) / h,
	}
}

// Source returns the metrics needed to compute a grid for this sprite.
func (s *Sprite) Source() twentyfive.Source {
	size := s.Size()
	return twentyfive.Source{
		Width:  size.X,
		Height: size.Y,
		UV:     s.UV(),
	}
}

// Key returns the content-addressed identity of the sprite.
func (s *Sprite) Key() string {
	return Hash(s.Name, s.Texture, s.Bounds())
}

// Hash identifies pixel content. The key has the form
// "<name>_<width>_<height>_<MD5>", where the digest covers the
// non-premultiplied RGBA bytes of r in row-major order.
//
// Two sprites with identical pixels and name share slice data even when
// they live in different files; editing a single pixel yields a new key.
func Hash(name string, img image.Image, r image.Rectangle) string {
	var (
		sum = md5.New()
		px  [4]byte
	)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			px[0], px[1], px[2], px[3] = c.R, c.G, c.B, c.A
			sum.Write(px[:])
		}
	}
	return fmt.Sprintf("%s_%d_%d_%s", name, r.Dx(), r.Dy(), strings.ToUpper(hex.EncodeToString(sum.Sum(nil))))
}
