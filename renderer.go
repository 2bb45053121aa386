// Package slicer renders sprites as 25-slice meshes.
//
// A Renderer owns the inputs of one sliced sprite (the sprite itself, its
// target size, mirroring, pivot and tint) and rebuilds its mesh only when
// one of them changed. Border data is looked up in an injected store.
package slicer

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"git.sr.ht/~gioverse/slicer/mesh"
	"git.sr.ht/~gioverse/slicer/sprite"
	"git.sr.ht/~gioverse/slicer/store"
	"git.sr.ht/~gioverse/slicer/twentyfive"
)

// White is the neutral tint.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Renderer builds the mesh for one sliced sprite.
//
// Setters mark the renderer dirty when they change a value. Mesh rebuilds
// the mesh on the next call after any change and returns the cached mesh
// otherwise. A Renderer is not safe for concurrent use.
type Renderer struct {
	store store.Store

	sprite      *sprite.Sprite
	size        twentyfive.Vec2
	opts        twentyfive.Options
	debug       bool
	ppu         float32
	pivot       twentyfive.Vec2
	spritePivot bool
	tint        color.NRGBA

	dirty  bool
	sliced bool
	grid   twentyfive.Grid
	mesh   mesh.Mesh
	builds int
}

// NewRenderer allocates a renderer reading border data from s.
func NewRenderer(s store.Store) *Renderer {
	return &Renderer{
		store:       s,
		opts:        twentyfive.DefaultOptions(),
		spritePivot: true,
		tint:        White,
		dirty:       true,
	}
}

// SetSprite selects the sprite to render. Nil clears the mesh.
func (r *Renderer) SetSprite(s *sprite.Sprite) {
	if r.sprite == s {
		return
	}
	r.sprite = s
	r.dirty = true
}

// SetSize sets the target size in world units. Unless both components are
// positive, the sprite's natural size divided by its pixels per unit is
// used on both axes.
func (r *Renderer) SetSize(size twentyfive.Vec2) {
	if r.size == size {
		return
	}
	r.size = size
	r.dirty = true
}

// SetFlip mirrors the texture on either axis.
func (r *Renderer) SetFlip(x, y bool) {
	if r.opts.FlipX == x && r.opts.FlipY == y {
		return
	}
	r.opts.FlipX, r.opts.FlipY = x, y
	r.dirty = true
}

// SetOptions replaces the band masks and mirroring in one step.
func (r *Renderer) SetOptions(opts twentyfive.Options) {
	if r.opts == opts {
		return
	}
	r.opts = opts
	r.dirty = true
}

// SetDebug toggles the per-region debug colours.
func (r *Renderer) SetDebug(debug bool) {
	if r.debug == debug {
		return
	}
	r.debug = debug
	r.dirty = true
}

// SetPixelsPerUnit overrides the sprite's pixels per unit. Zero or less
// defers to the sprite.
func (r *Renderer) SetPixelsPerUnit(ppu float32) {
	if r.ppu == ppu {
		return
	}
	r.ppu = ppu
	r.dirty = true
}

// SetPivot selects a custom pivot in world units and stops using the
// sprite's pivot.
func (r *Renderer) SetPivot(p twentyfive.Vec2) {
	if !r.spritePivot && r.pivot == p {
		return
	}
	r.pivot = p
	r.spritePivot = false
	r.dirty = true
}

// UseSpritePivot switches between the sprite's pivot and the custom one.
func (r *Renderer) UseSpritePivot(use bool) {
	if r.spritePivot == use {
		return
	}
	r.spritePivot = use
	r.dirty = true
}

// SetColor sets the tint applied to every vertex when not debugging.
func (r *Renderer) SetColor(c color.NRGBA) {
	if r.tint == c {
		return
	}
	r.tint = c
	r.dirty = true
}

// Invalidate forces a rebuild, for example after the border data of the
// current sprite was saved.
func (r *Renderer) Invalidate() {
	r.dirty = true
}

// Dirty reports whether the next call to Mesh will rebuild.
func (r *Renderer) Dirty() bool {
	return r.dirty
}

// Sliced reports whether the last build found slice data. A sprite without
// data renders as a single quad.
func (r *Renderer) Sliced() bool {
	return r.sliced
}

// Grid returns the grid of the last sliced build.
func (r *Renderer) Grid() twentyfive.Grid {
	return r.grid
}

// Builds returns how many times the mesh has been rebuilt.
func (r *Renderer) Builds() int {
	return r.builds
}

// Mesh returns the current mesh, rebuilding it first if any input changed.
// On error the renderer stays dirty so that the next call retries.
func (r *Renderer) Mesh(ctx context.Context) (mesh.Mesh, error) {
	if !r.dirty {
		return r.mesh, nil
	}
	m, err := r.build(ctx)
	if err != nil {
		return mesh.Mesh{}, err
	}
	r.mesh = m
	r.dirty = false
	r.builds++
	return r.mesh, nil
}

func (r *Renderer) build(ctx context.Context) (mesh.Mesh, error) {
	r.sliced = false
	r.grid = twentyfive.Grid{}
	if r.sprite == nil {
		return mesh.Mesh{}, nil
	}
	var (
		ppu    = r.pixelsPerUnit()
		src    = r.sprite.Source()
		size   = r.finalSize(src, ppu)
		pivot  = r.pivotOffset(ppu)
		origin = twentyfive.Vec2{X: -pivot.X, Y: -pivot.Y}
	)
	rec, err := r.store.Lookup(ctx, r.sprite.Key())
	if errors.Is(err, store.ErrNotFound) {
		return mesh.Quad(origin, size, src.UV, r.opts.FlipX, r.opts.FlipY, r.tint), nil
	}
	if err != nil {
		return mesh.Mesh{}, fmt.Errorf("looking up slice data for %s: %w", r.sprite.Name, err)
	}
	// Natural band sizes are measured in world units.
	src.Width /= ppu
	src.Height /= ppu
	g, err := twentyfive.ComputeGrid(rec.Borders(), src, twentyfive.Target{
		X:      origin.X,
		Y:      origin.Y,
		Width:  size.X,
		Height: size.Y,
	}, r.opts)
	if err != nil {
		return mesh.Mesh{}, fmt.Errorf("slicing %s: %w", r.sprite.Name, err)
	}
	r.sliced = true
	r.grid = g
	return mesh.FromGrid(g, g.Colors(r.tint, r.debug)), nil
}

func (r *Renderer) pixelsPerUnit() float32 {
	if r.ppu > 0 {
		return r.ppu
	}
	return r.sprite.PPU()
}

func (r *Renderer) finalSize(src twentyfive.Source, ppu float32) twentyfive.Vec2 {
	if r.size.X > twentyfive.Epsilon && r.size.Y > twentyfive.Epsilon {
		return r.size
	}
	return twentyfive.Vec2{X: src.Width / ppu, Y: src.Height / ppu}
}

func (r *Renderer) pivotOffset(ppu float32) twentyfive.Vec2 {
	if !r.spritePivot {
		return r.pivot
	}
	return twentyfive.Vec2{X: r.sprite.Pivot.X / ppu, Y: r.sprite.Pivot.Y / ppu}
}
