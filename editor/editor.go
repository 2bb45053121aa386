// Package editor implements interactive editing of 25-slice borders,
// independent of any particular UI toolkit.
//
// A Session holds the borders of one sprite. Borders are moved either
// directly, like sliders, or by dragging the border lines drawn over a
// preview of the sprite. Edits are kept valid at all times: a border can
// never cross its neighbours.
package editor

import (
	"context"
	"fmt"

	"git.sr.ht/~gioverse/slicer/sprite"
	"git.sr.ht/~gioverse/slicer/store"
	"git.sr.ht/~gioverse/slicer/twentyfive"
	"github.com/chewxy/math32"
)

// DefaultTolerance is the distance in pixels within which a border line
// can be grabbed.
const DefaultTolerance = 6

// DragState is what a drag is currently moving.
type DragState byte

const (
	DragNone DragState = iota
	DragVertical
	DragHorizontal
	DragIntersection
)

func (d DragState) String() string {
	switch d {
	case DragNone:
		return "none"
	case DragVertical:
		return "vertical"
	case DragHorizontal:
		return "horizontal"
	case DragIntersection:
		return "intersection"
	}
	return "unknown"
}

// Drag describes a grabbed border line, or the crossing of two lines.
// Unused indices are -1.
type Drag struct {
	State      DragState
	Vertical   int
	Horizontal int
}

// NoDrag is the idle drag.
var NoDrag = Drag{State: DragNone, Vertical: -1, Horizontal: -1}

// Session edits the borders of one sprite.
type Session struct {
	// Key of the sprite in the store.
	Key string
	// Found reports whether the store held a record when the session was
	// opened or last saved.
	Found bool
	// Tolerance overrides DefaultTolerance when positive.
	Tolerance float32

	store    store.Store
	borders  twentyfive.BorderSet
	modified bool
	drag     Drag
}

// Open a session for sp, loading its borders from s. A sprite without a
// record starts from the default borders.
func Open(ctx context.Context, s store.Store, sp *sprite.Sprite) (*Session, error) {
	return OpenKey(ctx, s, sp.Key())
}

// OpenKey opens a session for a sprite key.
func OpenKey(ctx context.Context, s store.Store, key string) (*Session, error) {
	b, ok, err := store.Resolve(ctx, s, key, twentyfive.DefaultBorders())
	if err != nil {
		return nil, fmt.Errorf("loading borders for %s: %w", key, err)
	}
	return &Session{
		Key:     key,
		Found:   ok,
		store:   s,
		borders: b.Clamp(),
		drag:    NoDrag,
	}, nil
}

// Borders returns the current borders.
func (s *Session) Borders() twentyfive.BorderSet {
	return s.borders
}

// Modified reports whether the borders changed since they were loaded or
// saved.
func (s *Session) Modified() bool {
	return s.modified
}

// SetVertical moves vertical border i, clamped between its neighbours, and
// returns the value applied.
func (s *Session) SetVertical(i int, v float32) float32 {
	old := s.borders
	got := s.borders.SetVertical(i, v)
	s.modified = s.modified || old != s.borders
	return got
}

// SetHorizontal moves horizontal border i, clamped between its neighbours,
// and returns the value applied.
func (s *Session) SetHorizontal(i int, v float32) float32 {
	old := s.borders
	got := s.borders.SetHorizontal(i, v)
	s.modified = s.modified || old != s.borders
	return got
}

// Reset restores the default borders.
func (s *Session) Reset() {
	if s.borders != twentyfive.DefaultBorders() {
		s.borders = twentyfive.DefaultBorders()
		s.modified = true
	}
}

// Save writes the borders to the store.
func (s *Session) Save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.Key, store.FromBorders(s.borders)); err != nil {
		return fmt.Errorf("saving borders for %s: %w", s.Key, err)
	}
	s.modified = false
	s.Found = true
	return nil
}

// Revert discards edits, reloading the borders from the store.
func (s *Session) Revert(ctx context.Context) error {
	b, ok, err := store.Resolve(ctx, s.store, s.Key, twentyfive.DefaultBorders())
	if err != nil {
		return fmt.Errorf("reloading borders for %s: %w", s.Key, err)
	}
	s.borders = b.Clamp()
	s.Found = ok
	s.modified = false
	s.drag = NoDrag
	return nil
}

// Lines returns the positions of the border lines over a preview occupying
// the top-down rectangle r. Horizontal borders are measured from the top.
func (s *Session) Lines(r twentyfive.Span) (xs, ys [4]float32) {
	size := r.Size()
	for ii := range xs {
		xs[ii] = r.Min.X + size.X*s.borders.Vertical[ii]/100
		ys[ii] = r.Min.Y + size.Y*s.borders.Horizontal[ii]/100
	}
	return xs, ys
}

func (s *Session) tolerance() float32 {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return DefaultTolerance
}

// HitTest reports which border lines are under p for a preview occupying r.
// The closest line within tolerance wins on each axis.
func (s *Session) HitTest(r twentyfive.Span, p twentyfive.Vec2) Drag {
	tol := s.tolerance()
	if p.X < r.Min.X-tol || p.X > r.Max.X+tol || p.Y < r.Min.Y-tol || p.Y > r.Max.Y+tol {
		return NoDrag
	}
	xs, ys := s.Lines(r)
	d := NoDrag
	d.Vertical = closest(xs, p.X, tol)
	d.Horizontal = closest(ys, p.Y, tol)
	switch {
	case d.Vertical >= 0 && d.Horizontal >= 0:
		d.State = DragIntersection
	case d.Vertical >= 0:
		d.State = DragVertical
	case d.Horizontal >= 0:
		d.State = DragHorizontal
	}
	return d
}

// closest returns the index of the line nearest to v within tol, or -1.
// Ties go to the later line so that stacked lines can be pulled apart
// towards the far side.
func closest(lines [4]float32, v, tol float32) int {
	best, dist := -1, tol
	for ii, l := range lines {
		if d := math32.Abs(l - v); d <= dist {
			best, dist = ii, d
		}
	}
	return best
}

// Press starts a drag at p, returning what was grabbed.
func (s *Session) Press(r twentyfive.Span, p twentyfive.Vec2) Drag {
	s.drag = s.HitTest(r, p)
	return s.drag
}

// Move drags the grabbed lines to p. It does nothing without a drag.
func (s *Session) Move(r twentyfive.Span, p twentyfive.Vec2) {
	size := r.Size()
	if s.drag.State == DragNone || size.X <= 0 || size.Y <= 0 {
		return
	}
	if s.drag.State == DragVertical || s.drag.State == DragIntersection {
		s.SetVertical(s.drag.Vertical, (p.X-r.Min.X)/size.X*100)
	}
	if s.drag.State == DragHorizontal || s.drag.State == DragIntersection {
		s.SetHorizontal(s.drag.Horizontal, (p.Y-r.Min.Y)/size.Y*100)
	}
}

// Release ends the drag.
func (s *Session) Release() {
	s.drag = NoDrag
}

// Dragging returns the current drag.
func (s *Session) Dragging() Drag {
	return s.drag
}
