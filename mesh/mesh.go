// Package mesh turns 25-slice grids into indexed quad meshes that any
// triangle rasterizer can consume.
package mesh

import (
	"image/color"

	"git.sr.ht/~gioverse/slicer/twentyfive"
	"github.com/chewxy/math32"
)

// Vertex of a mesh.
type Vertex struct {
	Pos   twentyfive.Vec2
	UV    twentyfive.Vec2
	Color color.NRGBA
}

// Mesh is an indexed triangle list. Every quad contributes four vertices
// (bottom-left, top-left, top-right, bottom-right) and two triangles.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// Box is an axis aligned bounding box.
type Box struct {
	Min, Max twentyfive.Vec2
}

// Quads returns the number of quads in the mesh.
func (m Mesh) Quads() int {
	return len(m.Vertices) / 4
}

// Empty reports whether the mesh has no triangles.
func (m Mesh) Empty() bool {
	return len(m.Indices) == 0
}

// Bounds of all vertices. An empty mesh has zero bounds.
func (m Mesh) Bounds() Box {
	if len(m.Vertices) == 0 {
		return Box{}
	}
	b := Box{Min: m.Vertices[0].Pos, Max: m.Vertices[0].Pos}
	for _, v := range m.Vertices[1:] {
		b.Min.X = math32.Min(b.Min.X, v.Pos.X)
		b.Min.Y = math32.Min(b.Min.Y, v.Pos.Y)
		b.Max.X = math32.Max(b.Max.X, v.Pos.X)
		b.Max.Y = math32.Max(b.Max.Y, v.Pos.Y)
	}
	return b
}

// Translate moves every vertex by offset, in place.
func (m Mesh) Translate(offset twentyfive.Vec2) {
	for ii := range m.Vertices {
		m.Vertices[ii].Pos = m.Vertices[ii].Pos.Add(offset)
	}
}

// addQuad appends a quad spanning min to max with the given texture
// coordinates at those corners.
func (m *Mesh) addQuad(min, max, uvMin, uvMax twentyfive.Vec2, c color.NRGBA) {
	base := uint16(len(m.Vertices))
	m.Vertices = append(m.Vertices,
		Vertex{Pos: min, UV: uvMin, Color: c},
		Vertex{Pos: twentyfive.Vec2{X: min.X, Y: max.Y}, UV: twentyfive.Vec2{X: uvMin.X, Y: uvMax.Y}, Color: c},
		Vertex{Pos: max, UV: uvMax, Color: c},
		Vertex{Pos: twentyfive.Vec2{X: max.X, Y: min.Y}, UV: twentyfive.Vec2{X: uvMax.X, Y: uvMin.Y}, Color: c},
	)
	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}

// FromGrid builds one quad per drawable region of g, coloured according to
// colors (indexed [row][col]). Regions without area are skipped.
func FromGrid(g twentyfive.Grid, colors [twentyfive.BandCount][twentyfive.BandCount]color.NRGBA) Mesh {
	regions := g.Drawable()
	m := Mesh{
		Vertices: make([]Vertex, 0, len(regions)*4),
		Indices:  make([]uint16, 0, len(regions)*6),
	}
	for _, r := range regions {
		m.addQuad(r.Pos, r.Max(), r.UVMin, r.UVMax, colors[r.Row][r.Col])
	}
	return m
}

// Quad builds a single unsliced quad. It is the fallback for sprites that
// have no slice data.
func Quad(min, size twentyfive.Vec2, uv twentyfive.UVRect, flipX, flipY bool, c color.NRGBA) Mesh {
	var (
		uvMin = twentyfive.Vec2{X: uv.UMin, Y: uv.VMin}
		uvMax = twentyfive.Vec2{X: uv.UMax, Y: uv.VMax}
	)
	if flipX {
		uvMin.X, uvMax.X = uvMax.X, uvMin.X
	}
	if flipY {
		uvMin.Y, uvMax.Y = uvMax.Y, uvMin.Y
	}
	var m Mesh
	if size.X <= twentyfive.Epsilon || size.Y <= twentyfive.Epsilon {
		return m
	}
	m.addQuad(min, min.Add(size), uvMin, uvMax, c)
	return m
}
