// Package geometry implements fixed-capacity convex polygons in screen space
// and the convex-convex clipper used to narrow portal apertures.
package geometry

import "github.com/chewxy/math32"

// MaxVertices is the capacity of a ConvexPolygon.
const MaxVertices = 16

// Point2 is a point in pixel space. The origin is the top-left corner.
type Point2 struct {
	X, Y float32
}

// Sub returns p - other.
func (p Point2) Sub(other Point2) Point2 {
	return Point2{p.X - other.X, p.Y - other.Y}
}

// Cross returns the 2D cross product p x other.
func (p Point2) Cross(other Point2) float32 {
	return p.X*other.Y - p.Y*other.X
}

// ConvexPolygon is a convex polygon stored inline, so values can live on
// the stack and be copied without touching the heap. Vertices are kept in
// one consistent winding; clipping expects positive SignedArea.
type ConvexPolygon struct {
	pts [MaxVertices]Point2
	n   int
}

// NewConvexPolygon returns a polygon from pts. Points beyond MaxVertices
// are dropped.
func NewConvexPolygon(pts ...Point2) ConvexPolygon {
	var p ConvexPolygon
	for _, pt := range pts {
		if !p.Push(pt) {
			break
		}
	}
	return p
}

// Viewport returns the full screen rectangle (0,0)-(w,h).
func Viewport(w, h float32) ConvexPolygon {
	return NewConvexPolygon(
		Point2{0, 0},
		Point2{w, 0},
		Point2{w, h},
		Point2{0, h},
	)
}

// Len returns the vertex count.
func (p *ConvexPolygon) Len() int { return p.n }

// At returns vertex i.
func (p *ConvexPolygon) At(i int) Point2 { return p.pts[i] }

// Points returns the vertices as a slice backed by the polygon itself.
func (p *ConvexPolygon) Points() []Point2 { return p.pts[:p.n] }

// Clear removes all vertices.
func (p *ConvexPolygon) Clear() { p.n = 0 }

// Push appends a vertex. It reports false when the polygon is full.
func (p *ConvexPolygon) Push(pt Point2) bool {
	if p.n >= MaxVertices {
		return false
	}
	p.pts[p.n] = pt
	p.n++
	return true
}

// Degenerate reports whether the polygon has fewer than three vertices.
func (p *ConvexPolygon) Degenerate() bool { return p.n < 3 }

// SignedArea returns the shoelace area. It is positive when every interior
// point lies to the left of each edge (cross >= 0).
func (p *ConvexPolygon) SignedArea() float32 {
	if p.n < 3 {
		return 0
	}
	var sum float32
	prev := p.pts[p.n-1]
	for i := 0; i < p.n; i++ {
		cur := p.pts[i]
		sum += prev.Cross(cur)
		prev = cur
	}
	return sum / 2
}

// Area returns the absolute area.
func (p *ConvexPolygon) Area() float32 {
	return math32.Abs(p.SignedArea())
}

// Reverse flips the winding in place.
func (p *ConvexPolygon) Reverse() {
	for i, j := 0, p.n-1; i < j; i, j = i+1, j-1 {
		p.pts[i], p.pts[j] = p.pts[j], p.pts[i]
	}
}

// EnsureCCW reverses the polygon if its signed area is negative.
func (p *ConvexPolygon) EnsureCCW() {
	if p.SignedArea() < 0 {
		p.Reverse()
	}
}

// Centroid returns the vertex average.
func (p *ConvexPolygon) Centroid() Point2 {
	if p.n == 0 {
		return Point2{}
	}
	var c Point2
	for i := 0; i < p.n; i++ {
		c.X += p.pts[i].X
		c.Y += p.pts[i].Y
	}
	inv := 1 / float32(p.n)
	return Point2{c.X * inv, c.Y * inv}
}

// Contains reports whether pt lies inside or on the boundary of a
// positively wound polygon.
func (p *ConvexPolygon) Contains(pt Point2) bool {
	if p.n < 3 {
		return false
	}
	for i := 0; i < p.n; i++ {
		if !inside(pt, p.pts[i], p.pts[(i+1)%p.n]) {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box.
func (p *ConvexPolygon) Bounds() (minPt, maxPt Point2) {
	if p.n == 0 {
		return
	}
	minPt, maxPt = p.pts[0], p.pts[0]
	for i := 1; i < p.n; i++ {
		q := p.pts[i]
		minPt.X = math32.Min(minPt.X, q.X)
		minPt.Y = math32.Min(minPt.Y, q.Y)
		maxPt.X = math32.Max(maxPt.X, q.X)
		maxPt.Y = math32.Max(maxPt.Y, q.Y)
	}
	return
}
