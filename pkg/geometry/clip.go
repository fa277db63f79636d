package geometry

import "github.com/chewxy/math32"

const (
	// insideEpsilon admits points lying on or marginally outside an edge.
	insideEpsilon = 1e-5
	// parallelEpsilon is the smallest denominator accepted by the
	// segment/line intersection.
	parallelEpsilon = 1e-10
)

// inside reports whether p lies left of (or on) the directed edge a->b.
func inside(p, a, b Point2) bool {
	return b.Sub(a).Cross(p.Sub(a)) >= -insideEpsilon
}

// intersectEdge returns where segment s->e crosses the infinite line a->b.
func intersectEdge(s, e, a, b Point2) (Point2, bool) {
	r := e.Sub(s)
	q := b.Sub(a)
	denom := r.Cross(q)
	if math32.Abs(denom) < parallelEpsilon {
		return Point2{}, false
	}
	t := a.Sub(s).Cross(q) / denom
	return Point2{s.X + r.X*t, s.Y + r.Y*t}, true
}

// Intersect returns subject ∩ clip. Both polygons must be convex and
// positively wound. See IntersectInto.
func Intersect(subject, clip *ConvexPolygon) ConvexPolygon {
	var out ConvexPolygon
	IntersectInto(&out, subject, clip)
	return out
}

// IntersectInto writes subject ∩ clip into dst using Sutherland-Hodgman
// clipping against each edge of clip. dst may alias either input.
//
// A clip polygon with fewer than three vertices leaves the subject
// unchanged. Clip edges that every subject vertex already satisfies are
// skipped, so intersecting a polygon with itself or with a superset returns
// it verbatim. If an intermediate result would exceed MaxVertices the
// excess vertices are dropped and truncated is true.
func IntersectInto(dst, subject, clip *ConvexPolygon) (truncated bool) {
	if clip.n < 3 {
		if dst != subject {
			*dst = *subject
		}
		return false
	}

	var bufA, bufB [MaxVertices]Point2
	cur, next := &bufA, &bufB
	n := copy(cur[:], subject.pts[:subject.n])

	// The clip polygon is copied so dst may alias it.
	c := *clip

	for i := 0; i < c.n && n > 0; i++ {
		a := c.pts[i]
		b := c.pts[(i+1)%c.n]

		if allInside(cur[:n], a, b) {
			continue
		}

		m := 0
		prev := cur[n-1]
		prevIn := inside(prev, a, b)
		for j := 0; j < n; j++ {
			p := cur[j]
			pIn := inside(p, a, b)
			switch {
			case prevIn && pIn:
				m = emit(next, m, p, &truncated)
			case prevIn && !pIn:
				if x, ok := intersectEdge(prev, p, a, b); ok {
					m = emit(next, m, x, &truncated)
				}
			case !prevIn && pIn:
				if x, ok := intersectEdge(prev, p, a, b); ok {
					m = emit(next, m, x, &truncated)
				}
				m = emit(next, m, p, &truncated)
			}
			prev, prevIn = p, pIn
		}

		cur, next = next, cur
		n = m
	}

	dst.pts = *cur
	dst.n = n
	return truncated
}

func allInside(pts []Point2, a, b Point2) bool {
	for _, p := range pts {
		if !inside(p, a, b) {
			return false
		}
	}
	return true
}

// emit appends p to buf at index m, dropping it when buf is full.
func emit(buf *[MaxVertices]Point2, m int, p Point2, truncated *bool) int {
	if m >= MaxVertices {
		*truncated = true
		return m
	}
	buf[m] = p
	return m + 1
}
