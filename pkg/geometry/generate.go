package geometry

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// GenerateConvex returns a random convex polygon with n vertices around
// center. Vertices sit on an ellipse whose semi-axes are drawn from
// [0.8, 1.2] * radius, at angles jittered around even spacing, which keeps
// the result strictly convex and positively wound. n is clamped to
// [3, MaxVertices].
func GenerateConvex(rng *rand.Rand, center Point2, radius float32, n int) ConvexPolygon {
	n = max(3, min(n, MaxVertices))

	rx := radius * (0.8 + 0.4*rng.Float32())
	ry := radius * (0.8 + 0.4*rng.Float32())
	sinR, cosR := math32.Sincos(rng.Float32() * 2 * math32.Pi)

	step := 2 * math32.Pi / float32(n)
	var p ConvexPolygon
	for i := 0; i < n; i++ {
		jitter := (rng.Float32()*2 - 1) * 0.3 * step
		s, c := math32.Sincos(float32(i)*step + jitter)
		x, y := c*rx, s*ry
		p.Push(Point2{
			X: center.X + x*cosR - y*sinR,
			Y: center.Y + x*sinR + y*cosR,
		})
	}
	return p
}
