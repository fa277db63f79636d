package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConvexPolygonTruncates(t *testing.T) {
	pts := make([]Point2, MaxVertices+4)
	p := NewConvexPolygon(pts...)
	assert.Equal(t, MaxVertices, p.Len())
	assert.False(t, p.Push(Point2{}))
}

func TestViewportWinding(t *testing.T) {
	v := Viewport(800, 600)
	assert.Equal(t, float32(480000), v.SignedArea())
	assert.True(t, v.Contains(Point2{400, 300}))
	assert.True(t, v.Contains(Point2{0, 0}))
	assert.False(t, v.Contains(Point2{801, 300}))
}

func TestReverseAndEnsureCCW(t *testing.T) {
	p := square(0, 0, 2, 2)
	p.Reverse()
	assert.Less(t, p.SignedArea(), float32(0))

	p.EnsureCCW()
	assert.Equal(t, float32(4), p.SignedArea())
	assert.Equal(t, float32(4), p.Area())
}

func TestCentroidAndBounds(t *testing.T) {
	p := square(1, 2, 3, 6)
	assert.Equal(t, Point2{2, 4}, p.Centroid())

	lo, hi := p.Bounds()
	assert.Equal(t, Point2{1, 2}, lo)
	assert.Equal(t, Point2{3, 6}, hi)
}

func TestDegenerate(t *testing.T) {
	var p ConvexPolygon
	assert.True(t, p.Degenerate())
	assert.Zero(t, p.SignedArea())
	p.Push(Point2{0, 0})
	p.Push(Point2{1, 0})
	assert.True(t, p.Degenerate())
	p.Push(Point2{1, 1})
	assert.False(t, p.Degenerate())
}

func TestGenerateConvex(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for n := 0; n <= MaxVertices+2; n++ {
		p := GenerateConvex(rng, Point2{10, -4}, 2, n)

		want := max(3, min(n, MaxVertices))
		assert.Equal(t, want, p.Len())
		assert.Greater(t, p.SignedArea(), float32(0))

		// Every vertex is left of every edge it is not on.
		pts := p.Points()
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			for _, q := range pts {
				assert.True(t, inside(q, a, b), "n=%d vertex %v outside edge %d", n, q, i)
			}
		}
	}
}
