// Package picking maps screen positions back to the hull sides that
// produced them.
package picking

import (
	"github.com/Faultbox/hullgate/internal/portal"
)

// Hit is the wall found under a screen position.
type Hit struct {
	portal.Draw
	// Triangle is the index of the hit triangle within the draw.
	Triangle int
}

// Pick returns the draw covering pixel position (x, y) of f. Portal
// apertures never overlap, so at most one wall covers a point; if edges
// touch, the last draw recorded wins.
func Pick(f *portal.Frame, x, y float32) (Hit, bool) {
	for d := len(f.Draws) - 1; d >= 0; d-- {
		draw := f.Draws[d]
		end := draw.FirstIndex + draw.IndexCount
		for i := draw.FirstIndex; i+2 < end; i += 3 {
			a := f.Vertices[f.Indices[i]].Pos
			b := f.Vertices[f.Indices[i+1]].Pos
			c := f.Vertices[f.Indices[i+2]].Pos
			if inTriangle(x, y, a, b, c) {
				return Hit{Draw: draw, Triangle: (i - draw.FirstIndex) / 3}, true
			}
		}
	}
	return Hit{}, false
}

// inTriangle accepts either winding and includes the edges.
func inTriangle(x, y float32, a, b, c [2]float32) bool {
	d1 := edge(x, y, a, b)
	d2 := edge(x, y, b, c)
	d3 := edge(x, y, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edge(x, y float32, a, b [2]float32) float32 {
	return (x-b[0])*(a[1]-b[1]) - (a[0]-b[0])*(y-b[1])
}
