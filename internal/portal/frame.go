package portal

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/pkg/geometry"
)

// ErrFrameOverflow is returned when a frame cannot hold more geometry.
var ErrFrameOverflow = errors.New("frame vertex capacity exceeded")

// DefaultFrameCapacity is the default vertex capacity: MaxVertices vertices
// per side, six sides per hull, ten hulls.
const DefaultFrameCapacity = geometry.MaxVertices * 6 * 10

// MaxFrameCapacity is the largest capacity addressable by 16-bit indices.
const MaxFrameCapacity = stdmath.MaxUint16 + 1

// Vertex is one output vertex in pixel space.
type Vertex struct {
	Pos   [2]float32
	Color [4]float32
}

// Draw records which hull side produced a run of indices.
type Draw struct {
	Instance   scene.InstanceID
	Side       int
	Depth      int
	FirstIndex int
	IndexCount int
}

// Frame is the output of one traversal: an indexed triangle list in pixel
// space plus per-side bookkeeping. Buffers are reused across frames.
type Frame struct {
	Vertices []Vertex
	Indices  []uint16
	Draws    []Draw

	capacity int
}

// NewFrame returns a frame holding at most capacity vertices. Capacity is
// clamped to [3, MaxFrameCapacity].
func NewFrame(capacity int) *Frame {
	capacity = max(3, min(capacity, MaxFrameCapacity))
	return &Frame{
		Vertices: make([]Vertex, 0, capacity),
		Indices:  make([]uint16, 0, (capacity-2)*3),
		capacity: capacity,
	}
}

// Capacity returns the vertex capacity.
func (f *Frame) Capacity() int { return f.capacity }

// Reset empties the frame, keeping its buffers.
func (f *Frame) Reset() {
	f.Vertices = f.Vertices[:0]
	f.Indices = f.Indices[:0]
	f.Draws = f.Draws[:0]
}

// TriangleCount returns the number of triangles in the frame.
func (f *Frame) TriangleCount() int { return len(f.Indices) / 3 }

// AddFan appends poly as a triangle fan around its first vertex. Nothing
// is written if the frame lacks room for the whole polygon.
func (f *Frame) AddFan(poly *geometry.ConvexPolygon, color scene.Color, d Draw) error {
	n := poly.Len()
	if n < 3 {
		return nil
	}
	if len(f.Vertices)+n > f.capacity {
		return fmt.Errorf("%w: %d + %d > %d", ErrFrameOverflow, len(f.Vertices), n, f.capacity)
	}

	base := len(f.Vertices)
	for _, p := range poly.Points() {
		f.Vertices = append(f.Vertices, Vertex{Pos: [2]float32{p.X, p.Y}, Color: color})
	}

	d.FirstIndex = len(f.Indices)
	for i := 1; i < n-1; i++ {
		f.Indices = append(f.Indices, uint16(base), uint16(base+i), uint16(base+i+1))
	}
	d.IndexCount = len(f.Indices) - d.FirstIndex
	f.Draws = append(f.Draws, d)
	return nil
}
