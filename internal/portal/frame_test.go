package portal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/pkg/geometry"
)

func TestAddFanTriangulates(t *testing.T) {
	f := NewFrame(DefaultFrameCapacity)
	pentagon := geometry.NewConvexPolygon(
		geometry.Point2{X: 0, Y: 0},
		geometry.Point2{X: 2, Y: 0},
		geometry.Point2{X: 3, Y: 1},
		geometry.Point2{X: 1, Y: 3},
		geometry.Point2{X: -1, Y: 1},
	)

	require.NoError(t, f.AddFan(&pentagon, scene.RGB(1, 0, 0), Draw{Instance: "A", Side: 2}))

	assert.Len(t, f.Vertices, 5)
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3, 0, 3, 4}, f.Indices)
	assert.Equal(t, 3, f.TriangleCount())
	require.Len(t, f.Draws, 1)
	assert.Equal(t, Draw{Instance: "A", Side: 2, FirstIndex: 0, IndexCount: 9}, f.Draws[0])
}

func TestAddFanOffsetsIndices(t *testing.T) {
	f := NewFrame(DefaultFrameCapacity)
	tri := geometry.NewConvexPolygon(geometry.Point2{}, geometry.Point2{X: 1}, geometry.Point2{Y: 1})

	require.NoError(t, f.AddFan(&tri, scene.RGB(1, 1, 1), Draw{}))
	require.NoError(t, f.AddFan(&tri, scene.RGB(1, 1, 1), Draw{}))
	assert.Equal(t, []uint16{0, 1, 2, 3, 4, 5}, f.Indices)
	assert.Equal(t, 3, f.Draws[1].FirstIndex)
}

func TestAddFanSkipsDegenerate(t *testing.T) {
	f := NewFrame(DefaultFrameCapacity)
	seg := geometry.NewConvexPolygon(geometry.Point2{}, geometry.Point2{X: 1})
	require.NoError(t, f.AddFan(&seg, scene.RGB(1, 1, 1), Draw{}))
	assert.Empty(t, f.Vertices)
	assert.Empty(t, f.Draws)
}

func TestAddFanOverflow(t *testing.T) {
	f := NewFrame(4)
	quad := geometry.Viewport(1, 1)
	require.NoError(t, f.AddFan(&quad, scene.RGB(1, 1, 1), Draw{}))

	err := f.AddFan(&quad, scene.RGB(1, 1, 1), Draw{})
	assert.True(t, errors.Is(err, ErrFrameOverflow))
	assert.Len(t, f.Vertices, 4, "a refused polygon writes nothing")
	assert.Len(t, f.Indices, 6)
}

func TestNewFrameClampsCapacity(t *testing.T) {
	assert.Equal(t, MaxFrameCapacity, NewFrame(1<<20).Capacity())
	assert.Equal(t, 3, NewFrame(0).Capacity())
}

func TestFrameReset(t *testing.T) {
	f := NewFrame(DefaultFrameCapacity)
	quad := geometry.Viewport(1, 1)
	require.NoError(t, f.AddFan(&quad, scene.RGB(1, 1, 1), Draw{}))

	f.Reset()
	assert.Empty(t, f.Vertices)
	assert.Empty(t, f.Indices)
	assert.Empty(t, f.Draws)
	assert.Equal(t, DefaultFrameCapacity, cap(f.Vertices))
}
