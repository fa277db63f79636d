package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/hullgate/pkg/math"
)

func TestProjectCentre(t *testing.T) {
	c := Default()
	p, ok := c.Project(math.Vec3{Z: -5}, 800, 600)
	require.True(t, ok)
	assert.InDelta(t, 400, p.X, 1e-3)
	assert.InDelta(t, 300, p.Y, 1e-3)
}

func TestProjectAxes(t *testing.T) {
	c := Default()

	right, ok := c.Project(math.Vec3{X: 1, Z: -5}, 800, 600)
	require.True(t, ok)
	assert.Greater(t, right.X, float32(400))

	up, ok := c.Project(math.Vec3{Y: 1, Z: -5}, 800, 600)
	require.True(t, ok)
	assert.Less(t, up.Y, float32(300), "+Y should move up the screen")

	// A point on the top edge of the frustum lands on row 0.
	edge := math32.Tan(c.FovY / 2)
	top, ok := c.Project(math.Vec3{Y: edge * 5, Z: -5}, 800, 600)
	require.True(t, ok)
	assert.InDelta(t, 0, top.Y, 1e-2)
}

func TestProjectRejectsOutOfRange(t *testing.T) {
	c := Default()
	for _, p := range []math.Vec3{
		{Z: 1},
		{Z: 0},
		{Z: -0.01},
	} {
		_, ok := c.Project(p, 800, 600)
		assert.False(t, ok, "point %v", p)
	}

	_, ok := c.Project(math.Vec3{Z: -c.ZNear}, 800, 600)
	assert.True(t, ok, "points on the near plane project")

	far, ok := c.Project(math.Vec3{X: 10, Z: -200}, 800, 600)
	assert.True(t, ok, "points past the far plane are left to ClipFar")
	assert.Greater(t, far.X, float32(400))
}

func TestProjectEmptyScreen(t *testing.T) {
	c := Default()
	for _, size := range [][2]float32{{0, 600}, {800, 0}, {0, 0}, {-1, 600}} {
		_, ok := c.Project(math.Vec3{Z: -5}, size[0], size[1])
		assert.False(t, ok, "size %v", size)
	}
}

func TestClipNear(t *testing.T) {
	c := Default()
	buf := make([]math.Vec3, 0, 8)

	t.Run("fully in front", func(t *testing.T) {
		quad := []math.Vec3{{X: -1, Y: -1, Z: -2}, {X: 1, Y: -1, Z: -2}, {X: 1, Y: 1, Z: -2}, {X: -1, Y: 1, Z: -2}}
		got := c.ClipNear(buf, quad)
		assert.Equal(t, quad, got)
	})

	t.Run("fully behind", func(t *testing.T) {
		quad := []math.Vec3{{X: -1, Y: -1, Z: 2}, {X: 1, Y: -1, Z: 2}, {X: 1, Y: 1, Z: 2}, {X: -1, Y: 1, Z: 2}}
		assert.Empty(t, c.ClipNear(buf, quad))
	})

	t.Run("straddling", func(t *testing.T) {
		// A floor quad running from behind the camera to in front of it.
		quad := []math.Vec3{{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: -3}, {X: -1, Y: -1, Z: -3}}
		got := c.ClipNear(buf, quad)
		require.Len(t, got, 4)
		for _, p := range got {
			assert.LessOrEqual(t, p.Z, -c.ZNear)
			_, ok := c.Project(p, 800, 600)
			assert.True(t, ok, "clipped vertex %v should project", p)
		}
	})

	t.Run("corner in front", func(t *testing.T) {
		tri := []math.Vec3{{X: 0, Y: 0, Z: -1}, {X: 1, Y: 0, Z: 1}, {X: -1, Y: 0, Z: 1}}
		got := c.ClipNear(buf, tri)
		assert.Len(t, got, 3)
	})
}

func TestClipFar(t *testing.T) {
	c := Default()
	buf := make([]math.Vec3, 0, 8)

	t.Run("fully inside", func(t *testing.T) {
		quad := []math.Vec3{{X: -1, Y: -1, Z: -2}, {X: 1, Y: -1, Z: -2}, {X: 1, Y: 1, Z: -2}, {X: -1, Y: 1, Z: -2}}
		assert.Equal(t, quad, c.ClipFar(buf, quad))
	})

	t.Run("fully beyond", func(t *testing.T) {
		quad := []math.Vec3{{X: -1, Y: -1, Z: -150}, {X: 1, Y: -1, Z: -150}, {X: 1, Y: 1, Z: -150}, {X: -1, Y: 1, Z: -150}}
		assert.Empty(t, c.ClipFar(buf, quad))
	})

	t.Run("long floor", func(t *testing.T) {
		// A floor running from just ahead of the camera to well past the far plane.
		quad := []math.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -400}, {X: -1, Y: -1, Z: -400}}
		got := c.ClipFar(buf, quad)
		require.Len(t, got, 4)
		for _, p := range got {
			assert.GreaterOrEqual(t, p.Z, -c.ZFar)
		}
		assert.Contains(t, got, math.Vec3{X: 1, Y: -1, Z: -c.ZFar})
		assert.Contains(t, got, math.Vec3{X: -1, Y: -1, Z: -c.ZFar})
	})

	t.Run("near then far", func(t *testing.T) {
		quad := []math.Vec3{{X: -1, Y: -1, Z: 5}, {X: 1, Y: -1, Z: 5}, {X: 1, Y: -1, Z: -400}, {X: -1, Y: -1, Z: -400}}
		near := c.ClipNear(make([]math.Vec3, 0, 8), quad)
		got := c.ClipFar(buf, near)
		require.Len(t, got, 4)
		for _, p := range got {
			assert.LessOrEqual(t, p.Z, -c.ZNear)
			assert.GreaterOrEqual(t, p.Z, -c.ZFar)
		}
	})
}

func TestViewMatrixInvertsPose(t *testing.T) {
	pose := math.Translate(1, 2, 3).Mul(math.RotateY(0.5))
	view := ViewMatrix(pose)
	got := view.TransformPoint(pose.TransformPoint(math.Vec3{X: 0.3, Y: -0.2, Z: -4}))
	assert.True(t, got.ApproxEqual(math.Vec3{X: 0.3, Y: -0.2, Z: -4}, 1e-5))
}
