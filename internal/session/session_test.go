package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/hullgate/internal/boundary"
	"github.com/Faultbox/hullgate/internal/camera"
	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/pkg/math"
)

func newDemo(t *testing.T) *Session {
	t.Helper()
	s, err := New(scene.DemoScene(), DefaultOptions())
	require.NoError(t, err)
	return s
}

func TestWalkThroughPortal(t *testing.T) {
	s := newDemo(t)
	fwd := camera.Input{Forward: true}

	res, err := s.Step(fwd, 0.5)
	require.NoError(t, err)
	assert.Equal(t, boundary.Inside, res.Kind)
	assert.InDelta(t, 1.5, s.Scene.Camera.Position().Z, 1e-4)

	res, err = s.Step(fwd, 0.5)
	require.NoError(t, err)
	assert.Equal(t, boundary.Traverse, res.Kind)
	assert.Equal(t, scene.InstanceID("B"), s.Scene.Camera.Instance)
	assert.True(t, s.Scene.Camera.Position().ApproxEqual(math.Vec3{}, 1e-4), "landed at %v", s.Scene.Camera.Position())
	assert.Equal(t, res, s.Last())
	assert.EqualValues(t, 2, s.Ticks())

	// Steering carries over: the controller still faces +Z.
	assert.True(t, s.Controller.Forward().ApproxEqual(math.Vec3{Z: 1}, 1e-4))
}

func TestStrafeIntoWall(t *testing.T) {
	s := newDemo(t)

	res, err := s.Step(camera.Input{Left: true}, 1)
	require.NoError(t, err)
	assert.Equal(t, boundary.Collision, res.Kind)
	assert.Equal(t, scene.SideRight, res.Side)
	assert.Equal(t, scene.InstanceID("A"), s.Scene.Camera.Instance)
	assert.InDelta(t, 1.5-boundary.PushbackEpsilon, s.Scene.Camera.Position().X, 1e-4)
}

func TestRenderAndDepth(t *testing.T) {
	s := newDemo(t)

	stats, err := s.Render(640, 480)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PortalsFollowed)
	assert.NotEmpty(t, s.Frame.Draws)
	assert.Equal(t, stats, s.Stats())

	s.SetMaxDepth(0)
	assert.Equal(t, 0, s.MaxDepth())
	stats, err = s.Render(640, 480)
	require.NoError(t, err)
	assert.Zero(t, stats.PortalsFollowed)
	assert.Equal(t, 1, stats.DepthLimited)

	s.SetMaxDepth(-3)
	assert.Equal(t, 0, s.MaxDepth())
}

func TestReset(t *testing.T) {
	s := newDemo(t)
	start := s.Scene.Camera

	for range 3 {
		_, err := s.Step(camera.Input{Forward: true, TurnLeft: true}, 0.4)
		require.NoError(t, err)
	}
	s.Reset()

	assert.Equal(t, start, s.Scene.Camera)
	assert.Equal(t, boundary.Inside, s.Last().Kind)
	assert.True(t, s.Controller.Forward().ApproxEqual(math.Vec3{Z: 1}, 1e-4))
}

func TestNewRejectsMissingHost(t *testing.T) {
	sc := scene.DemoScene()
	sc.Camera.Instance = "nowhere"
	_, err := New(sc, DefaultOptions())
	assert.ErrorIs(t, err, scene.ErrUnknownInstance)
}

func TestOptionsFromConfigSpeeds(t *testing.T) {
	opts := DefaultOptions()
	opts.MoveSpeed = 6
	s, err := New(scene.DemoScene(), opts)
	require.NoError(t, err)
	assert.Equal(t, float32(6), s.Controller.MoveSpeed)
	assert.Equal(t, float32(1.5), s.Controller.TurnSpeed)
}

func TestExportWritesSnapshot(t *testing.T) {
	s := newDemo(t)
	_, err := s.Step(camera.Input{Forward: true}, 0.5)
	require.NoError(t, err)
	want := s.Scene.Camera.Position()

	path := filepath.Join(t.TempDir(), "out", "walk.yaml")
	done := s.Export(path)
	// Keep walking while the file is written; the export must not see it.
	_, err = s.Step(camera.Input{Forward: true}, 0.5)
	require.NoError(t, err)
	require.Equal(t, scene.InstanceID("B"), s.Scene.Camera.Instance)

	require.NoError(t, <-done)
	loaded, err := scene.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, scene.InstanceID("A"), loaded.Camera.Instance)
	assert.True(t, loaded.Camera.Position().ApproxEqual(want, 1e-4), "exported %v, want %v", loaded.Camera.Position(), want)
}

func TestExportUnsupportedFormat(t *testing.T) {
	s := newDemo(t)
	err := <-s.Export(filepath.Join(t.TempDir(), "scene.json"))
	assert.True(t, errors.Is(err, scene.ErrUnsupportedFile))
}

func TestLoadScene(t *testing.T) {
	sc, err := LoadScene("")
	require.NoError(t, err)
	assert.Len(t, sc.Instances, 2)

	sc, err = LoadScene("corridor")
	require.NoError(t, err)
	assert.Len(t, sc.Instances["B"].Connections, 2)

	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, scene.SaveFile(scene.CorridorScene(), path))
	sc, err = LoadScene(path)
	require.NoError(t, err)
	assert.NoError(t, sc.Validate())

	_, err = LoadScene(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
