package boundary

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/pkg/math"
)

const eps = 1e-4

func demoAt(t *testing.T, pos math.Vec3) *scene.Scene {
	t.Helper()
	sc := scene.DemoScene()
	require.NoError(t, sc.SetCamera("A", scene.YawPitchPose(pos, math32.Pi, 0)))
	return sc
}

func assertVec(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.Truef(t, want.ApproxEqual(got, eps), "want %v, got %v", want, got)
}

func TestInside(t *testing.T) {
	sc := demoAt(t, math.Vec3{})
	orient := sc.Camera.Pose
	proposed := math.Vec3{X: 0.5, Y: -0.2, Z: 1.0}

	res, err := NewResolver().Resolve(sc, proposed, orient)
	require.NoError(t, err)

	assert.Equal(t, Inside, res.Kind)
	assert.Equal(t, -1, res.Side)
	assert.Equal(t, scene.InstanceID("A"), sc.Camera.Instance)
	assertVec(t, proposed, sc.Camera.Position())
}

func TestCollisionWithSolidWall(t *testing.T) {
	sc := demoAt(t, math.Vec3{})
	orient := sc.Camera.Pose

	res, err := NewResolver().Resolve(sc, math.Vec3{X: -1.6}, orient)
	require.NoError(t, err)

	assert.Equal(t, Collision, res.Kind)
	assert.Equal(t, scene.SideLeft, res.Side)
	assert.InDelta(t, -0.1, res.Distance, eps)
	assert.Equal(t, scene.InstanceID("A"), sc.Camera.Instance)

	_, bp, err := sc.Lookup("A")
	require.NoError(t, err)
	d := bp.SignedDistance(scene.SideLeft, sc.Camera.Position())
	assert.Greater(t, d, float32(0))
	assert.LessOrEqual(t, d, float32(1e-2))
	assert.InDelta(t, PushbackEpsilon, d, 1e-5)

	// Only the offending axis moves and the orientation is kept.
	assert.InDelta(t, 0, res.Point.Y, eps)
	assert.InDelta(t, 0, res.Point.Z, eps)
	assert.True(t, sc.Camera.Pose.Rotation().ApproxEqual(orient.Rotation(), 1e-6))
}

func TestCollisionWithinTolerance(t *testing.T) {
	sc := demoAt(t, math.Vec3{})
	// Slightly behind the floor plane but inside the tolerance band.
	proposed := math.Vec3{Y: -1.5 - ViolationTolerance/2}

	res, err := NewResolver().Check(sc, proposed, sc.Camera.Pose)
	require.NoError(t, err)
	assert.Equal(t, Inside, res.Kind)
}

func TestFirstViolatedSideWins(t *testing.T) {
	sc := demoAt(t, math.Vec3{})
	// Out through the ceiling and the left wall at once; the ceiling comes
	// first in side order.
	res, err := NewResolver().Check(sc, math.Vec3{X: -1.7, Y: 1.7}, sc.Camera.Pose)
	require.NoError(t, err)

	assert.Equal(t, Collision, res.Kind)
	assert.Equal(t, scene.SideCeiling, res.Side)
	assert.InDelta(t, -1.7, res.Point.X, eps)
}

func TestTraverseThroughPortal(t *testing.T) {
	sc := demoAt(t, math.Vec3{Z: 1.4})
	orient := sc.Camera.Pose
	proposed := math.Vec3{Z: 1.6}

	align, err := sc.PortalAlignment("A", "a_front", "B", "b_back")
	require.NoError(t, err)
	toB, ok := align.Inverse()
	require.True(t, ok)

	res, err := NewResolver().Resolve(sc, proposed, orient)
	require.NoError(t, err)

	assert.Equal(t, Traverse, res.Kind)
	assert.Equal(t, scene.SideFront, res.Side)
	assert.Equal(t, scene.InstanceID("B"), res.TargetInstance)
	assert.Equal(t, scene.PortalID("b_back"), res.TargetPortal)
	assert.Equal(t, scene.InstanceID("B"), sc.Camera.Instance)

	assertVec(t, math.Vec3{Z: -1.4}, sc.Camera.Position())
	assertVec(t, toB.Translation(), sc.Camera.Position().Sub(proposed))
	assert.True(t, sc.Camera.Pose.Rotation().ApproxEqual(orient.Rotation(), 1e-5))

	_, bp, err := sc.Lookup("B")
	require.NoError(t, err)
	for i := range bp.Sides {
		assert.Greater(t, bp.SignedDistance(i, sc.Camera.Position()), float32(0), "side %d", i)
	}
}

func TestTraverseNudgesOffEntryPlane(t *testing.T) {
	sc := demoAt(t, math.Vec3{Z: 1.4})
	// Just far enough through to trigger, landing within clearance of the
	// entry plane in B.
	proposed := math.Vec3{Z: 1.5005}

	res, err := NewResolver().Resolve(sc, proposed, sc.Camera.Pose)
	require.NoError(t, err)
	require.Equal(t, Traverse, res.Kind)

	_, bp, err := sc.Lookup("B")
	require.NoError(t, err)
	d := bp.SignedDistance(scene.SideBack, sc.Camera.Position())
	assert.InDelta(t, TraverseClearance, d, 1e-5)
}

func TestTraverseRotatesPose(t *testing.T) {
	half := math.Vec3{X: 1.5, Y: 1.5, Z: 1.5}
	a := scene.NewCuboid("a", half)
	a.Sides[scene.SideRight].Handler = scene.ConnectedPortal()
	a.Sides[scene.SideRight].PortalID = "a_right"
	// Start the face so its first edge runs along -Z, mirroring b's back
	// face seen from the other side.
	a.Sides[scene.SideRight].Indices = []int{6, 2, 1, 5}
	b := scene.NewCuboid("b", half)
	b.Sides[scene.SideBack].Handler = scene.ConnectedPortal()
	b.Sides[scene.SideBack].PortalID = "b_back"

	sc := scene.New()
	require.NoError(t, sc.AddBlueprint(a))
	require.NoError(t, sc.AddBlueprint(b))
	require.NoError(t, sc.AddInstance(scene.NewInstance("A", "a")))
	require.NoError(t, sc.AddInstance(scene.NewInstance("B", "b")))
	require.NoError(t, sc.Connect("A", "a_right", "B", "b_back"))

	// Facing +X, towards the right wall.
	pose := scene.YawPitchPose(math.Vec3{X: 1.4}, -math32.Pi/2, 0)
	require.NoError(t, sc.SetCamera("A", pose))
	assertVec(t, math.Vec3{X: 1}, pose.TransformDirection(math.Vec3{Z: -1}))

	res, err := NewResolver().Resolve(sc, math.Vec3{X: 1.6}, pose)
	require.NoError(t, err)
	require.Equal(t, Traverse, res.Kind)
	assert.Equal(t, scene.SideRight, res.Side)

	assertVec(t, math.Vec3{Z: -1.4}, sc.Camera.Position())
	// Still walking into the new room, which is now along +Z.
	assertVec(t, math.Vec3{Z: 1}, sc.Camera.Pose.TransformDirection(math.Vec3{Z: -1}))
	assertVec(t, math.Vec3{Y: 1}, sc.Camera.Pose.TransformDirection(math.UnitY))
}

func TestUnconnectedPortalCollides(t *testing.T) {
	sc := demoAt(t, math.Vec3{Z: 1.4})
	inst, _, err := sc.Lookup("A")
	require.NoError(t, err)
	delete(inst.Connections, "a_front")

	res, err := NewResolver().Resolve(sc, math.Vec3{Z: 1.6}, sc.Camera.Pose)
	require.NoError(t, err)

	assert.Equal(t, Collision, res.Kind)
	assert.Equal(t, scene.SideFront, res.Side)
	assert.Equal(t, scene.InstanceID("A"), sc.Camera.Instance)
	assert.InDelta(t, 1.5-PushbackEpsilon, sc.Camera.Position().Z, eps)
}

func TestMissingTargetCollides(t *testing.T) {
	sc := demoAt(t, math.Vec3{Z: 1.4})
	inst, _, err := sc.Lookup("A")
	require.NoError(t, err)
	inst.Overrides[scene.SideFront] = scene.Portal("nowhere", "b_back")

	res, err := NewResolver().Check(sc, math.Vec3{Z: 1.6}, sc.Camera.Pose)
	require.NoError(t, err)
	assert.Equal(t, Collision, res.Kind)
}

func TestReservedHandlerCollides(t *testing.T) {
	sc := demoAt(t, math.Vec3{})
	inst, _, err := sc.Lookup("A")
	require.NoError(t, err)
	inst.Overrides[scene.SideRight] = scene.HandlerConfig{Kind: scene.HandlerMirror}

	res, err := NewResolver().Check(sc, math.Vec3{X: 1.6}, sc.Camera.Pose)
	require.NoError(t, err)
	assert.Equal(t, Collision, res.Kind)
	assert.Equal(t, scene.SideRight, res.Side)
}

func TestUnknownInstance(t *testing.T) {
	sc := demoAt(t, math.Vec3{})
	sc.Camera.Instance = "ghost"
	before := sc.Camera

	_, err := NewResolver().Resolve(sc, math.Vec3{X: 0.1}, sc.Camera.Pose)
	require.ErrorIs(t, err, scene.ErrUnknownInstance)
	assert.Equal(t, before, sc.Camera)
}

func TestCheckDoesNotMutate(t *testing.T) {
	sc := demoAt(t, math.Vec3{Z: 1.4})
	before := sc.Camera

	res, err := NewResolver().Check(sc, math.Vec3{Z: 1.6}, sc.Camera.Pose)
	require.NoError(t, err)
	assert.Equal(t, Traverse, res.Kind)
	assert.Equal(t, before, sc.Camera)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "inside", Inside.String())
	assert.Equal(t, "collision", Collision.String())
	assert.Equal(t, "traverse", Traverse.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
