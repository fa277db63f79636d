package scene

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/Faultbox/hullgate/pkg/math"
)

// DemoHalfSize is the half extent of the demo rooms.
const DemoHalfSize = 1.5

// Demo palette.
var (
	ColorCeiling   = RGB(1, 0, 0)
	ColorFloor     = RGB(0, 1, 0)
	ColorLeft      = RGB(1, 1, 1)
	ColorRight     = RGB(0.5, 0.5, 0.5)
	ColorBackA     = RGB(0.3, 0.3, 0.3)
	ColorFarWallB  = RGB(0.9, 0.5, 0.2)
	ColorCorridorA = RGB(0.2, 0.4, 0.9)
)

func paintRoom(b *Blueprint) {
	b.Sides[SideCeiling].Handler = Wall(ColorCeiling)
	b.Sides[SideFloor].Handler = Wall(ColorFloor)
	b.Sides[SideLeft].Handler = Wall(ColorLeft)
	b.Sides[SideRight].Handler = Wall(ColorRight)
}

// DemoScene returns two cuboid rooms joined by one portal: the front of
// room A opens onto the back of room B. The camera starts at the centre of
// A facing the portal.
func DemoScene() *Scene {
	half := math.Vec3{X: DemoHalfSize, Y: DemoHalfSize, Z: DemoHalfSize}

	a := NewCuboid("room_a", half)
	paintRoom(a)
	a.Sides[SideBack].Handler = Wall(ColorBackA)
	a.Sides[SideFront].Handler = ConnectedPortal()
	a.Sides[SideFront].PortalID = "a_front"

	b := NewCuboid("room_b", half)
	paintRoom(b)
	b.Sides[SideBack].Handler = ConnectedPortal()
	b.Sides[SideBack].PortalID = "b_back"
	b.Sides[SideFront].Handler = Wall(ColorFarWallB)

	sc := New()
	mustDo(sc.AddBlueprint(a))
	mustDo(sc.AddBlueprint(b))

	ia := NewInstance("A", a.ID)
	ib := NewInstance("B", b.ID)
	ib.Placement = math.Translate(0, 0, 2*DemoHalfSize)
	mustDo(sc.AddInstance(ia))
	mustDo(sc.AddInstance(ib))
	mustDo(sc.Connect("A", "a_front", "B", "b_back"))

	mustDo(sc.SetCamera("A", YawPitchPose(math.Vec3{}, math32.Pi, 0)))
	return sc
}

// CorridorScene returns two rooms whose front and back faces are both
// portals into each other, forming an endless corridor A, B, A, B...
func CorridorScene() *Scene {
	half := math.Vec3{X: DemoHalfSize, Y: DemoHalfSize, Z: DemoHalfSize}

	newRoom := func(id BlueprintID, prefix PortalID) *Blueprint {
		r := NewCuboid(id, half)
		paintRoom(r)
		r.Sides[SideBack].Handler = ConnectedPortal()
		r.Sides[SideBack].PortalID = prefix + "_back"
		r.Sides[SideFront].Handler = ConnectedPortal()
		r.Sides[SideFront].PortalID = prefix + "_front"
		return r
	}
	a := newRoom("corridor_a", "a")
	a.Sides[SideLeft].Handler = Wall(ColorCorridorA)
	b := newRoom("corridor_b", "b")

	sc := New()
	mustDo(sc.AddBlueprint(a))
	mustDo(sc.AddBlueprint(b))
	mustDo(sc.AddInstance(NewInstance("A", a.ID)))
	mustDo(sc.AddInstance(NewInstance("B", b.ID)))
	mustDo(sc.Connect("A", "a_front", "B", "b_back"))
	mustDo(sc.Connect("B", "b_front", "A", "a_back"))

	mustDo(sc.SetCamera("A", YawPitchPose(math.Vec3{}, math32.Pi, 0)))
	return sc
}

// mustDo panics on errors that can only come from a broken built-in scene.
func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

var builtins = map[string]func() *Scene{
	"demo":     DemoScene,
	"corridor": CorridorScene,
}

// Builtin returns a freshly built scene by name.
func Builtin(name string) (*Scene, bool) {
	build, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// BuiltinNames lists the built-in scenes in sorted order.
func BuiltinNames() []string {
	names := maps.Keys(builtins)
	slices.Sort(names)
	return names
}
