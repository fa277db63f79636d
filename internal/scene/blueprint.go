package scene

import (
	"github.com/Faultbox/hullgate/pkg/math"
)

// BlueprintID identifies a hull blueprint.
type BlueprintID string

// PortalID names a portal side within a blueprint.
type PortalID string

// Side is one planar convex face of a hull.
type Side struct {
	// Indices into Blueprint.Vertices, in convex order. Paired portal faces
	// list their vertices so that the first edges run the same way through
	// the opening.
	Indices []int
	// Normal points toward the hull interior.
	Normal math.Vec3
	// Handler is the default behaviour, overridable per instance.
	Handler HandlerConfig
	// PortalID is set on sides that can act as portals.
	PortalID PortalID
}

// Blueprint is the immutable local-space description of a convex hull.
type Blueprint struct {
	ID       BlueprintID
	Vertices []math.Vec3
	Sides    []Side
}

// Vertex returns the k-th vertex of side i.
func (b *Blueprint) Vertex(side, k int) math.Vec3 {
	return b.Vertices[b.Sides[side].Indices[k]]
}

// PortalSide returns the index of the side carrying portal id.
func (b *Blueprint) PortalSide(id PortalID) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i := range b.Sides {
		if b.Sides[i].PortalID == id {
			return i, true
		}
	}
	return -1, false
}

// Centroid returns the average of all vertices. For a convex hull this is
// strictly inside.
func (b *Blueprint) Centroid() math.Vec3 {
	var c math.Vec3
	if len(b.Vertices) == 0 {
		return c
	}
	for _, v := range b.Vertices {
		c = c.Add(v)
	}
	return c.Scale(1 / float32(len(b.Vertices)))
}

// FaceCentroid returns the average of a side's vertices.
func (b *Blueprint) FaceCentroid(side int) math.Vec3 {
	s := &b.Sides[side]
	var c math.Vec3
	for _, idx := range s.Indices {
		c = c.Add(b.Vertices[idx])
	}
	return c.Scale(1 / float32(len(s.Indices)))
}

// SignedDistance returns the distance of p from the plane of side i,
// positive on the interior side.
func (b *Blueprint) SignedDistance(side int, p math.Vec3) float32 {
	s := &b.Sides[side]
	return s.Normal.Dot(p.Sub(b.Vertices[s.Indices[0]]))
}

// InwardNormal computes the unit normal of side i from its winding,
// oriented toward the hull centroid.
func (b *Blueprint) InwardNormal(side int) math.Vec3 {
	s := &b.Sides[side]
	if len(s.Indices) < 3 {
		return math.Vec3{}
	}
	p0 := b.Vertices[s.Indices[0]]
	// Newell's method tolerates slightly non-planar or collinear leading
	// vertices.
	var n math.Vec3
	for i, idx := range s.Indices {
		cur := b.Vertices[idx]
		next := b.Vertices[s.Indices[(i+1)%len(s.Indices)]]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	n = n.Normalize()
	if n.Dot(b.Centroid().Sub(p0)) < 0 {
		n = n.Neg()
	}
	return n
}

// Cuboid side indices, in the order NewCuboid creates them.
const (
	SideCeiling = iota
	SideFloor
	SideLeft
	SideRight
	SideBack
	SideFront
)

// CuboidSideNames names the sides of NewCuboid in index order.
var CuboidSideNames = [...]string{"ceiling", "floor", "left", "right", "back", "front"}

// NewCuboid builds an axis-aligned box centred at the origin with the given
// half extents. Back faces -Z and front faces +Z; both list their vertices
// starting at -X,-Y and running along +X, so a front and a back face pair
// up as portals directly. Every side starts as a white wall.
func NewCuboid(id BlueprintID, half math.Vec3) *Blueprint {
	x, y, z := half.X, half.Y, half.Z
	b := &Blueprint{
		ID: id,
		Vertices: []math.Vec3{
			{X: -x, Y: -y, Z: -z}, {X: x, Y: -y, Z: -z}, {X: x, Y: y, Z: -z}, {X: -x, Y: y, Z: -z},
			{X: -x, Y: -y, Z: z}, {X: x, Y: -y, Z: z}, {X: x, Y: y, Z: z}, {X: -x, Y: y, Z: z},
		},
	}
	white := Wall(RGB(1, 1, 1))
	b.Sides = []Side{
		SideCeiling: {Indices: []int{3, 2, 6, 7}, Normal: math.Vec3{Y: -1}, Handler: white},
		SideFloor:   {Indices: []int{0, 4, 5, 1}, Normal: math.Vec3{Y: 1}, Handler: white},
		SideLeft:    {Indices: []int{0, 3, 7, 4}, Normal: math.Vec3{X: 1}, Handler: white},
		SideRight:   {Indices: []int{1, 5, 6, 2}, Normal: math.Vec3{X: -1}, Handler: white},
		SideBack:    {Indices: []int{0, 1, 2, 3}, Normal: math.Vec3{Z: 1}, Handler: white},
		SideFront:   {Indices: []int{4, 5, 6, 7}, Normal: math.Vec3{Z: -1}, Handler: white},
	}
	return b
}
