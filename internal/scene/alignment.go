package scene

import (
	"fmt"

	"github.com/Faultbox/hullgate/pkg/math"
)

// portalFrame returns the local frame of a portal face: origin at the face
// centroid, Z along the inward normal and X along the first edge.
func portalFrame(bp *Blueprint, side int) (math.Mat4, error) {
	s := &bp.Sides[side]
	if len(s.Indices) < 3 {
		return math.Mat4{}, fmt.Errorf("blueprint %q side %d: %w", bp.ID, side, ErrDegenerateFace)
	}
	n := s.Normal.Normalize()
	u := bp.Vertex(side, 1).Sub(bp.Vertex(side, 0))
	// Keep u in the face plane even if the stored normal is slightly off.
	u = u.Sub(n.Scale(u.Dot(n))).Normalize()
	if u == (math.Vec3{}) || n == (math.Vec3{}) {
		return math.Mat4{}, fmt.Errorf("blueprint %q side %d: %w", bp.ID, side, ErrDegenerateFace)
	}
	v := n.Cross(u)
	return math.FromBasis(u, v, n, bp.FaceCentroid(side)), nil
}

// flip maps the outgoing side of one portal onto the incoming side of its
// partner: X is kept while Y and Z are reversed.
var flip = math.FromBasis(math.UnitX, math.Vec3{Y: -1}, math.Vec3{Z: -1}, math.Vec3{})

// Alignment returns the rigid transform mapping target-local coordinates
// to source-local coordinates so that the target portal face coincides
// with the source portal face and the target interior lies beyond it.
func Alignment(src *Blueprint, srcSide int, dst *Blueprint, dstSide int) (math.Mat4, error) {
	fs, err := portalFrame(src, srcSide)
	if err != nil {
		return math.Mat4{}, err
	}
	ft, err := portalFrame(dst, dstSide)
	if err != nil {
		return math.Mat4{}, err
	}
	ftInv, _ := ft.Inverse()
	return fs.Mul(flip).Mul(ftInv), nil
}

// PortalAlignment resolves the named portals and returns Alignment for
// them: the transform from dst-local to src-local space.
func (s *Scene) PortalAlignment(src InstanceID, srcPortal PortalID, dst InstanceID, dstPortal PortalID) (math.Mat4, error) {
	_, sbp, err := s.Lookup(src)
	if err != nil {
		return math.Mat4{}, err
	}
	_, dbp, err := s.Lookup(dst)
	if err != nil {
		return math.Mat4{}, err
	}
	ss, ok := sbp.PortalSide(srcPortal)
	if !ok {
		return math.Mat4{}, fmt.Errorf("instance %q: %w %q", src, ErrUnknownPortal, srcPortal)
	}
	ds, ok := dbp.PortalSide(dstPortal)
	if !ok {
		return math.Mat4{}, fmt.Errorf("instance %q: %w %q", dst, ErrUnknownPortal, dstPortal)
	}
	return Alignment(sbp, ss, dbp, ds)
}
