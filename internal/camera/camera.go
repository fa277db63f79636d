// Package camera provides the perspective projection used by the portal
// renderer and the fly controller that turns input into proposed poses.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/hullgate/pkg/geometry"
	"github.com/Faultbox/hullgate/pkg/math"
)

const (
	// depthGuard keeps projection away from division by near-zero depth.
	depthGuard = 1e-6
	// crossGuard is the smallest depth difference accepted when an edge
	// crosses the near plane.
	crossGuard = 1e-6
)

// Camera holds the projection parameters. View space looks down -Z with
// +Y up and +X right.
type Camera struct {
	FovY  float32 // vertical field of view, radians
	ZNear float32
	ZFar  float32
}

// New returns a camera with a vertical field of view in degrees.
func New(fovYDegrees, znear, zfar float32) Camera {
	return Camera{
		FovY:  fovYDegrees * math32.Pi / 180,
		ZNear: znear,
		ZFar:  zfar,
	}
}

// Default returns a 60 degree camera with near 0.05 and far 100.
func Default() Camera {
	return New(60, 0.05, 100)
}

// ViewMatrix returns the view transform for a camera pose.
func ViewMatrix(pose math.Mat4) math.Mat4 {
	view, _ := pose.Inverse()
	return view
}

// Project maps a view-space point to pixel coordinates with the origin at
// the top-left and Y down. It reports false for points behind the near
// plane and for an empty screen. Depth beyond the far plane is not checked
// here; callers clip with ClipFar.
func (c Camera) Project(p math.Vec3, width, height float32) (geometry.Point2, bool) {
	if width <= 0 || height <= 0 {
		return geometry.Point2{}, false
	}
	if p.Z > -c.ZNear+depthGuard || -p.Z < depthGuard {
		return geometry.Point2{}, false
	}
	fy := 1 / math32.Tan(c.FovY/2)
	fx := fy / (width / height)

	ndcX := fx * p.X / -p.Z
	ndcY := fy * p.Y / -p.Z
	return geometry.Point2{
		X: (ndcX + 1) * 0.5 * width,
		Y: (1 - ndcY) * 0.5 * height,
	}, true
}

// ClipNear clips a view-space polygon against the plane z = -ZNear,
// keeping the part in front of the camera. The result is appended to
// dst[:0] and returned.
func (c Camera) ClipNear(dst, poly []math.Vec3) []math.Vec3 {
	limit := -c.ZNear
	return clipDepth(dst, poly, limit, func(p math.Vec3) bool { return p.Z < limit })
}

// ClipFar clips a view-space polygon against the plane z = -ZFar, keeping
// the part nearer than the far plane. The result is appended to dst[:0].
func (c Camera) ClipFar(dst, poly []math.Vec3) []math.Vec3 {
	limit := -c.ZFar
	return clipDepth(dst, poly, limit, func(p math.Vec3) bool { return p.Z >= limit })
}

// clipDepth is one Sutherland-Hodgman pass against a plane of constant z.
func clipDepth(dst, poly []math.Vec3, limit float32, in func(math.Vec3) bool) []math.Vec3 {
	dst = dst[:0]
	if len(poly) == 0 {
		return dst
	}

	prev := poly[len(poly)-1]
	prevIn := in(prev)
	for _, p := range poly {
		pIn := in(p)
		if pIn != prevIn {
			if dz := p.Z - prev.Z; math32.Abs(dz) > crossGuard {
				t := (limit - prev.Z) / dz
				dst = append(dst, math.Vec3{
					X: prev.X + t*(p.X-prev.X),
					Y: prev.Y + t*(p.Y-prev.Y),
					Z: limit,
				})
			}
		}
		if pIn {
			dst = append(dst, p)
		}
		prev, prevIn = p, pIn
	}
	return dst
}
