// Package boundary decides, once per tick, what a proposed camera move does
// to the camera's place in the portal graph: stay in the host hull, slide
// back off a wall, or cross a portal into the neighbouring hull.
package boundary

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/hullgate/internal/logger"
	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/pkg/math"
)

const (
	// ViolationTolerance is how far behind a side plane the camera may
	// drift before the side reacts.
	ViolationTolerance = 1e-4
	// PushbackEpsilon is the distance a collision leaves between the
	// camera and the wall plane.
	PushbackEpsilon = 1e-3
	// TraverseClearance is the minimum distance from the entry portal
	// plane after crossing.
	TraverseClearance = 1e-3
)

// Kind classifies a boundary check.
type Kind uint8

const (
	Inside Kind = iota
	Collision
	Traverse
)

func (k Kind) String() string {
	switch k {
	case Inside:
		return "inside"
	case Collision:
		return "collision"
	case Traverse:
		return "traverse"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Result is the outcome of checking a proposed camera move.
type Result struct {
	Kind Kind
	// Side is the violated side of the host blueprint, or -1 for Inside.
	Side int
	// Distance is the signed distance of the proposed position from the
	// violated side plane. Zero for Inside.
	Distance float32
	// Point is the resolved camera position, local to Instance.
	Point math.Vec3
	// Pose is the resolved camera pose, local to Instance.
	Pose math.Mat4
	// Instance hosts the camera after the move. It differs from the
	// starting host only for Traverse.
	Instance scene.InstanceID

	TargetInstance scene.InstanceID
	TargetPortal   scene.PortalID
}

// Resolver applies boundary checks to a scene camera. The zero value is
// not usable; use NewResolver.
type Resolver struct {
	Tolerance float32
	Pushback  float32
	Clearance float32
}

// NewResolver returns a resolver with the default tolerances.
func NewResolver() *Resolver {
	return &Resolver{
		Tolerance: ViolationTolerance,
		Pushback:  PushbackEpsilon,
		Clearance: TraverseClearance,
	}
}

func (r *Resolver) log() *zap.Logger {
	return logger.Named("boundary")
}

// Check classifies moving the scene camera to proposed with the given
// orientation, without touching the scene.
//
// Sides are tested in blueprint order and only the first violated side
// acts, so a move that leaves through an edge or corner is resolved
// against one plane per tick.
func (r *Resolver) Check(sc *scene.Scene, proposed math.Vec3, orientation math.Mat4) (Result, error) {
	host := sc.Camera.Instance
	inst, bp, err := sc.Lookup(host)
	if err != nil {
		return Result{}, fmt.Errorf("boundary check: %w", err)
	}

	for i := range bp.Sides {
		if len(bp.Sides[i].Indices) == 0 {
			continue
		}
		d := bp.SignedDistance(i, proposed)
		if d >= -r.Tolerance {
			continue
		}

		h := scene.EffectiveHandler(inst, bp, i)
		if h.Kind == scene.HandlerPortal {
			res, ok := r.traverse(sc, host, bp, i, h, proposed, orientation)
			if ok {
				res.Distance = d
				return res, nil
			}
		}
		return r.collide(host, bp, i, d, proposed, orientation), nil
	}

	return Result{
		Kind:     Inside,
		Side:     -1,
		Point:    proposed,
		Pose:     orientation.WithTranslation(proposed),
		Instance: host,
	}, nil
}

// Resolve checks the proposed move and writes the outcome back into the
// scene camera. It is the only place the camera host changes.
func (r *Resolver) Resolve(sc *scene.Scene, proposed math.Vec3, orientation math.Mat4) (Result, error) {
	res, err := r.Check(sc, proposed, orientation)
	if err != nil {
		return res, err
	}
	from := sc.Camera.Instance
	sc.Camera = scene.Camera{Instance: res.Instance, Pose: res.Pose}

	switch res.Kind {
	case Traverse:
		r.log().Debug("camera crossed portal",
			zap.String("from", string(from)),
			zap.String("to", string(res.TargetInstance)),
			zap.String("portal", string(res.TargetPortal)))
	case Collision:
		r.log().Debug("camera hit wall",
			zap.String("instance", string(res.Instance)),
			zap.Int("side", res.Side),
			zap.Float32("depth", -res.Distance))
	}
	return res, nil
}

// collide moves p back along the side's inward normal until it sits
// Pushback in front of the plane.
func (r *Resolver) collide(host scene.InstanceID, bp *scene.Blueprint, side int, d float32, p math.Vec3, orientation math.Mat4) Result {
	n := bp.Sides[side].Normal
	p = p.Add(n.Scale(r.Pushback - d))
	return Result{
		Kind:     Collision,
		Side:     side,
		Distance: d,
		Point:    p,
		Pose:     orientation.WithTranslation(p),
		Instance: host,
	}
}

// traverse re-expresses the proposed pose in the space of the hull behind
// portal side. It reports false when the portal leads nowhere, in which
// case the side behaves as a wall.
func (r *Resolver) traverse(sc *scene.Scene, host scene.InstanceID, bp *scene.Blueprint, side int, h scene.HandlerConfig, p math.Vec3, orientation math.Mat4) (Result, bool) {
	if h.TargetInstance == "" {
		return Result{}, false
	}
	_, dst, err := sc.Lookup(h.TargetInstance)
	if err != nil {
		r.log().Warn("portal target missing", zap.Error(err))
		return Result{}, false
	}
	dstSide, ok := dst.PortalSide(h.TargetPortal)
	if !ok {
		r.log().Warn("portal target side missing",
			zap.String("instance", string(h.TargetInstance)),
			zap.String("portal", string(h.TargetPortal)))
		return Result{}, false
	}
	align, err := scene.Alignment(bp, side, dst, dstSide)
	if err != nil {
		r.log().Warn("portal alignment failed", zap.Error(err))
		return Result{}, false
	}
	toTarget, ok := align.Inverse()
	if !ok {
		return Result{}, false
	}

	pose := toTarget.Mul(orientation.WithTranslation(p))
	landed := pose.Translation()
	if d := dst.SignedDistance(dstSide, landed); d < r.Clearance {
		landed = landed.Add(dst.Sides[dstSide].Normal.Scale(r.Clearance - d))
		pose = pose.WithTranslation(landed)
	}

	return Result{
		Kind:           Traverse,
		Side:           side,
		Point:          landed,
		Pose:           pose,
		Instance:       h.TargetInstance,
		TargetInstance: h.TargetInstance,
		TargetPortal:   h.TargetPortal,
	}, true
}
