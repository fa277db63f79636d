package portal

import (
	"go.uber.org/zap"

	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/pkg/geometry"
)

// dispatch routes a visible side to its handler. This is the only place
// that switches on the handler kind.
func (r *Renderer) dispatch(fc *frameContext, st *traversalState, side int, h scene.HandlerConfig, visible *geometry.ConvexPolygon) error {
	switch h.Kind {
	case scene.HandlerWall:
		return r.drawWall(fc, st, side, h, visible)
	case scene.HandlerPortal:
		r.enqueuePortal(fc, st, side, h, visible)
		return nil
	default:
		fc.stats.Reserved++
		return nil
	}
}

// drawWall fan-triangulates the visible part of a solid side.
func (r *Renderer) drawWall(fc *frameContext, st *traversalState, side int, h scene.HandlerConfig, visible *geometry.ConvexPolygon) error {
	err := fc.out.AddFan(visible, h.Color, Draw{
		Instance: st.instance,
		Side:     side,
		Depth:    st.depth,
	})
	if err != nil {
		return err
	}
	fc.stats.WallsDrawn++
	return nil
}

// enqueuePortal schedules the hull behind a portal, seen through the
// visible part of the portal face.
func (r *Renderer) enqueuePortal(fc *frameContext, st *traversalState, side int, h scene.HandlerConfig, visible *geometry.ConvexPolygon) {
	if st.depth >= r.opts.MaxDepth {
		fc.stats.DepthLimited++
		return
	}
	if h.TargetInstance == "" {
		fc.stats.Missing++
		r.warnOnce("unconnected:"+string(st.instance),
			"portal has no connection",
			zap.String("instance", string(st.instance)),
			zap.Int("side", side))
		return
	}

	_, srcBP, err := fc.sc.Lookup(st.instance)
	if err != nil {
		fc.stats.Missing++
		return
	}
	_, dstBP, err := fc.sc.Lookup(h.TargetInstance)
	if err != nil {
		fc.stats.Missing++
		r.warnOnce(string(h.TargetInstance), "portal target missing", zap.Error(err))
		return
	}
	dstSide, ok := dstBP.PortalSide(h.TargetPortal)
	if !ok {
		fc.stats.Missing++
		r.warnOnce(string(h.TargetInstance)+"/"+string(h.TargetPortal),
			"portal target side missing",
			zap.String("instance", string(h.TargetInstance)),
			zap.String("portal", string(h.TargetPortal)))
		return
	}

	align, err := scene.Alignment(srcBP, side, dstBP, dstSide)
	if err != nil {
		fc.stats.Missing++
		r.warnOnce(string(st.instance)+"/align", "portal alignment failed", zap.Error(err))
		return
	}

	fc.stats.PortalsFollowed++
	r.queue = append(r.queue, traversalState{
		instance: h.TargetInstance,
		toHost:   st.toHost.Mul(align),
		aperture: *visible,
		depth:    st.depth + 1,
	})
}
