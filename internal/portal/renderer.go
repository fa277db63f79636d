// Package portal renders a scene by walking the portal graph breadth-first
// from the camera's host hull, narrowing a screen-space aperture at every
// portal it passes through.
package portal

import (
	"go.uber.org/zap"

	"github.com/Faultbox/hullgate/internal/camera"
	"github.com/Faultbox/hullgate/internal/logger"
	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/pkg/geometry"
	"github.com/Faultbox/hullgate/pkg/math"
)

const (
	// DefaultMaxDepth bounds how many portals deep a branch may go.
	DefaultMaxDepth = 10
	// DefaultMaxStates bounds the total traversal states per frame.
	DefaultMaxStates = 4096

	cullEpsilon = 1e-5
	// faceScratch holds a face before and after depth clipping; each clip
	// can add one vertex per crossing.
	faceScratch = geometry.MaxVertices * 2
)

// Options configures a Renderer.
type Options struct {
	MaxDepth  int
	MaxStates int
}

// DefaultOptions returns the default traversal limits.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth, MaxStates: DefaultMaxStates}
}

// Stats summarizes one traversal.
type Stats struct {
	States          int // traversal states processed
	SidesCulled     int // facing away from the camera
	SidesClipped    int // nothing left after depth clipping, projection or aperture
	WallsDrawn      int
	PortalsFollowed int
	DepthLimited    int // portals skipped because the depth bound was reached
	Reserved        int // sides with handlers that render nothing
	Missing         int // branches dropped for unknown instances or portals
	Truncations     int // clipper results capped at MaxVertices
	MaxDepth        int // deepest state processed
	StateLimitHit   bool
}

// traversalState is one pending visit of a hull.
type traversalState struct {
	instance scene.InstanceID
	// toHost maps the instance's local space into the camera host's space.
	toHost   math.Mat4
	aperture geometry.ConvexPolygon
	depth    int
}

// Renderer walks the portal graph. It keeps its work queue and scratch
// buffers between frames and is not safe for concurrent use.
type Renderer struct {
	opts Options

	queue  []traversalState
	view   []math.Vec3
	near   []math.Vec3
	far    []math.Vec3
	warned map[string]struct{}
}

// NewRenderer creates a renderer. A negative MaxDepth or a non-positive
// MaxStates selects the default; MaxDepth 0 renders the host hull only.
func NewRenderer(opts Options) *Renderer {
	if opts.MaxDepth < 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxStates <= 0 {
		opts.MaxStates = DefaultMaxStates
	}
	return &Renderer{
		opts:   opts,
		queue:  make([]traversalState, 0, 64),
		view:   make([]math.Vec3, 0, faceScratch),
		near:   make([]math.Vec3, 0, faceScratch),
		far:    make([]math.Vec3, 0, faceScratch),
		warned: make(map[string]struct{}),
	}
}

// Options returns the renderer's limits.
func (r *Renderer) Options() Options { return r.opts }

// frameContext is the per-frame data shared by every state.
type frameContext struct {
	sc     *scene.Scene
	cam    camera.Camera
	view   math.Mat4 // host-local to view space
	width  float32
	height float32
	out    *Frame
	stats  *Stats
}

// Render resets out and fills it with the scene as seen from the scene
// camera on a width x height screen. It returns ErrFrameOverflow (wrapped)
// if out fills up; the frame then holds everything drawn before that.
// An empty screen yields an empty frame.
func (r *Renderer) Render(sc *scene.Scene, cam camera.Camera, width, height float32, out *Frame) (Stats, error) {
	var stats Stats
	out.Reset()
	clear(r.warned)
	if width <= 0 || height <= 0 {
		return stats, nil
	}

	fc := frameContext{
		sc:     sc,
		cam:    cam,
		view:   camera.ViewMatrix(sc.Camera.Pose),
		width:  width,
		height: height,
		out:    out,
		stats:  &stats,
	}

	r.queue = append(r.queue[:0], traversalState{
		instance: sc.Camera.Instance,
		toHost:   math.Identity(),
		aperture: geometry.Viewport(width, height),
	})

	for head := 0; head < len(r.queue); head++ {
		if stats.States >= r.opts.MaxStates {
			stats.StateLimitHit = true
			logger.Warn("portal traversal state limit reached",
				zap.Int("limit", r.opts.MaxStates),
				zap.Int("pending", len(r.queue)-head))
			break
		}
		// Copy out: visit may grow the queue and move its backing array.
		st := r.queue[head]
		if err := r.visit(&fc, &st); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// visit draws every visible side of one hull and enqueues portal targets.
func (r *Renderer) visit(fc *frameContext, st *traversalState) error {
	stats := fc.stats
	inst, bp, err := fc.sc.Lookup(st.instance)
	if err != nil {
		stats.Missing++
		r.warnOnce(string(st.instance), "skipping unknown hull", zap.Error(err))
		return nil
	}

	stats.States++
	stats.MaxDepth = max(stats.MaxDepth, st.depth)

	toView := fc.view.Mul(st.toHost)

	var visible geometry.ConvexPolygon
	for i := range bp.Sides {
		side := &bp.Sides[i]
		if len(side.Indices) < 3 {
			continue
		}

		p0 := toView.TransformPoint(bp.Vertex(i, 0))
		n := toView.TransformDirection(side.Normal)
		// The camera sits at the view-space origin; it must be on the
		// interior side of the face plane.
		if n.Dot(p0.Neg()) < -cullEpsilon {
			stats.SidesCulled++
			continue
		}

		if !r.screenPolygon(fc, toView, bp, i, &st.aperture, &visible) {
			stats.SidesClipped++
			continue
		}

		h := scene.EffectiveHandler(inst, bp, i)
		if err := r.dispatch(fc, st, i, h, &visible); err != nil {
			return err
		}
	}
	return nil
}

// screenPolygon transforms side i to view space, clips it to the near and
// far planes, projects it and intersects it with the aperture. It reports
// false when nothing visible remains.
func (r *Renderer) screenPolygon(fc *frameContext, toView math.Mat4, bp *scene.Blueprint, side int,
	aperture, dst *geometry.ConvexPolygon) bool {
	r.view = r.view[:0]
	for k := range bp.Sides[side].Indices {
		r.view = append(r.view, toView.TransformPoint(bp.Vertex(side, k)))
	}
	r.near = fc.cam.ClipNear(r.near, r.view)
	if len(r.near) < 3 {
		return false
	}
	r.far = fc.cam.ClipFar(r.far, r.near)
	if len(r.far) < 3 {
		return false
	}

	var projected geometry.ConvexPolygon
	for _, p := range r.far {
		s, ok := fc.cam.Project(p, fc.width, fc.height)
		if !ok {
			return false
		}
		if !projected.Push(s) {
			fc.stats.Truncations++
			break
		}
	}
	projected.EnsureCCW()

	if geometry.IntersectInto(dst, &projected, aperture) {
		fc.stats.Truncations++
	}
	return !dst.Degenerate()
}

func (r *Renderer) warnOnce(key, msg string, fields ...zap.Field) {
	if _, seen := r.warned[key]; seen {
		return
	}
	r.warned[key] = struct{}{}
	logger.Warn(msg, fields...)
}
