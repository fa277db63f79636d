// Package session ties one scene to the per-tick camera pipeline: the
// controller proposes a move, the boundary resolver applies it and the
// portal renderer draws the result.
package session

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/hullgate/internal/boundary"
	"github.com/Faultbox/hullgate/internal/camera"
	"github.com/Faultbox/hullgate/internal/config"
	"github.com/Faultbox/hullgate/internal/logger"
	"github.com/Faultbox/hullgate/internal/portal"
	"github.com/Faultbox/hullgate/internal/scene"
)

// Options configures a Session.
type Options struct {
	Camera        camera.Camera
	Render        portal.Options
	FrameCapacity int

	MoveSpeed        float32
	TurnSpeed        float32
	MouseSensitivity float32
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig extracts session options from viewer configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Camera: camera.New(cfg.Camera.FovDegrees, cfg.Camera.Near, cfg.Camera.Far),
		Render: portal.Options{
			MaxDepth:  cfg.Render.MaxPortalDepth,
			MaxStates: cfg.Render.MaxStates,
		},
		FrameCapacity:    cfg.Render.FrameCapacity,
		MoveSpeed:        cfg.Camera.MoveSpeed,
		TurnSpeed:        cfg.Camera.TurnSpeed,
		MouseSensitivity: cfg.Camera.MouseSensitivity,
	}
}

// Session is not safe for concurrent use. Step and Render are meant to be
// called alternately from one loop.
type Session struct {
	Scene      *scene.Scene
	Camera     camera.Camera
	Controller *camera.FlyController
	Resolver   *boundary.Resolver
	Renderer   *portal.Renderer
	Frame      *portal.Frame

	opts  Options
	start scene.Camera
	last  boundary.Result
	stats portal.Stats
	ticks uint64
}

// New starts a session on sc. The scene's current camera becomes the
// reset point.
func New(sc *scene.Scene, opts Options) (*Session, error) {
	if _, _, err := sc.Lookup(sc.Camera.Instance); err != nil {
		return nil, fmt.Errorf("camera host: %w", err)
	}

	ctrl := camera.NewFlyController()
	if opts.MoveSpeed > 0 {
		ctrl.MoveSpeed = opts.MoveSpeed
	}
	if opts.TurnSpeed > 0 {
		ctrl.TurnSpeed = opts.TurnSpeed
	}
	if opts.MouseSensitivity > 0 {
		ctrl.MouseSensitivity = opts.MouseSensitivity
	}
	ctrl.SyncFromPose(sc.Camera.Pose)

	capacity := opts.FrameCapacity
	if capacity <= 0 {
		capacity = portal.DefaultFrameCapacity
	}

	s := &Session{
		Scene:      sc,
		Camera:     opts.Camera,
		Controller: ctrl,
		Resolver:   boundary.NewResolver(),
		Renderer:   portal.NewRenderer(opts.Render),
		Frame:      portal.NewFrame(capacity),
		opts:       opts,
		start:      sc.Camera,
		last:       boundary.Result{Kind: boundary.Inside, Side: -1, Instance: sc.Camera.Instance},
	}
	return s, nil
}

// Step advances the camera by one tick of input. A traversal re-syncs the
// controller from the rotated pose so steering stays continuous.
func (s *Session) Step(in camera.Input, dt float32) (boundary.Result, error) {
	pos, orient := s.Controller.Propose(s.Scene.Camera.Pose, in, dt)
	res, err := s.Resolver.Resolve(s.Scene, pos, orient)
	if err != nil {
		return res, err
	}
	if res.Kind == boundary.Traverse {
		s.Controller.SyncFromPose(s.Scene.Camera.Pose)
		logger.Info("entered hull",
			zap.String("instance", string(res.Instance)),
			zap.String("portal", string(res.TargetPortal)))
	}
	s.last = res
	s.ticks++
	return res, nil
}

// Render traverses the portal graph into s.Frame.
func (s *Session) Render(width, height int) (portal.Stats, error) {
	stats, err := s.Renderer.Render(s.Scene, s.Camera, float32(width), float32(height), s.Frame)
	s.stats = stats
	return stats, err
}

// Reset returns the camera to where the session started.
func (s *Session) Reset() {
	s.Scene.Camera = s.start
	s.Controller.SyncFromPose(s.start.Pose)
	s.last = boundary.Result{Kind: boundary.Inside, Side: -1, Instance: s.start.Instance}
}

// Export writes the scene as it is now to path. The scene is snapshotted
// before Export returns and the file is written on another goroutine, so
// the caller may keep stepping the session. The channel receives the write
// result and is then closed.
func (s *Session) Export(path string) <-chan error {
	done := make(chan error, 1)
	snap, err := s.Scene.Snapshot()
	if err != nil {
		done <- err
		close(done)
		return done
	}
	go func() {
		defer close(done)
		done <- scene.SaveFile(snap, path)
	}()
	return done
}

// SetMaxDepth changes the portal recursion bound.
func (s *Session) SetMaxDepth(depth int) {
	s.opts.Render.MaxDepth = max(0, depth)
	s.Renderer = portal.NewRenderer(s.opts.Render)
}

// MaxDepth returns the portal recursion bound in use.
func (s *Session) MaxDepth() int {
	return s.Renderer.Options().MaxDepth
}

// Last returns the most recent boundary result.
func (s *Session) Last() boundary.Result { return s.last }

// Stats returns the most recent traversal statistics.
func (s *Session) Stats() portal.Stats { return s.stats }

// Ticks returns the number of successful Steps.
func (s *Session) Ticks() uint64 { return s.ticks }

// LoadScene resolves a scene reference: empty selects the demo, a
// built-in name selects that scene unless a file of the same name exists,
// anything else is read as a YAML or TOML scene file. Dangling portal
// connections are logged and do not fail the load.
func LoadScene(ref string) (*scene.Scene, error) {
	if ref == "" {
		return scene.DemoScene(), nil
	}
	if _, err := os.Stat(ref); err != nil {
		if sc, ok := scene.Builtin(ref); ok {
			return sc, nil
		}
	}
	sc, err := scene.LoadFile(ref)
	if err != nil {
		return nil, err
	}
	for _, w := range sc.Warnings() {
		logger.Warn("dangling portal connection", zap.String("scene", ref), zap.String("problem", w))
	}
	return sc, nil
}
