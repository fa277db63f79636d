// Package viewer implements the interactive hull viewer loop.
package viewer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/hullgate/internal/boundary"
	"github.com/Faultbox/hullgate/internal/config"
	"github.com/Faultbox/hullgate/internal/engine/audio"
	"github.com/Faultbox/hullgate/internal/engine/input"
	"github.com/Faultbox/hullgate/internal/engine/renderer"
	"github.com/Faultbox/hullgate/internal/engine/window"
	"github.com/Faultbox/hullgate/internal/logger"
	"github.com/Faultbox/hullgate/internal/portal"
	"github.com/Faultbox/hullgate/internal/session"
	"github.com/Faultbox/hullgate/internal/snapshot"
)

// maxTick caps the simulated time per frame so a stall does not launch the
// camera through several hulls at once.
const maxTick = 50 * time.Millisecond

// Viewer owns the window and drives one session.
type Viewer struct {
	cfg      *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	audio    *audio.Manager
	capture  *snapshot.Capture
	session  *session.Session

	colliding bool
	lastStats portal.Stats
}

// New opens the window and prepares the session.
func New(cfg *config.Config, sess *session.Session) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	v := &Viewer{
		cfg:     cfg,
		session: sess,
		input:   input.New(),
		capture: snapshot.NewCapture("screenshots", "hullview", snapshot.PNG),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window created.
	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      dw,
		Height:     dh,
		ClearColor: cfg.Render.ClearColor,
		DepthShade: 0.92,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.SetWireframe(cfg.Render.Wireframe)

	if cfg.Audio.Enabled {
		v.audio = audio.New()
		v.audio.SetVolume(cfg.Audio.Volume)
		if err := v.audio.Init(); err != nil {
			logger.Warn("audio disabled", zap.Error(err))
			v.audio = nil
		}
	}

	v.window.SetMouseLook(true)
	logger.Info("viewer initialized")
	return v, nil
}

// Run drives the loop until the window closes or Escape is pressed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()
	var frameBudget time.Duration
	if v.cfg.Window.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(v.cfg.Window.FPSLimit)
	}

	logger.Info("starting viewer loop")

	for v.running {
		frameStart := time.Now()
		dt := min(frameStart.Sub(lastTime), maxTick)
		lastTime = frameStart

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleActions()

		if err := v.update(float32(dt.Seconds())); err != nil {
			return fmt.Errorf("update error: %w", err)
		}
		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.updateTitle(frameCount)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if spare := frameBudget - time.Since(frameStart); spare > 0 {
				time.Sleep(spare)
			}
		}
	}
	return nil
}

func (v *Viewer) handleActions() {
	in := v.input
	if w, h, ok := in.Resized(); ok {
		logger.Debug("window resized", zap.Int("width", w), zap.Int("height", h))
		dw, dh := v.window.DrawableSize()
		v.renderer.Resize(dw, dh)
	}
	if in.Pressed(input.ActionQuit) {
		v.running = false
	}
	if in.Pressed(input.ActionToggleMouse) {
		v.window.SetMouseLook(!v.window.MouseLook())
	}
	if in.Pressed(input.ActionToggleStats) {
		v.cfg.Render.ShowStats = !v.cfg.Render.ShowStats
	}
	if in.Pressed(input.ActionToggleWireframe) {
		v.renderer.SetWireframe(!v.renderer.Wireframe())
	}
	if in.Pressed(input.ActionResetCamera) {
		v.session.Reset()
	}
	if in.Pressed(input.ActionDepthMore) {
		v.session.SetMaxDepth(v.session.MaxDepth() + 1)
		logger.Info("portal depth", zap.Int("max", v.session.MaxDepth()))
	}
	if in.Pressed(input.ActionDepthLess) {
		v.session.SetMaxDepth(v.session.MaxDepth() - 1)
		logger.Info("portal depth", zap.Int("max", v.session.MaxDepth()))
	}
	if in.Pressed(input.ActionScreenshot) {
		v.screenshot()
	}
}

// update applies one tick of camera input and plays cues on boundary
// events. The collision cue fires once per contact, not every frame the
// camera leans on a wall.
func (v *Viewer) update(dt float32) error {
	res, err := v.session.Step(v.input.Camera(v.window.MouseLook()), dt)
	if err != nil {
		return err
	}

	switch res.Kind {
	case boundary.Traverse:
		v.cue(audio.CueTraverse)
		v.colliding = false
	case boundary.Collision:
		if !v.colliding {
			v.cue(audio.CueCollision)
		}
		v.colliding = true
	default:
		v.colliding = false
	}
	return nil
}

func (v *Viewer) cue(c audio.Cue) {
	if v.audio == nil {
		return
	}
	if err := v.audio.Play(c); err != nil {
		logger.Debug("cue failed", zap.Stringer("cue", c), zap.Error(err))
	}
}

func (v *Viewer) render() error {
	dw, dh := v.window.DrawableSize()
	stats, err := v.session.Render(dw, dh)
	if err != nil {
		// An overflowing frame is still drawable; report it and carry on.
		logger.Warn("frame incomplete", zap.Error(err))
	}
	if stats.DepthLimited > 0 && v.lastStats.DepthLimited == 0 {
		v.cue(audio.CueDepthLimit)
	}
	v.lastStats = stats

	v.renderer.Begin()
	v.renderer.Draw(v.session.Frame)
	v.renderer.End()
	return nil
}

func (v *Viewer) updateTitle(fps int) {
	title := v.cfg.Window.Title
	if v.cfg.Render.ShowStats {
		st := v.session.Stats()
		title = fmt.Sprintf("%s | %s | %d fps | hulls %d depth %d | walls %d | culled %d",
			title, v.session.Scene.Camera.Instance, fps,
			st.States, st.MaxDepth, st.WallsDrawn, st.SidesCulled)
	}
	v.window.SetTitle(title)
	logger.Debug("fps", zap.Int("count", fps))
}

func (v *Viewer) screenshot() {
	dw, dh := v.window.DrawableSize()
	img := snapshot.Rasterize(v.session.Frame, dw, dh, snapshot.ToColor([4]float32{
		v.cfg.Render.ClearColor[0], v.cfg.Render.ClearColor[1], v.cfg.Render.ClearColor[2], 1,
	}))
	name, err := v.capture.FromImage(img)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", name))
}

// Close releases the window and audio.
func (v *Viewer) Close() {
	logger.Info("closing viewer")
	if v.audio != nil {
		v.audio.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
