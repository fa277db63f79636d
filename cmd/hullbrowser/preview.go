package main

import (
	"fmt"
	"image"

	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/hullgate/internal/camera"
	"github.com/Faultbox/hullgate/internal/config"
	"github.com/Faultbox/hullgate/internal/engine/framebuffer"
	"github.com/Faultbox/hullgate/internal/engine/picking"
	"github.com/Faultbox/hullgate/internal/engine/renderer"
	"github.com/Faultbox/hullgate/internal/engine/ui"
	"github.com/Faultbox/hullgate/internal/logger"
)

// Preview draws the session's frame into an offscreen target shown in the
// preview pane.
type Preview struct {
	fb       *framebuffer.Framebuffer
	renderer *renderer.Renderer
	width    int
	height   int
	lastDrag imgui.Vec2
}

// NewPreview creates the offscreen target. The GL context already exists.
func NewPreview(cfg *config.Config) (*Preview, error) {
	const w, h = 640, 480
	fb, err := framebuffer.New(w, h)
	if err != nil {
		return nil, err
	}
	r, err := renderer.NewWithContext(renderer.Config{
		Width:      w,
		Height:     h,
		ClearColor: cfg.Render.ClearColor,
		DepthShade: 0.92,
	})
	if err != nil {
		fb.Destroy()
		return nil, err
	}
	r.SetWireframe(cfg.Render.Wireframe)
	return &Preview{fb: fb, renderer: r, width: w, height: h}, nil
}

// SetWireframe toggles line rendering.
func (p *Preview) SetWireframe(on bool) { p.renderer.SetWireframe(on) }

// Wireframe reports whether line rendering is on.
func (p *Preview) Wireframe() bool { return p.renderer.Wireframe() }

// Resize follows the pane size.
func (p *Preview) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == p.width && height == p.height {
		return
	}
	p.width, p.height = width, height
	p.fb.Resize(int32(width), int32(height))
	p.renderer.Resize(width, height)
}

// Image reads back the last drawn preview.
func (p *Preview) Image() (*image.RGBA, error) {
	return p.fb.Image()
}

// Destroy releases GL resources.
func (p *Preview) Destroy() {
	if p.renderer != nil {
		p.renderer.Close()
	}
	if p.fb != nil {
		p.fb.Destroy()
	}
}

// renderPreview steps the camera from keyboard and drag input, draws the
// frame offscreen and shows it.
func (app *App) renderPreview(dt float32) {
	if app.session == nil {
		imgui.TextDisabled("No scene loaded")
		imgui.TextDisabled("Use File > Open Scene... or Built-in")
		return
	}
	p := app.preview

	avail := imgui.ContentRegionAvail()
	p.Resize(int(avail.X), int(avail.Y-24))

	in := camera.Input{}
	if !imgui.IsAnyItemActive() {
		in = keyboardInput()
	}

	restore := p.fb.Bind()
	if _, err := app.session.Render(p.width, p.height); err != nil {
		logger.Warn("frame incomplete", zap.Error(err))
	}
	p.renderer.Begin()
	p.renderer.Draw(app.session.Frame)
	p.renderer.End()
	restore()

	origin := imgui.CursorScreenPos()
	ui.Image(p.fb.Texture(), float32(p.width), float32(p.height))
	if imgui.IsItemClicked() {
		app.pickAt(imgui.MousePos().X-origin.X, imgui.MousePos().Y-origin.Y)
	}
	if imgui.IsItemHovered() {
		mouse := imgui.MousePos()
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			in.MouseDX = mouse.X - p.lastDrag.X
			in.MouseDY = mouse.Y - p.lastDrag.Y
		}
		p.lastDrag = mouse
	}

	res, err := app.session.Step(in, dt)
	if err != nil {
		logger.Error("step failed", zap.Error(err))
	} else {
		app.onStep(res)
	}

	imgui.TextDisabled("WASD move, Space/C up/down, arrows turn, drag to look")
	imgui.SameLine()
	imgui.Text(fmt.Sprintf("%dx%d", p.width, p.height))
}

// pickAt selects the wall under preview pixel (x, y).
func (app *App) pickAt(x, y float32) {
	hit, ok := picking.Pick(app.session.Frame, x, y)
	if !ok {
		return
	}
	app.selectedInstance = hit.Instance
	app.selectedSide = hit.Side
	logger.Debug("picked wall",
		zap.String("instance", string(hit.Instance)),
		zap.Int("side", hit.Side),
		zap.Int("depth", hit.Depth))
}

func keyboardInput() camera.Input {
	return camera.Input{
		Forward:   ui.IsKeyDown(imgui.KeyW),
		Back:      ui.IsKeyDown(imgui.KeyS),
		Left:      ui.IsKeyDown(imgui.KeyA),
		Right:     ui.IsKeyDown(imgui.KeyD),
		Up:        ui.IsKeyDown(imgui.KeySpace),
		Down:      ui.IsKeyDown(imgui.KeyC),
		TurnLeft:  ui.IsKeyDown(imgui.KeyLeftArrow),
		TurnRight: ui.IsKeyDown(imgui.KeyRightArrow),
		LookUp:    ui.IsKeyDown(imgui.KeyUpArrow),
		LookDown:  ui.IsKeyDown(imgui.KeyDownArrow),
	}
}

func (app *App) savePreview() {
	img, err := app.preview.Image()
	if err != nil {
		app.notify(fmt.Sprintf("Save failed: %v", err))
		return
	}
	name, err := app.capture.FromImage(img)
	if err != nil {
		app.notify(fmt.Sprintf("Save failed: %v", err))
		return
	}
	app.notify("Saved: " + name)
}
