// Hull Browser - a graphical tool for inspecting and walking hull scenes.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/hullgate/internal/boundary"
	"github.com/Faultbox/hullgate/internal/config"
	"github.com/Faultbox/hullgate/internal/engine/audio"
	"github.com/Faultbox/hullgate/internal/engine/ui"
	"github.com/Faultbox/hullgate/internal/logger"
	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/internal/session"
	"github.com/Faultbox/hullgate/internal/snapshot"
)

func main() {
	runtime.LockOSThread()

	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app, err := NewApp(cfg)
	if err != nil {
		logger.Error("failed to start browser", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.OpenScene(cfg.Scene.Path); err != nil {
		logger.Error("failed to open scene", zap.String("scene", cfg.Scene.Path), zap.Error(err))
	}

	app.Run()
}

// App represents the Hull Browser application state.
type App struct {
	cfg     *config.Config
	backend *ui.Backend
	audio   *audio.Manager
	capture *snapshot.Capture

	// Scene state
	session   *session.Session
	scenePath string
	problems  error    // last validation result
	warnings  []string // dangling portal connections

	// Inspector state
	selectedInstance scene.InstanceID
	selectedSide     int

	// Preview state
	preview   *Preview
	lastFrame time.Time
	colliding bool

	// Notification overlay
	notifyMsg  string
	notifyTime time.Time

	// Deferred capture so the previous frame is on the front buffer.
	screenshotRequested bool

	// File dialog results, processed on the main thread.
	pendingOpen string
	pendingSave string
	exports     []pendingExport
}

// NewApp creates the window and subsystems.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:          cfg,
		capture:      snapshot.NewCapture(filepath.Join(os.TempDir(), "hullbrowser"), "hullbrowser", snapshot.PNG),
		selectedSide: -1,
		lastFrame:    time.Now(),
	}

	var err error
	app.backend, err = ui.NewBackend("Hull Browser", cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return nil, err
	}

	app.preview, err = NewPreview(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Audio.Enabled {
		app.audio = audio.New()
		app.audio.SetVolume(cfg.Audio.Volume)
		if err := app.audio.Init(); err != nil {
			logger.Warn("audio disabled", zap.Error(err))
			app.audio = nil
		}
	}
	return app, nil
}

// Close cleans up resources.
func (app *App) Close() {
	if app.preview != nil {
		app.preview.Destroy()
	}
	if app.audio != nil {
		app.audio.Close()
	}
}

// Run starts the main application loop.
func (app *App) Run() {
	app.backend.Run(app.render)
}

// OpenScene loads a scene file or built-in name and starts a fresh session.
func (app *App) OpenScene(ref string) error {
	sc, err := session.LoadScene(ref)
	if err != nil {
		return err
	}
	app.problems = sc.Validate()
	if app.problems != nil {
		logger.Warn("scene has problems", zap.Error(app.problems))
	}
	app.warnings = sc.Warnings()

	sess, err := session.New(sc, session.OptionsFromConfig(app.cfg))
	if err != nil {
		return err
	}
	app.session = sess
	app.scenePath = ref
	app.selectedInstance = sc.Camera.Instance
	app.selectedSide = -1

	name := ref
	if name == "" {
		name = "demo"
	}
	app.backend.SetWindowTitle(fmt.Sprintf("Hull Browser - %s", filepath.Base(name)))
	logger.Info("scene opened",
		zap.String("scene", name),
		zap.Int("blueprints", len(sc.Blueprints)),
		zap.Int("instances", len(sc.Instances)))
	return nil
}

// openFileDialog shows a native dialog. SDL window operations must stay on
// the main thread, so the result is queued for render.
func (app *App) openFileDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("Scene Files", "yaml", "yml", "toml").
			Filter("All Files", "*").
			Title("Open Scene").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				logger.Error("file dialog failed", zap.Error(err))
			}
			return
		}
		app.pendingOpen = filename
	}()
}

func (app *App) saveFileDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("YAML", "yaml", "yml").
			Filter("TOML", "toml").
			Title("Export Scene").
			Save()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				logger.Error("file dialog failed", zap.Error(err))
			}
			return
		}
		app.pendingSave = filename
	}()
}

func (app *App) processPending() {
	if app.pendingOpen != "" {
		path := app.pendingOpen
		app.pendingOpen = ""
		if err := app.OpenScene(path); err != nil {
			app.notify(fmt.Sprintf("Open failed: %v", err))
		}
	}
	if app.pendingSave != "" && app.session != nil {
		path := app.pendingSave
		app.pendingSave = ""
		app.exportScene(path)
	}
	app.pollExports()
}

// pendingExport is a scene file being written in the background.
type pendingExport struct {
	path string
	done <-chan error
}

// exportScene snapshots the scene and writes it without blocking the UI.
func (app *App) exportScene(path string) {
	app.exports = append(app.exports, pendingExport{path: path, done: app.session.Export(path)})
}

func (app *App) pollExports() {
	kept := app.exports[:0]
	for _, e := range app.exports {
		select {
		case err := <-e.done:
			if err != nil {
				logger.Warn("scene export failed", zap.String("path", e.path), zap.Error(err))
				app.notify(fmt.Sprintf("Export failed: %v", err))
				continue
			}
			app.notify("Exported: " + filepath.Base(e.path))
		default:
			kept = append(kept, e)
		}
	}
	app.exports = kept
}

// render is called each frame to draw the UI.
func (app *App) render() {
	now := time.Now()
	dt := float32(min(now.Sub(app.lastFrame), 50*time.Millisecond).Seconds())
	app.lastFrame = now

	if app.screenshotRequested {
		app.screenshotRequested = false
		app.captureScreenshot()
	}
	app.checkAndExecuteCommand()
	app.processPending()

	if ui.IsKeyPressed(imgui.KeyF12) {
		app.screenshotRequested = true
	}
	ctrlD := imgui.KeyChord(imgui.ModCtrl) | imgui.KeyChord(imgui.KeyD)
	if imgui.IsKeyChordPressed(ctrlD) {
		app.dumpState()
	}

	app.renderMenuBar()

	workX, workY, workW, workH := ui.Viewport()

	leftPanelWidth := float32(320)
	rightPanelWidth := float32(260)
	statusBarHeight := float32(30)
	contentHeight := workH - statusBarHeight
	previewWidth := workW - leftPanelWidth - rightPanelWidth

	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(imgui.NewVec2(workX, workY))
	imgui.SetNextWindowSize(imgui.NewVec2(leftPanelWidth, contentHeight))
	if imgui.BeginV("Scene", nil, flags) {
		app.renderScenePanel()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workX+leftPanelWidth, workY))
	imgui.SetNextWindowSize(imgui.NewVec2(previewWidth, contentHeight))
	if imgui.BeginV("Preview", nil, flags) {
		app.renderPreview(dt)
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workX+leftPanelWidth+previewWidth, workY))
	imgui.SetNextWindowSize(imgui.NewVec2(rightPanelWidth, contentHeight))
	if imgui.BeginV("Inspector", nil, flags) {
		app.renderInspector()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workX, workY+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(workW, statusBarHeight))
	statusFlags := flags | imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoScrollbar
	if imgui.BeginV("##StatusBar", nil, statusFlags) {
		app.renderStatusBar()
	}
	imgui.End()

	app.renderNotification(workX, workY)
}

func (app *App) renderMenuBar() {
	if !imgui.BeginMainMenuBar() {
		return
	}
	if imgui.BeginMenu("File") {
		if imgui.MenuItemBool("Open Scene...") {
			app.openFileDialog()
		}
		if imgui.MenuItemBool("Export Scene...") {
			app.saveFileDialog()
		}
		imgui.Separator()
		if imgui.MenuItemBool("Exit") {
			os.Exit(0)
		}
		imgui.EndMenu()
	}
	if imgui.BeginMenu("Built-in") {
		for _, name := range scene.BuiltinNames() {
			if imgui.MenuItemBool(name) {
				if err := app.OpenScene(name); err != nil {
					app.notify(fmt.Sprintf("Open failed: %v", err))
				}
			}
		}
		imgui.EndMenu()
	}
	if imgui.BeginMenu("View") {
		if imgui.MenuItemBool("Reset Camera") && app.session != nil {
			app.session.Reset()
		}
		if imgui.MenuItemBool("Toggle Wireframe") {
			app.preview.SetWireframe(!app.preview.Wireframe())
		}
		if imgui.MenuItemBool("Save Preview Image") {
			app.savePreview()
		}
		imgui.EndMenu()
	}
	imgui.EndMainMenuBar()
}

func (app *App) renderStatusBar() {
	if app.session == nil {
		imgui.TextDisabled("No scene loaded")
		return
	}
	st := app.session.Stats()
	last := app.session.Last()
	imgui.Text(fmt.Sprintf("Host: %s | %s | Hulls: %d | Depth: %d/%d | Walls: %d | Culled: %d | Clipped: %d",
		app.session.Scene.Camera.Instance, last.Kind,
		st.States, st.MaxDepth, app.session.MaxDepth(),
		st.WallsDrawn, st.SidesCulled, st.SidesClipped))
}

func (app *App) renderNotification(x, y float32) {
	if app.notifyMsg == "" || time.Since(app.notifyTime) >= 2*time.Second {
		return
	}
	notifyFlags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsAlwaysAutoResize | imgui.WindowFlagsNoFocusOnAppearing
	imgui.SetNextWindowPos(imgui.NewVec2(x+10, y+10))
	imgui.SetNextWindowBgAlpha(0.85)
	if imgui.BeginV("##Notify", nil, notifyFlags) {
		imgui.Text(app.notifyMsg)
	}
	imgui.End()
}

// notify displays a brief overlay message.
func (app *App) notify(msg string) {
	app.notifyMsg = msg
	app.notifyTime = time.Now()
	logger.Info(msg)
}

// onStep plays cues for boundary events. Collision sounds once per contact.
func (app *App) onStep(res boundary.Result) {
	switch res.Kind {
	case boundary.Traverse:
		app.cue(audio.CueTraverse)
		app.colliding = false
	case boundary.Collision:
		if !app.colliding {
			app.cue(audio.CueCollision)
		}
		app.colliding = true
	default:
		app.colliding = false
	}
}

func (app *App) cue(c audio.Cue) {
	if app.audio == nil {
		return
	}
	if err := app.audio.Play(c); err != nil {
		logger.Debug("cue failed", zap.Stringer("cue", c), zap.Error(err))
	}
}
