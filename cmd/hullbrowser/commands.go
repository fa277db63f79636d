// Command and screenshot handling for Hull Browser.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/hullgate/internal/scene"
)

// GUIState is the browser state exported for automated checks.
type GUIState struct {
	Timestamp string `json:"timestamp"`
	ScenePath string `json:"scenePath"`
	Camera    struct {
		Instance string     `json:"instance"`
		Position [3]float32 `json:"position"`
	} `json:"camera"`
	Selected struct {
		Instance string `json:"instance"`
		Side     int    `json:"side"`
	} `json:"selected"`
	LastBoundary string   `json:"lastBoundary"`
	Warnings     []string `json:"warnings,omitempty"`
	Stats        struct {
		MaxDepth    int `json:"maxDepth"`
		States      int `json:"states"`
		WallsDrawn  int `json:"wallsDrawn"`
		SidesCulled int `json:"sidesCulled"`
		Missing     int `json:"missing"`
		DepthUsed   int `json:"depthUsed"`
	} `json:"stats"`
}

// Command is a remote command for GUI automation.
type Command struct {
	Action string `json:"action"`
	Path   string `json:"path,omitempty"`
	Value  string `json:"value,omitempty"`
	Depth  int    `json:"depth,omitempty"`
}

func (app *App) outputDir() string {
	dir := filepath.Join(os.TempDir(), "hullbrowser")
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// captureScreenshot saves the front buffer, which holds the previous frame.
func (app *App) captureScreenshot() {
	io := imgui.CurrentIO()
	displaySize := io.DisplaySize()
	fbScale := io.DisplayFramebufferScale()
	width := int(displaySize.X * fbScale.X)
	height := int(displaySize.Y * fbScale.Y)
	if width <= 0 || height <= 0 {
		app.notify("Screenshot failed: invalid viewport")
		return
	}

	gl.ReadBuffer(gl.FRONT)
	pixels := make([]byte, width*height*4)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.ReadBuffer(gl.BACK)

	name, err := app.capture.FromPixels(pixels, width, height)
	if err != nil {
		app.notify(fmt.Sprintf("Screenshot failed: %v", err))
		return
	}
	app.notify("Saved: " + filepath.Base(name))
}

// state snapshots the browser for dumpState.
func (app *App) state() GUIState {
	st := GUIState{
		Timestamp: time.Now().Format(time.RFC3339),
		ScenePath: app.scenePath,
	}
	st.Selected.Instance = string(app.selectedInstance)
	st.Selected.Side = app.selectedSide
	st.Warnings = app.warnings
	if app.session == nil {
		return st
	}
	cam := app.session.Scene.Camera
	p := cam.Position()
	st.Camera.Instance = string(cam.Instance)
	st.Camera.Position = [3]float32{p.X, p.Y, p.Z}
	st.LastBoundary = app.session.Last().Kind.String()

	stats := app.session.Stats()
	st.Stats.MaxDepth = app.session.MaxDepth()
	st.Stats.States = stats.States
	st.Stats.WallsDrawn = stats.WallsDrawn
	st.Stats.SidesCulled = stats.SidesCulled
	st.Stats.Missing = stats.Missing
	st.Stats.DepthUsed = stats.MaxDepth
	return st
}

// dumpState writes the browser state as JSON. Bound to Ctrl+D.
func (app *App) dumpState() {
	data, err := json.MarshalIndent(app.state(), "", "  ")
	if err != nil {
		app.notify(fmt.Sprintf("State dump failed: %v", err))
		return
	}
	statePath := filepath.Join(app.outputDir(), "state.json")
	if err := os.WriteFile(statePath, data, 0644); err != nil {
		app.notify(fmt.Sprintf("State dump failed: %v", err))
		return
	}
	app.notify("State saved: state.json")
}

// checkAndExecuteCommand polls for a command file. Commands are single-shot;
// the file is removed before it runs.
func (app *App) checkAndExecuteCommand() {
	cmdPath := filepath.Join(app.outputDir(), "command.json")
	data, err := os.ReadFile(cmdPath)
	if err != nil {
		return
	}
	os.Remove(cmdPath)

	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		app.notify(fmt.Sprintf("Invalid command: %v", err))
		return
	}
	app.executeCommand(cmd)
}

func (app *App) executeCommand(cmd Command) {
	switch cmd.Action {
	case "open_scene":
		if err := app.OpenScene(cmd.Path); err != nil {
			app.notify(fmt.Sprintf("Open failed: %v", err))
			return
		}
		app.notify("Opened: " + cmd.Path)

	case "export_scene":
		if app.session == nil {
			app.notify("No scene loaded")
			return
		}
		app.exportScene(cmd.Path)

	case "select_instance":
		app.selectedInstance = scene.InstanceID(cmd.Value)
		app.selectedSide = -1
		app.notify("Selected: " + cmd.Value)

	case "set_depth":
		if app.session != nil {
			app.session.SetMaxDepth(cmd.Depth)
		}
		app.notify(fmt.Sprintf("Depth: %d", cmd.Depth))

	case "reset_camera":
		if app.session != nil {
			app.session.Reset()
		}
		app.notify("Camera reset")

	case "screenshot":
		app.screenshotRequested = true

	case "save_preview":
		app.savePreview()

	case "dump_state":
		app.dumpState()

	default:
		app.notify(fmt.Sprintf("Unknown command: %s", cmd.Action))
	}
}
