// Package input turns SDL2 events into viewer actions and camera intent.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/hullgate/internal/camera"
)

// Action is something a key can be bound to.
type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionBack
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	ActionTurnLeft
	ActionTurnRight
	ActionLookUp
	ActionLookDown
	ActionQuit
	ActionToggleMouse
	ActionToggleStats
	ActionToggleWireframe
	ActionScreenshot
	ActionResetCamera
	ActionDepthMore
	ActionDepthLess
	actionCount
)

// Bindings maps scancodes to actions.
type Bindings map[sdl.Scancode]Action

// DefaultBindings returns WASD movement with arrow-key turning.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.SCANCODE_W:            ActionForward,
		sdl.SCANCODE_S:            ActionBack,
		sdl.SCANCODE_A:            ActionLeft,
		sdl.SCANCODE_D:            ActionRight,
		sdl.SCANCODE_SPACE:        ActionUp,
		sdl.SCANCODE_LCTRL:        ActionDown,
		sdl.SCANCODE_C:            ActionDown,
		sdl.SCANCODE_LEFT:         ActionTurnLeft,
		sdl.SCANCODE_RIGHT:        ActionTurnRight,
		sdl.SCANCODE_UP:           ActionLookUp,
		sdl.SCANCODE_DOWN:         ActionLookDown,
		sdl.SCANCODE_ESCAPE:       ActionQuit,
		sdl.SCANCODE_TAB:          ActionToggleMouse,
		sdl.SCANCODE_F1:           ActionToggleStats,
		sdl.SCANCODE_F2:           ActionToggleWireframe,
		sdl.SCANCODE_F12:          ActionScreenshot,
		sdl.SCANCODE_R:            ActionResetCamera,
		sdl.SCANCODE_RIGHTBRACKET: ActionDepthMore,
		sdl.SCANCODE_LEFTBRACKET:  ActionDepthLess,
	}
}

// Input collects one frame of events. Held actions persist across frames;
// pressed actions and mouse motion reset on every Update.
type Input struct {
	bindings Bindings

	held    [actionCount]bool
	pressed [actionCount]bool

	mouseDX, mouseDY float32

	resized       bool
	width, height int
}

// New creates an input handler with the default bindings.
func New() *Input {
	return &Input{bindings: DefaultBindings()}
}

// Bind rebinds a key.
func (i *Input) Bind(key sdl.Scancode, a Action) {
	i.bindings[key] = a
}

// Update polls SDL events. It returns true when the window was closed.
func (i *Input) Update() bool {
	i.pressed = [actionCount]bool{}
	i.mouseDX, i.mouseDY = 0, 0
	i.resized = false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.resized = true
				i.width, i.height = int(e.Data1), int(e.Data2)
			}

		case *sdl.KeyboardEvent:
			a := i.bindings[e.Keysym.Scancode]
			if a == ActionNone {
				continue
			}
			down := e.Type == sdl.KEYDOWN
			if down && e.Repeat == 0 {
				i.pressed[a] = true
			}
			i.held[a] = down

		case *sdl.MouseMotionEvent:
			i.mouseDX += float32(e.XRel)
			i.mouseDY += float32(e.YRel)
		}
	}

	return false
}

// Pressed reports whether a went down during the last Update.
func (i *Input) Pressed(a Action) bool { return i.pressed[a] }

// Held reports whether a is currently held.
func (i *Input) Held(a Action) bool { return i.held[a] }

// Resized returns the new window size if it changed during the last
// Update.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

// Camera returns this frame's movement intent. Mouse motion is included
// only when mouseLook is set.
func (i *Input) Camera(mouseLook bool) camera.Input {
	in := camera.Input{
		Forward:   i.held[ActionForward],
		Back:      i.held[ActionBack],
		Left:      i.held[ActionLeft],
		Right:     i.held[ActionRight],
		Up:        i.held[ActionUp],
		Down:      i.held[ActionDown],
		TurnLeft:  i.held[ActionTurnLeft],
		TurnRight: i.held[ActionTurnRight],
		LookUp:    i.held[ActionLookUp],
		LookDown:  i.held[ActionLookDown],
	}
	if mouseLook {
		in.MouseDX, in.MouseDY = i.mouseDX, i.mouseDY
	}
	return in
}
