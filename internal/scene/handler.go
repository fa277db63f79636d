package scene

import (
	"fmt"
	"strings"
)

// HandlerKind selects how a hull side is rendered.
type HandlerKind uint8

// Handler kinds. Only Wall and Portal produce output; the remaining kinds
// are accepted in scene files and skipped by the renderer.
const (
	HandlerWall HandlerKind = iota
	HandlerPortal
	HandlerMirror
	HandlerCameraDisplay
	HandlerNonEuclideanPortal
	HandlerTransparentWall
)

var handlerNames = [...]string{
	HandlerWall:               "wall",
	HandlerPortal:             "portal",
	HandlerMirror:             "mirror",
	HandlerCameraDisplay:      "camera_display",
	HandlerNonEuclideanPortal: "non_euclidean_portal",
	HandlerTransparentWall:    "transparent_wall",
}

func (k HandlerKind) String() string {
	if int(k) < len(handlerNames) {
		return handlerNames[k]
	}
	return fmt.Sprintf("HandlerKind(%d)", k)
}

// Valid reports whether k is a known kind.
func (k HandlerKind) Valid() bool {
	return int(k) < len(handlerNames)
}

// ParseHandlerKind maps a scene-file name to a HandlerKind. Matching is
// case-insensitive and accepts '-' for '_'.
func ParseHandlerKind(s string) (HandlerKind, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, n := range handlerNames {
		if n == name {
			return HandlerKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHandler, s)
}

// Color is a linear RGBA color.
type Color [4]float32

// RGB returns an opaque color.
func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

// HandlerConfig is the closed set of per-side behaviours. Kind selects the
// variant; only the fields of that variant are meaningful.
type HandlerConfig struct {
	Kind HandlerKind

	// Wall
	Color     Color
	TextureID string

	// Portal. An empty TargetInstance is resolved through the owning
	// instance's connection table.
	TargetInstance InstanceID
	TargetPortal   PortalID
}

// Wall returns a solid wall handler.
func Wall(c Color) HandlerConfig {
	return HandlerConfig{Kind: HandlerWall, Color: c}
}

// Portal returns a portal handler bound to a fixed target.
func Portal(target InstanceID, portal PortalID) HandlerConfig {
	return HandlerConfig{Kind: HandlerPortal, TargetInstance: target, TargetPortal: portal}
}

// ConnectedPortal returns a portal handler whose target comes from the
// instance connection table.
func ConnectedPortal() HandlerConfig {
	return HandlerConfig{Kind: HandlerPortal}
}

// Reserved returns a handler of a kind that renders nothing.
func Reserved(kind HandlerKind) HandlerConfig {
	return HandlerConfig{Kind: kind}
}
