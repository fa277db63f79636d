package main

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/Faultbox/hullgate/internal/scene"
)

// Colors for handler kinds in the side list.
var (
	colorWall     = imgui.NewVec4(0.8, 0.8, 0.8, 1)
	colorPortal   = imgui.NewVec4(0.4, 0.8, 1.0, 1)
	colorReserved = imgui.NewVec4(0.9, 0.6, 0.3, 1)
	colorDangling = imgui.NewVec4(1.0, 0.4, 0.4, 1)
)

func sortedInstances(sc *scene.Scene) []scene.InstanceID {
	ids := maps.Keys(sc.Instances)
	slices.Sort(ids)
	return ids
}

// renderScenePanel lists instances and the render controls.
func (app *App) renderScenePanel() {
	if app.session == nil {
		imgui.TextDisabled("No scene loaded")
		return
	}
	sc := app.session.Scene

	if imgui.TreeNodeExStrV("Render", imgui.TreeNodeFlagsDefaultOpen) {
		depth := int32(app.session.MaxDepth())
		if imgui.SliderIntV("Depth", &depth, 0, 16, "%d", imgui.SliderFlagsNone) {
			app.session.SetMaxDepth(int(depth))
		}
		wire := app.preview.Wireframe()
		if imgui.Checkbox("Wireframe", &wire) {
			app.preview.SetWireframe(wire)
		}
		if imgui.Button("Reset Camera") {
			app.session.Reset()
		}
		imgui.TreePop()
	}

	if app.problems != nil {
		imgui.Separator()
		imgui.TextColored(colorDangling, "Validation problems:")
		imgui.TextWrapped(app.problems.Error())
	}
	if len(app.warnings) > 0 {
		imgui.Separator()
		imgui.TextColored(colorDangling, fmt.Sprintf("Dangling connections (%d):", len(app.warnings)))
		for _, w := range app.warnings {
			imgui.TextWrapped("- " + w)
		}
	}

	imgui.Separator()
	imgui.Text(fmt.Sprintf("Blueprints: %d  Instances: %d", len(sc.Blueprints), len(sc.Instances)))

	if imgui.BeginChildStrV("InstanceList", imgui.NewVec2(0, 0), imgui.ChildFlagsBorders, 0) {
		for _, id := range sortedInstances(sc) {
			label := string(id)
			if id == sc.Camera.Instance {
				label += "  [camera]"
			}
			if imgui.SelectableBoolV(label, id == app.selectedInstance, 0, imgui.NewVec2(0, 0)) {
				app.selectedInstance = id
				app.selectedSide = -1
			}
		}
	}
	imgui.EndChild()
}

// renderInspector shows the selected instance's sides and handlers.
func (app *App) renderInspector() {
	if app.session == nil {
		return
	}
	sc := app.session.Scene
	inst, bp, err := sc.Lookup(app.selectedInstance)
	if err != nil {
		imgui.TextDisabled("Select an instance")
		return
	}

	imgui.Text(fmt.Sprintf("Instance: %s", inst.ID))
	imgui.Text(fmt.Sprintf("Blueprint: %s", bp.ID))
	imgui.Text(fmt.Sprintf("Vertices: %d  Sides: %d", len(bp.Vertices), len(bp.Sides)))

	if inst.ID == sc.Camera.Instance {
		p := sc.Camera.Position()
		imgui.Text(fmt.Sprintf("Camera: %.2f %.2f %.2f", p.X, p.Y, p.Z))
	}
	imgui.Separator()

	for i := range bp.Sides {
		h := scene.EffectiveHandler(inst, bp, i)
		label, col := describeSide(bp, i, h)
		if _, ok := inst.Overrides[i]; ok {
			label += " *"
		}
		imgui.TextColored(col, fmt.Sprintf("%2d", i))
		imgui.SameLine()
		if imgui.SelectableBoolV(label, i == app.selectedSide, 0, imgui.NewVec2(0, 0)) {
			app.selectedSide = i
		}
	}

	if app.selectedSide >= 0 && app.selectedSide < len(bp.Sides) {
		imgui.Separator()
		side := bp.Sides[app.selectedSide]
		n := side.Normal
		imgui.Text(fmt.Sprintf("Indices: %v", side.Indices))
		imgui.Text(fmt.Sprintf("Normal: %.2f %.2f %.2f", n.X, n.Y, n.Z))
		if cam := sc.Camera; inst.ID == cam.Instance {
			imgui.Text(fmt.Sprintf("Distance: %.3f", bp.SignedDistance(app.selectedSide, cam.Position())))
		}
	}
}

func describeSide(bp *scene.Blueprint, i int, h scene.HandlerConfig) (string, imgui.Vec4) {
	switch h.Kind {
	case scene.HandlerWall:
		c := h.Color
		return fmt.Sprintf("wall (%.2f %.2f %.2f)", c[0], c[1], c[2]), colorWall
	case scene.HandlerPortal:
		if h.TargetInstance == "" {
			return fmt.Sprintf("portal %s -> (none)", bp.Sides[i].PortalID), colorDangling
		}
		return fmt.Sprintf("portal %s -> %s/%s", bp.Sides[i].PortalID, h.TargetInstance, h.TargetPortal), colorPortal
	default:
		return h.Kind.String(), colorReserved
	}
}
