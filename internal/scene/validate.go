package scene

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	planarityTolerance = 1e-3
	normalTolerance    = 1e-3
)

// Validate checks the structural invariants the renderer and the boundary
// resolver rely on. All problems are reported together, wrapped in
// ErrInvalidScene. Connections that lead nowhere are not structural; see
// Warnings.
func (s *Scene) Validate() error {
	var problems []string
	s.check(collect(&problems), func(string, ...any) {})
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidScene, strings.Join(problems, "; "))
	}
	return nil
}

// Warnings lists portal connections that lead nowhere: a connection from a
// portal the blueprint does not have, or a target instance or portal that
// does not exist. Such a scene still loads; the renderer skips the branch
// and the boundary resolver treats the portal as a wall.
func (s *Scene) Warnings() []string {
	var warnings []string
	s.check(func(string, ...any) {}, collect(&warnings))
	return warnings
}

func collect(dst *[]string) func(string, ...any) {
	return func(format string, args ...any) {
		*dst = append(*dst, fmt.Sprintf(format, args...))
	}
}

// check walks the scene in id order, sending structural problems to report
// and dangling connections to warn.
func (s *Scene) check(report, warn func(string, ...any)) {
	bpIDs := maps.Keys(s.Blueprints)
	slices.Sort(bpIDs)
	for _, id := range bpIDs {
		validateBlueprint(s.Blueprints[id], report)
	}

	instIDs := maps.Keys(s.Instances)
	slices.Sort(instIDs)
	for _, id := range instIDs {
		s.validateInstance(s.Instances[id], report, warn)
	}

	if s.Camera.Instance != "" {
		if _, ok := s.Instances[s.Camera.Instance]; !ok {
			report("camera: %v %q", ErrUnknownInstance, s.Camera.Instance)
		}
	}
}

func validateBlueprint(bp *Blueprint, report func(string, ...any)) {
	if len(bp.Vertices) < 4 {
		report("blueprint %q: a hull needs at least 4 vertices, got %d", bp.ID, len(bp.Vertices))
	}
	if len(bp.Sides) < 4 {
		report("blueprint %q: a hull needs at least 4 sides, got %d", bp.ID, len(bp.Sides))
	}

	centroid := bp.Centroid()
	portals := make(map[PortalID]int)
	for i := range bp.Sides {
		side := &bp.Sides[i]
		if len(side.Indices) < 3 {
			report("blueprint %q side %d: needs at least 3 vertices", bp.ID, i)
			continue
		}
		if !validIndices(bp, i) {
			report("blueprint %q side %d: vertex index out of range", bp.ID, i)
			continue
		}
		if !side.Handler.Kind.Valid() {
			report("blueprint %q side %d: %v %d", bp.ID, i, ErrUnknownHandler, side.Handler.Kind)
		}
		if side.PortalID != "" {
			if prev, dup := portals[side.PortalID]; dup {
				report("blueprint %q: portal %q on sides %d and %d", bp.ID, side.PortalID, prev, i)
			}
			portals[side.PortalID] = i
		}

		if l := side.Normal.Length(); math32.Abs(l-1) > normalTolerance {
			report("blueprint %q side %d: normal is not unit length (%g)", bp.ID, i, l)
			continue
		}
		for k := range side.Indices {
			if d := bp.SignedDistance(i, bp.Vertex(i, k)); math32.Abs(d) > planarityTolerance {
				report("blueprint %q side %d: vertex %d is %g off the face plane", bp.ID, i, k, d)
				break
			}
		}
		if bp.SignedDistance(i, centroid) <= 0 {
			report("blueprint %q side %d: normal does not point inward", bp.ID, i)
		}
	}
}

func (s *Scene) validateInstance(inst *Instance, report, warn func(string, ...any)) {
	bp, ok := s.Blueprints[inst.Blueprint]
	if !ok {
		report("instance %q: %v %q", inst.ID, ErrUnknownBlueprint, inst.Blueprint)
		return
	}

	portals := maps.Keys(inst.Connections)
	slices.Sort(portals)
	for _, p := range portals {
		if _, ok := bp.PortalSide(p); !ok {
			warn("instance %q: connection from %v %q", inst.ID, ErrUnknownPortal, p)
		}
		s.checkTarget(inst.ID, inst.Connections[p].TargetInstance, inst.Connections[p].TargetPortal, warn)
	}

	sides := maps.Keys(inst.Overrides)
	slices.Sort(sides)
	for _, side := range sides {
		if side < 0 || side >= len(bp.Sides) {
			report("instance %q: override for side %d out of range", inst.ID, side)
			continue
		}
		h := inst.Overrides[side]
		if !h.Kind.Valid() {
			report("instance %q side %d: %v %d", inst.ID, side, ErrUnknownHandler, h.Kind)
		}
		if h.Kind == HandlerPortal && h.TargetInstance != "" {
			s.checkTarget(inst.ID, h.TargetInstance, h.TargetPortal, warn)
		}
	}

	for i := range bp.Sides {
		h := bp.Sides[i].Handler
		if h.Kind == HandlerPortal && h.TargetInstance != "" {
			s.checkTarget(inst.ID, h.TargetInstance, h.TargetPortal, warn)
		}
	}
}

func (s *Scene) checkTarget(from, target InstanceID, portal PortalID, warn func(string, ...any)) {
	inst, ok := s.Instances[target]
	if !ok {
		warn("instance %q: portal target %v %q", from, ErrUnknownInstance, target)
		return
	}
	bp, ok := s.Blueprints[inst.Blueprint]
	if !ok {
		return
	}
	if _, ok := bp.PortalSide(portal); !ok {
		warn("instance %q: portal target %q has no portal %q", from, target, portal)
	}
}
