// Package scene holds the hull blueprints, their instances and the portal
// connectivity between them, plus the camera's place in that graph.
//
// The scene has no global coordinate frame. Every instance lives in its own
// blueprint space and instances relate only through portal alignment
// transforms, computed on demand.
package scene

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/Faultbox/hullgate/pkg/math"
)

// InstanceID identifies a placed hull.
type InstanceID string

// Connection is the far end of a portal.
type Connection struct {
	TargetInstance InstanceID
	TargetPortal   PortalID
}

// Instance is a placed use of a blueprint.
type Instance struct {
	ID        InstanceID
	Blueprint BlueprintID
	// Placement positions the instance for overview displays only; the
	// renderer never reads it.
	Placement math.Mat4
	// Connections maps this instance's portal ids to their targets.
	Connections map[PortalID]Connection
	// Overrides replaces the blueprint handler of individual sides.
	Overrides map[int]HandlerConfig
}

// NewInstance returns an instance of blueprint with identity placement.
func NewInstance(id InstanceID, blueprint BlueprintID) *Instance {
	return &Instance{
		ID:          id,
		Blueprint:   blueprint,
		Placement:   math.Identity(),
		Connections: make(map[PortalID]Connection),
		Overrides:   make(map[int]HandlerConfig),
	}
}

// Camera is the viewer's pose in the local space of its host instance.
type Camera struct {
	Instance InstanceID
	// Pose maps camera space (looking down -Z, +Y up) to host-local space.
	Pose math.Mat4
}

// Position returns the camera origin in host-local space.
func (c Camera) Position() math.Vec3 {
	return c.Pose.Translation()
}

// Scene owns blueprints and instances by id.
type Scene struct {
	Blueprints map[BlueprintID]*Blueprint
	Instances  map[InstanceID]*Instance
	Camera     Camera
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		Blueprints: make(map[BlueprintID]*Blueprint),
		Instances:  make(map[InstanceID]*Instance),
		Camera:     Camera{Pose: math.Identity()},
	}
}

// AddBlueprint registers b.
func (s *Scene) AddBlueprint(b *Blueprint) error {
	if _, ok := s.Blueprints[b.ID]; ok {
		return fmt.Errorf("%w: blueprint %q", ErrDuplicateID, b.ID)
	}
	s.Blueprints[b.ID] = b
	return nil
}

// AddInstance registers inst. Its blueprint must already exist.
func (s *Scene) AddInstance(inst *Instance) error {
	if _, ok := s.Instances[inst.ID]; ok {
		return fmt.Errorf("%w: instance %q", ErrDuplicateID, inst.ID)
	}
	if _, ok := s.Blueprints[inst.Blueprint]; !ok {
		return fmt.Errorf("instance %q: %w %q", inst.ID, ErrUnknownBlueprint, inst.Blueprint)
	}
	if inst.Connections == nil {
		inst.Connections = make(map[PortalID]Connection)
	}
	if inst.Overrides == nil {
		inst.Overrides = make(map[int]HandlerConfig)
	}
	s.Instances[inst.ID] = inst
	return nil
}

// Connect links portal pa of instance a with portal pb of instance b in
// both directions.
func (s *Scene) Connect(a InstanceID, pa PortalID, b InstanceID, pb PortalID) error {
	ia, bpa, err := s.Lookup(a)
	if err != nil {
		return err
	}
	ib, bpb, err := s.Lookup(b)
	if err != nil {
		return err
	}
	if _, ok := bpa.PortalSide(pa); !ok {
		return fmt.Errorf("instance %q: %w %q", a, ErrUnknownPortal, pa)
	}
	if _, ok := bpb.PortalSide(pb); !ok {
		return fmt.Errorf("instance %q: %w %q", b, ErrUnknownPortal, pb)
	}
	ia.Connections[pa] = Connection{TargetInstance: b, TargetPortal: pb}
	ib.Connections[pb] = Connection{TargetInstance: a, TargetPortal: pa}
	return nil
}

// Lookup returns an instance and its blueprint.
func (s *Scene) Lookup(id InstanceID) (*Instance, *Blueprint, error) {
	inst, ok := s.Instances[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownInstance, id)
	}
	bp, ok := s.Blueprints[inst.Blueprint]
	if !ok {
		return nil, nil, fmt.Errorf("instance %q: %w %q", id, ErrUnknownBlueprint, inst.Blueprint)
	}
	return inst, bp, nil
}

// EffectiveHandler returns the handler for side i of inst: the instance
// override if present, else the blueprint default. A portal handler with no
// explicit target is completed from the instance connection table; if the
// side has no connection the target stays empty.
func EffectiveHandler(inst *Instance, bp *Blueprint, side int) HandlerConfig {
	h, ok := inst.Overrides[side]
	if !ok {
		h = bp.Sides[side].Handler
	}
	if h.Kind == HandlerPortal && h.TargetInstance == "" {
		if conn, ok := inst.Connections[bp.Sides[side].PortalID]; ok {
			h.TargetInstance = conn.TargetInstance
			h.TargetPortal = conn.TargetPortal
		}
	}
	return h
}

// SetCamera places the camera in instance id with the given local pose.
func (s *Scene) SetCamera(id InstanceID, pose math.Mat4) error {
	if _, _, err := s.Lookup(id); err != nil {
		return err
	}
	s.Camera = Camera{Instance: id, Pose: pose}
	return nil
}

// Snapshot returns a deep copy of the scene.
func (s *Scene) Snapshot() (*Scene, error) {
	out := New()
	if err := copier.CopyWithOption(out, s, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("snapshot scene: %w", err)
	}
	return out, nil
}
