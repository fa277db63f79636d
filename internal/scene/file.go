package scene

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/hullgate/pkg/math"
)

// Description is the on-disk form of a scene. It is encoded as YAML or
// TOML depending on the file extension.
type Description struct {
	Blueprints []BlueprintDesc `yaml:"blueprints" toml:"blueprints"`
	Instances  []InstanceDesc  `yaml:"instances" toml:"instances"`
	Start      StartDesc       `yaml:"start" toml:"start"`
}

// BlueprintDesc describes a hull. Either Vertices and Sides are given, or
// Cuboid holds half extents and Faces styles the generated sides by name.
type BlueprintDesc struct {
	ID       string              `yaml:"id" toml:"id"`
	Cuboid   *[3]float32         `yaml:"cuboid,omitempty" toml:"cuboid,omitempty"`
	Faces    map[string]SideDesc `yaml:"faces,omitempty" toml:"faces,omitempty"`
	Vertices [][3]float32        `yaml:"vertices,omitempty" toml:"vertices,omitempty"`
	Sides    []SideDesc          `yaml:"sides,omitempty" toml:"sides,omitempty"`
}

// SideDesc describes one side. A missing normal is computed from the
// winding and oriented toward the hull centroid.
type SideDesc struct {
	Indices []int       `yaml:"indices,omitempty" toml:"indices,omitempty"`
	Normal  *[3]float32 `yaml:"normal,omitempty" toml:"normal,omitempty"`
	Handler HandlerDesc `yaml:"handler" toml:"handler"`
	Portal  string      `yaml:"portal,omitempty" toml:"portal,omitempty"`
}

// HandlerDesc is the on-disk HandlerConfig.
type HandlerDesc struct {
	Kind           string    `yaml:"kind" toml:"kind"`
	Color          []float32 `yaml:"color,omitempty" toml:"color,omitempty"`
	Texture        string    `yaml:"texture,omitempty" toml:"texture,omitempty"`
	TargetInstance string    `yaml:"target_instance,omitempty" toml:"target_instance,omitempty"`
	TargetPortal   string    `yaml:"target_portal,omitempty" toml:"target_portal,omitempty"`
}

// InstanceDesc describes a placed hull.
type InstanceDesc struct {
	ID          string           `yaml:"id" toml:"id"`
	Blueprint   string           `yaml:"blueprint" toml:"blueprint"`
	Position    [3]float32       `yaml:"position,omitempty" toml:"position,omitempty"`
	Connections []ConnectionDesc `yaml:"connections,omitempty" toml:"connections,omitempty"`
	Overrides   []OverrideDesc   `yaml:"overrides,omitempty" toml:"overrides,omitempty"`
}

// ConnectionDesc links one portal of the enclosing instance to a target.
type ConnectionDesc struct {
	Portal         string `yaml:"portal" toml:"portal"`
	TargetInstance string `yaml:"target_instance" toml:"target_instance"`
	TargetPortal   string `yaml:"target_portal" toml:"target_portal"`
}

// OverrideDesc replaces the handler of one side for one instance.
type OverrideDesc struct {
	Side    int         `yaml:"side" toml:"side"`
	Handler HandlerDesc `yaml:"handler" toml:"handler"`
}

// StartDesc places the camera.
type StartDesc struct {
	Instance string     `yaml:"instance" toml:"instance"`
	Position [3]float32 `yaml:"position" toml:"position"`
	Yaw      float32    `yaml:"yaw" toml:"yaw"`
	Pitch    float32    `yaml:"pitch" toml:"pitch"`
}

func vec(a [3]float32) math.Vec3 { return math.Vec3{X: a[0], Y: a[1], Z: a[2]} }

func arr(v math.Vec3) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

func (h HandlerDesc) config() (HandlerConfig, error) {
	kind, err := ParseHandlerKind(h.Kind)
	if err != nil {
		return HandlerConfig{}, err
	}
	cfg := HandlerConfig{
		Kind:           kind,
		TextureID:      h.Texture,
		TargetInstance: InstanceID(h.TargetInstance),
		TargetPortal:   PortalID(h.TargetPortal),
	}
	if kind == HandlerWall {
		cfg.Color = RGB(1, 1, 1)
	}
	switch len(h.Color) {
	case 0:
	case 3:
		cfg.Color = RGB(h.Color[0], h.Color[1], h.Color[2])
	case 4:
		copy(cfg.Color[:], h.Color)
	default:
		return HandlerConfig{}, fmt.Errorf("color needs 3 or 4 components, got %d", len(h.Color))
	}
	return cfg, nil
}

func describeHandler(h HandlerConfig) HandlerDesc {
	d := HandlerDesc{
		Kind:           h.Kind.String(),
		TargetInstance: string(h.TargetInstance),
		TargetPortal:   string(h.TargetPortal),
	}
	if h.Kind == HandlerWall {
		d.Color = h.Color[:]
		d.Texture = h.TextureID
	}
	return d
}

func (d *BlueprintDesc) build() (*Blueprint, error) {
	var bp *Blueprint
	if d.Cuboid != nil {
		bp = NewCuboid(BlueprintID(d.ID), vec(*d.Cuboid))
		for name, sd := range d.Faces {
			idx := slices.Index(CuboidSideNames[:], strings.ToLower(name))
			if idx < 0 {
				return nil, fmt.Errorf("blueprint %q: unknown cuboid face %q", d.ID, name)
			}
			h, err := sd.Handler.config()
			if err != nil {
				return nil, fmt.Errorf("blueprint %q face %s: %w", d.ID, name, err)
			}
			bp.Sides[idx].Handler = h
			bp.Sides[idx].PortalID = PortalID(sd.Portal)
		}
		return bp, nil
	}

	bp = &Blueprint{ID: BlueprintID(d.ID)}
	for _, v := range d.Vertices {
		bp.Vertices = append(bp.Vertices, vec(v))
	}
	for i, sd := range d.Sides {
		h, err := sd.Handler.config()
		if err != nil {
			return nil, fmt.Errorf("blueprint %q side %d: %w", d.ID, i, err)
		}
		bp.Sides = append(bp.Sides, Side{
			Indices:  append([]int(nil), sd.Indices...),
			Handler:  h,
			PortalID: PortalID(sd.Portal),
		})
		if sd.Normal != nil {
			bp.Sides[i].Normal = vec(*sd.Normal).Normalize()
		}
	}
	// Normals are derived after all sides exist so the centroid is final.
	for i, sd := range d.Sides {
		if sd.Normal == nil && validIndices(bp, i) {
			bp.Sides[i].Normal = bp.InwardNormal(i)
		}
	}
	return bp, nil
}

func validIndices(bp *Blueprint, side int) bool {
	for _, idx := range bp.Sides[side].Indices {
		if idx < 0 || idx >= len(bp.Vertices) {
			return false
		}
	}
	return len(bp.Sides[side].Indices) >= 3
}

// FromDescription builds and validates a scene.
func FromDescription(d *Description) (*Scene, error) {
	sc := New()
	for i := range d.Blueprints {
		bp, err := d.Blueprints[i].build()
		if err != nil {
			return nil, err
		}
		if err := sc.AddBlueprint(bp); err != nil {
			return nil, err
		}
	}

	for _, id := range d.Instances {
		inst := NewInstance(InstanceID(id.ID), BlueprintID(id.Blueprint))
		inst.Placement = math.TranslateVec(vec(id.Position))
		for _, c := range id.Connections {
			inst.Connections[PortalID(c.Portal)] = Connection{
				TargetInstance: InstanceID(c.TargetInstance),
				TargetPortal:   PortalID(c.TargetPortal),
			}
		}
		for _, o := range id.Overrides {
			h, err := o.Handler.config()
			if err != nil {
				return nil, fmt.Errorf("instance %q side %d: %w", id.ID, o.Side, err)
			}
			inst.Overrides[o.Side] = h
		}
		if err := sc.AddInstance(inst); err != nil {
			return nil, err
		}
	}

	if d.Start.Instance != "" {
		pose := YawPitchPose(vec(d.Start.Position), d.Start.Yaw, d.Start.Pitch)
		if err := sc.SetCamera(InstanceID(d.Start.Instance), pose); err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Describe returns the on-disk form of the scene with ids in sorted order.
// Blueprints are always written in explicit vertex form.
func (s *Scene) Describe() *Description {
	d := &Description{}

	bpIDs := maps.Keys(s.Blueprints)
	slices.Sort(bpIDs)
	for _, id := range bpIDs {
		bp := s.Blueprints[id]
		bd := BlueprintDesc{ID: string(bp.ID)}
		for _, v := range bp.Vertices {
			bd.Vertices = append(bd.Vertices, arr(v))
		}
		for _, side := range bp.Sides {
			n := arr(side.Normal)
			bd.Sides = append(bd.Sides, SideDesc{
				Indices: append([]int(nil), side.Indices...),
				Normal:  &n,
				Handler: describeHandler(side.Handler),
				Portal:  string(side.PortalID),
			})
		}
		d.Blueprints = append(d.Blueprints, bd)
	}

	instIDs := maps.Keys(s.Instances)
	slices.Sort(instIDs)
	for _, id := range instIDs {
		inst := s.Instances[id]
		idesc := InstanceDesc{
			ID:        string(inst.ID),
			Blueprint: string(inst.Blueprint),
			Position:  arr(inst.Placement.Translation()),
		}
		portals := maps.Keys(inst.Connections)
		slices.Sort(portals)
		for _, p := range portals {
			c := inst.Connections[p]
			idesc.Connections = append(idesc.Connections, ConnectionDesc{
				Portal:         string(p),
				TargetInstance: string(c.TargetInstance),
				TargetPortal:   string(c.TargetPortal),
			})
		}
		sides := maps.Keys(inst.Overrides)
		slices.Sort(sides)
		for _, side := range sides {
			idesc.Overrides = append(idesc.Overrides, OverrideDesc{
				Side:    side,
				Handler: describeHandler(inst.Overrides[side]),
			})
		}
		d.Instances = append(d.Instances, idesc)
	}

	if s.Camera.Instance != "" {
		forward := s.Camera.Pose.TransformDirection(math.Vec3{Z: -1})
		yaw, pitch := YawPitchFromForward(forward)
		d.Start = StartDesc{
			Instance: string(s.Camera.Instance),
			Position: arr(s.Camera.Position()),
			Yaw:      yaw,
			Pitch:    pitch,
		}
	}
	return d
}

// Encode writes d in the given format ("yaml" or "toml").
func (d *Description) Encode(format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case "toml":
		data, err := toml.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, format)
	}
}

// DecodeDescription parses data in the given format.
func DecodeDescription(data []byte, format string) (*Description, error) {
	var d Description
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, format)
	}
	return &d, nil
}

// FormatOf returns the encoding implied by a path's extension.
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// LoadFile reads a scene description from path.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	d, err := DecodeDescription(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc, err := FromDescription(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// SaveFile writes the scene description to path.
func SaveFile(s *Scene, path string) error {
	data, err := s.Describe().Encode(FormatOf(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create scene dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}
