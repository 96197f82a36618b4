package sim

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Scene is the YAML description of a World.
type Scene struct {
	Gravity   []float32   `yaml:"gravity"`
	Frequency float32     `yaml:"frequency"`
	Bodies    []SceneBody `yaml:"bodies"`
}

type SceneBody struct {
	Name            string    `yaml:"name"`
	Kind            string    `yaml:"kind"`
	Position        []float32 `yaml:"position"`
	Rotation        []float32 `yaml:"rotation"` // euler degrees, XYZ order
	HalfExtents     []float32 `yaml:"half_extents"`
	Velocity        []float32 `yaml:"velocity"`
	AngularVelocity []float32 `yaml:"angular_velocity"`
	Mass            float32   `yaml:"mass"`
	Layer           int       `yaml:"layer"`
	GravityScale    *float32  `yaml:"gravity_scale"` // absent means 1
}

func ParseScene(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return &scene, nil
}

func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	scene, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	return scene, nil
}

// Build creates a World holding the scene's bodies, indexed by name.
func (s *Scene) Build() (*World, map[string]*Body, error) {
	world := NewWorld()
	if s.Gravity != nil {
		g, err := toVec3("gravity", s.Gravity, mgl32.Vec3{})
		if err != nil {
			return nil, nil, err
		}
		world.Gravity = g
	}
	if s.Frequency > 0 {
		world.UpdateFrequency = s.Frequency
	}

	named := make(map[string]*Body, len(s.Bodies))
	for i, sb := range s.Bodies {
		def, err := sb.def()
		if err != nil {
			return nil, nil, fmt.Errorf("body %d: %w", i, err)
		}
		if def.Name != "" {
			if _, dup := named[def.Name]; dup {
				return nil, nil, fmt.Errorf("body %d: duplicate name %q", i, def.Name)
			}
		}
		b, err := world.Add(def)
		if err != nil {
			return nil, nil, fmt.Errorf("body %d: %w", i, err)
		}
		if sb.GravityScale != nil {
			b.SetGravityScale(*sb.GravityScale)
		}
		if def.Name != "" {
			named[def.Name] = b
		}
	}
	return world, named, nil
}

func (sb SceneBody) def() (BodyDef, error) {
	kind, err := ParseBodyKind(sb.Kind)
	if err != nil {
		return BodyDef{}, err
	}
	pos, err := toVec3("position", sb.Position, mgl32.Vec3{})
	if err != nil {
		return BodyDef{}, err
	}
	euler, err := toVec3("rotation", sb.Rotation, mgl32.Vec3{})
	if err != nil {
		return BodyDef{}, err
	}
	he, err := toVec3("half_extents", sb.HalfExtents, mgl32.Vec3{0.5, 0.5, 0.5})
	if err != nil {
		return BodyDef{}, err
	}
	vel, err := toVec3("velocity", sb.Velocity, mgl32.Vec3{})
	if err != nil {
		return BodyDef{}, err
	}
	angVel, err := toVec3("angular_velocity", sb.AngularVelocity, mgl32.Vec3{})
	if err != nil {
		return BodyDef{}, err
	}

	rot := mgl32.AnglesToQuat(
		mgl32.DegToRad(euler.X()),
		mgl32.DegToRad(euler.Y()),
		mgl32.DegToRad(euler.Z()),
		mgl32.XYZ,
	)
	return BodyDef{
		Name:            sb.Name,
		Kind:            kind,
		Position:        pos,
		Rotation:        rot,
		HalfExtents:     he,
		Velocity:        vel,
		AngularVelocity: angVel,
		Mass:            sb.Mass,
		Layer:           sb.Layer,
	}, nil
}

func toVec3(field string, vals []float32, fallback mgl32.Vec3) (mgl32.Vec3, error) {
	if vals == nil {
		return fallback, nil
	}
	if len(vals) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%s: want 3 components, got %d", field, len(vals))
	}
	return mgl32.Vec3{vals[0], vals[1], vals[2]}, nil
}
