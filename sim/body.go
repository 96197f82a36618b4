package sim

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type BodyKind int

const (
	Static BodyKind = iota
	Kinematic
	Dynamic
)

func (k BodyKind) String() string {
	switch k {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

func ParseBodyKind(s string) (BodyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static", "":
		return Static, nil
	case "kinematic":
		return Kinematic, nil
	case "dynamic":
		return Dynamic, nil
	}
	return Static, fmt.Errorf("unknown body kind %q", s)
}

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func (t Transform) ObjectToWorld() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	return translate.Mul4(t.Rotation.Mat4())
}

func (t Transform) WorldToObject() mgl32.Mat4 {
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())
	return t.Rotation.Conjugate().Mat4().Mul4(invTranslate)
}

func (t Transform) axes() [3]mgl32.Vec3 {
	rot := t.Rotation.Mat4()
	return [3]mgl32.Vec3{
		rot.Col(0).Vec3(),
		rot.Col(1).Vec3(),
		rot.Col(2).Vec3(),
	}
}

// BodyDef describes a body to add to a World.
type BodyDef struct {
	Name            string
	Kind            BodyKind
	Position        mgl32.Vec3
	Rotation        mgl32.Quat // zero value means identity
	HalfExtents     mgl32.Vec3
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3 // kinematic bodies only
	Mass            float32
	Layer           int
	// GravityScale multiplies world gravity for dynamic bodies. Zero means 1;
	// use Body.SetGravityScale(0) for a body that ignores gravity.
	GravityScale    float32
}

// Body is an oriented box in a World. It satisfies groundmotion.Body.
type Body struct {
	id              uuid.UUID
	name            string
	kind            BodyKind
	transform       Transform
	halfExtents     mgl32.Vec3
	velocity        mgl32.Vec3
	angularVelocity mgl32.Vec3
	mass            float32
	gravityScale    float32
	layer           int
	removed         bool
}

func (b *Body) ID() uuid.UUID               { return b.id }
func (b *Body) Name() string                { return b.name }
func (b *Body) Kind() BodyKind              { return b.kind }
func (b *Body) Layer() int                  { return b.layer }
func (b *Body) HalfExtents() mgl32.Vec3     { return b.halfExtents }
func (b *Body) Transform() Transform        { return b.transform }
func (b *Body) Position() mgl32.Vec3        { return b.transform.Position }
func (b *Body) Rotation() mgl32.Quat        { return b.transform.Rotation }
func (b *Body) Velocity() mgl32.Vec3        { return b.velocity }
func (b *Body) AngularVelocity() mgl32.Vec3 { return b.angularVelocity }
func (b *Body) Mass() float32               { return b.mass }
func (b *Body) GravityScale() float32       { return b.gravityScale }
func (b *Body) Valid() bool                 { return !b.removed }

// IsKinematic reports whether the body ignores forces. Static bodies count.
func (b *Body) IsKinematic() bool { return b.kind != Dynamic }

func (b *Body) SetVelocity(v mgl32.Vec3) {
	if b.kind == Static {
		return
	}
	b.velocity = v
}

func (b *Body) SetAngularVelocity(v mgl32.Vec3) {
	if b.kind != Kinematic {
		return
	}
	b.angularVelocity = v
}

func (b *Body) SetGravityScale(scale float32) {
	b.gravityScale = scale
}

func (b *Body) SetPosition(p mgl32.Vec3) {
	b.transform.Position = p
}

func (b *Body) TransformPoint(local mgl32.Vec3) mgl32.Vec3 {
	return b.transform.Position.Add(b.transform.Rotation.Rotate(local))
}

func (b *Body) InverseTransformPoint(world mgl32.Vec3) mgl32.Vec3 {
	return b.transform.Rotation.Conjugate().Rotate(world.Sub(b.transform.Position))
}

// integrateRotation advances the orientation by the angular velocity.
func (b *Body) integrateRotation(dt float32) {
	if b.angularVelocity.Len() == 0 {
		return
	}
	spin := mgl32.Quat{W: 0, V: b.angularVelocity.Mul(0.5 * dt)}
	b.transform.Rotation = b.transform.Rotation.Add(spin.Mul(b.transform.Rotation)).Normalize()
}
