package groundmotion

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Body is the host-owned rigid body a Controller steers. The controller only
// reads position and velocity and writes velocity back once per step.
// Connected bodies additionally need the point transforms so platform motion
// can be followed. Implementations must be comparable, usually pointers,
// since platform identity is tracked with ==.
type Body interface {
	Position() mgl32.Vec3
	Velocity() mgl32.Vec3
	SetVelocity(v mgl32.Vec3)
	Mass() float32
	IsKinematic() bool
	TransformPoint(local mgl32.Vec3) mgl32.Vec3
	InverseTransformPoint(world mgl32.Vec3) mgl32.Vec3
}

// Validator is optionally implemented by bodies that can be destroyed while
// still referenced. An invalid connected body is treated as absent.
type Validator interface {
	Valid() bool
}

func bodyUsable(b Body) bool {
	if b == nil {
		return false
	}
	if v, ok := b.(Validator); ok {
		return v.Valid()
	}
	return true
}

// LayerMask selects collision layers, one bit per layer.
type LayerMask uint32

const Everything LayerMask = 0xFFFFFFFF

func LayerBit(layer int) LayerMask {
	if layer < 0 || layer > 31 {
		return 0
	}
	return LayerMask(1) << uint(layer)
}

func (m LayerMask) Contains(layer int) bool {
	return m&LayerBit(layer) != 0
}

type RaycastHit struct {
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Distance float32
	Body     Body // nil for static geometry
}

// Raycaster is the host's scene query used for ground snapping.
type Raycaster interface {
	Raycast(origin, dir mgl32.Vec3, maxDistance float32, mask LayerMask) (RaycastHit, bool)
}

// ContactSink receives contact normals from the host's collision phase.
// Controller implements it.
type ContactSink interface {
	IngestContact(other Body, normals ...mgl32.Vec3)
}

// InputSpace is the reference frame move directions are expressed in,
// usually a camera. Its axes are flattened onto the horizontal plane.
type InputSpace interface {
	Right() mgl32.Vec3
	Forward() mgl32.Vec3
}

// RotationSpace is an InputSpace derived from an orientation.
type RotationSpace mgl32.Quat

func (r RotationSpace) Right() mgl32.Vec3 {
	return mgl32.Quat(r).Rotate(worldRight)
}

func (r RotationSpace) Forward() mgl32.Vec3 {
	return mgl32.Quat(r).Rotate(worldForward)
}

// AxesSpace is an InputSpace with explicit axes.
type AxesSpace struct {
	RightAxis   mgl32.Vec3
	ForwardAxis mgl32.Vec3
}

func (a AxesSpace) Right() mgl32.Vec3   { return a.RightAxis }
func (a AxesSpace) Forward() mgl32.Vec3 { return a.ForwardAxis }
