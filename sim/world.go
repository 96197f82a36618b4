package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/gekko3d/groundmotion"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var ErrInvalidBody = errors.New("sim: invalid body")

// World is a small rigid body host: kinematic boxes follow their velocities,
// dynamic boxes fall, get pushed out of whatever they overlap and report the
// contact normals to their sink.
type World struct {
	Gravity         mgl32.Vec3
	UpdateFrequency float32 // Hz

	bodies []*Body
	byID   map[uuid.UUID]*Body
	sinks  map[*Body]groundmotion.ContactSink
	log    groundmotion.Logger
}

func NewWorld() *World {
	return &World{
		Gravity:         mgl32.Vec3{0, -9.81, 0},
		UpdateFrequency: 50.0,
		byID:            make(map[uuid.UUID]*Body),
		sinks:           make(map[*Body]groundmotion.ContactSink),
		log:             groundmotion.NewNopLogger(),
	}
}

func (w *World) SetLogger(logger groundmotion.Logger) {
	if logger != nil {
		w.log = logger
	}
}

func (w *World) FixedDelta() float32 {
	if w.UpdateFrequency <= 0 {
		return 1.0 / 50.0
	}
	return 1.0 / w.UpdateFrequency
}

func (w *World) Add(def BodyDef) (*Body, error) {
	he := def.HalfExtents
	if he.X() <= 0 || he.Y() <= 0 || he.Z() <= 0 {
		return nil, fmt.Errorf("%w: %q half extents %v must be positive", ErrInvalidBody, def.Name, he)
	}
	if def.Kind < Static || def.Kind > Dynamic {
		return nil, fmt.Errorf("%w: %q has kind %v", ErrInvalidBody, def.Name, def.Kind)
	}
	rot := def.Rotation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}
	mass := def.Mass
	if mass <= 0 {
		mass = 1
	}
	gravityScale := def.GravityScale
	if gravityScale == 0 {
		gravityScale = 1
	}

	b := &Body{
		id:           uuid.New(),
		name:         def.Name,
		kind:         def.Kind,
		transform:    Transform{Position: def.Position, Rotation: rot.Normalize()},
		halfExtents:  he,
		mass:         mass,
		gravityScale: gravityScale,
		layer:        def.Layer,
	}
	if def.Kind != Static {
		b.velocity = def.Velocity
	}
	if def.Kind == Kinematic {
		b.angularVelocity = def.AngularVelocity
	}

	w.bodies = append(w.bodies, b)
	w.byID[b.id] = b
	w.log.Debugf("added %s body %q (%s)", b.kind, b.name, b.id)
	return b, nil
}

// Remove takes body out of the world. It stays Valid() == false so holders
// of stale references can notice.
func (w *World) Remove(body *Body) bool {
	for i, b := range w.bodies {
		if b == body {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			delete(w.byID, b.id)
			delete(w.sinks, b)
			b.removed = true
			return true
		}
	}
	return false
}

func (w *World) Bodies() []*Body {
	return w.bodies
}

func (w *World) Body(id uuid.UUID) (*Body, bool) {
	b, ok := w.byID[id]
	return b, ok
}

// SetContactSink routes the contacts of a dynamic body to sink. A nil sink
// removes the route.
func (w *World) SetContactSink(body *Body, sink groundmotion.ContactSink) {
	if sink == nil {
		delete(w.sinks, body)
		return
	}
	w.sinks[body] = sink
}

// Simulate advances the world by dt. Contacts are delivered to sinks during
// the call.
func (w *World) Simulate(dt float32) {
	if dt <= 0 {
		return
	}

	// 1. Kinematic bodies
	for _, b := range w.bodies {
		if b.kind != Kinematic {
			continue
		}
		b.transform.Position = b.transform.Position.Add(b.velocity.Mul(dt))
		b.integrateRotation(dt)
	}

	// 2. Dynamic bodies
	for _, b := range w.bodies {
		if b.kind != Dynamic {
			continue
		}
		b.velocity = b.velocity.Add(w.Gravity.Mul(dt * b.gravityScale))

		displacement := b.velocity.Mul(dt)
		if l := float64(displacement.Len()); math.IsNaN(l) || math.IsInf(l, 0) {
			w.log.Warnf("body %q produced a non-finite displacement, zeroing velocity", b.name)
			b.velocity = mgl32.Vec3{}
			continue
		}
		b.transform.Position = b.transform.Position.Add(displacement)

		w.resolveContacts(b)
	}
}

func (w *World) resolveContacts(b *Body) {
	sink := w.sinks[b]
	for _, other := range w.bodies {
		if other == b {
			continue
		}
		collision, normal, penetration := checkOBBCollision(b, other)
		if !collision {
			continue
		}

		b.transform.Position = b.transform.Position.Add(normal.Mul(penetration))
		if vn := b.velocity.Dot(normal); vn < 0 {
			b.velocity = b.velocity.Sub(normal.Mul(vn))
		}

		if sink != nil {
			var ref groundmotion.Body
			if other.kind != Static {
				ref = other
			}
			sink.IngestContact(ref, normal)
		}
	}
}

// Raycast returns the nearest body face hit along dir within maxDistance.
// Bodies whose layer is outside mask, and bodies containing origin, are
// skipped. Static hits carry a nil Body.
func (w *World) Raycast(origin, dir mgl32.Vec3, maxDistance float32, mask groundmotion.LayerMask) (groundmotion.RaycastHit, bool) {
	if dir.LenSqr() < 1e-12 || maxDistance < 0 {
		return groundmotion.RaycastHit{}, false
	}
	dir = dir.Normalize()

	var best groundmotion.RaycastHit
	found := false
	for _, b := range w.bodies {
		if !mask.Contains(b.layer) {
			continue
		}
		t, normal, ok := intersectBox(b, origin, dir, maxDistance)
		if !ok || (found && t >= best.Distance) {
			continue
		}
		found = true
		best = groundmotion.RaycastHit{
			Point:    origin.Add(dir.Mul(t)),
			Normal:   normal,
			Distance: t,
		}
		if b.kind != Static {
			best.Body = b
		}
	}
	return best, found
}

var _ groundmotion.Raycaster = (*World)(nil)
