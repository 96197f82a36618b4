package groundmotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Step counters stop here so they never overflow.
	stepCounterCeiling = 500
	// Contacts facing further down than this are ceilings and overhangs.
	steepUpDotFloor = -0.01
)

type MotionState int

const (
	Airborne MotionState = iota
	Grounded
	SteepOnly
)

func (s MotionState) String() string {
	switch s {
	case Airborne:
		return "airborne"
	case Grounded:
		return "grounded"
	case SteepOnly:
		return "steep"
	default:
		return "unknown"
	}
}

// StepResult describes what a single Step decided.
type StepResult struct {
	State              MotionState
	GroundContacts     int
	SteepContacts      int
	ContactNormal      mgl32.Vec3
	ConnectionVelocity mgl32.Vec3
	Snapped            bool // grounded through the snap probe
	Promoted           bool // grounded through averaged steep contacts
	Landed             bool // the grounded event fired this step
	Jumped             bool
}

type Option func(*Controller)

// WithInputSpace makes Move directions relative to space instead of the
// world axes.
func WithInputSpace(space InputSpace) Option {
	return func(c *Controller) {
		c.inputSpace = space
	}
}

func WithLogger(logger Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

// Controller keeps a rigid body walking on the ground. The host reports
// contacts through IngestContact during its collision phase and then calls
// Step exactly once per fixed tick. Move, Stop and Jump are the caller's
// command surface. A Controller is not safe for concurrent use.
type Controller struct {
	cfg          Config
	minGroundDot float32
	raycaster    Raycaster
	inputSpace   InputSpace
	log          Logger

	acc                stepAccumulator
	velocity           mgl32.Vec3
	contactNormal      mgl32.Vec3
	connectionVelocity mgl32.Vec3

	desiredVelocity mgl32.Vec3
	maxSpeed        float32
	rightAxis       mgl32.Vec3
	forwardAxis     mgl32.Vec3

	desiredJump bool
	jumpHeight  float32

	stepsSinceGrounded int
	stepsSinceJump     int

	previousConnected       Body
	connectionWorldPosition mgl32.Vec3
	connectionLocalPosition mgl32.Vec3

	last      StepResult
	observers groundedObservers
}

func NewController(cfg Config, raycaster Raycaster, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if raycaster == nil {
		return nil, ErrNilRaycaster
	}
	c := &Controller{
		cfg:          cfg,
		minGroundDot: cfg.minGroundDot(),
		raycaster:    raycaster,
		log:          NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rightAxis, c.forwardAxis = c.inputAxes()
	return c, nil
}

func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) State() MotionState      { return c.last.State }
func (c *Controller) IsGrounded() bool        { return c.last.State == Grounded }
func (c *Controller) IsOnSteep() bool         { return c.last.SteepContacts > 0 }
func (c *Controller) LastStep() StepResult    { return c.last }
func (c *Controller) StepsSinceGrounded() int { return c.stepsSinceGrounded }
func (c *Controller) StepsSinceJump() int     { return c.stepsSinceJump }

// DesiredVelocity is the current intent in input axes (x right, z forward).
func (c *Controller) DesiredVelocity() mgl32.Vec3 { return c.desiredVelocity }

// OnGrounded registers fn to run inside Step whenever the body lands after
// more than one step off the ground.
func (c *Controller) OnGrounded(fn func()) ListenerID {
	return c.observers.add(fn)
}

func (c *Controller) RemoveListener(id ListenerID) bool {
	return c.observers.remove(id)
}

// IngestContact classifies the contact normals of one collision against
// other, which is nil for static geometry.
func (c *Controller) IngestContact(other Body, normals ...mgl32.Vec3) {
	for _, n := range normals {
		if n.LenSqr() < degenerateLenSqr || !finite(n) {
			c.log.Debugf("discarding degenerate contact normal %v", n)
			continue
		}
		n = normalizeOr(n, worldUp)
		upDot := worldUp.Dot(n)
		if upDot >= c.minGroundDot {
			c.acc.addGround(n, other)
		} else if upDot > steepUpDotFloor {
			c.acc.addSteep(n, other)
		}
	}
}

// Move sets the desired horizontal velocity. direction.X runs along the
// input space's right axis and direction.Z along its forward axis; Y is
// ignored. maxSpeed bounds the velocity change per second.
func (c *Controller) Move(direction mgl32.Vec3, maxSpeed float32) {
	c.rightAxis, c.forwardAxis = c.inputAxes()
	if !finite(direction) {
		direction = mgl32.Vec3{}
	}
	c.desiredVelocity = mgl32.Vec3{direction.X(), 0, direction.Z()}
	if maxSpeed < 0 || isBad(maxSpeed) {
		maxSpeed = 0
	}
	c.maxSpeed = maxSpeed
}

// Stop clears the intent and zeroes the body's horizontal velocity right
// away, keeping its vertical velocity.
func (c *Controller) Stop(body Body) {
	c.desiredVelocity = mgl32.Vec3{}
	if body == nil {
		return
	}
	v := body.Velocity()
	body.SetVelocity(mgl32.Vec3{0, v.Y(), 0})
}

// Jump requests a jump of the given height on the next Step.
func (c *Controller) Jump(height float32) {
	c.desiredJump = true
	c.jumpHeight = height
}

// Step runs one fixed tick against body. All contacts for the tick must have
// been ingested before it is called.
func (c *Controller) Step(body Body, dt float32, gravity mgl32.Vec3) StepResult {
	if body == nil || dt <= 0 || isBad(dt) {
		c.acc.reset()
		return c.last
	}
	if !finite(gravity) {
		c.log.Warnf("ignoring non-finite gravity %v", gravity)
		gravity = mgl32.Vec3{}
	}

	c.velocity = body.Velocity()
	res := c.updateState(body, dt)
	c.adjustVelocity(dt)
	if c.desiredJump {
		c.jump(gravity)
		res.Jumped = true
	}
	body.SetVelocity(c.velocity)

	res.ContactNormal = c.contactNormal
	res.ConnectionVelocity = c.connectionVelocity
	c.last = res
	c.clearState()
	return res
}

func (c *Controller) updateState(body Body, dt float32) StepResult {
	if c.stepsSinceGrounded < stepCounterCeiling {
		c.stepsSinceGrounded++
	}
	if c.stepsSinceJump < stepCounterCeiling {
		c.stepsSinceJump++
	}

	res := StepResult{SteepContacts: c.acc.steepCount}
	c.contactNormal = c.acc.groundNormal

	grounded := c.acc.groundCount > 0
	if !grounded {
		if c.snapToGround(body) {
			grounded, res.Snapped = true, true
		} else if c.checkSteepContacts() {
			grounded, res.Promoted = true, true
		}
	}

	if grounded {
		if c.stepsSinceGrounded > 1 {
			res.Landed = true
			if c.log.DebugEnabled() {
				c.log.Debugf("landed: %s", Fields("steps", c.stepsSinceGrounded, "ground", c.acc.groundCount, "steep", c.acc.steepCount))
			}
			c.observers.notify()
		}
		c.stepsSinceGrounded = 0
		if c.acc.groundCount > 1 {
			c.contactNormal = normalizeOr(c.contactNormal, worldUp)
		}
		res.State = Grounded
	} else {
		c.contactNormal = worldUp
		if c.acc.steepCount > 0 {
			res.State = SteepOnly
		}
	}
	res.GroundContacts = c.acc.groundCount

	if connected := c.acc.connected; bodyUsable(connected) {
		if connected.IsKinematic() || connected.Mass() >= body.Mass() {
			c.updateConnectionState(body, connected, dt)
		}
	}
	return res
}

func (c *Controller) snapToGround(body Body) bool {
	if c.stepsSinceGrounded > 1 || c.stepsSinceJump <= 2 {
		return false
	}
	speed := c.velocity.Len()
	if speed > c.cfg.MaxSnapSpeed {
		return false
	}
	hit, ok := c.raycaster.Raycast(body.Position(), worldUp.Mul(-1), c.cfg.ProbeDistance, c.cfg.GroundMask)
	if !ok {
		return false
	}
	normal := normalizeOr(hit.Normal, mgl32.Vec3{})
	if worldUp.Dot(normal) < c.minGroundDot {
		return false
	}

	c.acc.groundCount = 1
	c.contactNormal = normal
	// Redirect velocity along the surface, keeping its magnitude.
	if dot := c.velocity.Dot(normal); dot > 0 {
		c.velocity = normalizeOr(c.velocity.Sub(normal.Mul(dot)), mgl32.Vec3{}).Mul(speed)
	}
	c.acc.connected = hit.Body
	if c.log.DebugEnabled() {
		c.log.Debugf("snapped: %s", Fields("distance", hit.Distance, "normal", normal, "speed", speed))
	}
	return true
}

// checkSteepContacts promotes two or more steep contacts whose average is
// walkable, as in a crevice or inside corner.
func (c *Controller) checkSteepContacts() bool {
	if c.acc.steepCount <= 1 {
		return false
	}
	c.acc.steepNormal = normalizeOr(c.acc.steepNormal, mgl32.Vec3{})
	if worldUp.Dot(c.acc.steepNormal) < c.minGroundDot {
		return false
	}
	c.acc.groundCount = 1
	c.contactNormal = c.acc.steepNormal
	if c.log.DebugEnabled() {
		c.log.Debugf("promoted: %s", Fields("steep", c.acc.steepCount, "normal", c.acc.steepNormal))
	}
	return true
}

// updateConnectionState estimates platform velocity by following a point
// fixed to the connected body. A new body only records the point, so
// switching platforms never produces a spike.
func (c *Controller) updateConnectionState(body, connected Body, dt float32) {
	if connected == c.previousConnected {
		movement := connected.TransformPoint(c.connectionLocalPosition).Sub(c.connectionWorldPosition)
		c.connectionVelocity = movement.Mul(1 / dt)
	}
	c.connectionWorldPosition = body.Position()
	c.connectionLocalPosition = connected.InverseTransformPoint(c.connectionWorldPosition)
}

func (c *Controller) adjustVelocity(dt float32) {
	xAxis := projectDirectionOnPlane(c.rightAxis, c.contactNormal)
	zAxis := projectDirectionOnPlane(c.forwardAxis, c.contactNormal)

	// Speeds are measured relative to the platform, but the deltas are added
	// onto the absolute velocity.
	relativeVelocity := c.velocity.Sub(c.connectionVelocity)
	currentX := relativeVelocity.Dot(xAxis)
	currentZ := relativeVelocity.Dot(zAxis)

	maxSpeedChange := c.maxSpeed * dt
	newX := moveTowards(currentX, c.desiredVelocity.X(), maxSpeedChange)
	newZ := moveTowards(currentZ, c.desiredVelocity.Z(), maxSpeedChange)

	c.velocity = c.velocity.Add(xAxis.Mul(newX - currentX)).Add(zAxis.Mul(newZ - currentZ))
}

func (c *Controller) jump(gravity mgl32.Vec3) {
	jumpDirection := normalizeOr(c.contactNormal.Add(worldUp), worldUp)
	c.desiredJump = false
	c.stepsSinceJump = 0

	height := c.jumpHeight
	if height < 0 || isBad(height) {
		height = 0
	}
	jumpSpeed := float32(math.Sqrt(2 * float64(gravity.Len()) * float64(height)))
	if alignedSpeed := c.velocity.Dot(jumpDirection); alignedSpeed > 0 {
		jumpSpeed = float32(math.Max(float64(jumpSpeed-alignedSpeed), 0))
	}
	c.velocity = c.velocity.Add(jumpDirection.Mul(jumpSpeed))
	if c.log.DebugEnabled() {
		c.log.Debugf("jumped: %s", Fields("direction", jumpDirection, "speed", jumpSpeed))
	}
}

func (c *Controller) clearState() {
	c.previousConnected = c.acc.connected
	c.acc.reset()
	c.connectionVelocity = mgl32.Vec3{}
	c.contactNormal = mgl32.Vec3{}
}

func (c *Controller) inputAxes() (right, forward mgl32.Vec3) {
	if c.inputSpace != nil {
		return projectDirectionOnPlane(c.inputSpace.Right(), worldUp),
			projectDirectionOnPlane(c.inputSpace.Forward(), worldUp)
	}
	return worldRight, worldForward
}

var _ ContactSink = (*Controller)(nil)
