package groundmotion

import (
	"github.com/go-gl/mathgl/mgl32"
)

// stepAccumulator collects contact classification between two steps.
// Everything here is zeroed at the end of every Step.
type stepAccumulator struct {
	groundCount  int
	steepCount   int
	groundNormal mgl32.Vec3
	steepNormal  mgl32.Vec3
	connected    Body
}

func (a *stepAccumulator) addGround(normal mgl32.Vec3, other Body) {
	a.groundNormal = a.groundNormal.Add(normal)
	a.groundCount++
	a.connected = other
}

// addSteep only claims the connected body while no ground contact has been
// seen this step.
func (a *stepAccumulator) addSteep(normal mgl32.Vec3, other Body) {
	a.steepNormal = a.steepNormal.Add(normal)
	a.steepCount++
	if a.groundCount == 0 {
		a.connected = other
	}
}

func (a *stepAccumulator) reset() {
	*a = stepAccumulator{}
}
