package groundmotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	worldUp      = mgl32.Vec3{0, 1, 0}
	worldRight   = mgl32.Vec3{1, 0, 0}
	worldForward = mgl32.Vec3{0, 0, 1}
)

// Below this squared length a vector has no usable direction.
const degenerateLenSqr = 1e-12

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// normalizeOr returns v scaled to unit length, or fallback when v has no
// usable direction.
func normalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.LenSqr()
	if l < degenerateLenSqr || !finite(v) {
		return fallback
	}
	return v.Mul(1 / float32(math.Sqrt(float64(l))))
}

// projectDirectionOnPlane removes the normal component of direction and
// normalizes what is left. A direction parallel to the normal yields zero.
func projectDirectionOnPlane(direction, normal mgl32.Vec3) mgl32.Vec3 {
	return normalizeOr(direction.Sub(normal.Mul(direction.Dot(normal))), mgl32.Vec3{})
}

func moveTowards(current, target, maxDelta float32) float32 {
	if float32(math.Abs(float64(target-current))) <= maxDelta {
		return target
	}
	if target > current {
		return current + maxDelta
	}
	return current - maxDelta
}
