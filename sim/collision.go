package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// checkOBBCollision runs a separating axis test between two oriented boxes.
// The returned normal points from b towards a, so moving a along it by the
// penetration depth separates them.
func checkOBBCollision(a, b *Body) (bool, mgl32.Vec3, float32) {
	axesA := a.transform.axes()
	axesB := b.transform.axes()
	L := b.transform.Position.Sub(a.transform.Position)

	var testAxes [15]mgl32.Vec3
	n := 0
	for i := 0; i < 3; i++ {
		testAxes[n] = axesA[i]
		testAxes[n+1] = axesB[i]
		n += 2
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := axesA[i].Cross(axesB[j])
			if cross.LenSqr() > 0.0001 {
				testAxes[n] = cross.Normalize()
				n++
			}
		}
	}

	minOverlap := float32(math.MaxFloat32)
	var collisionNormal mgl32.Vec3
	for _, axis := range testAxes[:n] {
		overlap := getOverlap(a, b, axesA, axesB, axis, L)
		if overlap <= 0 {
			return false, mgl32.Vec3{}, 0
		}
		if overlap < minOverlap {
			minOverlap = overlap
			collisionNormal = axis
		}
	}

	if L.Dot(collisionNormal) > 0 {
		collisionNormal = collisionNormal.Mul(-1)
	}
	return true, collisionNormal, minOverlap
}

func getOverlap(a, b *Body, axesA, axesB [3]mgl32.Vec3, axis, L mgl32.Vec3) float32 {
	projectionA := float32(0)
	for i := 0; i < 3; i++ {
		projectionA += abs32(axesA[i].Dot(axis)) * a.halfExtents[i]
	}
	projectionB := float32(0)
	for i := 0; i < 3; i++ {
		projectionB += abs32(axesB[i].Dot(axis)) * b.halfExtents[i]
	}
	return projectionA + projectionB - abs32(L.Dot(axis))
}

// intersectBox casts a ray against body in its local frame. It reports the
// entry distance and the world normal of the entered face. Rays starting
// inside the box never hit it.
func intersectBox(body *Body, origin, dir mgl32.Vec3, maxDistance float32) (float32, mgl32.Vec3, bool) {
	w2o := body.transform.WorldToObject()
	localOrigin := w2o.Mul4x1(origin.Vec4(1.0)).Vec3()
	localDir := w2o.Mul4x1(dir.Vec4(0.0)).Vec3()

	tEnter := float32(math.Inf(-1))
	tExit := float32(math.Inf(1))
	enterAxis := -1
	var enterSign float32

	for i := 0; i < 3; i++ {
		h := body.halfExtents[i]
		o := localOrigin[i]
		d := localDir[i]
		if abs32(d) < 1e-8 {
			if o < -h || o > h {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		t1 := (-h - o) / d
		t2 := (h - o) / d
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tEnter {
			tEnter = t1
			enterAxis = i
			enterSign = sign
		}
		if t2 < tExit {
			tExit = t2
		}
		if tEnter > tExit {
			return 0, mgl32.Vec3{}, false
		}
	}

	if enterAxis < 0 || tEnter < 0 || tEnter > maxDistance {
		return 0, mgl32.Vec3{}, false
	}
	var localNormal mgl32.Vec3
	localNormal[enterAxis] = enterSign
	worldNormal := body.transform.ObjectToWorld().Mul4x1(localNormal.Vec4(0.0)).Vec3()
	return tEnter, worldNormal.Normalize(), true
}

func abs32(f float32) float32 {
	return float32(math.Abs(float64(f)))
}
