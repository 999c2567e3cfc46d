package framing

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// IsometricElevation is the elevation, in degrees, of a true isometric view
// (atan(1/√2)).
const IsometricElevation = 35.264

// snapEpsilon is how close a trig value must be to 0, 1 or -1 to be snapped.
const snapEpsilon = 1e-9

// snap returns the exact value when v is within snapEpsilon of 0, 1 or -1.
func snap(v float64) float64 {
	for _, exact := range [...]float64{0, 1, -1} {
		if math.Abs(v-exact) < snapEpsilon {
			return exact
		}
	}
	return v
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// clearanceSlack is the extra distance kept between the nearest corner and
// the near clip plane.
const clearanceSlack = 1.0

// OrbitRadius is the nominal camera distance for a model with the given X/Y
// spans. Orthographic framing does not depend on it. Tall models need
// ClearanceRadius as well.
func OrbitRadius(sizeX, sizeY float64) float64 {
	return 2*math.Max(sizeX, sizeY) + 2
}

// ClearanceRadius is the smallest orbit distance at which every corner lies
// at least clipStart in front of a camera aimed at center, whatever the view
// direction. Corner depth along the view axis is at least the radius minus
// the corner's distance from center.
func ClearanceRadius(center v3.Vec, corners []v3.Vec, clipStart float64) float64 {
	var far float64
	for _, c := range corners {
		far = math.Max(far, c.Sub(center).Length())
	}
	return far + clipStart + clearanceSlack
}

// DepthRange returns the nearest and farthest corner depths seen from p.
func DepthRange(p Pose, corners []v3.Vec) (nearest, farthest float64) {
	nearest, farthest = math.Inf(1), math.Inf(-1)
	for _, c := range corners {
		_, _, d := p.ToLocal(c)
		nearest, farthest = math.Min(nearest, d), math.Max(farthest, d)
	}
	return nearest, farthest
}

// OrbitPosition places a camera on a sphere of the given radius around
// center. Yaw is measured about +Z from +X, elevation above the XY plane,
// both in degrees. Near-cardinal trig values are snapped so 0/90/180/270
// degree views are exact.
func OrbitPosition(yawDeg, elevDeg, radius float64, center v3.Vec) v3.Vec {
	yaw := Radians(yawDeg)
	elev := Radians(elevDeg)
	cy, sy := snap(math.Cos(yaw)), snap(math.Sin(yaw))
	ce, se := snap(math.Cos(elev)), snap(math.Sin(elev))
	return center.Add(v3.Vec{
		X: radius * cy * ce,
		Y: radius * sy * ce,
		Z: radius * se,
	})
}

// Heading returns the unit horizontal direction for a yaw angle, snapped.
func Heading(yawDeg float64) v3.Vec {
	yaw := Radians(yawDeg)
	return v3.Vec{X: snap(math.Cos(yaw)), Y: snap(math.Sin(yaw))}
}
