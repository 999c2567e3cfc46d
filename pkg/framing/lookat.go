package framing

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// parallelEpsilon bounds |forward·up| away from 1 before the alternate up
// reference is substituted.
const parallelEpsilon = 1e-6

var (
	// WorldUp is the default up reference (+Z).
	WorldUp = v3.Vec{Z: 1}
	// AlternateUp replaces WorldUp when the view is (anti)parallel to it.
	AlternateUp = v3.Vec{Y: 1}
)

// Frame is an orthonormal camera basis. The camera looks along Forward
// (its local -Z); Up is image up and Right is image right.
type Frame struct {
	Right, Up, Forward v3.Vec
}

// IdentityFrame looks down -Z with +Y up.
func IdentityFrame() Frame {
	return Frame{
		Right:   v3.Vec{X: 1},
		Up:      v3.Vec{Y: 1},
		Forward: v3.Vec{Z: -1},
	}
}

// Pose is a camera position and orientation.
type Pose struct {
	Position v3.Vec
	Frame    Frame
}

// NewPose returns a pose at pos with the identity orientation.
func NewPose(pos v3.Vec) Pose {
	return Pose{Position: pos, Frame: IdentityFrame()}
}

// ToLocal expresses world point p in camera coordinates: x right, y up, and
// depth along Forward (positive in front of the camera).
func (p Pose) ToLocal(w v3.Vec) (x, y, depth float64) {
	d := w.Sub(p.Position)
	return d.Dot(p.Frame.Right), d.Dot(p.Frame.Up), d.Dot(p.Frame.Forward)
}

// AimAt orients the pose so Forward points at target, keeping image up as
// close to up as possible. alt is used as the up reference when Forward is
// nearly parallel to up; a zero alt selects AlternateUp. On a zero-length
// view direction the orientation is left unchanged and
// ErrGeometryDegenerate is returned.
func (p *Pose) AimAt(target, up, alt v3.Vec) error {
	f, err := LookAt(p.Position, target, up, alt)
	if err != nil {
		return err
	}
	p.Frame = f
	return nil
}

// LookAt computes a roll-corrected frame looking from pos toward target.
func LookAt(pos, target, up, alt v3.Vec) (Frame, error) {
	f := target.Sub(pos)
	l := f.Length()
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Frame{}, fmt.Errorf("look-at from %v to %v: %w", pos, target, ErrGeometryDegenerate)
	}
	f = f.MulScalar(1 / l)

	ref, ok := unit(up)
	if !ok {
		ref = WorldUp
	}
	if math.Abs(f.Dot(ref)) > 1-parallelEpsilon {
		ref, ok = unit(alt)
		if !ok {
			ref = AlternateUp
		}
		if math.Abs(f.Dot(ref)) > 1-parallelEpsilon {
			ref = v3.Vec{X: 1}
		}
	}

	r, _ := unit(f.Cross(ref))
	u := r.Cross(f)
	fr := Frame{Right: r, Up: u, Forward: f}
	return fr.correctRoll(up), nil
}

// correctRoll spins the frame about Forward so Up matches the projection of
// worldUp into the image plane. Frames looking straight along worldUp have
// no such projection and are returned as-is.
func (fr Frame) correctRoll(worldUp v3.Vec) Frame {
	proj := worldUp.Sub(fr.Forward.MulScalar(worldUp.Dot(fr.Forward)))
	proj, ok := unit(proj)
	if !ok {
		return fr
	}
	angle := SignedAngle(fr.Up, proj, fr.Forward)
	if math.Abs(angle) < 1e-12 {
		return fr
	}
	return Frame{
		Right:   rotateAbout(fr.Right, fr.Forward, angle),
		Up:      rotateAbout(fr.Up, fr.Forward, angle),
		Forward: fr.Forward,
	}
}

// SignedAngle returns the angle from a to b about axis, in radians, in
// (-π, π]. a and b are assumed perpendicular to axis.
func SignedAngle(a, b, axis v3.Vec) float64 {
	return math.Atan2(a.Cross(b).Dot(axis), a.Dot(b))
}

// rotateAbout rotates v about the unit axis k by angle radians (Rodrigues).
func rotateAbout(v, k v3.Vec, angle float64) v3.Vec {
	c, s := math.Cos(angle), math.Sin(angle)
	return v.MulScalar(c).
		Add(k.Cross(v).MulScalar(s)).
		Add(k.MulScalar(k.Dot(v) * (1 - c)))
}

// unit normalizes v. ok is false for (near) zero vectors.
func unit(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l < 1e-12 || math.IsNaN(l) {
		return v3.Vec{}, false
	}
	return v.MulScalar(1 / l), true
}
