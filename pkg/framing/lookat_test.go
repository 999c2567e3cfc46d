package framing

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func checkOrthonormal(t *testing.T, f Frame) {
	t.Helper()
	for name, v := range map[string]v3.Vec{"right": f.Right, "up": f.Up, "forward": f.Forward} {
		if !near(v.Length(), 1, 1e-9) {
			t.Errorf("|%s| = %v", name, v.Length())
		}
	}
	if d := f.Up.Dot(f.Forward); !near(d, 0, 1e-9) {
		t.Errorf("up·forward = %v", d)
	}
	if d := f.Right.Dot(f.Forward); !near(d, 0, 1e-9) {
		t.Errorf("right·forward = %v", d)
	}
	if d := f.Right.Dot(f.Up); !near(d, 0, 1e-9) {
		t.Errorf("right·up = %v", d)
	}
	// Right-handed with the camera looking down its local -Z.
	if !nearVec(f.Right.Cross(f.Up), f.Forward.MulScalar(-1), 1e-9) {
		t.Errorf("right×up = %v, want %v", f.Right.Cross(f.Up), f.Forward.MulScalar(-1))
	}
}

func TestLookAtOrbit(t *testing.T) {
	center := v3.Vec{X: 0.3, Y: -1, Z: 1}
	for _, elev := range []float64{0, 20, IsometricElevation, 80} {
		for yaw := 0.0; yaw < 360; yaw += 45 {
			pos := OrbitPosition(yaw, elev, 5, center)
			p := NewPose(pos)
			if err := p.AimAt(center, WorldUp, v3.Vec{}); err != nil {
				t.Fatalf("yaw %v elev %v: %v", yaw, elev, err)
			}
			checkOrthonormal(t, p.Frame)

			dir, _ := unit(center.Sub(pos))
			if !nearVec(p.Frame.Forward, dir, 1e-9) {
				t.Errorf("yaw %v elev %v: forward = %v, want %v", yaw, elev, p.Frame.Forward, dir)
			}
			// No roll: image up leans toward world +Z and right stays level.
			if p.Frame.Up.Z <= 0 {
				t.Errorf("yaw %v elev %v: up = %v points down", yaw, elev, p.Frame.Up)
			}
			if !near(p.Frame.Right.Z, 0, 1e-9) {
				t.Errorf("yaw %v elev %v: right = %v not level", yaw, elev, p.Frame.Right)
			}
		}
	}
}

func TestLookAtStraightDown(t *testing.T) {
	p := NewPose(v3.Vec{Z: 10})
	alt := Heading(90).MulScalar(-1)
	if err := p.AimAt(v3.Vec{}, WorldUp, alt); err != nil {
		t.Fatal(err)
	}
	checkOrthonormal(t, p.Frame)
	if !nearVec(p.Frame.Forward, v3.Vec{Z: -1}, 1e-12) {
		t.Errorf("forward = %v", p.Frame.Forward)
	}
	if !nearVec(p.Frame.Up, alt, 1e-9) {
		t.Errorf("up = %v, want alternate %v", p.Frame.Up, alt)
	}
}

func TestLookAtParallelDefaultAlternate(t *testing.T) {
	f, err := LookAt(v3.Vec{Z: -3}, v3.Vec{}, WorldUp, v3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	checkOrthonormal(t, f)
	if !nearVec(f.Up, AlternateUp, 1e-9) {
		t.Errorf("up = %v, want %v", f.Up, AlternateUp)
	}
}

func TestAimAtDegenerate(t *testing.T) {
	p := NewPose(v3.Vec{X: 1, Y: 1, Z: 1})
	prior := p.Frame
	err := p.AimAt(v3.Vec{X: 1, Y: 1, Z: 1}, WorldUp, v3.Vec{})
	if !errors.Is(err, ErrGeometryDegenerate) {
		t.Fatalf("err = %v, want ErrGeometryDegenerate", err)
	}
	if p.Frame != prior {
		t.Errorf("frame changed on degenerate input: %v", p.Frame)
	}
}

func TestCorrectRoll(t *testing.T) {
	// A frame looking along +X but rolled 30° about it.
	base := Frame{Right: v3.Vec{Y: -1}, Up: v3.Vec{Z: 1}, Forward: v3.Vec{X: 1}}
	rolled := Frame{
		Right:   rotateAbout(base.Right, base.Forward, Radians(30)),
		Up:      rotateAbout(base.Up, base.Forward, Radians(30)),
		Forward: base.Forward,
	}
	got := rolled.correctRoll(WorldUp)
	if !nearVec(got.Up, base.Up, 1e-9) || !nearVec(got.Right, base.Right, 1e-9) {
		t.Errorf("correctRoll = %+v, want %+v", got, base)
	}
}

func TestSignedAngle(t *testing.T) {
	got := SignedAngle(v3.Vec{X: 1}, v3.Vec{Y: 1}, v3.Vec{Z: 1})
	if !near(got, math.Pi/2, 1e-12) {
		t.Errorf("SignedAngle = %v, want π/2", got)
	}
	got = SignedAngle(v3.Vec{Y: 1}, v3.Vec{X: 1}, v3.Vec{Z: 1})
	if !near(got, -math.Pi/2, 1e-12) {
		t.Errorf("SignedAngle = %v, want -π/2", got)
	}
}
