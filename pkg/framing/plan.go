package framing

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// TopDownElevation is the elevation of the plan view pass.
const TopDownElevation = 90.0

// OrbitSpec describes one pass of cameras around a model.
type OrbitSpec struct {
	Center    v3.Vec
	Radius    float64
	Elevation float64   // degrees
	Yaws      []float64 // degrees, already offset by the base yaw
	Up        v3.Vec    // zero means WorldUp
}

// View is one fitted camera of a pass.
type View struct {
	Yaw      float64
	Pose     Pose
	Required float64 // width this view alone needs
}

// OrbitPlan is a pass with a single orthographic width shared by all views.
type OrbitPlan struct {
	Views []View
	Scale float64
}

// IsDiagonal reports whether yaw is off the cardinal axes.
func IsDiagonal(yawDeg float64) bool {
	m := math.Mod(yawDeg, 90)
	return math.Abs(m) > 1e-6 && math.Abs(math.Abs(m)-90) > 1e-6
}

// PlanOrbit poses a camera at every yaw of spec, fits each to corners, and
// applies the largest width to all of them so the model keeps the same
// apparent size across angles. Diagonal yaws use diagonalMargin when it is
// larger than opt.Margin.
//
// A view whose pose or fit degenerates keeps its prior orientation and the
// minimum width; the errors are joined and returned with the plan.
func PlanOrbit(spec OrbitSpec, corners []v3.Vec, opt FitOptions, diagonalMargin float64) (OrbitPlan, error) {
	up := spec.Up
	if _, ok := unit(up); !ok {
		up = WorldUp
	}
	plan := OrbitPlan{Views: make([]View, 0, len(spec.Yaws)), Scale: MinOrthoScale}
	var errs []error
	for _, yaw := range spec.Yaws {
		pose := NewPose(OrbitPosition(yaw, spec.Elevation, spec.Radius, spec.Center))
		// Straight-down views use the far side of the heading as image up.
		alt := Heading(yaw).MulScalar(-1)
		if err := pose.AimAt(spec.Center, up, alt); err != nil {
			errs = append(errs, err)
		}

		vo := opt
		if IsDiagonal(yaw) && diagonalMargin > vo.Margin {
			vo.Margin = diagonalMargin
		}
		start := MinOrthoScale
		if vo.Strategy == StrategyNDC {
			// NDC fitting only grows, so seed it with the local fit.
			local := vo
			local.Strategy = StrategyLocal
			local.BorderPx = 0
			local.Margin = 1
			start, _ = FitLocal(pose, corners, local, MinOrthoScale)
		}
		w, err := Fit(pose, corners, vo, start)
		if err != nil {
			errs = append(errs, err)
		}
		plan.Views = append(plan.Views, View{Yaw: yaw, Pose: pose, Required: w})
		plan.Scale = math.Max(plan.Scale, w)
	}
	return plan, errors.Join(errs...)
}

// Height returns the orthographic frame height for width at the options'
// aspect ratio.
func (o FitOptions) Height(width float64) float64 {
	return width / o.Aspect()
}
