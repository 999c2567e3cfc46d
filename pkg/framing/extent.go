package framing

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MinOrthoScale is the smallest orthographic width the fitter returns.
const MinOrthoScale = 0.1

// Strategy selects how the orthographic width is fitted.
type Strategy int

const (
	// StrategyLocal measures corners in camera space.
	StrategyLocal Strategy = iota
	// StrategyNDC measures corners in normalized device coordinates and
	// scales the current width up when they overflow the frame.
	StrategyNDC
)

func (s Strategy) String() string {
	switch s {
	case StrategyLocal:
		return "local"
	case StrategyNDC:
		return "ndc"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// FitOptions controls extent fitting.
type FitOptions struct {
	Strategy Strategy
	Margin   float64 // multiplier > 1
	ResX     int     // render width in pixels
	ResY     int     // render height in pixels
	BorderPx int     // extra empty pixels on each side
}

// Aspect returns ResX/ResY, or 1 when either is unset.
func (o FitOptions) Aspect() float64 {
	if o.ResX <= 0 || o.ResY <= 0 {
		return 1
	}
	return float64(o.ResX) / float64(o.ResY)
}

// Fit dispatches to FitLocal or FitNDC. current is the width in effect; it
// is the starting point for StrategyNDC and the fallback for both.
func Fit(p Pose, corners []v3.Vec, opt FitOptions, current float64) (float64, error) {
	if opt.Strategy == StrategyNDC {
		return FitNDC(p, corners, opt, current)
	}
	return FitLocal(p, corners, opt, current)
}

// FitLocal returns the smallest orthographic width that keeps every corner
// inside the frame, scaled by the margin and padded by the pixel border.
// A non-finite result returns prior with ErrGeometryDegenerate.
func FitLocal(p Pose, corners []v3.Vec, opt FitOptions, prior float64) (float64, error) {
	var halfW, halfH float64
	for _, c := range corners {
		x, y, _ := p.ToLocal(c)
		halfW = math.Max(halfW, math.Abs(x))
		halfH = math.Max(halfH, math.Abs(y))
	}
	width := math.Max(2*halfW, 2*halfH*opt.Aspect()) * margin(opt)
	return finish(width, opt, prior)
}

// FitNDC projects every corner to [0,1] device coordinates using width
// current and, if the margin-scaled span about the frame center exceeds 1,
// grows the width by that factor. The width never shrinks.
func FitNDC(p Pose, corners []v3.Vec, opt FitOptions, current float64) (float64, error) {
	if !(current > 0) || math.IsInf(current, 0) {
		return current, fmt.Errorf("ndc fit from width %v: %w", current, ErrGeometryDegenerate)
	}
	height := current / opt.Aspect()
	var spanU, spanV float64
	for _, c := range corners {
		u, v := NDC(p, c, current, height)
		spanU = math.Max(spanU, 2*math.Abs(u-0.5))
		spanV = math.Max(spanV, 2*math.Abs(v-0.5))
	}
	width := current
	if need := math.Max(spanU, spanV) * margin(opt); need > 1 {
		width = current * need
	}
	return finish(width, opt, current)
}

// NDC maps world point w to normalized device coordinates for an
// orthographic frame of the given width and height centered on the view
// axis. (0,0) is bottom-left and (1,1) top-right.
func NDC(p Pose, w v3.Vec, width, height float64) (u, v float64) {
	x, y, _ := p.ToLocal(w)
	return x/width + 0.5, y/height + 0.5
}

// InFrame reports whether every corner projects within ±width/2 by
// ±height/2, with tolerance tol.
func InFrame(p Pose, corners []v3.Vec, width, height, tol float64) bool {
	for _, c := range corners {
		x, y, _ := p.ToLocal(c)
		if math.Abs(x) > width/2+tol || math.Abs(y) > height/2+tol {
			return false
		}
	}
	return true
}

func margin(opt FitOptions) float64 {
	if opt.Margin <= 0 {
		return 1
	}
	return opt.Margin
}

// EffectiveBorder is the empty margin, in pixels, that a fit with borderPx
// actually leaves on each side. The border is sized from the unbordered
// width, so the rendered margin is borderPx·resX/(resX+2·borderPx).
func EffectiveBorder(borderPx, resX int) float64 {
	if borderPx <= 0 || resX <= 0 {
		return 0
	}
	b, r := float64(borderPx), float64(resX)
	return b * r / (r + 2*b)
}

// finish adds the pixel border, rejects non-finite widths and clamps. The
// border is measured against the unbordered width; see EffectiveBorder.
func finish(width float64, opt FitOptions, prior float64) (float64, error) {
	if opt.BorderPx > 0 && opt.ResX > 0 {
		worldPerPx := width / float64(opt.ResX)
		width += 2 * float64(opt.BorderPx) * worldPerPx
	}
	if math.IsNaN(width) || math.IsInf(width, 0) {
		return prior, fmt.Errorf("orthographic width %v: %w", width, ErrGeometryDegenerate)
	}
	return math.Max(width, MinOrthoScale), nil
}
