package scene

import (
	"math"

	"github.com/chazu/stager/pkg/framing"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Clip range of the orthographic camera.
const (
	DefaultClipStart = 0.01
	DefaultClipEnd   = 1000.0
)

// Camera is an orthographic camera. OrthoScale is the world width of the
// frame; the height follows from the resolution.
type Camera struct {
	Pose       framing.Pose
	OrthoScale float64
	ClipStart  float64
	ClipEnd    float64
	ResX, ResY int
}

// NewCamera returns a camera at the origin looking down -Z.
func NewCamera(resX, resY int) Camera {
	return Camera{
		Pose:       framing.NewPose(v3.Vec{}),
		OrthoScale: framing.DefaultSize,
		ClipStart:  DefaultClipStart,
		ClipEnd:    DefaultClipEnd,
		ResX:       resX,
		ResY:       resY,
	}
}

// Aspect returns ResX/ResY.
func (c Camera) Aspect() float64 {
	if c.ResX <= 0 || c.ResY <= 0 {
		return 1
	}
	return float64(c.ResX) / float64(c.ResY)
}

// FrameHeight returns the world height of the frame.
func (c Camera) FrameHeight() float64 {
	return c.OrthoScale / c.Aspect()
}

// Project maps a world point to pixel coordinates, origin top-left, and its
// depth in front of the camera.
func (c Camera) Project(w v3.Vec) (px, py, depth float64) {
	x, y, d := c.Pose.ToLocal(w)
	px = (x/c.OrthoScale + 0.5) * float64(c.ResX)
	py = (0.5 - y/c.FrameHeight()) * float64(c.ResY)
	return px, py, d
}

// InClip reports whether depth lies within the clip range.
func (c Camera) InClip(depth float64) bool {
	return depth >= c.ClipStart && depth <= c.ClipEnd
}

// PixelSize returns the world size of one pixel.
func (c Camera) PixelSize() float64 {
	if c.ResX <= 0 {
		return math.NaN()
	}
	return c.OrthoScale / float64(c.ResX)
}
