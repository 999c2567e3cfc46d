package scene

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/chazu/stager/pkg/framing"
)

// LineArt configures feature-line extraction.
type LineArt struct {
	Enabled      bool
	Contour      bool
	Crease       bool
	Material     bool
	Intersection bool
	CreaseAngle  float64 // degrees; edges sharper than 180-CreaseAngle are creases
	Thickness    float64 // stroke width in pixels
	Color        color.RGBA
}

// DefaultLineArt enables every edge type with a 140° crease threshold.
func DefaultLineArt() LineArt {
	return LineArt{
		Enabled:      true,
		Contour:      true,
		Crease:       true,
		Material:     true,
		Intersection: true,
		CreaseAngle:  140,
		Thickness:    1.5,
		Color:        color.RGBA{A: 0xff},
	}
}

// Scene is the state of one model render.
type Scene struct {
	Engine  Engine
	Caps    Capabilities
	Objects []*Object
	Camera  Camera
	Sun     Sun
	World   World
	LineArt LineArt

	FilmTransparent bool
	DebugOverlay    bool
	BorderPx        int

	Warnings []error

	logger *slog.Logger
}

// New returns an empty scene for engine e rendering at resX×resY.
func New(e Engine, resX, resY int, logger *slog.Logger) (*Scene, error) {
	caps, err := CapabilitiesFor(e)
	if err != nil {
		return nil, err
	}
	if resX <= 0 || resY <= 0 {
		return nil, fmt.Errorf("resolution %dx%d: must be positive", resX, resY)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scene{
		Engine:  e,
		Caps:    caps,
		Camera:  NewCamera(resX, resY),
		Sun:     DefaultSun(),
		World:   DefaultWorld(),
		LineArt: DefaultLineArt(),
		logger:  logger,
	}, nil
}

// Add appends objects to the scene.
func (s *Scene) Add(objs ...*Object) {
	s.Objects = append(s.Objects, objs...)
}

// Bounded returns the objects as framing inputs.
func (s *Scene) Bounded() []framing.Bounded {
	out := make([]framing.Bounded, len(s.Objects))
	for i, o := range s.Objects {
		out[i] = o
	}
	return out
}

// Warn records a non-fatal error. Nil is ignored.
func (s *Scene) Warn(err error) {
	if err == nil {
		return
	}
	s.logger.Warn("scene configuration", "error", err)
	s.Warnings = append(s.Warnings, err)
}

// FitOptions returns framing options matching the camera and border.
func (s *Scene) FitOptions(strategy framing.Strategy, margin float64) framing.FitOptions {
	return framing.FitOptions{
		Strategy: strategy,
		Margin:   margin,
		ResX:     s.Camera.ResX,
		ResY:     s.Camera.ResY,
		BorderPx: s.BorderPx,
	}
}
