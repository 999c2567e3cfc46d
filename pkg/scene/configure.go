package scene

import (
	"fmt"
	"image/color"
)

// ConfigureFilm selects a transparent or opaque film.
func ConfigureFilm(s *Scene, transparent bool) error {
	if transparent && !s.Caps.FilmTransparent {
		s.FilmTransparent = false
		return fmt.Errorf("transparent film on %s: %w", s.Engine, ErrConfigurationUnavailable)
	}
	s.FilmTransparent = transparent
	return nil
}

// ConfigureWorld sets the background color and ambient strength.
func ConfigureWorld(s *Scene, background color.RGBA, strength float64) error {
	if strength < 0 {
		return fmt.Errorf("world strength %v: must not be negative", strength)
	}
	s.World.Background = background
	s.World.Strength = strength
	return nil
}

// ConfigureEnvironment loads the environment image at path. An empty path
// is a no-op.
func ConfigureEnvironment(s *Scene, path string) error {
	if path == "" {
		return nil
	}
	if !s.Caps.EnvironmentTexture {
		return fmt.Errorf("environment texture on %s: %w", s.Engine, ErrConfigurationUnavailable)
	}
	env, err := LoadEnvTexture(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigurationUnavailable, err)
	}
	s.World.Env = env
	return nil
}

// ConfigureLineArt applies line-art settings.
func ConfigureLineArt(s *Scene, la LineArt) error {
	if la.Enabled && !s.Caps.LineArt {
		s.LineArt.Enabled = false
		return fmt.Errorf("line art on %s: %w", s.Engine, ErrConfigurationUnavailable)
	}
	if la.CreaseAngle < 0 || la.CreaseAngle > 180 {
		return fmt.Errorf("crease angle %v: must be within [0, 180]", la.CreaseAngle)
	}
	s.LineArt = la
	return nil
}

// ConfigureDebugOverlay turns the bounds overlay on or off.
func ConfigureDebugOverlay(s *Scene, on bool) error {
	if on && !s.Caps.DebugOverlay {
		s.DebugOverlay = false
		return fmt.Errorf("debug overlay on %s: %w", s.Engine, ErrConfigurationUnavailable)
	}
	s.DebugOverlay = on
	return nil
}

// ConfigureBorder sets the empty border, in pixels, kept around the model.
func ConfigureBorder(s *Scene, px int) error {
	if px < 0 {
		return fmt.Errorf("border %dpx: must not be negative", px)
	}
	if 2*px >= min(s.Camera.ResX, s.Camera.ResY) {
		return fmt.Errorf("border %dpx leaves no room at %dx%d: %w",
			px, s.Camera.ResX, s.Camera.ResY, ErrConfigurationUnavailable)
	}
	s.BorderPx = px
	return nil
}
