package scene

import (
	"fmt"
	"strings"
)

// Engine names a render engine.
type Engine string

const (
	EngineEEVEE  Engine = "EEVEE"
	EngineCycles Engine = "CYCLES"
)

// ParseEngine accepts an engine name in any case.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToUpper(strings.TrimSpace(s))); e {
	case EngineEEVEE, EngineCycles:
		return e, nil
	}
	return "", fmt.Errorf("unknown engine %q (want EEVEE or CYCLES)", s)
}

// Capabilities lists what an engine can do. Configuration steps consult it
// instead of probing.
type Capabilities struct {
	FilmTransparent    bool
	EnvironmentTexture bool
	LineArt            bool
	DebugOverlay       bool
	SoftShading        bool
}

// CapabilitiesFor returns the capabilities of engine e.
func CapabilitiesFor(e Engine) (Capabilities, error) {
	switch e {
	case EngineEEVEE:
		return Capabilities{
			FilmTransparent: true,
			LineArt:         true,
			DebugOverlay:    true,
		}, nil
	case EngineCycles:
		return Capabilities{
			FilmTransparent:    true,
			EnvironmentTexture: true,
			LineArt:            true,
			DebugOverlay:       true,
			SoftShading:        true,
		}, nil
	}
	return Capabilities{}, fmt.Errorf("engine %q: %w", e, ErrConfigurationUnavailable)
}
