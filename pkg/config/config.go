// Package config holds the settings for render and geo runs.
//
// Settings are layered: Default, then an optional TOML file, then SS_*
// environment variables, then whatever the command line sets on the
// returned value. Validate is called once all layers are applied.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"math"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// Format selects which per-angle outputs a render run writes.
type Format string

const (
	FormatPNG  Format = "PNG"
	FormatSVG  Format = "SVG"
	FormatBoth Format = "BOTH"
)

// PNG reports whether raster renders are written.
func (f Format) PNG() bool { return f == FormatPNG || f == FormatBoth }

// SVG reports whether line-art drawings are written.
func (f Format) SVG() bool { return f == FormatSVG || f == FormatBoth }

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToUpper(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG, FormatBoth:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want PNG, SVG or BOTH)", s)
}

// Config is the full settings tree.
type Config struct {
	Render RenderConfig `toml:"render"`
	Geo    GeoConfig    `toml:"geo"`
}

// RenderConfig controls model rendering.
type RenderConfig struct {
	Format          Format    `toml:"format"`
	Resolution      int       `toml:"resolution"`         // square output, pixels
	Elevation       float64   `toml:"iso_elevation_deg"`  // isometric pass elevation
	BaseYaw         float64   `toml:"base_yaw_deg"`       // added to every angle
	Angles          []float64 `toml:"angles"`             // yaw angles, degrees
	Engine          string    `toml:"engine"`             // EEVEE or CYCLES
	FilmTransparent bool      `toml:"film_transparent"`
	DebugOverlay    bool      `toml:"debug_overlay"`
	EnvHDRI         string    `toml:"env_hdri"`
	TopDown         bool      `toml:"export_top_down"`
	BorderPx        int       `toml:"border_px"`
	ExportDXF       bool      `toml:"export_dxf"`
	Strategy        string    `toml:"fit_strategy"`
	Margin          float64   `toml:"margin"`
	DiagonalMargin  float64   `toml:"diagonal_margin"`
	MeshCells       int       `toml:"mesh_cells"`
	CreaseAngle     float64   `toml:"crease_angle_deg"`
	LineWidth       float64   `toml:"line_width_px"`
}

// GeoConfig controls the geo ETL commands.
type GeoConfig struct {
	SimplifyTolerance float64 `toml:"simplify_tolerance"` // degrees; 0 keeps every vertex
	MapSizeInches     float64 `toml:"map_size_in"`
	MapDPI            int     `toml:"map_dpi"`
	OutlineWidthPt    float64 `toml:"outline_width_pt"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Render: RenderConfig{
			Format:          FormatPNG,
			Resolution:      1024,
			Elevation:       35.264,
			Angles:          []float64{0, 45, 90, 135, 180, 225, 270, 315},
			Engine:          "EEVEE",
			FilmTransparent: true,
			Strategy:        "local",
			Margin:          1.15,
			DiagonalMargin:  1.2,
			MeshCells:       64,
			CreaseAngle:     140,
			LineWidth:       1.5,
		},
		Geo: GeoConfig{
			MapSizeInches:  10,
			MapDPI:         300,
			OutlineWidthPt: 1.5,
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the process environment. The result is not yet
// validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var angles struct {
		Render struct {
			Angles []float64 `toml:"angles"`
		} `toml:"render"`
	}
	if err := toml.Unmarshal(data, &angles); err != nil {
		return err
	}
	if err := dec.Decode(c); err != nil {
		return err
	}
	// A file that lists angles replaces the default set instead of
	// overwriting it element by element.
	if angles.Render.Angles != nil {
		c.Render.Angles = angles.Render.Angles
	}
	return nil
}

// Validate checks every setting and returns all problems at once.
func (c Config) Validate() error {
	var errs []error
	r := c.Render
	if _, err := ParseFormat(string(r.Format)); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToUpper(r.Engine) {
	case "EEVEE", "CYCLES":
	default:
		errs = append(errs, fmt.Errorf("unknown engine %q (want EEVEE or CYCLES)", r.Engine))
	}
	switch strings.ToLower(r.Strategy) {
	case "local", "ndc":
	default:
		errs = append(errs, fmt.Errorf("unknown fit strategy %q (want local or ndc)", r.Strategy))
	}
	if r.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %d", r.Resolution))
	}
	if r.BorderPx < 0 {
		errs = append(errs, fmt.Errorf("border must not be negative, got %d", r.BorderPx))
	}
	if r.BorderPx*2 >= r.Resolution && r.Resolution > 0 {
		errs = append(errs, fmt.Errorf("border %dpx leaves no room in a %dpx frame", r.BorderPx, r.Resolution))
	}
	if r.Margin <= 1 {
		errs = append(errs, fmt.Errorf("margin must be greater than 1, got %g", r.Margin))
	}
	if r.DiagonalMargin <= 1 {
		errs = append(errs, fmt.Errorf("diagonal margin must be greater than 1, got %g", r.DiagonalMargin))
	}
	if len(r.Angles) == 0 {
		errs = append(errs, errors.New("at least one angle is required"))
	}
	if dups := lo.FindDuplicatesBy(r.Angles, AngleLabel); len(dups) > 0 {
		errs = append(errs, fmt.Errorf("angles %v repeat an output label", dups))
	}
	if r.Elevation <= 0 || r.Elevation >= 90 {
		errs = append(errs, fmt.Errorf("isometric elevation must be in (0, 90), got %g", r.Elevation))
	}
	if r.MeshCells < 8 {
		errs = append(errs, fmt.Errorf("mesh cells must be at least 8, got %d", r.MeshCells))
	}
	if r.CreaseAngle <= 0 || r.CreaseAngle >= 180 {
		errs = append(errs, fmt.Errorf("crease angle must be in (0, 180), got %g", r.CreaseAngle))
	}
	if r.LineWidth <= 0 {
		errs = append(errs, fmt.Errorf("line width must be positive, got %g", r.LineWidth))
	}

	g := c.Geo
	if g.SimplifyTolerance < 0 {
		errs = append(errs, fmt.Errorf("simplify tolerance must not be negative, got %g", g.SimplifyTolerance))
	}
	if g.MapSizeInches <= 0 || g.MapDPI <= 0 {
		errs = append(errs, fmt.Errorf("map size %gin at %d dpi: both must be positive", g.MapSizeInches, g.MapDPI))
	}
	return errors.Join(errs...)
}

// AngleLabel formats a view angle as the three-digit label used in output
// names, wrapped into [0, 360). Angles that share a label would overwrite
// each other's files.
func AngleLabel(angle float64) string {
	a := int(math.Round(angle)) % 360
	if a < 0 {
		a += 360
	}
	return fmt.Sprintf("%03d", a)
}

