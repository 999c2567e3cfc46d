package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, FormatPNG, cfg.Render.Format)
	assert.Equal(t, 1024, cfg.Render.Resolution)
	assert.InDelta(t, 35.264, cfg.Render.Elevation, 1e-9)
	assert.Len(t, cfg.Render.Angles, 8)
	assert.True(t, cfg.Render.FilmTransparent)
	assert.False(t, cfg.Render.TopDown)
}

func TestFormat(t *testing.T) {
	f, err := ParseFormat(" both ")
	require.NoError(t, err)
	assert.True(t, f.PNG())
	assert.True(t, f.SVG())
	assert.False(t, FormatPNG.SVG())
	assert.False(t, FormatSVG.PNG())

	_, err = ParseFormat("JPEG")
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "yes", "On", " y "} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"0", "false", "No", "off", ""} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, b, s)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"SS_OUTPUT_FORMAT":    "svg",
		"SS_OUTPUT_RES":       "512",
		"SS_ISO_ELEV_DEG":     "30",
		"SS_BASE_YAW_DEG":     "15.5",
		"SS_ENGINE":           "cycles",
		"SS_FILM_TRANSPARENT": "off",
		"SS_DEBUG_OVERLAY":    "yes",
		"SS_ENV_HDRI":         "/tmp/sky.png",
		"SS_EXPORT_TOP_DOWN":  "1",
		"SS_BORDER_PX":        "12",
		"SS_EXPORT_DXF":       "true",
		"SS_MESH_CELLS":       "32",
		"SS_MARGIN":           "1.3",
	}))
	require.NoError(t, err)

	r := cfg.Render
	assert.Equal(t, FormatSVG, r.Format)
	assert.Equal(t, 512, r.Resolution)
	assert.Equal(t, 30.0, r.Elevation)
	assert.Equal(t, 15.5, r.BaseYaw)
	assert.Equal(t, "CYCLES", r.Engine)
	assert.False(t, r.FilmTransparent)
	assert.True(t, r.DebugOverlay)
	assert.Equal(t, "/tmp/sky.png", r.EnvHDRI)
	assert.True(t, r.TopDown)
	assert.Equal(t, 12, r.BorderPx)
	assert.True(t, r.ExportDXF)
	assert.Equal(t, 32, r.MeshCells)
	assert.Equal(t, 1.3, r.Margin)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvUnsetKeepsValues(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(nil)))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnvReportsEveryBadValue(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"SS_OUTPUT_RES":    "big",
		"SS_DEBUG_OVERLAY": "perhaps",
		"SS_OUTPUT_FORMAT": "GIF",
		"SS_ISO_ELEV_DEG":  "35.264",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SS_OUTPUT_RES")
	assert.Contains(t, err.Error(), "SS_DEBUG_OVERLAY")
	assert.Contains(t, err.Error(), "SS_OUTPUT_FORMAT")
	assert.Equal(t, 1024, cfg.Render.Resolution)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stager.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[render]
format = "BOTH"
resolution = 256
angles = [0, 90]
export_top_down = true

[geo]
simplify_tolerance = 0.0001
`), 0o644))

	t.Setenv("SS_OUTPUT_RES", "300")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, FormatBoth, cfg.Render.Format)
	assert.Equal(t, 300, cfg.Render.Resolution, "environment overrides the file")
	assert.Equal(t, []float64{0, 90}, cfg.Render.Angles)
	assert.True(t, cfg.Render.TopDown)
	assert.Equal(t, 0.0001, cfg.Geo.SimplifyTolerance)
	assert.Equal(t, 300, cfg.Geo.MapDPI)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stager.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\nresolutoin = 10\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"format", func(c *Config) { c.Render.Format = "GIF" }, "output format"},
		{"engine", func(c *Config) { c.Render.Engine = "WORKBENCH" }, "engine"},
		{"strategy", func(c *Config) { c.Render.Strategy = "tight" }, "fit strategy"},
		{"resolution", func(c *Config) { c.Render.Resolution = 0 }, "resolution"},
		{"border", func(c *Config) { c.Render.BorderPx = 600 }, "border"},
		{"margin", func(c *Config) { c.Render.Margin = 1 }, "margin"},
		{"angles", func(c *Config) { c.Render.Angles = nil }, "angle"},
		{"angle labels", func(c *Config) { c.Render.Angles = []float64{0, 90, 360} }, "repeat an output label"},
		{"elevation", func(c *Config) { c.Render.Elevation = 90 }, "elevation"},
		{"cells", func(c *Config) { c.Render.MeshCells = 4 }, "mesh cells"},
		{"crease", func(c *Config) { c.Render.CreaseAngle = 180 }, "crease"},
		{"dpi", func(c *Config) { c.Geo.MapDPI = 0 }, "dpi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAngleLabel(t *testing.T) {
	tests := []struct {
		angle float64
		want  string
	}{
		{0, "000"},
		{45, "045"},
		{315, "315"},
		{360, "000"},
		{-90, "270"},
		{89.6, "090"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AngleLabel(tt.angle), "angle %v", tt.angle)
	}
}
