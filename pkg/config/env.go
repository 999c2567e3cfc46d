package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ParseBool accepts the usual spellings of a switch: 1/0, true/false,
// yes/no, on/off, y/n, in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// ApplyEnv overlays SS_* variables onto c. Unset variables leave the
// current value alone; every malformed value is reported.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	r := &c.Render
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	if v, ok := lookup("SS_OUTPUT_FORMAT"); ok {
		f, err := ParseFormat(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SS_OUTPUT_FORMAT: %w", err))
		} else {
			r.Format = f
		}
	}
	integer("SS_OUTPUT_RES", &r.Resolution)
	float("SS_ISO_ELEV_DEG", &r.Elevation)
	float("SS_BASE_YAW_DEG", &r.BaseYaw)
	str("SS_ENGINE", &r.Engine)
	r.Engine = strings.ToUpper(r.Engine)
	boolean("SS_FILM_TRANSPARENT", &r.FilmTransparent)
	boolean("SS_DEBUG_OVERLAY", &r.DebugOverlay)
	str("SS_ENV_HDRI", &r.EnvHDRI)
	boolean("SS_EXPORT_TOP_DOWN", &r.TopDown)
	integer("SS_BORDER_PX", &r.BorderPx)
	boolean("SS_EXPORT_DXF", &r.ExportDXF)
	integer("SS_MESH_CELLS", &r.MeshCells)
	float("SS_MARGIN", &r.Margin)

	return errors.Join(errs...)
}
