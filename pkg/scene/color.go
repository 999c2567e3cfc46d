package scene

import (
	"fmt"
	"image/color"
	"strconv"
)

// palette assigns distinct colors to parts that do not name one.
var palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// PaletteColor returns the i-th default part color.
func PaletteColor(i int) color.RGBA {
	c, _ := ParseColor(palette[i%len(palette)])
	return c
}

// ParseColor parses "#rgb" or "#rrggbb" into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("color %q: missing leading #", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want 3 or 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Scale multiplies the RGB channels of c by f, clamped to [0,1]. Alpha is
// kept.
func Scale(c color.RGBA, f float64) color.RGBA {
	ch := func(v uint8) uint8 {
		x := float64(v) * f
		switch {
		case x < 0:
			return 0
		case x > 255:
			return 255
		}
		return uint8(x + 0.5)
	}
	return color.RGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: c.A}
}
