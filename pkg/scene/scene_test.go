package scene

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/stager/pkg/framing"
	"github.com/chazu/stager/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func newTestScene(t *testing.T, e Engine) *Scene {
	t.Helper()
	s, err := New(e, 200, 100, nil)
	if err != nil {
		t.Fatalf("New(%s): %v", e, err)
	}
	return s
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff8000", color.RGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}, false},
		{"#F80", color.RGBA{R: 0xff, G: 0x88, B: 0x00, A: 0xff}, false},
		{"#4A90D9", color.RGBA{R: 0x4a, G: 0x90, B: 0xd9, A: 0xff}, false},
		{"ff8000", color.RGBA{}, true},
		{"#ff80", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPaletteWraps(t *testing.T) {
	if PaletteColor(0) != PaletteColor(len(palette)) {
		t.Error("palette does not wrap")
	}
	if PaletteColor(0) == PaletteColor(1) {
		t.Error("adjacent palette colors are equal")
	}
}

func TestScale(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 0, A: 10}
	if got := Scale(c, 0.5); got != (color.RGBA{R: 100, G: 50, B: 0, A: 10}) {
		t.Errorf("Scale(0.5) = %v", got)
	}
	if got := Scale(c, 2); got.R != 255 || got.G != 200 {
		t.Errorf("Scale(2) = %v", got)
	}
}

func TestCapabilities(t *testing.T) {
	eevee, err := CapabilitiesFor(EngineEEVEE)
	if err != nil {
		t.Fatal(err)
	}
	if eevee.EnvironmentTexture {
		t.Error("EEVEE reports environment texture support")
	}
	cycles, err := CapabilitiesFor(EngineCycles)
	if err != nil {
		t.Fatal(err)
	}
	if !cycles.EnvironmentTexture || !cycles.SoftShading {
		t.Errorf("CYCLES capabilities = %+v", cycles)
	}
	if _, err := CapabilitiesFor("WORKBENCH"); !errors.Is(err, ErrConfigurationUnavailable) {
		t.Errorf("unknown engine err = %v", err)
	}
}

func TestParseEngine(t *testing.T) {
	if e, err := ParseEngine(" cycles "); err != nil || e != EngineCycles {
		t.Errorf("ParseEngine(cycles) = %v, %v", e, err)
	}
	if _, err := ParseEngine("blender"); err == nil {
		t.Error("ParseEngine(blender) succeeded")
	}
}

func TestNewRejectsBadResolution(t *testing.T) {
	if _, err := New(EngineEEVEE, 0, 100, nil); err == nil {
		t.Error("New with zero width succeeded")
	}
}

func writeImage(t *testing.T, path string, enc func(io.Writer, image.Image) error) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 150, B: 200, A: 0xff})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := enc(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestConfigureEnvironment(t *testing.T) {
	dir := t.TempDir()
	encoders := map[string]func(io.Writer, image.Image) error{
		"env.png":  png.Encode,
		"env.bmp":  bmp.Encode,
		"env.tiff": func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) },
	}
	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeImage(t, path, enc)

			s := newTestScene(t, EngineCycles)
			if err := ConfigureEnvironment(s, path); err != nil {
				t.Fatal(err)
			}
			if s.World.Env == nil {
				t.Fatal("environment not set")
			}
			want := color.RGBA{R: 100, G: 150, B: 200, A: 0xff}
			if s.World.Ambient() != want {
				t.Errorf("ambient = %v, want %v", s.World.Ambient(), want)
			}
			bd := s.World.Env.Backdrop(32, 16)
			if bd.Bounds().Dx() != 32 || bd.Bounds().Dy() != 16 {
				t.Errorf("backdrop bounds = %v", bd.Bounds())
			}
		})
	}
}

func TestConfigureEnvironmentUnavailable(t *testing.T) {
	s := newTestScene(t, EngineEEVEE)
	err := ConfigureEnvironment(s, "/nonexistent.png")
	if !errors.Is(err, ErrConfigurationUnavailable) {
		t.Errorf("EEVEE env err = %v", err)
	}

	s = newTestScene(t, EngineCycles)
	err = ConfigureEnvironment(s, filepath.Join(t.TempDir(), "missing.hdr"))
	if !errors.Is(err, ErrConfigurationUnavailable) {
		t.Errorf("missing file err = %v", err)
	}
	if s.World.Env != nil {
		t.Error("environment set after failure")
	}

	if err := ConfigureEnvironment(s, ""); err != nil {
		t.Errorf("empty path err = %v", err)
	}
}

func TestConfigureBorder(t *testing.T) {
	s := newTestScene(t, EngineEEVEE)
	if err := ConfigureBorder(s, 10); err != nil || s.BorderPx != 10 {
		t.Errorf("ConfigureBorder(10) = %v, border %d", err, s.BorderPx)
	}
	if err := ConfigureBorder(s, -1); err == nil {
		t.Error("negative border accepted")
	}
	if err := ConfigureBorder(s, 50); !errors.Is(err, ErrConfigurationUnavailable) {
		t.Errorf("oversized border err = %v", err)
	}
}

func TestWarnCollects(t *testing.T) {
	s := newTestScene(t, EngineEEVEE)
	s.Warn(nil)
	s.Warn(ConfigureEnvironment(s, "x.png"))
	if len(s.Warnings) != 1 {
		t.Fatalf("warnings = %v", s.Warnings)
	}
}

func TestCameraProject(t *testing.T) {
	c := NewCamera(200, 100)
	c.Pose = framing.NewPose(v3.Vec{Z: 10})
	c.OrthoScale = 4 // frame is 4 x 2 world units

	tests := []struct {
		w      v3.Vec
		px, py float64
	}{
		{v3.Vec{}, 100, 50},
		{v3.Vec{X: 2, Y: 1}, 200, 0},
		{v3.Vec{X: -2, Y: -1}, 0, 100},
	}
	for _, tt := range tests {
		px, py, d := c.Project(tt.w)
		if px != tt.px || py != tt.py {
			t.Errorf("Project(%v) = (%v, %v), want (%v, %v)", tt.w, px, py, tt.px, tt.py)
		}
		if d != 10 || !c.InClip(d) {
			t.Errorf("Project(%v) depth = %v", tt.w, d)
		}
	}
	if c.PixelSize() != 0.02 {
		t.Errorf("PixelSize = %v", c.PixelSize())
	}
}

func TestObjectCorners(t *testing.T) {
	mesh := &kernel.Mesh{
		Vertices: []float32{-1, -2, -3, 1, 2, 3, 1, -2, 3},
		Indices:  []uint32{0, 1, 2},
	}
	o := NewObject("part", mesh, sdf.Translate3d(v3.Vec{X: 10}), PaletteColor(0))
	b, ok := framing.WorldBounds([]framing.Bounded{o})
	if !ok {
		t.Fatal("no bounds")
	}
	if b.Min != (v3.Vec{X: 9, Y: -2, Z: -3}) || b.Max != (v3.Vec{X: 11, Y: 2, Z: 3}) {
		t.Errorf("world bounds = %+v", b)
	}
	tri := o.WorldTriangle(0)
	if tri[0] != (v3.Vec{X: 9, Y: -2, Z: -3}) {
		t.Errorf("WorldTriangle[0] = %v", tri[0])
	}
}
