package scene

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	v3 "github.com/deadsy/sdfx/vec/v3"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Sun is a directional light.
type Sun struct {
	Direction v3.Vec // direction the light travels, unit length
	Energy    float64
	Color     color.RGBA
}

// DefaultSun lights the model from above, front-left.
func DefaultSun() Sun {
	d := v3.Vec{X: -0.4, Y: -0.3, Z: -0.85}
	return Sun{
		Direction: d.MulScalar(1 / d.Length()),
		Energy:    0.8,
		Color:     color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// World is the background and ambient light.
type World struct {
	Background color.RGBA
	Strength   float64     // ambient light multiplier
	Env        *EnvTexture // nil without an environment image
}

// DefaultWorld is a dim grey world.
func DefaultWorld() World {
	return World{
		Background: color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		Strength:   0.35,
	}
}

// Ambient returns the ambient light color: the environment mean when an
// environment image is loaded, the background otherwise.
func (w World) Ambient() color.RGBA {
	if w.Env != nil {
		return w.Env.Mean
	}
	return w.Background
}

// EnvTexture is a decoded environment image used as the backdrop and
// ambient light source.
type EnvTexture struct {
	Path  string
	Image image.Image
	Mean  color.RGBA
}

// LoadEnvTexture decodes an environment image. PNG, JPEG, BMP, TIFF and
// WebP are supported; radiance formats such as .hdr and .exr are not.
func LoadEnvTexture(path string) (*EnvTexture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open environment image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode environment image %s: %w", path, err)
	}
	return &EnvTexture{Path: path, Image: img, Mean: meanColor(img)}, nil
}

// Backdrop returns the environment image scaled to w×h.
func (e *EnvTexture) Backdrop(w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), e.Image, e.Image.Bounds(), xdraw.Src, nil)
	return dst
}

// meanColor averages at most 64×64 samples of img.
func meanColor(img image.Image) color.RGBA {
	b := img.Bounds()
	if b.Empty() {
		return color.RGBA{A: 0xff}
	}
	stepX := max(1, b.Dx()/64)
	stepY := max(1, b.Dy()/64)
	var r, g, bl, n uint64
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			bl += uint64(cb >> 8)
			n++
		}
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: 0xff}
}
