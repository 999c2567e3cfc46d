// Package raster draws a shaded orthographic image of a scene. Triangles
// are projected through the scene camera, sorted back to front and filled
// with draw2d, so the result needs no depth buffer.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/chazu/stager/pkg/framing"
	"github.com/chazu/stager/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
)

// face is one projected, shaded triangle.
type face struct {
	pts   [3][2]float64
	depth float64
	fill  color.RGBA
}

// Render draws the scene as seen by its camera.
func Render(s *scene.Scene) (*image.RGBA, error) {
	cam := s.Camera
	if cam.ResX <= 0 || cam.ResY <= 0 {
		return nil, fmt.Errorf("render at %dx%d: %w", cam.ResX, cam.ResY, scene.ErrConfigurationUnavailable)
	}
	img := image.NewRGBA(image.Rect(0, 0, cam.ResX, cam.ResY))
	paintBackground(img, s)

	faces := collectFaces(s)
	// Painter's order: farthest first.
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].depth > faces[j].depth })

	gc := draw2dimg.NewGraphicContext(img)
	gc.SetLineWidth(0.5)
	for _, f := range faces {
		gc.SetFillColor(f.fill)
		gc.SetStrokeColor(f.fill)
		gc.BeginPath()
		gc.MoveTo(f.pts[0][0], f.pts[0][1])
		gc.LineTo(f.pts[1][0], f.pts[1][1])
		gc.LineTo(f.pts[2][0], f.pts[2][1])
		gc.Close()
		// Stroking with the fill color hides seams between neighbours.
		gc.FillStroke()
	}

	if s.DebugOverlay {
		drawOverlay(gc, s)
	}
	return img, nil
}

func paintBackground(img *image.RGBA, s *scene.Scene) {
	switch {
	case s.FilmTransparent:
		// Leave the zero (transparent) pixels.
	case s.World.Env != nil:
		bd := s.World.Env.Backdrop(img.Bounds().Dx(), img.Bounds().Dy())
		draw.Draw(img, img.Bounds(), bd, image.Point{}, draw.Src)
	default:
		draw.Draw(img, img.Bounds(), &image.Uniform{C: s.World.Background}, image.Point{}, draw.Src)
	}
}

func collectFaces(s *scene.Scene) []face {
	cam := s.Camera
	var faces []face
	for _, o := range s.Objects {
		for t := 0; t < o.TriangleCount(); t++ {
			w := o.WorldTriangle(t)
			n, ok := normal(w)
			if !ok {
				continue
			}
			// Shade the side facing the camera.
			if n.Dot(cam.Pose.Frame.Forward) > 0 {
				n = n.MulScalar(-1)
			}

			var f face
			inClip := true
			for i, p := range w {
				px, py, d := cam.Project(p)
				f.pts[i] = [2]float64{px, py}
				f.depth += d / 3
				inClip = inClip && cam.InClip(d)
			}
			if !inClip {
				continue
			}
			f.fill = Shade(o.Color, n, s)
			faces = append(faces, f)
		}
	}
	return faces
}

// normal returns the unit normal of a world triangle.
func normal(w [3]v3.Vec) (v3.Vec, bool) {
	n := w[1].Sub(w[0]).Cross(w[2].Sub(w[0]))
	l := n.Length()
	if l < 1e-15 || math.IsNaN(l) {
		return v3.Vec{}, false
	}
	return n.MulScalar(1 / l), true
}

// Shade lights a surface of color base with normal n using the scene's sun
// and world ambient. Engines with soft shading wrap the diffuse term so
// faces turned away from the sun are not flat.
func Shade(base color.RGBA, n v3.Vec, s *scene.Scene) color.RGBA {
	toLight := s.Sun.Direction.MulScalar(-1)
	diffuse := n.Dot(toLight)
	if s.Caps.SoftShading {
		diffuse = math.Pow(diffuse*0.5+0.5, 2)
	} else {
		diffuse = math.Max(0, diffuse)
	}

	amb := s.World.Ambient()
	sun := s.Sun.Color
	ch := func(b, a, l uint8) uint8 {
		light := float64(a)/255*s.World.Strength + float64(l)/255*s.Sun.Energy*diffuse
		return uint8(math.Min(255, float64(b)*light+0.5))
	}
	return color.RGBA{
		R: ch(base.R, amb.R, sun.R),
		G: ch(base.G, amb.G, sun.G),
		B: ch(base.B, amb.B, sun.B),
		A: 0xff,
	}
}

// overlay colors.
var (
	overlayCorner = color.RGBA{R: 0xff, A: 0xff}
	overlayCenter = color.RGBA{G: 0xc0, A: 0xff}
	overlayFrame  = color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}
)

// drawOverlay marks the world AABB corners, the bounds center and the
// frame area inside the border.
func drawOverlay(gc *draw2dimg.GraphicContext, s *scene.Scene) {
	cam := s.Camera
	b, ok := framing.WorldBounds(s.Bounded())
	if !ok {
		return
	}

	r := math.Max(2, float64(cam.ResX)/200)
	gc.SetLineWidth(1)
	gc.SetFillColor(overlayCorner)
	for _, c := range b.Corners() {
		px, py, _ := cam.Project(c)
		gc.BeginPath()
		draw2dkit.Circle(gc, px, py, r)
		gc.Fill()
	}

	cx, cy, _ := cam.Project(b.Center())
	gc.SetStrokeColor(overlayCenter)
	gc.BeginPath()
	gc.MoveTo(cx-3*r, cy)
	gc.LineTo(cx+3*r, cy)
	gc.MoveTo(cx, cy-3*r)
	gc.LineTo(cx, cy+3*r)
	gc.Stroke()

	bp := framing.EffectiveBorder(s.BorderPx, cam.ResX)
	gc.SetStrokeColor(overlayFrame)
	gc.BeginPath()
	draw2dkit.Rectangle(gc, bp+0.5, bp+0.5, float64(cam.ResX)-bp-0.5, float64(cam.ResY)-bp-0.5)
	gc.Stroke()
}

// WritePNG saves img to path.
func WritePNG(path string, img image.Image) error {
	if err := draw2dimg.SaveToPngFile(path, img); err != nil {
		return fmt.Errorf("write %s: %w: %w", path, scene.ErrExportFailed, err)
	}
	return nil
}
