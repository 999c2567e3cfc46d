package lineart

import (
	"bufio"
	"fmt"
	"image/color"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/stager/pkg/scene"
	"github.com/yofu/dxf"
)

// svgUnits is the number of SVG user units per pixel. svgo takes integer
// coordinates, so drawings are scaled up and mapped back by the viewBox.
const svgUnits = 10

// Style controls stroke appearance in exported drawings.
type Style struct {
	Width float64 // pixels
	Color color.RGBA
}

// StyleFrom returns the stroke style of line-art settings.
func StyleFrom(la scene.LineArt) Style {
	return Style{Width: la.Thickness, Color: la.Color}
}

// WriteSVG writes d, clipped to the camera frame, as an SVG file. Each
// line kind becomes its own group.
func WriteSVG(path string, d *Drawing, st Style) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w: %w", path, scene.ErrExportFailed, err)
	}
	w := bufio.NewWriter(f)

	canvas := svg.New(w)
	canvas.Startview(d.Width, d.Height, 0, 0, d.Width*svgUnits, d.Height*svgUnits)
	canvas.Title("line art")

	lines := d.Clipped().Polylines()
	stroke := fmt.Sprintf("fill:none;stroke:#%02x%02x%02x;stroke-width:%d;stroke-linecap:round;stroke-linejoin:round",
		st.Color.R, st.Color.G, st.Color.B, int(math.Round(st.Width*svgUnits)))
	for _, k := range Kinds {
		canvas.Gid(k.String())
		canvas.Gstyle(stroke)
		for _, pl := range lines {
			if pl.Kind != k {
				continue
			}
			xs := make([]int, len(pl.Points))
			ys := make([]int, len(pl.Points))
			for i, p := range pl.Points {
				xs[i] = int(math.Round(p[0] * svgUnits))
				ys[i] = int(math.Round(p[1] * svgUnits))
			}
			canvas.Polyline(xs, ys)
		}
		canvas.Gend()
		canvas.Gend()
	}
	canvas.End()

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w: %w", path, scene.ErrExportFailed, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w: %w", path, scene.ErrExportFailed, err)
	}
	return nil
}

// WriteDXF writes d, clipped to the camera frame, as a DXF file in world
// units with Y up. Each line kind is its own layer.
func WriteDXF(path string, d *Drawing) error {
	drawing := dxf.NewDrawing()
	scale := d.PixelSize
	if !(scale > 0) || math.IsInf(scale, 0) {
		scale = 1
	}
	h := float64(d.Height)

	clipped := d.Clipped()
	for _, k := range Kinds {
		if clipped.Count(k) == 0 {
			continue
		}
		if _, err := drawing.AddLayer(k.String(), dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("dxf layer %s: %w: %w", k, scene.ErrExportFailed, err)
		}
		for _, s := range clipped.Segments {
			if s.Kind != k {
				continue
			}
			if _, err := drawing.Line(
				s.A[0]*scale, (h-s.A[1])*scale, 0,
				s.B[0]*scale, (h-s.B[1])*scale, 0,
			); err != nil {
				return fmt.Errorf("dxf line: %w: %w", scene.ErrExportFailed, err)
			}
		}
	}
	if err := drawing.SaveAs(path); err != nil {
		return fmt.Errorf("write %s: %w: %w", path, scene.ErrExportFailed, err)
	}
	return nil
}
