package geo

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// MapOptions sizes the borough map.
type MapOptions struct {
	SizeInches   float64 // square
	DPI          int
	OutlineWidth float64 // points
}

// DefaultMapOptions matches a 3000px print-quality image.
func DefaultMapOptions() MapOptions {
	return MapOptions{SizeInches: 10, DPI: 300, OutlineWidth: 1.5}
}

// ringXYs converts a ring to plot points.
func ringXYs(r orb.Ring) plotter.XYs {
	xys := make(plotter.XYs, len(r))
	for i, p := range r {
		xys[i] = plotter.XY{X: p[0], Y: p[1]}
	}
	return xys
}

// polygons flattens the polygon geometry of fc.
func polygons(fc *geojson.FeatureCollection) []orb.Polygon {
	var out []orb.Polygon
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			out = append(out, g)
		case orb.MultiPolygon:
			out = append(out, g...)
		}
	}
	return out
}

// BoroughPlot draws every polygon of fc white with black outlines, axes
// hidden, on equal X and Y scales.
func BoroughPlot(fc *geojson.FeatureCollection, opt MapOptions) (*plot.Plot, error) {
	polys := polygons(fc)
	if len(polys) == 0 {
		return nil, errors.New("borough map: no polygons")
	}

	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = color.White
	p.X.Padding, p.Y.Padding = 0, 0

	bound := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, poly := range polys {
		rings := make([]plotter.XYer, 0, len(poly))
		for _, r := range poly {
			if len(r) < 3 {
				continue
			}
			rings = append(rings, ringXYs(r))
		}
		if len(rings) == 0 {
			continue
		}
		pg, err := plotter.NewPolygon(rings...)
		if err != nil {
			return nil, fmt.Errorf("borough polygon: %w", err)
		}
		pg.Color = color.White
		pg.LineStyle.Color = color.Black
		pg.LineStyle.Width = vg.Points(opt.OutlineWidth)
		p.Add(pg)
		bound = bound.Union(poly.Bound())
	}

	// Equal aspect: both axes span the larger extent.
	c := bound.Center()
	half := math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1]) / 2
	p.X.Min, p.X.Max = c[0]-half, c[0]+half
	p.Y.Min, p.Y.Max = c[1]-half, c[1]+half
	return p, nil
}

// RenderBoroughMap writes the borough outline map of fc as a PNG.
func RenderBoroughMap(fc *geojson.FeatureCollection, outPath string, opt MapOptions) error {
	p, err := BoroughPlot(fc, opt)
	if err != nil {
		return err
	}
	size := vg.Length(opt.SizeInches) * vg.Inch
	canvas := vgimg.NewWith(vgimg.UseWH(size, size), vgimg.UseDPI(opt.DPI))
	p.Draw(draw.New(canvas))

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create map: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write map: %w", err)
	}
	return f.Close()
}

// RenderBoroughMapFile reads a boundary file and renders it.
func RenderBoroughMapFile(inPath, outPath string, opt MapOptions) error {
	fc, err := ReadFeatureCollection(inPath)
	if err != nil {
		return err
	}
	return RenderBoroughMap(fc, outPath, opt)
}
