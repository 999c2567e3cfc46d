// Package lineart extracts feature lines from a scene as seen by its
// camera and writes them as vector drawings.
//
// Extraction welds every object's triangles into one world-space mesh,
// classifies edges as contour, crease or material lines, adds the lines
// where objects pass through each other, and removes the hidden parts of
// every line against a depth buffer. The result is a set of 2D segments
// in pixel coordinates.
package lineart

import (
	"fmt"
	"math"

	"github.com/chazu/stager/pkg/scene"
)

// Kind classifies a feature line.
type Kind int

const (
	Contour      Kind = iota // silhouette or open boundary
	Crease                   // sharp edge inside one surface
	Material                 // border between two objects
	Intersection             // where two objects cross
)

func (k Kind) String() string {
	switch k {
	case Contour:
		return "contour"
	case Crease:
		return "crease"
	case Material:
		return "material"
	case Intersection:
		return "intersection"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Kinds lists every line kind in drawing order.
var Kinds = []Kind{Contour, Crease, Material, Intersection}

// Point is a position in pixel coordinates, origin top-left.
type Point [2]float64

// Segment is one visible stretch of a feature line.
type Segment struct {
	Kind Kind
	A, B Point
}

// Length returns the segment length in pixels.
func (s Segment) Length() float64 {
	return math.Hypot(s.B[0]-s.A[0], s.B[1]-s.A[1])
}

// Drawing is the visible line art of one view.
type Drawing struct {
	Width, Height int     // pixels
	PixelSize     float64 // world units per pixel
	Segments      []Segment
}

// Count returns the number of segments of kind k.
func (d *Drawing) Count(k Kind) int {
	n := 0
	for _, s := range d.Segments {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// Extract computes the visible feature lines of s from its camera. Only the
// line kinds enabled in s.LineArt are produced.
func Extract(s *scene.Scene) (*Drawing, error) {
	if !s.LineArt.Enabled {
		return nil, fmt.Errorf("line art disabled: %w", scene.ErrConfigurationUnavailable)
	}
	cam := s.Camera
	d := &Drawing{Width: cam.ResX, Height: cam.ResY, PixelSize: cam.PixelSize()}

	m := weld(s.Objects)
	edges := classify(m, cam.Pose.Frame.Forward, s.LineArt)
	if s.LineArt.Intersection {
		edges = append(edges, intersections(m)...)
	}

	zb := newDepthBuffer(cam, m)
	for _, e := range edges {
		d.Segments = append(d.Segments, zb.visibleRuns(e)...)
	}
	return d, nil
}
