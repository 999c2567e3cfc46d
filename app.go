package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chazu/stager/pkg/batch"
	"github.com/chazu/stager/pkg/config"
	"github.com/chazu/stager/pkg/engine"
	"github.com/chazu/stager/pkg/framing"
	"github.com/chazu/stager/pkg/geo"
	"github.com/chazu/stager/pkg/graph"
	"github.com/chazu/stager/pkg/kernel"
	"github.com/chazu/stager/pkg/kernel/sdfx"
	"github.com/chazu/stager/pkg/scene"
	"github.com/chazu/stager/pkg/tessellate"
)

// App is the command backend. Each method serves one subcommand.
type App struct {
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	logger *slog.Logger
}

// PartData summarizes one tessellated part of a checked script.
type PartData struct {
	PartName  string     `json:"partName"`
	Color     string     `json:"color"`
	Triangles int        `json:"triangles"`
	Min       [3]float64 `json:"min"`
	Max       [3]float64 `json:"max"`
}

// EvalErrorData is a script error or warning with its position.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the outcome of checking one script.
type EvalResult struct {
	Parts    []PartData      `json:"parts"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with an engine and the sdfx kernel.
func NewApp(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(),
		kernel: sdfx.NewWithCells(cfg.Render.MeshCells),
		logger: logger,
	}
}

// Evaluate runs a script through evaluation, validation and tessellation
// and reports the resulting parts.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Parts:    []PartData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the source into a scene graph.
	g, evalErrs, err := a.engine.Evaluate(ctx, source)
	if err != nil {
		a.logger.Error("evaluate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	// Step 2: Validate. An empty program has nothing to check.
	if g.NodeCount() > 0 {
		vr := graph.ValidateAll(g)
		for _, w := range vr.Warnings {
			result.Warnings = append(result.Warnings, EvalErrorData{Message: w.String()})
		}
		if !vr.OK() {
			for _, e := range vr.Errors {
				result.Errors = append(result.Errors, EvalErrorData{Message: e.Error()})
			}
			return result
		}
	}

	// Step 3: Tessellate into placed scene objects.
	objs, err := tessellate.Tessellate(g, a.kernel)
	if err != nil {
		a.logger.Error("tessellate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	// Step 4: Summarize each object in world space.
	for _, o := range objs {
		b, _ := framing.WorldBounds([]framing.Bounded{o})
		result.Parts = append(result.Parts, PartData{
			PartName:  o.Name,
			Color:     hexColor(o),
			Triangles: o.TriangleCount(),
			Min:       [3]float64{b.Min.X, b.Min.Y, b.Min.Z},
			Max:       [3]float64{b.Max.X, b.Max.Y, b.Max.Z},
		})
	}
	return result
}

func hexColor(o *scene.Object) string {
	return fmt.Sprintf("#%02x%02x%02x", o.Color.R, o.Color.G, o.Color.B)
}

// Render renders every model script in inDir into outDir.
func (a *App) Render(ctx context.Context, inDir, outDir string) (*batch.Report, error) {
	return batch.New(a.cfg.Render, a.logger).Run(ctx, inDir, outDir)
}

// MinifyPermits trims a permit-area GeoJSON file.
func (a *App) MinifyPermits(inPath, outPath string) (int, error) {
	n, err := geo.MinifyPermitAreasFile(inPath, outPath, a.cfg.Geo.SimplifyTolerance)
	if err != nil {
		return 0, err
	}
	a.logger.Info("minified permit areas", "features", n, "out", outPath)
	return n, nil
}

// BusStops builds the bus stop layer from GTFS feeds matching pattern.
func (a *App) BusStops(pattern, outPath, boroughPath, boroughProp string) (int, error) {
	return geo.BuildBusStopsFile(pattern, outPath, boroughPath, boroughProp, a.logger)
}

// BoroughMap renders a borough boundary file as a PNG.
func (a *App) BoroughMap(inPath, outPath string) error {
	opt := geo.MapOptions{
		SizeInches:   a.cfg.Geo.MapSizeInches,
		DPI:          a.cfg.Geo.MapDPI,
		OutlineWidth: a.cfg.Geo.OutlineWidthPt,
	}
	if err := geo.RenderBoroughMapFile(inPath, outPath, opt); err != nil {
		return err
	}
	a.logger.Info("rendered borough map", "out", outPath)
	return nil
}
