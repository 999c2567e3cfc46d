// Package batch renders a directory of model scripts.
//
// Each model is loaded, framed and written out completely (every angle of
// the isometric pass, then the optional top-down pass) before the next one
// starts. Problems that only affect one step are collected as warnings in
// the Report; Run returns an error only when the run as a whole cannot
// proceed.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/stager/pkg/config"
	"github.com/chazu/stager/pkg/engine"
	"github.com/chazu/stager/pkg/framing"
	"github.com/chazu/stager/pkg/kernel"
	"github.com/chazu/stager/pkg/kernel/sdfx"
	"github.com/chazu/stager/pkg/lineart"
	"github.com/chazu/stager/pkg/raster"
	"github.com/chazu/stager/pkg/scene"
	"github.com/chazu/stager/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// ErrNoModels is returned when the input directory holds no scripts.
var ErrNoModels = errors.New("no models")

// Pass names one orbit of views.
type Pass string

const (
	PassIso     Pass = "iso"
	PassTopDown Pass = "top"
)

// ModelReport describes what happened to one model.
type ModelReport struct {
	Name     string
	Script   string
	Objects  int
	Scale    map[Pass]float64 // shared orthographic width per pass
	Outputs  []string
	Warnings []string
	Skipped  bool
}

// Report is the outcome of a run.
type Report struct {
	Models []ModelReport
}

// Warnings returns every model warning prefixed with the model name.
func (r *Report) Warnings() []string {
	var out []string
	for _, m := range r.Models {
		out = append(out, lo.Map(m.Warnings, func(w string, _ int) string {
			return m.Name + ": " + w
		})...)
	}
	return out
}

// Outputs returns every file written by the run.
func (r *Report) Outputs() []string {
	return lo.FlatMap(r.Models, func(m ModelReport, _ int) []string { return m.Outputs })
}

// Runner renders models with one configuration.
type Runner struct {
	cfg    config.RenderConfig
	engine *engine.Engine
	kernel kernel.Kernel
	logger *slog.Logger
}

// New returns a Runner. cfg should already be validated.
func New(cfg config.RenderConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:    cfg,
		engine: engine.NewEngine(),
		kernel: sdfx.NewWithCells(cfg.MeshCells),
		logger: logger,
	}
}

// Run renders every script in inDir into a subdirectory of outDir named
// after the script. The returned report covers the models finished before
// any error, including cancellation.
func (r *Runner) Run(ctx context.Context, inDir, outDir string) (*Report, error) {
	scripts, err := Discover(inDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}

	rep := &Report{}
	for _, path := range scripts {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		mr, err := r.RenderModel(ctx, path, outDir)
		rep.Models = append(rep.Models, mr)
		if err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// RenderModel renders one script. Script and scene problems are reported
// as warnings on the returned ModelReport; the error is reserved for
// cancellation and output failures.
func (r *Runner) RenderModel(ctx context.Context, path, outDir string) (ModelReport, error) {
	stem := Stem(path)
	mr := ModelReport{Name: stem, Script: path, Scale: map[Pass]float64{}}
	log := r.logger.With("model", stem)
	log.Info("rendering model", "script", path)

	objs, warnings, err := r.LoadModel(ctx, path)
	mr.Warnings = append(mr.Warnings, warnings...)
	if err != nil {
		if ctx.Err() != nil {
			return mr, ctx.Err()
		}
		log.Warn("skipping model", "error", err)
		mr.Warnings = append(mr.Warnings, err.Error())
		mr.Skipped = true
		return mr, nil
	}
	mr.Objects = len(objs)
	if len(objs) == 0 {
		mr.Warnings = append(mr.Warnings, "no visible objects; framing the default volume")
	}

	s, err := r.newScene(objs, log)
	if err != nil {
		return mr, err
	}

	dir := filepath.Join(outDir, stem)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return mr, fmt.Errorf("model directory: %w: %w", scene.ErrExportFailed, err)
	}

	passes := []Pass{PassIso}
	if r.cfg.TopDown {
		passes = append(passes, PassTopDown)
	}
	for _, pass := range passes {
		plan, err := r.plan(s, pass)
		if err != nil {
			s.Warn(err)
		}
		mr.Scale[pass] = plan.Scale
		log.Debug("fitted pass", "pass", pass, "scale", plan.Scale)

		s.Camera.OrthoScale = plan.Scale
		for i, view := range plan.Views {
			if err := ctx.Err(); err != nil {
				mr.Warnings = append(mr.Warnings, sceneWarnings(s)...)
				return mr, err
			}
			s.Camera.Pose = view.Pose
			outs, err := r.writeView(s, dir, stem, pass, r.cfg.Angles[i])
			mr.Outputs = append(mr.Outputs, outs...)
			if err != nil {
				mr.Warnings = append(mr.Warnings, sceneWarnings(s)...)
				return mr, err
			}
		}
	}
	mr.Warnings = append(mr.Warnings, sceneWarnings(s)...)
	log.Info("model done", "outputs", len(mr.Outputs), "warnings", len(mr.Warnings))
	return mr, nil
}

// LoadModel evaluates and tessellates a script. Validation warnings are
// returned alongside the objects.
func (r *Runner) LoadModel(ctx context.Context, path string) ([]*scene.Object, []string, error) {
	res, err := r.engine.EvaluateFile(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	warnings := lo.Map(res.Warnings, func(w engine.EvalWarning, _ int) string { return w.String() })
	if len(res.Errors) > 0 {
		msgs := lo.Map(res.Errors, func(e engine.EvalError, _ int) string { return e.Error() })
		return nil, warnings, fmt.Errorf("script errors: %s", strings.Join(msgs, "; "))
	}
	objs, err := tessellate.Tessellate(res.Graph, r.kernel)
	if err != nil {
		return nil, warnings, fmt.Errorf("tessellate: %w", err)
	}
	return objs, warnings, nil
}

// newScene builds the scene for a model and applies the configured
// settings. Settings the engine cannot honor become scene warnings.
func (r *Runner) newScene(objs []*scene.Object, log *slog.Logger) (*scene.Scene, error) {
	eng, err := scene.ParseEngine(r.cfg.Engine)
	if err != nil {
		return nil, err
	}
	s, err := scene.New(eng, r.cfg.Resolution, r.cfg.Resolution, log)
	if err != nil {
		return nil, err
	}
	s.Add(objs...)

	la := scene.DefaultLineArt()
	la.Enabled = r.cfg.Format.SVG() || r.cfg.ExportDXF
	la.CreaseAngle = r.cfg.CreaseAngle
	la.Thickness = r.cfg.LineWidth

	s.Warn(scene.ConfigureFilm(s, r.cfg.FilmTransparent))
	s.Warn(scene.ConfigureEnvironment(s, r.cfg.EnvHDRI))
	s.Warn(scene.ConfigureLineArt(s, la))
	s.Warn(scene.ConfigureDebugOverlay(s, r.cfg.DebugOverlay))
	s.Warn(scene.ConfigureBorder(s, r.cfg.BorderPx))
	return s, nil
}

// plan fits every angle of a pass and returns the shared scale.
func (r *Runner) plan(s *scene.Scene, pass Pass) (framing.OrbitPlan, error) {
	center, sx, sy := framing.ComputeBounds(s.Bounded())
	corners := framing.WorldCorners(s.Bounded())
	if len(corners) == 0 {
		b := framing.EmptyBox()
		b.Extend(center.Sub(v3.Vec{X: sx / 2, Y: sy / 2, Z: 1}))
		b.Extend(center.Add(v3.Vec{X: sx / 2, Y: sy / 2, Z: 1}))
		c := b.Corners()
		corners = c[:]
	}

	elev := r.cfg.Elevation
	if pass == PassTopDown {
		elev = framing.TopDownElevation
	}
	strategy := framing.StrategyLocal
	if strings.EqualFold(r.cfg.Strategy, framing.StrategyNDC.String()) {
		strategy = framing.StrategyNDC
	}
	radius := math.Max(
		framing.OrbitRadius(sx, sy),
		framing.ClearanceRadius(center, corners, s.Camera.ClipStart),
	)
	// No corner is farther than 2*radius from any orbit position.
	s.Camera.ClipEnd = math.Max(s.Camera.ClipEnd, 2*radius)
	spec := framing.OrbitSpec{
		Center:    center,
		Radius:    radius,
		Elevation: elev,
		Yaws:      lo.Map(r.cfg.Angles, func(a float64, _ int) float64 { return a + r.cfg.BaseYaw }),
	}
	return framing.PlanOrbit(spec, corners, s.FitOptions(strategy, r.cfg.Margin), r.cfg.DiagonalMargin)
}

// writeView writes the configured outputs of the current camera.
func (r *Runner) writeView(s *scene.Scene, dir, stem string, pass Pass, angle float64) ([]string, error) {
	var outs []string
	label := config.AngleLabel(angle)

	if r.cfg.Format.PNG() {
		name := fmt.Sprintf("%s_%s.png", stem, label)
		if pass == PassTopDown {
			name = fmt.Sprintf("%s_TOP_%s.png", stem, label)
		}
		img, err := raster.Render(s)
		if err != nil {
			return outs, err
		}
		path := filepath.Join(dir, name)
		if err := raster.WritePNG(path, img); err != nil {
			return outs, err
		}
		outs = append(outs, path)
	}

	if !s.LineArt.Enabled || (!r.cfg.Format.SVG() && !r.cfg.ExportDXF) {
		return outs, nil
	}
	d, err := lineart.Extract(s)
	if err != nil {
		s.Warn(err)
		return outs, nil
	}
	base := "view_" + label
	if pass == PassTopDown {
		base = "view_TOP_" + label
	}
	if r.cfg.Format.SVG() {
		path := filepath.Join(dir, base+".svg")
		if err := lineart.WriteSVG(path, d, lineart.StyleFrom(s.LineArt)); err != nil {
			return outs, err
		}
		outs = append(outs, path)
	}
	if r.cfg.ExportDXF {
		path := filepath.Join(dir, base+".dxf")
		if err := lineart.WriteDXF(path, d); err != nil {
			return outs, err
		}
		outs = append(outs, path)
	}
	return outs, nil
}

func sceneWarnings(s *scene.Scene) []string {
	w := lo.Map(s.Warnings, func(err error, _ int) string { return err.Error() })
	s.Warnings = nil
	return w
}
