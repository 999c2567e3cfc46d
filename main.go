// Command stager renders street-furniture models for the map front end
// and prepares its geo datasets.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/chazu/stager/pkg/config"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "stager",
		Short:         "Render model views and build map datasets",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if c.verbose {
				level = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML settings file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(c.renderCmd(), c.checkCmd(), c.geoCmd())
	return root
}

// app validates the settings and returns the backend.
func (c *cli) app() (*App, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return NewApp(c.cfg, c.logger), nil
}

func (c *cli) renderCmd() *cobra.Command {
	var (
		format  string
		res     int
		engine  string
		topDown bool
		dxf     bool
		angles  []float64
	)
	cmd := &cobra.Command{
		Use:   "render <input-dir> <output-dir>",
		Short: "Render every model script in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &c.cfg.Render
			flags := cmd.Flags()
			if flags.Changed("format") {
				f, err := config.ParseFormat(format)
				if err != nil {
					return err
				}
				r.Format = f
			}
			if flags.Changed("res") {
				r.Resolution = res
			}
			if flags.Changed("engine") {
				r.Engine = strings.ToUpper(engine)
			}
			if flags.Changed("top-down") {
				r.TopDown = topDown
			}
			if flags.Changed("dxf") {
				r.ExportDXF = dxf
			}
			if flags.Changed("angles") {
				r.Angles = angles
			}

			a, err := c.app()
			if err != nil {
				return err
			}
			rep, err := a.Render(cmd.Context(), args[0], args[1])
			if rep != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d models, %d files\n", len(rep.Models), len(rep.Outputs()))
				if w := rep.Warnings(); len(w) > 0 {
					fmt.Fprintf(out, "%d warnings:\n", len(w))
					for _, msg := range w {
						fmt.Fprintf(out, "  %s\n", msg)
					}
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "PNG, SVG or BOTH")
	cmd.Flags().IntVar(&res, "res", 0, "square output resolution in pixels")
	cmd.Flags().StringVar(&engine, "engine", "", "EEVEE or CYCLES")
	cmd.Flags().BoolVar(&topDown, "top-down", false, "also render the top-down pass")
	cmd.Flags().BoolVar(&dxf, "dxf", false, "also write DXF line drawings")
	cmd.Flags().Float64SliceVar(&angles, "angles", nil, "yaw angles in degrees")
	return cmd
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <script>",
		Short: "Evaluate a model script and list its parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			a, err := c.app()
			if err != nil {
				return err
			}
			res := a.Evaluate(cmd.Context(), string(src))
			out := cmd.OutOrStdout()
			for _, p := range res.Parts {
				fmt.Fprintf(out, "%-20s %s %6d tris  [%.3f %.3f %.3f]..[%.3f %.3f %.3f]\n",
					p.PartName, p.Color, p.Triangles,
					p.Min[0], p.Min[1], p.Min[2], p.Max[0], p.Max[1], p.Max[2])
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w.Message)
			}
			for _, e := range res.Errors {
				if e.Line > 0 {
					fmt.Fprintf(out, "error: line %d: %s\n", e.Line, e.Message)
				} else {
					fmt.Fprintf(out, "error: %s\n", e.Message)
				}
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("%s: %d errors", args[0], len(res.Errors))
			}
			return nil
		},
	}
}

func (c *cli) geoCmd() *cobra.Command {
	geoCmd := &cobra.Command{
		Use:   "geo",
		Short: "Build map datasets",
	}

	var tolerance float64
	minify := &cobra.Command{
		Use:   "minify-permits <in.geojson> <out.geojson>",
		Short: "Keep only the permit-area attributes the map uses",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("tolerance") {
				c.cfg.Geo.SimplifyTolerance = tolerance
			}
			a, err := c.app()
			if err != nil {
				return err
			}
			_, err = a.MinifyPermits(args[0], args[1])
			return err
		},
	}
	minify.Flags().Float64Var(&tolerance, "tolerance", 0, "Douglas-Peucker tolerance in degrees (0 keeps every vertex)")

	var boroughs, boroughProp string
	stops := &cobra.Command{
		Use:   "bus-stops <feed-dir-glob> <out.geojson>",
		Short: "Build a bus stop layer with served routes from GTFS feeds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			_, err = a.BusStops(args[0], args[1], boroughs, boroughProp)
			return err
		},
	}
	stops.Flags().StringVar(&boroughs, "boroughs", "", "boundary GeoJSON used to tag each stop")
	stops.Flags().StringVar(&boroughProp, "borough-prop", "BoroName", "boundary property copied to each stop")

	boroughMap := &cobra.Command{
		Use:   "borough-map <boundaries.geojson> <out.png>",
		Short: "Draw borough outlines as a PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			return a.BoroughMap(args[0], args[1])
		},
	}

	geoCmd.AddCommand(minify, stops, boroughMap)
	return geoCmd
}
