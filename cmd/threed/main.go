// threed builds glTF 2.0 scenes of scientific plots from CSV data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/threed/internal/colormap"
	"github.com/Faultbox/threed/internal/config"
	"github.com/Faultbox/threed/internal/logger"
	"github.com/Faultbox/threed/internal/plot"
	"github.com/Faultbox/threed/pkg/formats"
	"github.com/Faultbox/threed/pkg/math"
	"github.com/Faultbox/threed/pkg/scene"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := args[0]
	args = args[1:]

	switch command {
	case "scatter":
		err = cmdScatter(ctx, cfg, args)
	case "density":
		err = cmdDensity(ctx, cfg, args)
	case "arrows":
		err = cmdArrows(ctx, cfg, args)
	case "inspect":
		err = cmdInspect(args)
	case "glb":
		err = cmdGLB(args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`threed - glTF 2.0 scenes for scientific plots

Usage:
  threed [global options] <command> [options]

Global options:
  -config <file>   Config file (.yaml or .toml)
  -out <dir>       Output directory
  -prefix <name>   Output file prefix
  -zup             Rotate the scene so +Z points up
  -glb             Also write a binary .glb
  -debug           Enable debug logging

Commands:
  scatter <points.csv>    Spheres at x,y,z rows (optional color, metal, roughness)
  density <grid.csv>      Surface over a grid (first row: y values, first column: x values)
  arrows <arrows.csv>     Arrows from x1,y1,z1 to x2,y2,z2 rows
  inspect <file.gltf>     Summarize a glTF or GLB asset and check its bounds
  glb <in.gltf> <out.glb> Convert a glTF asset to GLB
  config [file]           Write the effective config as YAML

Plot options:
  -axes "x,y,z"    LaTeX axis labels (needs latex and dvipng)
  -color <hex>     Color of arrows and axes
  -cmap <name>     Density colormap (density only)

Examples:
  threed -out plots -prefix cloud scatter points.csv
  threed -zup -glb density -cmap Jet surface.csv
  threed inspect plots/cloud.gltf`)
}

// plotFlags holds the options shared by the plotting commands.
type plotFlags struct {
	axes  string
	color string
	cmap  string
}

func parsePlotFlags(name string, args []string, cfg *config.Config) (*plotFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	pf := &plotFlags{}
	fs.StringVar(&pf.axes, "axes", "", "Comma separated LaTeX axis labels")
	fs.StringVar(&pf.color, "color", "#333333", "Color of arrows and axes")
	fs.StringVar(&pf.cmap, "cmap", cfg.Density.Colormap, "Density colormap (\"none\" for white)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return pf, fs.Args(), nil
}

func newPlotter(cfg *config.Config) *plot.Plotter {
	return plot.New(cfg.Output.Dir, plot.WithTexRenderer(cfg.Renderer()))
}

// finish adds the axes when labels were requested and saves the scene.
func finish(ctx context.Context, cfg *config.Config, p *plot.Plotter, pf *plotFlags) error {
	if pf.axes != "" {
		mat, err := colorMaterial("axes", pf.color)
		if err != nil {
			return err
		}
		var labels [3]string
		for i, l := range strings.SplitN(pf.axes, ",", 3) {
			labels[i] = strings.TrimSpace(l)
		}
		if _, err := p.Axes(ctx, labels, mat); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return err
	}
	if err := p.Save(cfg.Output.Prefix, cfg.Output.RotateZUp, cfg.Output.GLB); err != nil {
		return err
	}
	fmt.Printf("Wrote %s/%s.gltf\n", cfg.Output.Dir, strings.TrimSuffix(cfg.Output.Prefix, ".gltf"))
	return nil
}

func colorMaterial(name, hex string) (scene.Material, error) {
	c, err := colormap.ParseColor(hex)
	if err != nil {
		return scene.Material{}, err
	}
	return scene.NewMaterial(name, c)
}

func openInput(args []string, usage string) (*os.File, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: threed %s", usage)
	}
	return os.Open(args[0])
}

func cmdScatter(ctx context.Context, cfg *config.Config, args []string) error {
	pf, rest, err := parsePlotFlags("scatter", args, cfg)
	if err != nil {
		return err
	}
	f, err := openInput(rest, "scatter [options] <points.csv>")
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := readScatter(f)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name(), err)
	}

	p := newPlotter(cfg)
	if _, err := p.Scatter(data, cfg.ScatterOptions()); err != nil {
		return err
	}
	logger.Info("scatter added", zap.Int("points", data.Len()))
	return finish(ctx, cfg, p, pf)
}

func cmdDensity(ctx context.Context, cfg *config.Config, args []string) error {
	pf, rest, err := parsePlotFlags("density", args, cfg)
	if err != nil {
		return err
	}
	f, err := openInput(rest, "density [options] <grid.csv>")
	if err != nil {
		return err
	}
	defer f.Close()

	grid, err := readGrid(f)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name(), err)
	}

	cmap := pf.cmap
	if strings.EqualFold(cmap, "none") {
		cmap = ""
	}
	p := newPlotter(cfg)
	if _, err := p.Density(grid, cmap); err != nil {
		return err
	}
	logger.Info("density added", zap.Int("nx", len(grid.X)), zap.Int("ny", len(grid.Y)), zap.String("colormap", cmap))
	return finish(ctx, cfg, p, pf)
}

func cmdArrows(ctx context.Context, cfg *config.Config, args []string) error {
	pf, rest, err := parsePlotFlags("arrows", args, cfg)
	if err != nil {
		return err
	}
	f, err := openInput(rest, "arrows [options] <arrows.csv>")
	if err != nil {
		return err
	}
	defer f.Close()

	arrows, err := readArrows(f)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name(), err)
	}
	mat, err := colorMaterial("arrow", pf.color)
	if err != nil {
		return err
	}

	ends := make([]math.Vec3, 0, 2*len(arrows))
	for _, a := range arrows {
		ends = append(ends, a[0], a[1])
	}
	p := newPlotter(cfg)
	p.Fit(ends)
	for _, a := range arrows {
		if _, err := p.Arrow(a[0], a[1], mat, cfg.ArrowOptions()); err != nil {
			return err
		}
	}
	logger.Info("arrows added", zap.Int("count", len(arrows)))
	return finish(ctx, cfg, p, pf)
}

func cmdInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: threed inspect <file.gltf>")
	}

	sum, err := formats.Inspect(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Asset:     %s\n", args[0])
	fmt.Printf("Nodes:     %d\n", sum.Nodes)
	fmt.Printf("Meshes:    %d\n", sum.Meshes)
	fmt.Printf("Materials: %d\n", sum.Materials)
	fmt.Printf("Textures:  %d\n", sum.Textures)
	fmt.Printf("Triangles: %d\n", sum.Triangles)
	fmt.Println()
	fmt.Println("Primitives:")
	for _, p := range sum.Primitives {
		mode := "lines/points"
		if p.Triangles {
			mode = "triangles"
		}
		fmt.Printf("  %-20s mat=%-3d %-12s verts=%-6d idx=%-6d min=%v max=%v\n",
			p.Mesh, p.Material, mode, p.Vertices, p.Indices, p.Min, p.Max)
	}
	return nil
}

func cmdGLB(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: threed glb <in.gltf> <out.glb>")
	}
	if err := formats.ConvertGLB(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", args[1])
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s/config.yaml\n", config.ConfigDir())
		return nil
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", args[0])
	return nil
}
