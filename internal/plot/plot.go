// Package plot turns scientific plotting calls into meshes of a glTF scene:
// scatter clouds, density surfaces, arrows, lines, points, image planes and
// LaTeX axis labels.
//
// Data arrive in user coordinates and are mapped into the unit cube using
// per-axis bounds. Bounds that were not set explicitly are taken from the
// first data that need them and then stay fixed, so later calls share the
// same frame.
package plot

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/threed/internal/logger"
	"github.com/Faultbox/threed/internal/texture"
	"github.com/Faultbox/threed/pkg/formats"
	"github.com/Faultbox/threed/pkg/geom"
	"github.com/Faultbox/threed/pkg/math"
	"github.com/Faultbox/threed/pkg/scene"
)

// ErrInvalidArgument is returned for malformed adapter input. It is the
// same value as geom.ErrInvalidArgument.
var ErrInvalidArgument = geom.ErrInvalidArgument

// DefaultWhite is the material used when no color is given.
const DefaultWhite = "default_white"

// TexRenderer renders a LaTeX snippet to a PNG file.
type TexRenderer interface {
	Render(ctx context.Context, tex, dst string, packages []string) error
}

// PowerTwoFunc pads or resizes a PNG to power-of-two dimensions.
type PowerTwoFunc func(src, dst string, opts texture.Options) (texture.Result, error)

// Range is the user-coordinate interval mapped onto [0, 1] for one axis.
type Range struct {
	Lo, Hi float64
	Set    bool
}

// Span returns Hi - Lo.
func (r Range) Span() float64 {
	return r.Hi - r.Lo
}

// Plotter assembles plots into a scene. Files it creates (textures, the
// glTF asset) go to Dir.
type Plotter struct {
	Scene    *scene.Scene
	Dir      string
	Bounds   [3]Range
	Packages []string

	tex      TexRenderer
	powerTwo PowerTwoFunc

	latexCount int
	imageCount int
	pointCount int
}

// Option configures a Plotter.
type Option func(*Plotter)

// WithTexRenderer sets the LaTeX renderer used for labels.
func WithTexRenderer(r TexRenderer) Option {
	return func(p *Plotter) { p.tex = r }
}

// WithPowerTwo replaces the texture power-of-two step.
func WithPowerTwo(f PowerTwoFunc) Option {
	return func(p *Plotter) { p.powerTwo = f }
}

// WithPackages adds LaTeX packages to every label.
func WithPackages(pkgs ...string) Option {
	return func(p *Plotter) { p.Packages = append(p.Packages, pkgs...) }
}

// New returns a plotter writing into dir with an empty scene.
func New(dir string, opts ...Option) *Plotter {
	p := &Plotter{
		Scene:    scene.New(),
		Dir:      dir,
		powerTwo: texture.PowerTwo,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetBounds fixes the user interval of one axis.
func (p *Plotter) SetBounds(axis geom.Axis, lo, hi float64) error {
	if axis < geom.AxisX || axis > geom.AxisZ {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, axis)
	}
	if !(lo < hi) {
		return fmt.Errorf("%w: %s bounds [%g, %g] are empty", ErrInvalidArgument, axis, lo, hi)
	}
	p.Bounds[axis] = Range{Lo: lo, Hi: hi, Set: true}
	return nil
}

// autoscale sets an unset axis from values. A degenerate interval is
// widened to one unit around the value.
func (p *Plotter) autoscale(axis geom.Axis, values []float64) {
	if p.Bounds[axis].Set || len(values) == 0 {
		return
	}
	lo, hi := minMax(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	p.Bounds[axis] = Range{Lo: lo, Hi: hi, Set: true}
	logger.Debug("bounds autoscaled", zap.Stringer("axis", axis), zap.Float64("lo", lo), zap.Float64("hi", hi))
}

// Fit sets every unset axis from the extent of points.
func (p *Plotter) Fit(points []math.Vec3) {
	xs, ys, zs := split(points)
	p.autoscale(geom.AxisX, xs)
	p.autoscale(geom.AxisY, ys)
	p.autoscale(geom.AxisZ, zs)
}

// UserToUnit maps a user-coordinate point into the unit cube.
func (p *Plotter) UserToUnit(v math.Vec3) (math.Vec3, error) {
	var out math.Vec3
	for a := 0; a < 3; a++ {
		r := p.Bounds[a]
		if !r.Set {
			return math.Vec3{}, fmt.Errorf("%w: %s bounds are not set", ErrInvalidArgument, geom.Axis(a))
		}
		out = out.WithComponent(a, (v.Component(a)-r.Lo)/r.Span())
	}
	return out, nil
}

// unit maps one coordinate of an axis whose bounds are known to be set.
func (p *Plotter) unit(axis geom.Axis, v float64) float64 {
	r := p.Bounds[axis]
	return (v - r.Lo) / r.Span()
}

func (p *Plotter) ensureWhite() error {
	if p.Scene.HasMaterial(DefaultWhite) {
		return nil
	}
	m, err := scene.NewMaterial(DefaultWhite, []float64{1, 1, 1})
	if err != nil {
		return err
	}
	p.Scene.AddMaterial(m)
	return nil
}

// addMesh names m uniquely with prefix and inserts it.
func (p *Plotter) addMesh(prefix string, m *scene.Mesh) (string, error) {
	name, err := p.Scene.MakeUniqueName(prefix)
	if err != nil {
		return "", err
	}
	m.Name = name
	if err := p.Scene.AddMesh(m); err != nil {
		return "", err
	}
	return name, nil
}

// Save writes the scene as <name>.gltf and <name>.bin into Dir and, with
// glb set, also converts it to <name>.glb.
func (p *Plotter) Save(name string, rotateZUp, glb bool) error {
	if err := p.Scene.WriteGLTF(p.Dir, name, rotateZUp); err != nil {
		return err
	}
	st := p.Scene.Stats()
	logger.Info("scene saved",
		zap.String("dir", p.Dir),
		zap.String("name", name),
		zap.Int("meshes", st.Meshes),
		zap.Int("materials", st.Materials),
		zap.Int("faces", st.Faces))
	if !glb {
		return nil
	}
	base := filepath.Join(p.Dir, trimGLTF(name))
	return formats.ConvertGLB(base+".gltf", base+".glb")
}

func trimGLTF(name string) string {
	if ext := filepath.Ext(name); ext == ".gltf" {
		return name[:len(name)-len(ext)]
	}
	return name
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
