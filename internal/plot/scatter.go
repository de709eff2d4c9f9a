package plot

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/threed/internal/logger"
	"github.com/Faultbox/threed/pkg/geom"
	"github.com/Faultbox/threed/pkg/math"
	"github.com/Faultbox/threed/pkg/scene"
)

// ScatterData holds one row per point. Colors, Metal and Roughness are
// optional columns; Colors are linear RGB in [0, 1].
type ScatterData struct {
	X, Y, Z   []float64
	Colors    [][3]float64
	Metal     []float64
	Roughness []float64
}

// Len returns the number of rows.
func (d ScatterData) Len() int {
	return len(d.X)
}

func (d ScatterData) validate() error {
	n := d.Len()
	if n == 0 {
		return fmt.Errorf("%w: scatter has no points", ErrInvalidArgument)
	}
	if len(d.Y) != n || len(d.Z) != n {
		return fmt.Errorf("%w: scatter columns have %d, %d and %d rows", ErrInvalidArgument, n, len(d.Y), len(d.Z))
	}
	for name, col := range map[string]int{"color": len(d.Colors), "metal": len(d.Metal), "roughness": len(d.Roughness)} {
		if col != 0 && col != n {
			return fmt.Errorf("%w: %s column has %d rows, want %d", ErrInvalidArgument, name, col, n)
		}
	}
	return nil
}

// ScatterOptions controls sphere size and the constant material factors
// used when no per-point column is given.
type ScatterOptions struct {
	Radius       float64
	Subdivisions int
	Metal        float64
	Roughness    float64
}

// DefaultScatterOptions returns small matte spheres.
func DefaultScatterOptions() ScatterOptions {
	return ScatterOptions{
		Radius:       0.01,
		Subdivisions: 2,
		Metal:        0,
		Roughness:    1,
	}
}

// Scatter adds one icosphere per row to a single mesh and returns the mesh
// name. Colored rows each get their own material named mat_point_<n>;
// uncolored clouds use the default white material.
func (p *Plotter) Scatter(d ScatterData, opts ScatterOptions) (string, error) {
	if err := d.validate(); err != nil {
		return "", err
	}
	if opts.Radius <= 0 {
		return "", fmt.Errorf("%w: sphere radius %g", ErrInvalidArgument, opts.Radius)
	}
	p.autoscale(geom.AxisX, d.X)
	p.autoscale(geom.AxisY, d.Y)
	p.autoscale(geom.AxisZ, d.Z)

	metal := columnOrConstant(d.Metal, opts.Metal, d.Len())
	rough := columnOrConstant(d.Roughness, opts.Roughness, d.Len())

	mesh := scene.NewMesh("", "")
	colored := len(d.Colors) > 0
	if !colored {
		if err := p.ensureWhite(); err != nil {
			return "", err
		}
		mesh.Mat = DefaultWhite
	}

	for i := 0; i < d.Len(); i++ {
		center := math.Vec3{
			X: p.unit(geom.AxisX, d.X[i]),
			Y: p.unit(geom.AxisY, d.Y[i]),
			Z: p.unit(geom.AxisZ, d.Z[i]),
		}
		g, err := geom.Icosphere(center, opts.Radius, opts.Subdivisions, geom.Cut{})
		if err != nil {
			return "", err
		}
		if !colored {
			mesh.AppendGeometry(g, 1, 1)
			continue
		}

		c := d.Colors[i]
		name := fmt.Sprintf("mat_point_%d", p.pointCount)
		p.pointCount++
		m, err := scene.NewMaterial(name, c[:], scene.WithMetallic(metal[i]), scene.WithRoughness(rough[i]))
		if err != nil {
			return "", fmt.Errorf("point %d: %w", i, err)
		}
		p.Scene.AddMaterial(m)
		mesh.AppendGeometryMat(g, name, 1, 1)
	}

	name, err := p.addMesh("scatter", mesh)
	if err != nil {
		return "", err
	}
	logger.Debug("scatter added", zap.String("mesh", name), zap.Int("points", d.Len()), zap.Bool("colored", colored))
	return name, nil
}

// columnOrConstant returns col rescaled to [0, 1] by its own min and max,
// or n copies of v when col is empty. A constant column maps to 0.
func columnOrConstant(col []float64, v float64, n int) []float64 {
	out := make([]float64, n)
	if len(col) == 0 {
		for i := range out {
			out[i] = v
		}
		return out
	}
	lo, hi := minMax(col)
	if hi == lo {
		return out
	}
	for i, c := range col {
		out[i] = (c - lo) / (hi - lo)
	}
	return out
}
