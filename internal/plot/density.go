package plot

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/threed/internal/colormap"
	"github.com/Faultbox/threed/internal/logger"
	"github.com/Faultbox/threed/pkg/geom"
	"github.com/Faultbox/threed/pkg/math"
	"github.com/Faultbox/threed/pkg/scene"
)

// colormapBins is the number of colormap materials a density surface uses.
const colormapBins = 256

// Grid is a value slice S[i][j] over the rectilinear grid X[i], Y[j].
type Grid struct {
	X, Y []float64
	S    [][]float64
}

func (g Grid) validate() error {
	nx, ny := len(g.X), len(g.Y)
	if nx < 2 || ny < 2 {
		return fmt.Errorf("%w: density grid is %dx%d, need at least 2x2", ErrInvalidArgument, nx, ny)
	}
	if len(g.S) != nx {
		return fmt.Errorf("%w: density values have %d rows for %d x values", ErrInvalidArgument, len(g.S), nx)
	}
	for i, row := range g.S {
		if len(row) != ny {
			return fmt.Errorf("%w: density row %d has %d values for %d y values", ErrInvalidArgument, i, len(row), ny)
		}
	}
	return nil
}

func (g Grid) values() []float64 {
	out := make([]float64, 0, len(g.X)*len(g.Y))
	for _, row := range g.S {
		out = append(out, row...)
	}
	return out
}

// Density adds the surface z = S over the grid and returns the mesh name.
// With a colormap name every triangle gets the material cmap_<bin> of its
// first vertex's height, binned into 256 levels; otherwise the surface is
// default white.
func (p *Plotter) Density(g Grid, cmapName string) (string, error) {
	if err := g.validate(); err != nil {
		return "", err
	}
	var cm *colormap.Colormap
	if cmapName != "" {
		var err error
		if cm, err = colormap.Get(cmapName); err != nil {
			return "", err
		}
	}

	p.autoscale(geom.AxisX, g.X)
	p.autoscale(geom.AxisY, g.Y)
	p.autoscale(geom.AxisZ, g.values())

	nx, ny := len(g.X), len(g.Y)
	mesh := scene.NewMesh("", "")
	mesh.Verts = make([]math.Vec3, 0, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			mesh.Verts = append(mesh.Verts, math.Vec3{
				X: p.unit(geom.AxisX, g.X[i]),
				Y: p.unit(geom.AxisY, g.Y[j]),
				Z: p.unit(geom.AxisZ, g.S[i][j]),
			})
		}
	}
	mesh.Normals = gridNormals(mesh.Verts, nx, ny)

	if cm == nil {
		if err := p.ensureWhite(); err != nil {
			return "", err
		}
		mesh.Mat = DefaultWhite
	}

	for i := 0; i < nx-1; i++ {
		for j := 0; j < ny-1; j++ {
			k := i*ny + j
			// 1-based corners: (i,j)=k+1, (i+1,j)=k+ny+1, (i,j+1)=k+2,
			// (i+1,j+1)=k+ny+2.
			tris := [2][3]int{
				{k + 1, k + ny + 1, k + 2},
				{k + 2 + ny, k + 2, k + 1 + ny},
			}
			for _, t := range tris {
				elems := []any{t[0], t[1], t[2]}
				if cm != nil {
					mat, err := p.binMaterial(cm, mesh.Verts[t[0]-1].Z)
					if err != nil {
						return "", err
					}
					elems = append(elems, mat)
				}
				f, err := scene.ParseFace(elems...)
				if err != nil {
					return "", err
				}
				mesh.Faces = append(mesh.Faces, f)
			}
		}
	}

	name, err := p.addMesh("density", mesh)
	if err != nil {
		return "", err
	}
	logger.Debug("density added", zap.String("mesh", name), zap.Int("nx", nx), zap.Int("ny", ny), zap.String("colormap", cmapName))
	return name, nil
}

// binMaterial returns the colormap material for a normalized height,
// registering it on first use.
func (p *Plotter) binMaterial(cm *colormap.Colormap, z float64) (string, error) {
	bin := colormap.Bin(z, colormapBins)
	name := fmt.Sprintf("cmap_%d", bin)
	if p.Scene.HasMaterial(name) {
		return name, nil
	}
	m, err := scene.NewMaterial(name, cm.Linear(colormap.BinCenter(bin, colormapBins)), scene.WithDoubleSided(true))
	if err != nil {
		return "", err
	}
	p.Scene.AddMaterial(m)
	return name, nil
}

// gridNormals computes a unit normal per grid vertex from the edges to its
// neighbors in i and j. Forward differences are used where a next row or
// column exists and backward differences on the last one; a degenerate
// cross product falls back to +Z.
func gridNormals(verts []math.Vec3, nx, ny int) []math.Vec3 {
	at := func(i, j int) math.Vec3 { return verts[i*ny+j] }
	normals := make([]math.Vec3, len(verts))
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			var ei, ej math.Vec3
			if i < nx-1 {
				ei = at(i+1, j).Sub(at(i, j))
			} else {
				ei = at(i, j).Sub(at(i-1, j))
			}
			if j < ny-1 {
				ej = at(i, j+1).Sub(at(i, j))
			} else {
				ej = at(i, j).Sub(at(i, j-1))
			}
			n := ei.Cross(ej).Normalize()
			if n == (math.Vec3{}) {
				n = math.Vec3{Z: 1}
			}
			normals[i*ny+j] = n
		}
	}
	return normals
}
