// Package geom generates the triangle primitives used by the plot adapters:
// icospheres, arrows, parallelograms and text prisms.
//
// Every generator returns its triangles "de-shared": face i references
// vertices 3i, 3i+1 and 3i+2, and every vertex instance carries its own
// normal and texture coordinate.
package geom

import (
	"errors"
	"fmt"

	"github.com/Faultbox/threed/pkg/math"
)

// Geometry errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
)

// Geometry is the output of a primitive generator.
type Geometry struct {
	Vertices []math.Vec3
	Faces    [][3]int
	Normals  []math.Vec3
	UVs      []math.Vec2

	// Materials optionally names a material per face. Nil means every face
	// uses whatever material the caller assigns.
	Materials []string
}

// FaceCount returns the number of triangles.
func (g *Geometry) FaceCount() int {
	return len(g.Faces)
}

// Append concatenates other onto g, offsetting its face indices.
func (g *Geometry) Append(other Geometry) {
	base := len(g.Vertices)
	withMats := g.Materials != nil || other.Materials != nil
	if withMats {
		for len(g.Materials) < len(g.Faces) {
			g.Materials = append(g.Materials, "")
		}
	}
	for i, f := range other.Faces {
		g.Faces = append(g.Faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
		if withMats {
			mat := ""
			if i < len(other.Materials) {
				mat = other.Materials[i]
			}
			g.Materials = append(g.Materials, mat)
		}
	}
	g.Vertices = append(g.Vertices, other.Vertices...)
	g.Normals = append(g.Normals, other.Normals...)
	g.UVs = append(g.UVs, other.UVs...)
}

// SetMaterial assigns mat to every face.
func (g *Geometry) SetMaterial(mat string) {
	g.Materials = make([]string, len(g.Faces))
	for i := range g.Materials {
		g.Materials[i] = mat
	}
}

// deshare expands an indexed triangle list so that face i uses vertices
// 3i..3i+2.
func deshare(verts []math.Vec3, faces [][3]int) ([]math.Vec3, [][3]int) {
	out := make([]math.Vec3, 0, 3*len(faces))
	outFaces := make([][3]int, len(faces))
	for i, f := range faces {
		out = append(out, verts[f[0]], verts[f[1]], verts[f[2]])
		outFaces[i] = [3]int{3 * i, 3*i + 1, 3*i + 2}
	}
	return out, outFaces
}

// Axis selects one of the coordinate axes.
type Axis int

const (
	AxisX Axis = 0
	AxisY Axis = 1
	AxisZ Axis = 2
)

// String returns the lowercase axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis parses "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("%w: direction %q is not one of x, y, z", ErrInvalidArgument, s)
	}
}
