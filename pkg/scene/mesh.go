package scene

import (
	"fmt"

	"github.com/Faultbox/threed/pkg/geom"
	"github.com/Faultbox/threed/pkg/math"
)

// ObjType selects how a mesh's faces are drawn.
type ObjType int

const (
	Triangles ObjType = iota
	Lines
	Points
)

// String returns the object type name.
func (t ObjType) String() string {
	switch t {
	case Triangles:
		return "triangles"
	case Lines:
		return "lines"
	case Points:
		return "points"
	default:
		return fmt.Sprintf("ObjType(%d)", int(t))
	}
}

// Mesh is one named object in a scene.
type Mesh struct {
	Name    string
	Verts   []math.Vec3
	Normals []math.Vec3 // empty or one per vertex
	UVs     []math.Vec2 // empty or one per vertex
	Faces   []Face
	Mat     string // default material for faces without their own
	Type    ObjType
	// Count is the number of face indices that are drawn for Lines and
	// Points meshes, whose index stream is stored three per face with the
	// last face padded. Zero draws every index.
	Count int
}

// NewMesh returns an empty triangle mesh.
func NewMesh(name, mat string) *Mesh {
	return &Mesh{Name: name, Mat: mat, Type: Triangles}
}

// FaceMat returns the material a face is drawn with.
func (m *Mesh) FaceMat(f Face) string {
	if f.HasMat() {
		return f.Mat
	}
	return m.Mat
}

// AppendGeometry adds generator output to the mesh. Face materials from g
// are kept; UVs are scaled by the texture fractions fracW and fracH.
func (m *Mesh) AppendGeometry(g geom.Geometry, fracW, fracH float64) {
	base := len(m.Verts)
	m.Verts = append(m.Verts, g.Vertices...)
	m.Normals = append(m.Normals, g.Normals...)
	frac := math.Vec2{X: fracW, Y: fracH}
	for _, uv := range g.UVs {
		m.UVs = append(m.UVs, uv.Mul(frac))
	}
	for i, f := range g.Faces {
		face := Face{Idx: [3]int{f[0] + base, f[1] + base, f[2] + base}}
		if i < len(g.Materials) {
			face.Mat = g.Materials[i]
		}
		m.Faces = append(m.Faces, face)
	}
}

// AppendGeometryMat adds generator output with every face using mat.
func (m *Mesh) AppendGeometryMat(g geom.Geometry, mat string, fracW, fracH float64) {
	g.SetMaterial(mat)
	m.AppendGeometry(g, fracW, fracH)
}

// SortByMat reorders faces so that faces drawn with the same material are
// contiguous. Faces that inherit the mesh material come first; the other
// groups follow in order of first appearance. Order within a group is kept.
func (m *Mesh) SortByMat() error {
	explicit := false
	distinct := make(map[string]struct{})
	for _, f := range m.Faces {
		if f.HasMat() {
			explicit = true
		}
		distinct[m.FaceMat(f)] = struct{}{}
	}
	if !explicit || len(distinct) <= 1 {
		return nil
	}

	sorted := make([]Face, 0, len(m.Faces))
	seen := make(map[string]bool)
	if m.Mat != "" {
		for _, f := range m.Faces {
			if m.FaceMat(f) == m.Mat {
				sorted = append(sorted, f)
			}
		}
		seen[m.Mat] = true
	}
	for i, f := range m.Faces {
		mat := m.FaceMat(f)
		if seen[mat] {
			continue
		}
		seen[mat] = true
		for _, g := range m.Faces[i:] {
			if m.FaceMat(g) == mat {
				sorted = append(sorted, g)
			}
		}
	}

	if len(sorted) != len(m.Faces) {
		return fmt.Errorf("%w: sorting mesh %q by material produced %d faces from %d",
			ErrStructural, m.Name, len(sorted), len(m.Faces))
	}
	m.Faces = sorted
	return nil
}

// validate checks the mesh against the scene's material table.
func (m *Mesh) validate(hasMat func(string) bool) error {
	if m.Name == "" {
		return fmt.Errorf("%w: mesh has no name", ErrValidation)
	}
	if n := len(m.Normals); n != 0 && n != len(m.Verts) {
		return fmt.Errorf("%w: mesh %q has %d normals for %d vertices", ErrValidation, m.Name, n, len(m.Verts))
	}
	if n := len(m.UVs); n != 0 && n != len(m.Verts) {
		return fmt.Errorf("%w: mesh %q has %d texture coordinates for %d vertices", ErrValidation, m.Name, n, len(m.Verts))
	}
	for i, n := range m.Normals {
		if l := n.Length(); l < 0.9999 || l > 1.00001 {
			return fmt.Errorf("%w: mesh %q normal %d has length %g", ErrValidation, m.Name, i, l)
		}
	}
	if m.Count < 0 || m.Count > 3*len(m.Faces) {
		return fmt.Errorf("%w: mesh %q index count %d exceeds its %d faces", ErrValidation, m.Name, m.Count, len(m.Faces))
	}
	if m.Mat != "" && !hasMat(m.Mat) {
		return fmt.Errorf("%w: mesh %q uses unknown material %q", ErrValidation, m.Name, m.Mat)
	}
	for i, f := range m.Faces {
		for _, idx := range f.Idx {
			if idx < 0 || idx >= len(m.Verts) {
				return fmt.Errorf("%w: mesh %q face %d index %d out of range", ErrValidation, m.Name, i, idx)
			}
		}
		if f.HasMat() && !hasMat(f.Mat) {
			return fmt.Errorf("%w: mesh %q face %d uses unknown material %q", ErrValidation, m.Name, i, f.Mat)
		}
	}
	return nil
}
