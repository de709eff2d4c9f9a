package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/threed/internal/logger"
)

// maxNameSuffix bounds the numeric suffixes tried by MakeUniqueName.
const maxNameSuffix = 100

// DefaultGenerator is the asset generator string of new scenes.
const DefaultGenerator = "threed glTF 2.0 writer"

// Scene owns an insertion-ordered material table and mesh list. Mesh order
// becomes node order and material order becomes material indices in the
// exported asset.
type Scene struct {
	// Generator and Copyright go into the asset block of the output.
	Generator string
	Copyright string

	meshes   []*Mesh
	mats     []Material
	matIndex map[string]int
	names    map[string]struct{}
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		Generator: DefaultGenerator,
		matIndex:  make(map[string]int),
		names:     make(map[string]struct{}),
	}
}

// AddMaterial registers m. A material with the same name already present
// wins and m is ignored.
func (s *Scene) AddMaterial(m Material) {
	if _, ok := s.matIndex[m.Name]; ok {
		return
	}
	s.matIndex[m.Name] = len(s.mats)
	s.mats = append(s.mats, m)
	logger.Debug("material registered", zap.String("name", m.Name), zap.Int("index", len(s.mats)-1))
}

// HasMaterial reports whether a material named name is registered.
func (s *Scene) HasMaterial(name string) bool {
	_, ok := s.matIndex[name]
	return ok
}

// Material returns the registered material named name.
func (s *Scene) Material(name string) (Material, bool) {
	i, ok := s.matIndex[name]
	if !ok {
		return Material{}, false
	}
	return s.mats[i], true
}

// MaterialIndex returns the position of a material in the table, or -1.
func (s *Scene) MaterialIndex(name string) int {
	if i, ok := s.matIndex[name]; ok {
		return i
	}
	return -1
}

// Materials returns the material table in registration order.
func (s *Scene) Materials() []Material {
	return s.mats
}

// Meshes returns the meshes in insertion order.
func (s *Scene) Meshes() []*Mesh {
	return s.meshes
}

// AddMesh validates m against the scene, groups its faces by material and
// appends it. On error the scene is unchanged.
func (s *Scene) AddMesh(m *Mesh) error {
	if _, dup := s.names[m.Name]; dup {
		return fmt.Errorf("%w: mesh name %q already used", ErrValidation, m.Name)
	}
	if err := m.validate(s.HasMaterial); err != nil {
		return err
	}
	if err := m.SortByMat(); err != nil {
		return err
	}
	s.names[m.Name] = struct{}{}
	s.meshes = append(s.meshes, m)
	logger.Debug("mesh added",
		zap.String("name", m.Name),
		zap.Stringer("type", m.Type),
		zap.Int("vertices", len(m.Verts)),
		zap.Int("faces", len(m.Faces)))
	return nil
}

// MakeUniqueName returns prefix followed by the smallest suffix in
// [1, 100] that no mesh uses yet.
func (s *Scene) MakeUniqueName(prefix string) (string, error) {
	for k := 1; k <= maxNameSuffix; k++ {
		name := fmt.Sprintf("%s%d", prefix, k)
		if _, used := s.names[name]; !used {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: suffixes 1..%d of %q are all taken", ErrNameExhausted, maxNameSuffix, prefix)
}

// Stats summarizes a scene.
type Stats struct {
	Meshes    int
	Materials int
	Vertices  int
	Faces     int
}

// Stats counts meshes, materials, vertices and faces.
func (s *Scene) Stats() Stats {
	st := Stats{Meshes: len(s.meshes), Materials: len(s.mats)}
	for _, m := range s.meshes {
		st.Vertices += len(m.Verts)
		st.Faces += len(m.Faces)
	}
	return st
}
