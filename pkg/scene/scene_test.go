package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/threed/pkg/math"
)

func mustMaterial(t *testing.T, name string, color []float64, opts ...MaterialOption) Material {
	t.Helper()
	m, err := NewMaterial(name, color, opts...)
	require.NoError(t, err)
	return m
}

// triangles returns a mesh of n separate triangles in the xy plane.
func triangles(name string, n int) *Mesh {
	m := NewMesh(name, "")
	for i := 0; i < n; i++ {
		x := float64(i)
		m.Verts = append(m.Verts,
			math.Vec3{X: x}, math.Vec3{X: x + 1}, math.Vec3{X: x, Y: 1})
	}
	return m
}

func TestNewMaterialDefaults(t *testing.T) {
	m := mustMaterial(t, "red", []float64{1, 0, 0})

	assert.Equal(t, 0.0, m.Metallic)
	assert.Equal(t, 1.0, m.Roughness)
	assert.Equal(t, AlphaOpaque, m.AlphaMode)
	assert.Equal(t, 0.5, m.AlphaCutoff)
	assert.Equal(t, [4]float64{1, 0, 0, 1}, m.RGBA())
	assert.False(t, m.HasTexture())
}

func TestNewMaterialInvalid(t *testing.T) {
	tests := []struct {
		name  string
		mname string
		color []float64
		opts  []MaterialOption
	}{
		{"no name", "", []float64{1, 1, 1}, nil},
		{"two components", "m", []float64{1, 1}, nil},
		{"color above one", "m", []float64{1.5, 0, 0}, nil},
		{"negative metallic", "m", []float64{1, 1, 1}, []MaterialOption{WithMetallic(-0.1)}},
		{"roughness above one", "m", []float64{1, 1, 1}, []MaterialOption{WithRoughness(2)}},
		{"negative emissive", "m", []float64{1, 1, 1}, []MaterialOption{WithEmissive(0, -1, 0)}},
		{"cutoff above one", "m", []float64{1, 1, 1}, []MaterialOption{WithAlpha(AlphaMask, 1.2)}},
		{"zero texture fraction", "m", []float64{1, 1, 1}, []MaterialOption{WithTexture("a.png", 8, 8, 0, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMaterial(tt.mname, tt.color, tt.opts...)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestParseAlphaMode(t *testing.T) {
	mode, err := ParseAlphaMode("BLEND")
	require.NoError(t, err)
	assert.Equal(t, AlphaBlend, mode)
	assert.Equal(t, "blend", mode.String())

	_, err = ParseAlphaMode("glass")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseFace(t *testing.T) {
	tests := []struct {
		name    string
		elems   []any
		want    Face
		wantErr bool
	}{
		{"plain", []any{1, 2, 3}, F(0, 1, 2), false},
		{"with material", []any{4, 5, 6, "red"}, FM(3, 4, 5, "red"), false},
		{"int64 indices", []any{int64(1), int64(1), int64(2)}, F(0, 0, 1), false},
		{"five elements", []any{1, 2, 3, "red", "blue"}, Face{}, true},
		{"two elements", []any{1, 2}, Face{}, true},
		{"empty material", []any{1, 2, 3, ""}, Face{}, true},
		{"material not a string", []any{1, 2, 3, 4}, Face{}, true},
		{"float index", []any{1.0, 2, 3}, Face{}, true},
		{"zero index", []any{0, 1, 2}, Face{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFace(tt.elems...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func faceMats(m *Mesh) []string {
	mats := make([]string, len(m.Faces))
	for i, f := range m.Faces {
		mats[i] = m.FaceMat(f)
	}
	return mats
}

func TestSortByMatAlternating(t *testing.T) {
	m := triangles("alt", 4)
	m.Faces = []Face{FM(0, 1, 2, "matA"), FM(3, 4, 5, "matB"), FM(6, 7, 8, "matA"), FM(9, 10, 11, "matB")}

	require.NoError(t, m.SortByMat())
	assert.Equal(t, []string{"matA", "matA", "matB", "matB"}, faceMats(m))
	// Order inside a group is kept.
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0].Idx)
	assert.Equal(t, [3]int{6, 7, 8}, m.Faces[1].Idx)
	assert.Equal(t, [3]int{3, 4, 5}, m.Faces[2].Idx)
}

func TestSortByMatMeshMaterialFirst(t *testing.T) {
	m := triangles("mixed", 4)
	m.Mat = "base"
	m.Faces = []Face{FM(0, 1, 2, "red"), F(3, 4, 5), FM(6, 7, 8, "blue"), F(9, 10, 11)}

	require.NoError(t, m.SortByMat())
	assert.Equal(t, []string{"base", "base", "red", "blue"}, faceMats(m))
}

func TestSortByMatUnchanged(t *testing.T) {
	m := triangles("plain", 2)
	m.Faces = []Face{F(3, 4, 5), F(0, 1, 2)}
	require.NoError(t, m.SortByMat())
	assert.Equal(t, [3]int{3, 4, 5}, m.Faces[0].Idx)

	m.Faces = []Face{FM(3, 4, 5, "red"), FM(0, 1, 2, "red")}
	require.NoError(t, m.SortByMat())
	assert.Equal(t, [3]int{3, 4, 5}, m.Faces[0].Idx)
}

func TestAddMaterialIdempotent(t *testing.T) {
	s := New()
	s.AddMaterial(mustMaterial(t, "red", []float64{1, 0, 0}))
	s.AddMaterial(mustMaterial(t, "red", []float64{0, 1, 0}))
	s.AddMaterial(mustMaterial(t, "blue", []float64{0, 0, 1}))

	require.Len(t, s.Materials(), 2)
	red, ok := s.Material("red")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0, 0}, red.BaseColor)
	assert.Equal(t, 1, s.MaterialIndex("blue"))
	assert.Equal(t, -1, s.MaterialIndex("green"))
}

func TestAddMeshValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Mesh
	}{
		{"normal count", func() *Mesh {
			m := triangles("m", 1)
			m.Faces = []Face{F(0, 1, 2)}
			m.Normals = []math.Vec3{{Z: 1}}
			return m
		}},
		{"normal length", func() *Mesh {
			m := triangles("m", 1)
			m.Faces = []Face{F(0, 1, 2)}
			m.Normals = []math.Vec3{{Z: 1}, {Z: 1}, {Z: 1.01}}
			return m
		}},
		{"uv count", func() *Mesh {
			m := triangles("m", 1)
			m.Faces = []Face{F(0, 1, 2)}
			m.UVs = []math.Vec2{{}, {}}
			return m
		}},
		{"index out of range", func() *Mesh {
			m := triangles("m", 1)
			m.Faces = []Face{F(0, 1, 3)}
			return m
		}},
		{"unknown face material", func() *Mesh {
			m := triangles("m", 1)
			m.Faces = []Face{FM(0, 1, 2, "green")}
			return m
		}},
		{"unknown mesh material", func() *Mesh {
			m := triangles("m", 1)
			m.Mat = "green"
			m.Faces = []Face{F(0, 1, 2)}
			return m
		}},
		{"duplicate name", func() *Mesh {
			m := triangles("taken", 1)
			m.Faces = []Face{F(0, 1, 2)}
			return m
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.AddMaterial(mustMaterial(t, "red", []float64{1, 0, 0}))
			first := triangles("taken", 1)
			first.Faces = []Face{F(0, 1, 2)}
			require.NoError(t, s.AddMesh(first))

			err := s.AddMesh(tt.build())
			assert.ErrorIs(t, err, ErrValidation)
			assert.Len(t, s.Meshes(), 1, "scene must be unchanged")
		})
	}
}

func TestAddMeshSorts(t *testing.T) {
	s := New()
	s.AddMaterial(mustMaterial(t, "matA", []float64{1, 0, 0}))
	s.AddMaterial(mustMaterial(t, "matB", []float64{0, 1, 0}))

	m := triangles("alt", 3)
	m.Faces = []Face{FM(0, 1, 2, "matB"), FM(3, 4, 5, "matA"), FM(6, 7, 8, "matB")}
	require.NoError(t, s.AddMesh(m))
	assert.Equal(t, []string{"matB", "matB", "matA"}, faceMats(s.Meshes()[0]))
}

func TestMakeUniqueName(t *testing.T) {
	s := New()
	name, err := s.MakeUniqueName("sphere")
	require.NoError(t, err)
	assert.Equal(t, "sphere1", name)

	for i := 1; i <= 3; i++ {
		name, err := s.MakeUniqueName("sphere")
		require.NoError(t, err)
		m := triangles(name, 1)
		require.NoError(t, s.AddMesh(m))
	}
	name, err = s.MakeUniqueName("sphere")
	require.NoError(t, err)
	assert.Equal(t, "sphere4", name)
}

func TestMakeUniqueNameExhausted(t *testing.T) {
	s := New()
	for i := 0; i < maxNameSuffix; i++ {
		name, err := s.MakeUniqueName("arrow")
		require.NoError(t, err)
		require.NoError(t, s.AddMesh(triangles(name, 1)))
	}

	_, err := s.MakeUniqueName("arrow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNameExhausted))

	// Other prefixes are unaffected.
	name, err := s.MakeUniqueName("label")
	require.NoError(t, err)
	assert.Equal(t, "label1", name)
}

func TestStats(t *testing.T) {
	s := New()
	s.AddMaterial(mustMaterial(t, "red", []float64{1, 0, 0}))
	a := triangles("a", 2)
	a.Mat = "red"
	a.Faces = []Face{F(0, 1, 2), F(3, 4, 5)}
	b := triangles("b", 1)
	b.Faces = []Face{FM(0, 1, 2, "red")}
	require.NoError(t, s.AddMesh(a))
	require.NoError(t, s.AddMesh(b))

	assert.Equal(t, Stats{Meshes: 2, Materials: 1, Vertices: 9, Faces: 3}, s.Stats())
}
