package scene

import (
	"encoding/json"
	gomath "math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/threed/pkg/formats"
	"github.com/Faultbox/threed/pkg/geom"
	"github.com/Faultbox/threed/pkg/math"
)

// readJSON decodes a written .gltf generically so tests can check which
// keys are present.
func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func obj(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected object, got %T", v)
	return m
}

func arr(t *testing.T, v any) []any {
	t.Helper()
	a, ok := v.([]any)
	require.True(t, ok, "expected array, got %T", v)
	return a
}

func primitives(t *testing.T, doc map[string]any, mesh int) []any {
	t.Helper()
	m := obj(t, arr(t, doc["meshes"])[mesh])
	return arr(t, m["primitives"])
}

func accessor(t *testing.T, doc map[string]any, idx any) map[string]any {
	t.Helper()
	return obj(t, arr(t, doc["accessors"])[int(idx.(float64))])
}

func TestWriteEmptyScene(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, New().WriteGLTF(dir, "foo.gltf", false))

	doc := readJSON(t, filepath.Join(dir, "foo.gltf"))
	assert.Equal(t, float64(0), doc["scene"])
	scenes := arr(t, doc["scenes"])
	require.Len(t, scenes, 1)
	assert.Empty(t, arr(t, obj(t, scenes[0])["nodes"]))
	assert.Empty(t, arr(t, doc["meshes"]))
	assert.Empty(t, arr(t, doc["nodes"]))

	buffers := arr(t, doc["buffers"])
	require.Len(t, buffers, 1)
	assert.Equal(t, map[string]any{"byteLength": float64(0), "uri": "foo.bin"}, buffers[0])

	asset := obj(t, doc["asset"])
	assert.Equal(t, "2.0", asset["version"])
	assert.Equal(t, DefaultGenerator, asset["generator"])
	assert.Contains(t, asset, "copyright")

	info, err := os.Stat(filepath.Join(dir, "foo.bin"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWriteRedTriangle(t *testing.T) {
	s := New()
	s.AddMaterial(mustMaterial(t, "red", []float64{1, 0, 0}))
	m := NewMesh("tri", "")
	m.Verts = []math.Vec3{{}, {X: 1}, {Y: 1}}
	m.Faces = []Face{FM(0, 1, 2, "red")}
	require.NoError(t, s.AddMesh(m))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "tri", false))
	doc := readJSON(t, filepath.Join(dir, "tri.gltf"))

	require.Len(t, arr(t, doc["nodes"]), 1)
	node := obj(t, arr(t, doc["nodes"])[0])
	assert.NotContains(t, node, "rotation")

	prims := primitives(t, doc, 0)
	require.Len(t, prims, 1)
	prim := obj(t, prims[0])
	assert.Equal(t, float64(0), prim["material"])
	assert.NotContains(t, prim, "mode")
	attrs := obj(t, prim["attributes"])
	assert.NotContains(t, attrs, "NORMAL")
	assert.NotContains(t, attrs, "TEXCOORD_0")

	mat := obj(t, arr(t, doc["materials"])[0])
	assert.Equal(t, "red", mat["name"])
	assert.Equal(t, false, mat["doubleSided"])
	assert.NotContains(t, mat, "alphaMode")
	assert.NotContains(t, mat, "alphaCutoff")
	assert.NotContains(t, mat, "emissiveFactor")
	pbr := obj(t, mat["pbrMetallicRoughness"])
	assert.Equal(t, []any{1.0, 0.0, 0.0, 1.0}, pbr["baseColorFactor"])
	assert.NotContains(t, pbr, "metallicFactor")
	assert.NotContains(t, pbr, "roughnessFactor")

	pos := accessor(t, doc, attrs["POSITION"])
	assert.Equal(t, []any{0.0, 0.0, 0.0}, pos["min"])
	assert.Equal(t, []any{1.0, 1.0, 0.0}, pos["max"])
	assert.Equal(t, float64(formats.ComponentFloat), pos["componentType"])
	assert.Equal(t, "VEC3", pos["type"])
	assert.Equal(t, float64(3), pos["count"])

	idx := accessor(t, doc, prim["indices"])
	assert.Equal(t, float64(formats.ComponentUint16), idx["componentType"])
	assert.Equal(t, "SCALAR", idx["type"])

	views := arr(t, doc["bufferViews"])
	require.Len(t, views, 2)
	assert.Equal(t, map[string]any{"buffer": 0.0, "byteOffset": 0.0, "byteLength": 36.0, "target": 34962.0}, views[0])
	assert.Equal(t, map[string]any{"buffer": 0.0, "byteOffset": 36.0, "byteLength": 6.0, "target": 34963.0}, views[1])
	assert.Equal(t, 42.0, obj(t, arr(t, doc["buffers"])[0])["byteLength"])

	info, err := os.Stat(filepath.Join(dir, "tri.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.Size())
}

func TestWriteTwoMaterials(t *testing.T) {
	s := New()
	s.AddMaterial(mustMaterial(t, "matA", []float64{1, 0, 0}))
	s.AddMaterial(mustMaterial(t, "matB", []float64{0, 0, 1}))
	m := triangles("alt", 4)
	m.Faces = []Face{FM(0, 1, 2, "matA"), FM(3, 4, 5, "matB"), FM(6, 7, 8, "matA"), FM(9, 10, 11, "matB")}
	require.NoError(t, s.AddMesh(m))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "alt", false))
	doc := readJSON(t, filepath.Join(dir, "alt.gltf"))

	prims := primitives(t, doc, 0)
	require.Len(t, prims, 2)
	assert.Equal(t, float64(0), obj(t, prims[0])["material"])
	assert.Equal(t, float64(1), obj(t, prims[1])["material"])
	for _, p := range prims {
		assert.Equal(t, float64(6), accessor(t, doc, obj(t, p)["indices"])["count"])
	}
}

func TestWriteIcosphereRoundTrip(t *testing.T) {
	g, err := geom.Icosphere(math.Vec3{}, 1, 2, geom.Cut{})
	require.NoError(t, err)

	s := New()
	s.AddMaterial(mustMaterial(t, "white", []float64{1, 1, 1}))
	m := NewMesh("sphere1", "white")
	m.AppendGeometry(g, 1, 1)
	require.NoError(t, s.AddMesh(m))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "sphere", false))

	sum, err := formats.Inspect(filepath.Join(dir, "sphere.gltf"))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Meshes)
	assert.Equal(t, 320, sum.Triangles)
	require.Len(t, sum.Primitives, 1)
	assert.Equal(t, 162, sum.Primitives[0].UniquePositions)
	assert.Equal(t, 0, sum.Primitives[0].Material)
	for c := 0; c < 3; c++ {
		assert.GreaterOrEqual(t, sum.Primitives[0].Min[c], float32(-1.000001))
		assert.LessOrEqual(t, sum.Primitives[0].Max[c], float32(1.000001))
		assert.Greater(t, sum.Primitives[0].Max[c], float32(0.9))
	}
}

func TestWriteDedupWithinPrimitive(t *testing.T) {
	s := New()
	m := NewMesh("quad", "")
	m.Verts = []math.Vec3{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}
	m.Faces = []Face{F(0, 1, 2), F(2, 1, 3)}
	require.NoError(t, s.AddMesh(m))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "quad", false))
	doc := readJSON(t, filepath.Join(dir, "quad.gltf"))

	prim := obj(t, primitives(t, doc, 0)[0])
	assert.NotContains(t, prim, "material")
	assert.Equal(t, float64(4), accessor(t, doc, obj(t, prim["attributes"])["POSITION"])["count"])
	assert.Equal(t, float64(6), accessor(t, doc, prim["indices"])["count"])
}

func TestWriteWideIndices(t *testing.T) {
	s := New()
	m := NewMesh("big", "")
	m.Verts = make([]math.Vec3, wideIndexVertices)
	for i := range m.Verts {
		m.Verts[i] = math.Vec3{X: float64(i)}
	}
	m.Faces = []Face{F(0, 1, wideIndexVertices-1)}
	require.NoError(t, s.AddMesh(m))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "big", false))
	doc := readJSON(t, filepath.Join(dir, "big.gltf"))

	prim := obj(t, primitives(t, doc, 0)[0])
	idx := accessor(t, doc, prim["indices"])
	assert.Equal(t, float64(formats.ComponentUint32), idx["componentType"])
	views := arr(t, doc["bufferViews"])
	assert.Equal(t, 12.0, obj(t, views[len(views)-1])["byteLength"])
}

func TestWriteTexturedMaterial(t *testing.T) {
	s := New()
	s.AddMaterial(mustMaterial(t, "label", []float64{1, 1, 1},
		WithTexture("label.png", 64, 32, 1, 0.5), WithDoubleSided(true)))
	s.AddMaterial(mustMaterial(t, "plain", []float64{0.2, 0.4, 0.6, 0.5},
		WithMetallic(0.3), WithRoughness(0.25), WithAlpha(AlphaBlend, 0.2), WithEmissive(0.1, 0, 0)))

	quad, err := geom.Parallelogram(math.Vec3{}, math.Vec3{X: 2}, math.Vec3{Y: 1}, false)
	require.NoError(t, err)

	textured := NewMesh("label1", "label")
	textured.AppendGeometry(quad, 1, 0.5)
	require.NoError(t, s.AddMesh(textured))
	untextured := NewMesh("plain1", "plain")
	untextured.AppendGeometry(quad, 1, 1)
	require.NoError(t, s.AddMesh(untextured))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "tex", false))
	doc := readJSON(t, filepath.Join(dir, "tex.gltf"))

	assert.Equal(t, []any{map[string]any{"source": 0.0}}, doc["textures"])
	assert.Equal(t, []any{map[string]any{"mimeType": "image/png", "uri": "label.png", "name": "label"}}, doc["images"])

	mats := arr(t, doc["materials"])
	label := obj(t, mats[0])
	assert.Equal(t, true, label["doubleSided"])
	pbr := obj(t, label["pbrMetallicRoughness"])
	assert.Equal(t, map[string]any{"index": 0.0}, pbr["baseColorTexture"])
	assert.NotContains(t, pbr, "baseColorFactor")

	plain := obj(t, mats[1])
	assert.Equal(t, "BLEND", plain["alphaMode"])
	assert.Equal(t, 0.2, plain["alphaCutoff"])
	assert.Equal(t, []any{0.1, 0.0, 0.0}, plain["emissiveFactor"])
	pbr = obj(t, plain["pbrMetallicRoughness"])
	assert.Equal(t, []any{0.2, 0.4, 0.6, 0.5}, pbr["baseColorFactor"])
	assert.Equal(t, 0.3, pbr["metallicFactor"])
	assert.Equal(t, 0.25, pbr["roughnessFactor"])

	texAttrs := obj(t, obj(t, primitives(t, doc, 0)[0])["attributes"])
	assert.Contains(t, texAttrs, "NORMAL")
	require.Contains(t, texAttrs, "TEXCOORD_0")
	uv := accessor(t, doc, texAttrs["TEXCOORD_0"])
	assert.Equal(t, "VEC2", uv["type"])

	plainAttrs := obj(t, obj(t, primitives(t, doc, 1)[0])["attributes"])
	assert.NotContains(t, plainAttrs, "TEXCOORD_0")

	// Bin order is positions, normals, uvs, indices.
	assert.Less(t, texAttrs["POSITION"].(float64), texAttrs["NORMAL"].(float64))
	assert.Less(t, texAttrs["NORMAL"].(float64), texAttrs["TEXCOORD_0"].(float64))
}

func TestWriteRotateZUp(t *testing.T) {
	s := New()
	m := NewMesh("tri", "")
	m.Verts = []math.Vec3{{}, {X: 1}, {Y: 1}}
	m.Faces = []Face{F(0, 1, 2)}
	require.NoError(t, s.AddMesh(m))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "zup", true))
	doc := readJSON(t, filepath.Join(dir, "zup.gltf"))

	node := obj(t, arr(t, doc["nodes"])[0])
	rot := arr(t, node["rotation"])
	require.Len(t, rot, 4)
	h := gomath.Sqrt2 / 2
	assert.InDelta(t, h, rot[0], 1e-12)
	assert.InDelta(t, 0, rot[1], 1e-12)
	assert.InDelta(t, 0, rot[2], 1e-12)
	assert.InDelta(t, -h, rot[3], 1e-12)
}

func TestWriteLinesAndPoints(t *testing.T) {
	s := New()
	lines := NewMesh("line1", "")
	lines.Type = Lines
	lines.Verts = []math.Vec3{{}, {X: 1}}
	lines.Faces = []Face{F(0, 1, 1)}
	require.NoError(t, s.AddMesh(lines))

	points := NewMesh("points1", "")
	points.Type = Points
	points.Verts = []math.Vec3{{}, {X: 1}, {Y: 1}}
	points.Faces = []Face{F(0, 1, 2)}
	require.NoError(t, s.AddMesh(points))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "lp", false))
	doc := readJSON(t, filepath.Join(dir, "lp.gltf"))

	lp := obj(t, primitives(t, doc, 0)[0])
	assert.Equal(t, float64(formats.ModeLines), lp["mode"])
	assert.Equal(t, float64(2), accessor(t, doc, lp["indices"])["count"])

	pp := obj(t, primitives(t, doc, 1)[0])
	assert.Equal(t, float64(formats.ModePoints), pp["mode"])
	assert.Equal(t, float64(3), accessor(t, doc, pp["indices"])["count"])
}

func TestWriteLinesCount(t *testing.T) {
	s := New()
	lines := NewMesh("line1", "")
	lines.Type = Lines
	lines.Verts = []math.Vec3{{}, {X: 1}, {Y: 1}}
	lines.Faces = []Face{F(0, 1, 1), F(2, 2, 2)}
	lines.Count = 4
	require.NoError(t, s.AddMesh(lines))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "count", false))
	doc := readJSON(t, filepath.Join(dir, "count.gltf"))

	lp := obj(t, primitives(t, doc, 0)[0])
	assert.Equal(t, float64(4), accessor(t, doc, lp["indices"])["count"])
	assert.Equal(t, float64(3), accessor(t, doc, obj(t, lp["attributes"])["POSITION"])["count"])
}

func TestAddMeshCountOutOfRange(t *testing.T) {
	s := New()
	m := NewMesh("line1", "")
	m.Type = Lines
	m.Verts = []math.Vec3{{}, {X: 1}}
	m.Faces = []Face{F(0, 1, 1)}
	m.Count = 4
	assert.ErrorIs(t, s.AddMesh(m), ErrValidation)
}

func TestWriteBoundsMatchData(t *testing.T) {
	s := New()
	s.AddMaterial(mustMaterial(t, "white", []float64{1, 1, 1}))
	for i := 0; i < 3; i++ {
		g, err := geom.Icosphere(math.Vec3{X: 0.1 * float64(i), Y: 0.3, Z: -0.7}, 0.05, 1, geom.Cut{})
		require.NoError(t, err)
		name, err := s.MakeUniqueName("sphere")
		require.NoError(t, err)
		m := NewMesh(name, "white")
		m.AppendGeometry(g, 1, 1)
		require.NoError(t, s.AddMesh(m))
	}

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "bounds", false))

	sum, err := formats.Inspect(filepath.Join(dir, "bounds.gltf"))
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Nodes)
	assert.Len(t, sum.Primitives, 3)
}

func TestWriteSkipsMeshWithoutFaces(t *testing.T) {
	s := New()
	require.NoError(t, s.AddMesh(triangles("empty1", 1)))
	full := triangles("full1", 1)
	full.Faces = []Face{F(0, 1, 2)}
	require.NoError(t, s.AddMesh(full))

	dir := t.TempDir()
	require.NoError(t, s.WriteGLTF(dir, "skip", false))
	doc := readJSON(t, filepath.Join(dir, "skip.gltf"))

	meshes := arr(t, doc["meshes"])
	require.Len(t, meshes, 1)
	assert.Equal(t, "full1", obj(t, meshes[0])["name"])
	nodes := arr(t, doc["nodes"])
	require.Len(t, nodes, 1)
	assert.Equal(t, float64(0), obj(t, nodes[0])["mesh"])
	assert.Equal(t, []any{float64(0)}, obj(t, arr(t, doc["scenes"])[0])["nodes"])
	assert.Len(t, primitives(t, doc, 0), 1)
}

func TestWriteEmptyPrefix(t *testing.T) {
	err := New().WriteGLTF(t.TempDir(), ".gltf", false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWriteMissingDir(t *testing.T) {
	err := New().WriteGLTF(filepath.Join(t.TempDir(), "missing"), "x", false)
	assert.Error(t, err)
}
