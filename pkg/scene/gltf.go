package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/threed/internal/logger"
	"github.com/Faultbox/threed/pkg/formats"
	"github.com/Faultbox/threed/pkg/math"
)

// wideIndexVertices is the mesh vertex count from which indices are written
// as uint32 instead of uint16.
const wideIndexVertices = 32768

// WriteGLTF writes the scene to dir as <prefix>.gltf and <prefix>.bin. A
// trailing ".gltf" on prefix is dropped. With rotateZUp every node is
// rotated so that the scene's +Z axis points up in the Y-up glTF frame.
// Meshes without faces are left out. The scene is not modified.
func (s *Scene) WriteGLTF(dir, prefix string, rotateZUp bool) error {
	prefix = strings.TrimSuffix(prefix, ".gltf")
	if prefix == "" {
		return fmt.Errorf("%w: empty output prefix", ErrValidation)
	}
	gltfPath := filepath.Join(dir, prefix+".gltf")
	binPath := filepath.Join(dir, prefix+".bin")

	f, err := os.Create(binPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", binPath, err)
	}
	bw := bufio.NewWriter(f)

	doc := formats.NewDocument(s.Generator, s.Copyright)
	s.writeMaterials(doc)

	bin := formats.NewBinWriter(bw, doc)
	primitives := 0
	for _, m := range s.meshes {
		if len(m.Faces) == 0 {
			// A glTF mesh needs at least one primitive.
			logger.Debug("skipping mesh without faces", zap.String("name", m.Name))
			continue
		}
		mesh, err := s.encodeMesh(bin, m)
		if err != nil {
			f.Close()
			return err
		}
		primitives += len(mesh.Primitives)
		doc.Meshes = append(doc.Meshes, mesh)

		i := len(doc.Meshes) - 1
		node := formats.Node{Name: m.Name, Mesh: i}
		if rotateZUp {
			q := math.QuatZUp().Array()
			node.Rotation = &q
		}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", binPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", binPath, err)
	}

	doc.Buffers = append(doc.Buffers, formats.Buffer{
		ByteLength: bin.Len(),
		URI:        filepath.Base(prefix) + ".bin",
	})
	if err := formats.WriteDocument(gltfPath, doc); err != nil {
		return err
	}

	logger.Debug("gltf written",
		zap.String("path", gltfPath),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("primitives", primitives),
		zap.Int("bytes", bin.Len()),
		zap.Bool("zup", rotateZUp))
	return nil
}

// writeMaterials appends every material, with its texture and image when it
// has one, in table order.
func (s *Scene) writeMaterials(doc *formats.Document) {
	for _, m := range s.mats {
		out := formats.Material{
			Name:        m.Name,
			DoubleSided: m.DoubleSided,
		}
		if m.HasTexture() {
			doc.Images = append(doc.Images, formats.Image{
				MimeType: "image/png",
				URI:      m.Texture,
				Name:     m.Name,
			})
			doc.Textures = append(doc.Textures, formats.Texture{Source: len(doc.Images) - 1})
			out.PBR.BaseColorTexture = &formats.TextureInfo{Index: len(doc.Textures) - 1}
		} else {
			c := m.RGBA()
			out.PBR.BaseColorFactor = &c
		}
		if m.Metallic != 0 {
			out.PBR.MetallicFactor = formats.Float(m.Metallic)
		}
		if m.Roughness != 1 {
			out.PBR.RoughnessFactor = formats.Float(m.Roughness)
		}
		if m.AlphaMode != AlphaOpaque {
			out.AlphaMode = strings.ToUpper(m.AlphaMode.String())
		}
		if m.AlphaCutoff != 0.5 {
			out.AlphaCutoff = formats.Float(m.AlphaCutoff)
		}
		if m.Emissive[0] > 0 || m.Emissive[1] > 0 || m.Emissive[2] > 0 {
			e := m.Emissive
			out.EmissiveFactor = &e
		}
		doc.Materials = append(doc.Materials, out)
	}
}

// primitiveBuffer collects one material run. Mesh vertices are copied in
// on first use and get consecutive local indices.
type primitiveBuffer struct {
	local     map[int]uint32
	positions []float32
	normals   []float32
	uvs       []float32
	indices   []uint32
}

func newPrimitiveBuffer() *primitiveBuffer {
	return &primitiveBuffer{local: make(map[int]uint32)}
}

func (p *primitiveBuffer) add(m *Mesh, vi int, withUV bool) {
	if li, ok := p.local[vi]; ok {
		p.indices = append(p.indices, li)
		return
	}
	li := uint32(len(p.positions) / 3)
	p.local[vi] = li

	v := m.Verts[vi]
	p.positions = append(p.positions, float32(v.X), float32(v.Y), float32(v.Z))
	if len(m.Normals) > 0 {
		n := m.Normals[vi]
		p.normals = append(p.normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	if withUV {
		uv := m.UVs[vi]
		p.uvs = append(p.uvs, float32(uv.X), float32(uv.Y))
	}
	p.indices = append(p.indices, li)
}

// encodeMesh writes one primitive per contiguous material run of m.
func (s *Scene) encodeMesh(bin *formats.BinWriter, m *Mesh) (formats.Mesh, error) {
	out := formats.Mesh{Name: m.Name, Primitives: []formats.Primitive{}}
	wide := len(m.Verts) >= wideIndexVertices

	for start := 0; start < len(m.Faces); {
		mat := m.FaceMat(m.Faces[start])
		end := start + 1
		for end < len(m.Faces) && m.FaceMat(m.Faces[end]) == mat {
			end++
		}

		matIdx := s.MaterialIndex(mat)
		withUV := len(m.UVs) > 0 && matIdx >= 0 && s.mats[matIdx].HasTexture()

		buf := newPrimitiveBuffer()
		for _, f := range m.Faces[start:end] {
			for _, vi := range f.Idx {
				buf.add(m, vi, withUV)
			}
		}
		if m.Type != Triangles {
			buf.indices = buf.indices[:drawnIndices(m, start, end)]
		}

		prim, err := writePrimitive(bin, buf, wide)
		if err != nil {
			return formats.Mesh{}, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		if mat != "" {
			prim.Material = formats.Index(matIdx)
		}
		switch m.Type {
		case Lines:
			prim.Mode = formats.Index(formats.ModeLines)
		case Points:
			prim.Mode = formats.Index(formats.ModePoints)
		}
		out.Primitives = append(out.Primitives, prim)
		start = end
	}
	return out, nil
}

// drawnIndices returns how many of the indices of faces [start, end) of a
// line or point mesh are drawn. Without a Count, an odd tail of a line
// stream is dropped.
func drawnIndices(m *Mesh, start, end int) int {
	n := 3 * (end - start)
	if m.Count > 0 {
		n = min(n, max(0, m.Count-3*start))
	}
	if m.Type == Lines && n%2 == 1 {
		n--
	}
	return n
}

// writePrimitive streams positions, normals, texture coordinates and
// indices, in that order, and returns the primitive referencing them.
func writePrimitive(bin *formats.BinWriter, buf *primitiveBuffer, wide bool) (formats.Primitive, error) {
	var prim formats.Primitive

	pos, err := bin.WriteVec3(buf.positions, true)
	if err != nil {
		return prim, err
	}
	prim.Attributes.Position = pos

	if len(buf.normals) > 0 {
		nrm, err := bin.WriteVec3(buf.normals, false)
		if err != nil {
			return prim, err
		}
		prim.Attributes.Normal = formats.Index(nrm)
	}
	if len(buf.uvs) > 0 {
		uv, err := bin.WriteVec2(buf.uvs)
		if err != nil {
			return prim, err
		}
		prim.Attributes.TexCoord0 = formats.Index(uv)
	}

	idx, err := bin.WriteIndices(buf.indices, wide)
	if err != nil {
		return prim, err
	}
	prim.Indices = idx
	return prim, nil
}
