package formats

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
)

// PrimitiveInfo describes one primitive of a parsed asset.
type PrimitiveInfo struct {
	Mesh            string
	Material        int // -1 when unset
	Triangles       bool
	Vertices        int
	Indices         int
	UniquePositions int
	Min             [3]float32
	Max             [3]float32
}

// Summary describes a parsed glTF asset.
type Summary struct {
	Nodes      int
	Meshes     int
	Materials  int
	Textures   int
	Triangles  int
	Primitives []PrimitiveInfo
}

// Inspect parses the glTF or GLB file at path, reads every POSITION
// accessor back from its buffer and checks that the declared min and max
// equal the bounds of the data.
func Inspect(path string) (*Summary, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	sum := &Summary{
		Nodes:     len(doc.Nodes),
		Meshes:    len(doc.Meshes),
		Materials: len(doc.Materials),
		Textures:  len(doc.Textures),
	}
	for _, mesh := range doc.Meshes {
		for p, prim := range mesh.Primitives {
			info := PrimitiveInfo{
				Mesh:      mesh.Name,
				Material:  -1,
				Triangles: prim.Mode == gltf.PrimitiveTriangles,
			}
			if prim.Material != nil {
				info.Material = int(*prim.Material)
			}
			if prim.Indices != nil {
				info.Indices = int(doc.Accessors[int(*prim.Indices)].Count)
			}
			if info.Triangles {
				sum.Triangles += info.Indices / 3
			}

			pos, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				return nil, fmt.Errorf("%w: mesh %q primitive %d has no POSITION", ErrInvalidGLTF, mesh.Name, p)
			}
			acc := doc.Accessors[int(pos)]
			data, err := readVec3(doc, acc)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, p, err)
			}
			info.Vertices = len(data) / 3
			if err := checkBounds(acc, data); err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, p, err)
			}
			if len(data) > 0 {
				lo, hi := Vec3Bounds(data)
				copy(info.Min[:], lo)
				copy(info.Max[:], hi)
			}
			info.UniquePositions = uniqueVec3(data)
			sum.Primitives = append(sum.Primitives, info)
		}
	}
	return sum, nil
}

// ConvertGLB reads the glTF asset at src, with its external buffer, and
// saves it as a single binary .glb at dst. Image URIs are kept as they are.
func ConvertGLB(src, dst string) error {
	doc, err := gltf.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	if len(doc.Buffers) == 0 {
		return fmt.Errorf("%w: %s has no buffers", ErrInvalidGLTF, src)
	}
	// The first buffer becomes the GLB BIN chunk.
	doc.Buffers[0].URI = ""
	if err := gltf.SaveBinary(doc, dst); err != nil {
		return fmt.Errorf("save %s: %w", dst, err)
	}
	return nil
}

// readVec3 decodes a float VEC3 accessor into flat xyz triples.
func readVec3(doc *gltf.Document, acc *gltf.Accessor) ([]float32, error) {
	if acc.ComponentType != gltf.ComponentFloat || acc.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("%w: POSITION accessor is not float VEC3", ErrInvalidGLTF)
	}
	if acc.BufferView == nil {
		return nil, fmt.Errorf("%w: POSITION accessor has no buffer view", ErrInvalidGLTF)
	}
	bv := doc.BufferViews[int(*acc.BufferView)]
	if int(bv.Buffer) >= len(doc.Buffers) {
		return nil, fmt.Errorf("%w: buffer %d missing", ErrInvalidGLTF, bv.Buffer)
	}
	buf := doc.Buffers[int(bv.Buffer)].Data

	stride := int(bv.ByteStride)
	if stride == 0 {
		stride = 12
	}
	count := int(acc.Count)
	start := int(bv.ByteOffset) + int(acc.ByteOffset)
	if count > 0 && start+(count-1)*stride+12 > len(buf) {
		return nil, fmt.Errorf("%w: POSITION data runs past the buffer", ErrInvalidGLTF)
	}

	out := make([]float32, 0, 3*count)
	for i := 0; i < count; i++ {
		at := start + i*stride
		for c := 0; c < 3; c++ {
			bits := binary.LittleEndian.Uint32(buf[at+4*c:])
			out = append(out, math.Float32frombits(bits))
		}
	}
	return out, nil
}

// checkBounds compares declared accessor bounds with the data. Declared
// values are narrowed to float32 before comparing.
func checkBounds(acc *gltf.Accessor, data []float32) error {
	if len(data) == 0 {
		return nil
	}
	if len(acc.Min) != 3 || len(acc.Max) != 3 {
		return fmt.Errorf("%w: POSITION accessor declares no min/max", ErrBoundsMismatch)
	}
	lo, hi := Vec3Bounds(data)
	for c := 0; c < 3; c++ {
		if float32(acc.Min[c]) != lo[c] || float32(acc.Max[c]) != hi[c] {
			return fmt.Errorf("%w: declared %v..%v, data %v..%v", ErrBoundsMismatch, acc.Min, acc.Max, lo, hi)
		}
	}
	return nil
}

func uniqueVec3(data []float32) int {
	seen := make(map[[3]float32]struct{}, len(data)/3)
	for i := 0; i+2 < len(data); i += 3 {
		seen[[3]float32{data[i], data[i+1], data[i+2]}] = struct{}{}
	}
	return len(seen)
}
