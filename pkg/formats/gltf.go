package formats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// glTF errors.
var (
	ErrInvalidGLTF    = errors.New("invalid glTF document")
	ErrBoundsMismatch = errors.New("accessor bounds do not match data")
)

// Accessor component types.
const (
	ComponentUint16 = 5123
	ComponentUint32 = 5125
	ComponentFloat  = 5126
)

// Accessor element types.
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
)

// Buffer view targets.
const (
	TargetArrayBuffer        = 34962 // vertex attributes
	TargetElementArrayBuffer = 34963 // indices
)

// Primitive draw modes.
const (
	ModePoints    = 0
	ModeLines     = 1
	ModeTriangles = 4
)

// Document is the root of a glTF 2.0 JSON document, limited to the parts
// the scene writer emits. Field order is the key order of the output.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       int          `json:"scene"`
	Scenes      []Scene      `json:"scenes"`
	Nodes       []Node       `json:"nodes"`
	Meshes      []Mesh       `json:"meshes"`
	Materials   []Material   `json:"materials"`
	Textures    []Texture    `json:"textures,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Accessors   []Accessor   `json:"accessors"`
	BufferViews []BufferView `json:"bufferViews"`
	Buffers     []Buffer     `json:"buffers"`
}

// Asset holds the document metadata.
type Asset struct {
	Generator string `json:"generator"`
	Version   string `json:"version"`
	Copyright string `json:"copyright"`
}

// Scene lists root node indices.
type Scene struct {
	Nodes []int `json:"nodes"`
}

// Node places one mesh in the scene. Rotation is an (x, y, z, w) quaternion.
type Node struct {
	Name     string      `json:"name,omitempty"`
	Mesh     int         `json:"mesh"`
	Rotation *[4]float64 `json:"rotation,omitempty"`
}

// Mesh is a named list of primitives.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one draw call: an attribute set, indices, a material and a
// mode. Mode is omitted for triangles.
type Primitive struct {
	Attributes Attributes `json:"attributes"`
	Indices    int        `json:"indices"`
	Material   *int       `json:"material,omitempty"`
	Mode       *int       `json:"mode,omitempty"`
}

// Attributes maps vertex semantics to accessor indices.
type Attributes struct {
	Position  int  `json:"POSITION"`
	Normal    *int `json:"NORMAL,omitempty"`
	TexCoord0 *int `json:"TEXCOORD_0,omitempty"`
}

// Material is a metallic-roughness material.
type Material struct {
	Name           string               `json:"name"`
	PBR            PBRMetallicRoughness `json:"pbrMetallicRoughness"`
	DoubleSided    bool                 `json:"doubleSided"`
	AlphaMode      string               `json:"alphaMode,omitempty"`
	AlphaCutoff    *float64             `json:"alphaCutoff,omitempty"`
	EmissiveFactor *[3]float64          `json:"emissiveFactor,omitempty"`
}

// PBRMetallicRoughness carries either a base color texture or a base color
// factor, plus the factors that differ from their defaults.
type PBRMetallicRoughness struct {
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
	BaseColorFactor  *[4]float64  `json:"baseColorFactor,omitempty"`
	MetallicFactor   *float64     `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float64     `json:"roughnessFactor,omitempty"`
}

// TextureInfo references a texture by index.
type TextureInfo struct {
	Index int `json:"index"`
}

// Texture references an image by index.
type Texture struct {
	Source int `json:"source"`
}

// Image is an external image file.
type Image struct {
	MimeType string `json:"mimeType"`
	URI      string `json:"uri"`
	Name     string `json:"name,omitempty"`
}

// Accessor types a range of a buffer view.
type Accessor struct {
	BufferView    int       `json:"bufferView"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
}

// BufferView is a byte range of a buffer.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	Target     int `json:"target,omitempty"`
}

// Buffer is an external binary blob.
type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri"`
}

// NewDocument returns an empty glTF 2.0 document with one empty scene.
// Array members start empty rather than nil so they encode as [].
func NewDocument(generator, copyright string) *Document {
	return &Document{
		Asset: Asset{
			Generator: generator,
			Version:   "2.0",
			Copyright: copyright,
		},
		Scene:       0,
		Scenes:      []Scene{{Nodes: []int{}}},
		Nodes:       []Node{},
		Meshes:      []Mesh{},
		Materials:   []Material{},
		Accessors:   []Accessor{},
		BufferViews: []BufferView{},
		Buffers:     []Buffer{},
	}
}

// Index returns a pointer to i, for optional index fields.
func Index(i int) *int {
	return &i
}

// Float returns a pointer to v, for optional factor fields.
func Float(v float64) *float64 {
	return &v
}

// Encode writes doc as UTF-8 JSON indented by two spaces.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// WriteDocument encodes doc to the file at path.
func WriteDocument(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
