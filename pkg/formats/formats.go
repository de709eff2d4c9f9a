// Package formats provides the glTF 2.0 document model written by the scene
// exporter, a binary buffer writer, and GLB conversion and inspection of
// written assets.
package formats

// Note: the JSON document and encoder live in gltf.go, buffer packing in
// bin.go and reading back through github.com/qmuntal/gltf in glb.go.
