// Package scene holds the plot scene model: materials, meshes and the
// scene that owns them, and writes the scene as a glTF 2.0 asset.
package scene

import "errors"

// Scene errors.
var (
	ErrValidation    = errors.New("validation error")
	ErrNameExhausted = errors.New("no free name suffix")
	ErrStructural    = errors.New("structural error")
)
