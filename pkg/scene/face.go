package scene

import (
	"fmt"
)

// Face is a triangle (or line/point group) of 0-based vertex indices. An
// empty Mat means the face inherits its mesh's default material; a
// non-empty Mat overrides it.
type Face struct {
	Idx [3]int
	Mat string
}

// F returns a face that inherits the mesh material.
func F(i, j, k int) Face {
	return Face{Idx: [3]int{i, j, k}}
}

// FM returns a face with its own material.
func FM(i, j, k int, mat string) Face {
	return Face{Idx: [3]int{i, j, k}, Mat: mat}
}

// HasMat reports whether the face names its own material.
func (f Face) HasMat() bool {
	return f.Mat != ""
}

// ParseFace translates a 1-based legacy face, [i, j, k] or
// [i, j, k, "material"], into a Face.
func ParseFace(elems ...any) (Face, error) {
	if len(elems) > 4 {
		return Face{}, fmt.Errorf("%w: face has %d elements", ErrValidation, len(elems))
	}
	if len(elems) < 3 {
		return Face{}, fmt.Errorf("%w: face has only %d elements", ErrValidation, len(elems))
	}
	var f Face
	for i := 0; i < 3; i++ {
		idx, ok := toInt(elems[i])
		if !ok {
			return Face{}, fmt.Errorf("%w: face index %v is not an integer", ErrValidation, elems[i])
		}
		if idx < 1 {
			return Face{}, fmt.Errorf("%w: 1-based face index %d", ErrValidation, idx)
		}
		f.Idx[i] = idx - 1
	}
	if len(elems) == 4 {
		mat, ok := elems[3].(string)
		if !ok || mat == "" {
			return Face{}, fmt.Errorf("%w: fourth face element must be a material name, got %v", ErrValidation, elems[3])
		}
		f.Mat = mat
	}
	return f, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint32:
		return int(n), true
	default:
		return 0, false
	}
}
