package scene

import (
	"fmt"
	"strings"
)

// AlphaMode is a glTF material alpha mode.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

// String returns the lowercase mode name.
func (m AlphaMode) String() string {
	switch m {
	case AlphaOpaque:
		return "opaque"
	case AlphaMask:
		return "mask"
	case AlphaBlend:
		return "blend"
	default:
		return fmt.Sprintf("AlphaMode(%d)", int(m))
	}
}

// ParseAlphaMode parses "opaque", "mask" or "blend" (case-insensitive).
func ParseAlphaMode(s string) (AlphaMode, error) {
	switch strings.ToLower(s) {
	case "opaque":
		return AlphaOpaque, nil
	case "mask":
		return AlphaMask, nil
	case "blend":
		return AlphaBlend, nil
	default:
		return 0, fmt.Errorf("%w: alpha mode %q", ErrValidation, s)
	}
}

// Material is a named set of PBR properties. Materials are values: once
// registered in a scene they are never changed, and the scene refers to
// them by name.
type Material struct {
	Name        string
	BaseColor   []float64 // 3 or 4 linear components in [0, 1]
	Metallic    float64
	Roughness   float64
	DoubleSided bool
	Emissive    [3]float64
	AlphaMode   AlphaMode
	AlphaCutoff float64

	// Texture is the PNG file name, relative to the exported .gltf.
	Texture  string
	TxtW     int
	TxtH     int
	TxtFracW float64 // usable share of the texture width, in (0, 1]
	TxtFracH float64
}

// HasTexture reports whether the material samples a texture.
func (m *Material) HasTexture() bool {
	return m.Texture != ""
}

// RGBA returns the base color with alpha defaulting to 1.
func (m *Material) RGBA() [4]float64 {
	c := [4]float64{1, 1, 1, 1}
	copy(c[:], m.BaseColor)
	return c
}

// MaterialOption configures a Material in NewMaterial.
type MaterialOption func(*Material)

// WithMetallic sets the metallic factor.
func WithMetallic(v float64) MaterialOption {
	return func(m *Material) { m.Metallic = v }
}

// WithRoughness sets the roughness factor.
func WithRoughness(v float64) MaterialOption {
	return func(m *Material) { m.Roughness = v }
}

// WithDoubleSided marks the material as double-sided.
func WithDoubleSided(v bool) MaterialOption {
	return func(m *Material) { m.DoubleSided = v }
}

// WithEmissive sets the emissive factor.
func WithEmissive(r, g, b float64) MaterialOption {
	return func(m *Material) { m.Emissive = [3]float64{r, g, b} }
}

// WithAlpha sets the alpha mode and cutoff.
func WithAlpha(mode AlphaMode, cutoff float64) MaterialOption {
	return func(m *Material) {
		m.AlphaMode = mode
		m.AlphaCutoff = cutoff
	}
}

// WithTexture attaches a PNG texture of w x h pixels whose usable region is
// the fraction fracW x fracH, anchored top-left.
func WithTexture(file string, w, h int, fracW, fracH float64) MaterialOption {
	return func(m *Material) {
		m.Texture = file
		m.TxtW = w
		m.TxtH = h
		m.TxtFracW = fracW
		m.TxtFracH = fracH
	}
}

// NewMaterial creates a validated material. color holds 3 or 4 linear
// components. Defaults follow glTF: metallic 0, roughness 1, opaque with a
// 0.5 cutoff.
func NewMaterial(name string, color []float64, opts ...MaterialOption) (Material, error) {
	m := Material{
		Name:        name,
		BaseColor:   append([]float64(nil), color...),
		Metallic:    0,
		Roughness:   1,
		AlphaMode:   AlphaOpaque,
		AlphaCutoff: 0.5,
		TxtFracW:    1,
		TxtFracH:    1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if err := m.Validate(); err != nil {
		return Material{}, err
	}
	return m, nil
}

// Validate checks every field range.
func (m *Material) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: material has no name", ErrValidation)
	}
	if n := len(m.BaseColor); n != 3 && n != 4 {
		return fmt.Errorf("%w: material %q base color has %d components", ErrValidation, m.Name, n)
	}
	for _, c := range m.BaseColor {
		if c < 0 || c > 1 {
			return fmt.Errorf("%w: material %q base color %v outside [0, 1]", ErrValidation, m.Name, m.BaseColor)
		}
	}
	if !unit(m.Metallic) || !unit(m.Roughness) || !unit(m.AlphaCutoff) {
		return fmt.Errorf("%w: material %q factor outside [0, 1]", ErrValidation, m.Name)
	}
	for _, e := range m.Emissive {
		if e < 0 {
			return fmt.Errorf("%w: material %q emissive %v is negative", ErrValidation, m.Name, m.Emissive)
		}
	}
	if m.AlphaMode < AlphaOpaque || m.AlphaMode > AlphaBlend {
		return fmt.Errorf("%w: material %q has %v", ErrValidation, m.Name, m.AlphaMode)
	}
	if m.HasTexture() {
		if m.TxtFracW <= 0 || m.TxtFracW > 1 || m.TxtFracH <= 0 || m.TxtFracH > 1 {
			return fmt.Errorf("%w: material %q texture fraction %gx%g outside (0, 1]", ErrValidation, m.Name, m.TxtFracW, m.TxtFracH)
		}
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
