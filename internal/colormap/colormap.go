// Package colormap samples named colormaps into linear RGB material colors.
// The maps themselves come from cogentcore's colormap registry.
package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"

	ccmap "cogentcore.org/core/colors/colormap"
	"github.com/lucasb-eyer/go-colorful"
)

// Colormap errors.
var (
	ErrUnknownColormap = errors.New("unknown colormap")
	ErrInvalidColor    = errors.New("invalid color")
)

// Colormap maps [0, 1] to colors.
type Colormap struct {
	Name     string
	m        *ccmap.Map
	reversed bool
}

// Get returns the colormap called name, matched case-insensitively against
// the available maps. A "_r" suffix reverses it.
func Get(name string) (*Colormap, error) {
	key := name
	reversed := false
	if strings.HasSuffix(strings.ToLower(key), "_r") {
		key = key[:len(key)-2]
		reversed = true
	}
	if m, ok := ccmap.AvailableMaps[key]; ok {
		return &Colormap{Name: name, m: m, reversed: reversed}, nil
	}
	for k, m := range ccmap.AvailableMaps {
		if strings.EqualFold(k, key) {
			return &Colormap{Name: name, m: m, reversed: reversed}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColormap, name)
}

// Names lists the available colormaps in sorted order.
func Names() []string {
	names := ccmap.AvailableMapsList()
	sort.Strings(names)
	return names
}

// RGBA returns the 8-bit sRGB color at t, clamped to [0, 1].
func (m *Colormap) RGBA(t float64) color.RGBA {
	t = clamp01(t)
	if m.reversed {
		t = 1 - t
	}
	return m.m.Map(float32(t))
}

// At returns the sRGB color at t, clamped to [0, 1].
func (m *Colormap) At(t float64) colorful.Color {
	c, _ := colorful.MakeColor(m.RGBA(t))
	return c
}

// Linear returns the linear RGB components at t, the color space glTF
// base colors are given in.
func (m *Colormap) Linear(t float64) []float64 {
	r, g, b := m.At(t).LinearRgb()
	return []float64{clamp01(r), clamp01(g), clamp01(b)}
}

// Bin returns the bucket of t among n equal buckets of [0, 1], so that
// values of exactly 1 fall into the last bucket.
func Bin(t float64, n int) int {
	b := int(t * float64(n))
	if b < 0 {
		return 0
	}
	if b >= n {
		return n - 1
	}
	return b
}

// BinCenter returns the midpoint of bucket b among n.
func BinCenter(b, n int) float64 {
	return (float64(b) + 0.5) / float64(n)
}

// ParseColor parses a "#rrggbb" sRGB hex color and returns its linear RGB
// components.
func ParseColor(s string) ([]float64, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.LinearRgb()
	return []float64{clamp01(r), clamp01(g), clamp01(b)}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
