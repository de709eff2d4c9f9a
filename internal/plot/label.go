package plot

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/threed/internal/logger"
	"github.com/Faultbox/threed/internal/texture"
	"github.com/Faultbox/threed/pkg/geom"
	"github.com/Faultbox/threed/pkg/math"
	"github.com/Faultbox/threed/pkg/scene"
)

// ErrNoRenderer is returned by label calls on a plotter without a
// TexRenderer.
var ErrNoRenderer = errors.New("no LaTeX renderer configured")

// LabelEndMaterial names the material of label end caps.
const LabelEndMaterial = "latex_end"

// AxisLabel renders tex and adds it as a prism running along dir ("x", "y"
// or "z") between the unit-cube corners p1 and p2. The prism's length along
// dir follows the rendered texture's aspect ratio; its four long faces show
// the text and its end caps use endColor (light gray when nil).
func (p *Plotter) AxisLabel(ctx context.Context, tex string, p1, p2 math.Vec3, dir string, endColor []float64) (string, error) {
	axis, err := geom.ParseAxis(dir)
	if err != nil {
		return "", err
	}
	if p.tex == nil {
		return "", ErrNoRenderer
	}

	n := p.latexCount
	p.latexCount++
	textMat := fmt.Sprintf("latex_%d", n)
	file := textMat + ".png"
	raw := filepath.Join(p.Dir, fmt.Sprintf("latex_%d_src.png", n))

	if err := p.tex.Render(ctx, tex, raw, p.Packages); err != nil {
		return "", fmt.Errorf("label %q: %w", tex, err)
	}
	res, err := p.powerTwo(raw, filepath.Join(p.Dir, file), texture.Options{
		Background: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Flatten:    true,
	})
	if rmErr := os.Remove(raw); rmErr != nil {
		logger.Warn("remove rendered label", zap.String("path", raw), zap.Error(rmErr))
	}
	if err != nil {
		return "", fmt.Errorf("label %q: %w", tex, err)
	}

	mat, err := scene.NewMaterial(textMat, []float64{1, 1, 1},
		scene.WithTexture(file, res.WPow2, res.HPow2, 1, 1))
	if err != nil {
		return "", err
	}
	if endColor == nil {
		endColor = []float64{0.8, 0.8, 0.8}
	}
	end, err := scene.NewMaterial(LabelEndMaterial, endColor)
	if err != nil {
		return "", err
	}

	aspect := float64(res.WPow2) / float64(res.HPow2)
	g, err := geom.TextPrism(p1, p2, axis, aspect, textMat, LabelEndMaterial)
	if err != nil {
		return "", err
	}
	p.Scene.AddMaterial(mat)
	p.Scene.AddMaterial(end)

	mesh := scene.NewMesh("", "")
	mesh.AppendGeometry(g, 1, 1)
	name, err := p.addMesh("label", mesh)
	if err != nil {
		return "", err
	}
	logger.Debug("label added", zap.String("mesh", name), zap.String("tex", tex), zap.Stringer("dir", axis),
		zap.Float64("aspect", aspect))
	return name, nil
}

// Axes length and label placement in unit-cube coordinates.
const (
	axisLength     = 1.1
	axisRadius     = 0.004
	labelOffset    = 1.18
	labelHalfSize  = 0.03
	labelHalfDepth = 0.004
)

// Axes adds three arrows from the origin along the unit-cube axes, drawn
// with mat, and a label past each tip whose text is non-empty. It returns
// the names of the meshes it added.
func (p *Plotter) Axes(ctx context.Context, labels [3]string, mat scene.Material) ([]string, error) {
	var names []string
	opts := geom.DefaultArrowOptions()
	opts.Radius = axisRadius

	for a := geom.AxisX; a <= geom.AxisZ; a++ {
		head := math.Unit(int(a)).Scale(axisLength)
		name, err := p.arrowUnit(math.Vec3{}, head, mat, opts)
		if err != nil {
			return names, fmt.Errorf("%s axis: %w", a, err)
		}
		names = append(names, name)

		if labels[a] == "" {
			continue
		}
		p1, p2 := labelCorners(a)
		name, err = p.AxisLabel(ctx, labels[a], p1, p2, a.String(), nil)
		if err != nil {
			return names, fmt.Errorf("%s axis: %w", a, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// labelCorners returns the box corners of the label past the tip of axis a.
// The label runs along a, is labelHalfSize*2 tall on the text height axis
// and labelHalfDepth*2 thick on the remaining one.
func labelCorners(a geom.Axis) (math.Vec3, math.Vec3) {
	center := math.Unit(int(a)).Scale(labelOffset)
	var half math.Vec3
	switch a {
	case geom.AxisX, geom.AxisY:
		half = math.Vec3{X: labelHalfSize, Y: labelHalfSize, Z: labelHalfDepth}
	default:
		half = math.Vec3{X: labelHalfSize, Y: labelHalfDepth, Z: labelHalfSize}
	}
	return center.Sub(half), center.Add(half)
}
