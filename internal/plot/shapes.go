package plot

import (
	"fmt"
	"image/color"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/threed/internal/logger"
	"github.com/Faultbox/threed/internal/texture"
	"github.com/Faultbox/threed/pkg/geom"
	"github.com/Faultbox/threed/pkg/math"
	"github.com/Faultbox/threed/pkg/scene"
)

// Arrow adds an arrow from tail to head, both in user coordinates, drawn
// with mat. Bounds must be set.
func (p *Plotter) Arrow(tail, head math.Vec3, mat scene.Material, opts geom.ArrowOptions) (string, error) {
	t, err := p.UserToUnit(tail)
	if err != nil {
		return "", err
	}
	h, err := p.UserToUnit(head)
	if err != nil {
		return "", err
	}
	return p.arrowUnit(t, h, mat, opts)
}

func (p *Plotter) arrowUnit(tail, head math.Vec3, mat scene.Material, opts geom.ArrowOptions) (string, error) {
	g, err := geom.Arrow(tail, head, opts)
	if err != nil {
		return "", err
	}
	p.Scene.AddMaterial(mat)
	mesh := scene.NewMesh("", mat.Name)
	mesh.AppendGeometry(g, 1, 1)
	return p.addMesh("arrow", mesh)
}

// Lines adds line segments between points, given in user coordinates.
// segments pairs point indices; nil joins the points into a polyline.
func (p *Plotter) Lines(points []math.Vec3, segments [][2]int, mat scene.Material) (string, error) {
	if len(points) < 2 {
		return "", fmt.Errorf("%w: lines need at least 2 points, got %d", ErrInvalidArgument, len(points))
	}
	if segments == nil {
		for i := 0; i+1 < len(points); i++ {
			segments = append(segments, [2]int{i, i + 1})
		}
	}
	stream := make([]int, 0, 2*len(segments))
	for _, s := range segments {
		for _, i := range s {
			if i < 0 || i >= len(points) {
				return "", fmt.Errorf("%w: segment index %d out of range", ErrInvalidArgument, i)
			}
		}
		stream = append(stream, s[0], s[1])
	}
	return p.indexed("lines", scene.Lines, points, stream, mat)
}

// Points adds one point per entry, in user coordinates.
func (p *Plotter) Points(points []math.Vec3, mat scene.Material) (string, error) {
	if len(points) == 0 {
		return "", fmt.Errorf("%w: no points", ErrInvalidArgument)
	}
	stream := make([]int, len(points))
	for i := range stream {
		stream[i] = i
	}
	return p.indexed("points", scene.Points, points, stream, mat)
}

// indexed builds a line or point mesh whose index stream is stored three
// per face.
func (p *Plotter) indexed(prefix string, typ scene.ObjType, points []math.Vec3, stream []int, mat scene.Material) (string, error) {
	xs, ys, zs := split(points)
	p.autoscale(geom.AxisX, xs)
	p.autoscale(geom.AxisY, ys)
	p.autoscale(geom.AxisZ, zs)

	p.Scene.AddMaterial(mat)
	mesh := scene.NewMesh("", mat.Name)
	mesh.Type = typ
	for _, v := range points {
		u, err := p.UserToUnit(v)
		if err != nil {
			return "", err
		}
		mesh.Verts = append(mesh.Verts, u)
	}
	mesh.Faces = packTriples(stream)
	mesh.Count = len(stream)
	return p.addMesh(prefix, mesh)
}

// packTriples groups an index stream into faces, repeating the last index
// to fill the final face.
func packTriples(stream []int) []scene.Face {
	faces := make([]scene.Face, 0, (len(stream)+2)/3)
	for i := 0; i < len(stream); i += 3 {
		var f scene.Face
		for k := 0; k < 3; k++ {
			if i+k < len(stream) {
				f.Idx[k] = stream[i+k]
			} else {
				f.Idx[k] = stream[len(stream)-1]
			}
		}
		faces = append(faces, f)
	}
	return faces
}

func split(points []math.Vec3) (xs, ys, zs []float64) {
	for _, v := range points {
		xs = append(xs, v.X)
		ys = append(ys, v.Y)
		zs = append(zs, v.Z)
	}
	return xs, ys, zs
}

// Image maps the PNG at src onto the parallelogram p1 (lower left), p2
// (lower right), p3 (upper left), given in user coordinates. The image is
// padded to power-of-two size into Dir and only its own region is mapped.
func (p *Plotter) Image(src string, p1, p2, p3 math.Vec3, forceRect bool) (string, error) {
	var corners [3]math.Vec3
	for i, c := range []math.Vec3{p1, p2, p3} {
		u, err := p.UserToUnit(c)
		if err != nil {
			return "", err
		}
		corners[i] = u
	}
	g, err := geom.Parallelogram(corners[0], corners[1], corners[2], forceRect)
	if err != nil {
		return "", err
	}

	matName := fmt.Sprintf("image_%d", p.imageCount)
	file := matName + ".png"
	res, err := p.powerTwo(src, filepath.Join(p.Dir, file), texture.Options{Background: color.RGBA{}})
	if err != nil {
		return "", err
	}
	p.imageCount++

	mat, err := scene.NewMaterial(matName, []float64{1, 1, 1},
		scene.WithDoubleSided(true),
		scene.WithTexture(file, res.WPow2, res.HPow2, res.FracW(), res.FracH()))
	if err != nil {
		return "", err
	}
	p.Scene.AddMaterial(mat)

	mesh := scene.NewMesh("", matName)
	mesh.AppendGeometry(g, mat.TxtFracW, mat.TxtFracH)
	name, err := p.addMesh("image", mesh)
	if err != nil {
		return "", err
	}
	logger.Debug("image added", zap.String("mesh", name), zap.String("texture", file),
		zap.Int("w", res.W), zap.Int("h", res.H))
	return name, nil
}
