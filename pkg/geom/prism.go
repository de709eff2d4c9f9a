package geom

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/threed/pkg/math"
)

// heightAxis is the axis that carries the text height for a label running
// along dir.
func heightAxis(dir Axis) Axis {
	if dir == AxisX {
		return AxisY
	}
	return AxisX
}

// TextPrism builds a rectangular prism for a text label running along dir.
// p1 and p2 are opposite corners; the extent along dir is replaced by
// aspect times the extent along the height axis (y for x labels, x for y
// and z labels), keeping the center. The four faces parallel to dir use
// textMat and the two end caps use endMat.
//
// aspect is the texture width over height, so the text is not distorted.
func TextPrism(p1, p2 math.Vec3, dir Axis, aspect float64, textMat, endMat string) (Geometry, error) {
	if dir < AxisX || dir > AxisZ {
		return Geometry{}, fmt.Errorf("%w: %v", ErrInvalidArgument, dir)
	}
	if aspect <= 0 {
		return Geometry{}, fmt.Errorf("%w: text aspect %g", ErrInvalidArgument, aspect)
	}
	d := int(dir)
	h := int(heightAxis(dir))
	w := 3 - d - h

	center := p1.Add(p2).Scale(0.5)
	height := gomath.Abs(p2.Component(h) - p1.Component(h))
	if height == 0 {
		return Geometry{}, fmt.Errorf("%w: text prism has zero height", ErrInvalidArgument)
	}
	var ext [3]float64
	ext[h] = height / 2
	ext[d] = aspect * height / 2
	ext[w] = gomath.Abs(p2.Component(w)-p1.Component(w)) / 2
	if ext[w] == 0 {
		return Geometry{}, fmt.Errorf("%w: text prism has zero thickness", ErrInvalidArgument)
	}

	var g Geometry
	for k := 0; k < 3; k++ {
		up := h
		if k == h {
			up = w
		}
		right := 3 - k - up
		for _, sign := range []float64{1, -1} {
			n := math.Unit(k).Scale(sign)
			u := math.Unit(up)
			r := u.Cross(n)
			c := center.Add(n.Scale(ext[k]))
			hr := r.Scale(ext[right])
			hu := u.Scale(ext[up])

			face, err := Parallelogram(c.Sub(hr).Sub(hu), c.Add(hr).Sub(hu), c.Sub(hr).Add(hu), false)
			if err != nil {
				return Geometry{}, fmt.Errorf("prism face %s%s: %w", signName(sign), Axis(k), err)
			}
			for i := range face.Normals {
				face.Normals[i] = n
			}
			mat := textMat
			if k == d {
				mat = endMat
			}
			face.SetMaterial(mat)
			g.Append(face)
		}
	}
	return g, nil
}

func signName(s float64) string {
	if s < 0 {
		return "-"
	}
	return "+"
}
