package geom

import (
	"fmt"

	"github.com/Faultbox/threed/pkg/math"
)

// Parallelogram builds the quad spanned by p1 (lower left), p2 (lower right)
// and p3 (upper left). The fourth corner is p2 + (p3 - p1). With forceRect
// set, p3 is first moved so that p3-p1 is orthogonal to p2-p1.
//
// Texture coordinates put the top-left of an image at p3.
func Parallelogram(p1, p2, p3 math.Vec3, forceRect bool) (Geometry, error) {
	along := p2.Sub(p1)
	if along.Length() == 0 {
		return Geometry{}, fmt.Errorf("%w: parallelogram has coincident lower corners", ErrInvalidArgument)
	}
	if forceRect {
		up := p3.Sub(p1)
		dir := along.Normalize()
		p3 = p1.Add(up.Sub(dir.Scale(up.Dot(dir))))
	}
	p4 := p2.Add(p3.Sub(p1))

	normal := along.Cross(p3.Sub(p2)).Normalize()
	if normal == (math.Vec3{}) {
		return Geometry{}, fmt.Errorf("%w: parallelogram corners are collinear", ErrInvalidArgument)
	}

	uv1 := math.Vec2{X: 0, Y: 1}
	uv2 := math.Vec2{X: 1, Y: 1}
	uv3 := math.Vec2{X: 0, Y: 0}
	uv4 := math.Vec2{X: 1, Y: 0}

	return Geometry{
		Vertices: []math.Vec3{p1, p2, p3, p3, p2, p4},
		Faces:    [][3]int{{0, 1, 2}, {3, 4, 5}},
		Normals:  []math.Vec3{normal, normal, normal, normal, normal, normal},
		UVs:      []math.Vec2{uv1, uv2, uv3, uv3, uv2, uv4},
	}, nil
}
