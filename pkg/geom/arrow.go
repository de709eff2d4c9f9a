package geom

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/threed/pkg/math"
)

// ArrowOptions controls arrow proportions. Zero fields take the defaults.
type ArrowOptions struct {
	Radius       float64 // shaft radius; <= 0 means length/80
	TailFraction float64 // share of the length taken by the shaft (default 0.9)
	Segments     int     // azimuthal segments (default 20)
	HeadWidth    float64 // cone base radius as a multiple of Radius (default 3)
}

// DefaultArrowOptions returns the standard arrow proportions.
func DefaultArrowOptions() ArrowOptions {
	return ArrowOptions{
		Radius:       0,
		TailFraction: 0.9,
		Segments:     20,
		HeadWidth:    3,
	}
}

func (o ArrowOptions) withDefaults(length float64) ArrowOptions {
	def := DefaultArrowOptions()
	if o.Radius <= 0 {
		o.Radius = length / 80
	}
	if o.TailFraction == 0 {
		o.TailFraction = def.TailFraction
	}
	if o.Segments == 0 {
		o.Segments = def.Segments
	}
	if o.HeadWidth == 0 {
		o.HeadWidth = def.HeadWidth
	}
	return o
}

// perpendicularFrame returns two vectors of length r that are orthogonal to
// each other and to axis, with e1 x e2 pointing along axis.
func perpendicularFrame(axis math.Vec3, r float64) (math.Vec3, math.Vec3) {
	a := axis.Normalize()
	ref := math.Vec3{X: 1}
	if gomath.Abs(a.X) > 0.9 {
		ref = math.Vec3{Y: 1}
	}
	e1 := ref.Sub(a.Scale(ref.Dot(a))).WithLength(r)
	e2 := a.Cross(e1).WithLength(r)
	return e1, e2
}

// Arrow builds a cylinder shaft from tail to tail+TailFraction*(head-tail)
// capped by a cone whose apex sits at head. It emits 3*Segments triangles.
func Arrow(tail, head math.Vec3, opts ArrowOptions) (Geometry, error) {
	axis := head.Sub(tail)
	length := axis.Length()
	if length == 0 {
		return Geometry{}, fmt.Errorf("%w: arrow tail and head coincide", ErrInvalidArgument)
	}
	opts = opts.withDefaults(length)
	if opts.Segments < 3 {
		return Geometry{}, fmt.Errorf("%w: arrow needs at least 3 segments, got %d", ErrInvalidArgument, opts.Segments)
	}
	if opts.TailFraction <= 0 || opts.TailFraction >= 1 {
		return Geometry{}, fmt.Errorf("%w: tail fraction %g not in (0, 1)", ErrInvalidArgument, opts.TailFraction)
	}

	dir := axis.Normalize()
	e1, e2 := perpendicularFrame(axis, 1)
	neck := tail.Add(axis.Scale(opts.TailFraction))
	n := opts.Segments

	ring := make([]math.Vec3, n+1)
	for k := 0; k <= n; k++ {
		theta := 2 * gomath.Pi * float64(k%n) / float64(n)
		ring[k] = e1.Scale(gomath.Cos(theta)).Add(e2.Scale(gomath.Sin(theta)))
	}

	g := Geometry{
		Vertices: make([]math.Vec3, 0, 9*n),
		Normals:  make([]math.Vec3, 0, 9*n),
		UVs:      make([]math.Vec2, 0, 9*n),
	}
	addTri := func(p [3]math.Vec3, nrm [3]math.Vec3, uv [3]math.Vec2) {
		base := len(g.Vertices)
		g.Vertices = append(g.Vertices, p[0], p[1], p[2])
		g.Normals = append(g.Normals, nrm[0], nrm[1], nrm[2])
		g.UVs = append(g.UVs, uv[0], uv[1], uv[2])
		g.Faces = append(g.Faces, [3]int{base, base + 1, base + 2})
	}

	r := opts.Radius
	for k := 0; k < n; k++ {
		u0 := float64(k) / float64(n)
		u1 := float64(k+1) / float64(n)
		b0 := tail.Add(ring[k].Scale(r))
		b1 := tail.Add(ring[k+1].Scale(r))
		t0 := neck.Add(ring[k].Scale(r))
		t1 := neck.Add(ring[k+1].Scale(r))
		addTri([3]math.Vec3{b0, b1, t1}, [3]math.Vec3{ring[k], ring[k+1], ring[k+1]},
			[3]math.Vec2{{X: u0, Y: 1}, {X: u1, Y: 1}, {X: u1, Y: 0}})
		addTri([3]math.Vec3{b0, t1, t0}, [3]math.Vec3{ring[k], ring[k+1], ring[k]},
			[3]math.Vec2{{X: u0, Y: 1}, {X: u1, Y: 0}, {X: u0, Y: 0}})
	}

	// Cone surface normals tilt toward the apex by the slope of the head.
	headR := opts.HeadWidth * r
	headLen := length * (1 - opts.TailFraction)
	slant := func(radial math.Vec3) math.Vec3 {
		return radial.Scale(headLen).Add(dir.Scale(headR)).Normalize()
	}
	for k := 0; k < n; k++ {
		u0 := float64(k) / float64(n)
		u1 := float64(k+1) / float64(n)
		c0 := neck.Add(ring[k].Scale(headR))
		c1 := neck.Add(ring[k+1].Scale(headR))
		addTri([3]math.Vec3{c0, c1, head}, [3]math.Vec3{slant(ring[k]), slant(ring[k+1]), dir},
			[3]math.Vec2{{X: u0, Y: 1}, {X: u1, Y: 1}, {X: (u0 + u1) / 2, Y: 0}})
	}
	return g, nil
}
