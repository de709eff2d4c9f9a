package geom

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/threed/pkg/math"
)

// Cut is an azimuthal interval [From, To] removed from a sphere. The zero
// value (From == To) means no cut.
type Cut struct {
	From, To float64
}

// Active reports whether the cut removes anything.
func (c Cut) Active() bool {
	return c.From != c.To
}

func (c Cut) validate() error {
	if !c.Active() {
		return nil
	}
	if c.From < 0 || c.To < 0 || c.From > 2*gomath.Pi || c.To > 2*gomath.Pi {
		return fmt.Errorf("%w: cut [%g, %g] outside [0, 2pi]", ErrInvalidArgument, c.From, c.To)
	}
	if c.From > c.To {
		return fmt.Errorf("%w: cut [%g, %g] is not sorted", ErrInvalidArgument, c.From, c.To)
	}
	return nil
}

// Icosahedron faces (0-based), counter-clockwise seen from outside.
var icosahedronFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// icosahedron returns the 12 vertices of a regular icosahedron of
// circumradius r centered at the origin, built from three orthogonal
// golden rectangles.
func icosahedron(r float64) []math.Vec3 {
	phi := (1 + gomath.Sqrt(5)) / 2
	k := gomath.Sqrt(phi) / gomath.Pow(5, 0.25)
	a := r * k
	b := r / phi * k
	return []math.Vec3{
		{X: -b, Y: a}, {X: b, Y: a}, {X: -b, Y: -a}, {X: b, Y: -a},
		{Y: -b, Z: a}, {Y: b, Z: a}, {Y: -b, Z: -a}, {Y: b, Z: -a},
		{X: a, Z: -b}, {X: a, Z: b}, {X: -a, Z: -b}, {X: -a, Z: b},
	}
}

// subdivide splits every triangle into four, projecting the new edge
// midpoints onto the sphere of radius r.
func subdivide(verts []math.Vec3, faces [][3]int, r float64) ([]math.Vec3, [][3]int) {
	mids := make(map[[2]int]int)
	midpoint := func(i, j int) int {
		key := [2]int{i, j}
		if j < i {
			key = [2]int{j, i}
		}
		if idx, ok := mids[key]; ok {
			return idx
		}
		v := verts[key[0]].Add(verts[key[1]]).Scale(0.5).WithLength(r)
		verts = append(verts, v)
		mids[key] = len(verts) - 1
		return len(verts) - 1
	}

	next := make([][3]int, 0, 4*len(faces))
	for _, f := range faces {
		a, b, c := f[0], f[1], f[2]
		ab := midpoint(a, b)
		bc := midpoint(b, c)
		ac := midpoint(a, c)
		next = append(next,
			[3]int{a, ab, ac},
			[3]int{ab, b, bc},
			[3]int{ab, bc, ac},
			[3]int{c, ac, bc},
		)
	}
	return verts, next
}

// applyCut drops faces that straddle the middle of the cut and rotates the
// remaining vertices inside the cut onto its nearer edge.
func applyCut(verts []math.Vec3, faces [][3]int, cut Cut) [][3]int {
	mid := (cut.From + cut.To) / 2
	lower := make([]bool, len(verts))
	upper := make([]bool, len(verts))
	for i, v := range verts {
		az := math.Azimuth(v)
		lower[i] = az > cut.From && az <= mid
		upper[i] = az > mid && az < cut.To
	}

	kept := faces[:0:0]
	for _, f := range faces {
		lo := lower[f[0]] || lower[f[1]] || lower[f[2]]
		hi := upper[f[0]] || upper[f[1]] || upper[f[2]]
		if lo && hi {
			continue
		}
		kept = append(kept, f)
	}

	for i := range verts {
		switch {
		case lower[i]:
			verts[i] = math.RotateAzimuth(verts[i], cut.From)
		case upper[i]:
			verts[i] = math.RotateAzimuth(verts[i], cut.To)
		}
	}
	return kept
}

// sphereUV maps a point on an origin-centered sphere to equirectangular
// texture coordinates.
func sphereUV(v math.Vec3) math.Vec2 {
	s := math.ToSpherical(v)
	return math.Vec2{X: s.Phi/(2*gomath.Pi) + 0.5, Y: s.Theta / gomath.Pi}
}

// fixSeam keeps a triangle's u coordinates contiguous when it straddles the
// u=0/1 wrap by shifting the odd vertex out by one full turn.
func fixSeam(uv []math.Vec2) {
	var low, high []int
	for i := range uv {
		switch {
		case uv[i].X < 0.25:
			low = append(low, i)
		case uv[i].X > 0.75:
			high = append(high, i)
		}
	}
	switch {
	case len(low) == 1 && len(high) == 2:
		uv[low[0]].X += 1
	case len(high) == 1 && len(low) == 2:
		uv[high[0]].X -= 1
	}
}

// Icosphere builds a sphere of radius r around center by subdividing an
// icosahedron n times. A non-empty cut removes the azimuthal wedge
// [cut.From, cut.To] (radians, measured around +Z from +X).
func Icosphere(center math.Vec3, r float64, n int, cut Cut) (Geometry, error) {
	if r <= 0 {
		return Geometry{}, fmt.Errorf("%w: sphere radius %g", ErrInvalidArgument, r)
	}
	if n < 0 {
		return Geometry{}, fmt.Errorf("%w: subdivision count %d", ErrInvalidArgument, n)
	}
	if err := cut.validate(); err != nil {
		return Geometry{}, err
	}

	verts := icosahedron(r)
	faces := make([][3]int, len(icosahedronFaces))
	copy(faces, icosahedronFaces[:])
	for i := 0; i < n; i++ {
		verts, faces = subdivide(verts, faces, r)
	}
	if cut.Active() {
		faces = applyCut(verts, faces, cut)
	}

	out, outFaces := deshare(verts, faces)
	g := Geometry{
		Vertices: out,
		Faces:    outFaces,
		Normals:  make([]math.Vec3, len(out)),
		UVs:      make([]math.Vec2, len(out)),
	}
	for i, v := range out {
		g.Normals[i] = v.Normalize()
		g.UVs[i] = sphereUV(v)
	}
	for i := 0; i < len(g.UVs); i += 3 {
		fixSeam(g.UVs[i : i+3])
	}
	for i := range g.Vertices {
		g.Vertices[i] = g.Vertices[i].Add(center)
	}
	return g, nil
}
