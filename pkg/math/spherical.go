package math

import "math"

// Spherical holds spherical coordinates: radius, polar angle Theta measured
// from +Z in [0, pi], and azimuth Phi measured from +X in (-pi, pi].
type Spherical struct {
	R, Theta, Phi float64
}

// ToSpherical converts a Cartesian point to spherical coordinates.
// The origin maps to the zero value.
func ToSpherical(v Vec3) Spherical {
	r := v.Length()
	if r == 0 {
		return Spherical{}
	}
	c := v.Z / r
	// Clamp rounding noise so Acos stays defined at the poles.
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return Spherical{R: r, Theta: math.Acos(c), Phi: math.Atan2(v.Y, v.X)}
}

// ToCartesian converts spherical coordinates back to a point.
func (s Spherical) ToCartesian() Vec3 {
	st := math.Sin(s.Theta)
	return Vec3{
		X: s.R * st * math.Cos(s.Phi),
		Y: s.R * st * math.Sin(s.Phi),
		Z: s.R * math.Cos(s.Theta),
	}
}

// Azimuth returns the angle of v around the Z axis in [0, 2pi).
func Azimuth(v Vec3) float64 {
	phi := math.Atan2(v.Y, v.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi
}

// RotateAzimuth rotates v about the Z axis so that its azimuth becomes phi,
// keeping its distance from the axis and its Z coordinate.
func RotateAzimuth(v Vec3, phi float64) Vec3 {
	rho := math.Hypot(v.X, v.Y)
	return Vec3{X: rho * math.Cos(phi), Y: rho * math.Sin(phi), Z: v.Z}
}
