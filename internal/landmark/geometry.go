package landmark

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vector converts the point into an r3 vector.
func (p Point3D) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// Flat drops the depth component.
func (p Point3D) Flat() Point3D {
	return Point3D{X: p.X, Y: p.Y}
}

// Distance2D is the Euclidean distance in the image (x,y) plane.
func Distance2D(a, b Point3D) float64 {
	return a.Flat().Vector().Distance(b.Flat().Vector())
}

// Distance3D is the Euclidean distance including depth.
func Distance3D(a, b Point3D) float64 {
	return a.Vector().Distance(b.Vector())
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point3D) Point3D {
	m := a.Vector().Add(b.Vector()).Mul(0.5)
	return Point3D{X: m.X, Y: m.Y, Z: m.Z}
}

// Angle returns the angle in radians at vertex formed by a and b.
// A zero-length arm yields 0.
func Angle(a, vertex, b Point3D) float64 {
	u := a.Vector().Sub(vertex.Vector())
	v := b.Vector().Sub(vertex.Vector())
	if u.Norm() == 0 || v.Norm() == 0 {
		return 0
	}
	return u.Angle(v).Radians()
}

// Ratio divides num by den, returning 0 when den is zero or the result is not finite.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// MeanY averages the Y coordinate of the given indices. Callers check bounds first.
func (s Set) MeanY(indices ...int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		sum += s[i].Y
	}
	return sum / float64(len(indices))
}
