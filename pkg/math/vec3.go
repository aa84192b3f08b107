// Package math provides the float32 vector, quaternion and matrix types used
// to compose node transforms and interpolate animation keys.
package math

import "github.com/chewxy/math32"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec3From reads the first three components of v.
func Vec3From(v []float32) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// Array returns the components as an array.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns a unit vector, or the zero vector for a zero input.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Lerp interpolates linearly from v to other.
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	return Vec3{
		v.X + t*(other.X-v.X),
		v.Y + t*(other.Y-v.Y),
		v.Z + t*(other.Z-v.Z),
	}
}

// Slerp interpolates the direction of v toward other along the sphere and
// the length linearly.
func (v Vec3) Slerp(other Vec3, t float32) Vec3 {
	l1, l2 := v.Length(), other.Length()
	d1, d2 := v.Normalize(), other.Normalize()
	length := l1*(1-t) + l2*t

	cs := d1.Dot(d2)
	switch {
	case cs >= 1:
		return d1.Scale(length)
	case cs <= -1:
		// Opposite directions have no unique arc; shrink through zero.
		return d1.Scale(l1*(1-t) - l2*t)
	}
	omega := math32.Acos(cs)
	sn := math32.Sin(omega)
	s1 := math32.Sin(omega*(1-t)) / sn
	s2 := math32.Sin(omega*t) / sn
	return d1.Scale(s1).Add(d2.Scale(s2)).Scale(length)
}
