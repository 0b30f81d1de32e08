// Package core holds the value types shared across the render, composite,
// volume, and control packages: vectors, matrices, the volume field, the
// transfer function, the camera, render parameters, bricks, frames, and the
// control state snapshot.
package core

import "math"

// Vec3 is a 3-component float32 vector, used for positions and directions.
type Vec3 struct {
	X, Y, Z float32
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (v Vec3) Mul(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (a Vec3) Dot(b Vec3) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (v Vec3) Len() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Norm returns a unit-length copy of v, or v unchanged if v is the zero vector.
func (v Vec3) Norm() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// InUnitCube reports whether v lies within [0,1]^3.
func (v Vec3) InUnitCube() bool {
	return v.X >= 0 && v.X <= 1 && v.Y >= 0 && v.Y <= 1 && v.Z >= 0 && v.Z <= 1
}

// Vec4 is a 4-component float32 vector, used for straight/premultiplied RGBA.
type Vec4 struct {
	X, Y, Z, W float32
}

func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}
func (v Vec4) Mul(s float32) Vec4 { return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s} }

// Clamp01 clamps every component to [0,1].
func (v Vec4) Clamp01() Vec4 {
	c := func(f float32) float32 {
		if f < 0 {
			return 0
		}
		if f > 1 {
			return 1
		}
		return f
	}
	return Vec4{c(v.X), c(v.Y), c(v.Z), c(v.W)}
}
