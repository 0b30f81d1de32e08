package core

import "math"

// Mat4 is a 16-element row-major 4x4 matrix.
type Mat4 struct {
	M [16]float32
}

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	var m Mat4
	m.M[0], m.M[5], m.M[10], m.M[15] = 1, 1, 1, 1
	return m
}

// at returns element (row, col) of the row-major matrix.
func (m Mat4) at(row, col int) float32 { return m.M[row*4+col] }

// MulVec4 applies m to a homogeneous 4-vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m.at(0, 0)*v.X + m.at(0, 1)*v.Y + m.at(0, 2)*v.Z + m.at(0, 3)*v.W,
		m.at(1, 0)*v.X + m.at(1, 1)*v.Y + m.at(1, 2)*v.Z + m.at(1, 3)*v.W,
		m.at(2, 0)*v.X + m.at(2, 1)*v.Y + m.at(2, 2)*v.Z + m.at(2, 3)*v.W,
		m.at(3, 0)*v.X + m.at(3, 1)*v.Y + m.at(3, 2)*v.Z + m.at(3, 3)*v.W,
	}
}

// RotateY returns the rotation-about-Y matrix for angle theta radians, used
// by the raymarcher's per-brick ray construction.
func RotateY(theta float64) Mat4 {
	s, c := math.Sin(theta), math.Cos(theta)
	m := Identity()
	m.M[0] = float32(c)
	m.M[2] = float32(s)
	m.M[8] = float32(-s)
	m.M[10] = float32(c)
	return m
}
