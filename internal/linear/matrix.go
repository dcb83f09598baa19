// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package linear

import "math"

// M4 is a column-major 4x4 matrix of float32.
//
// Element (row r, column c) is stored at index c*4+r:
//
//	| m[0]  m[4]  m[8]   m[12] |
//	| m[1]  m[5]  m[9]   m[13] |
//	| m[2]  m[6]  m[10]  m[14] |
//	| m[3]  m[7]  m[11]  m[15] |
//
// Bone matrices only use the top three rows; the fourth row is assumed to
// be (0, 0, 0, 1).
type M4 [16]float32

// Identity returns the identity matrix.
func Identity() M4 {
	return M4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(x, y, z float32) M4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale creates a scaling matrix.
func Scale(x, y, z float32) M4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// RotateAxis creates a rotation of angle radians around axis.
// The axis does not need to be normalized.
func RotateAxis(axis V3, angle float32) M4 {
	a := axis.Normalize()
	s64, c64 := math.Sincos(float64(angle))
	s, c := float32(s64), float32(c64)
	t := 1 - c
	x, y, z := a[0], a[1], a[2]
	return M4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m · n.
func (m M4) Mul(n M4) M4 {
	var r M4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			var s float32
			for k := 0; k < 4; k++ {
				s += m[k*4+row] * n[c*4+k]
			}
			r[c*4+row] = s
		}
	}
	return r
}
