// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package linear implements the float32 vector and matrix math used by
// the deformation kernels.
package linear

import "math"

// V3 is a 3-component vector of float32.
// It is used both for positions and for directions (normals, tangents,
// blend-shape deltas).
type V3 [3]float32

// Scale returns the vector scaled by s.
func (v V3) Scale(s float32) V3 {
	return V3{v[0] * s, v[1] * s, v[2] * s}
}

// AddScaled returns v + w*s.
// This is the accumulation step of blend-shape application.
func (v V3) AddScaled(w V3, s float32) V3 {
	return V3{v[0] + w[0]*s, v[1] + w[1]*s, v[2] + w[2]*s}
}

// Normalize returns a unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v V3) Normalize() V3 {
	l := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// V4 is a 4-component vector of float32.
// Tangents are stored as V4, with W holding the bitangent sign.
type V4 [4]float32

// XYZ returns the first three components.
func (v V4) XYZ() V3 {
	return V3{v[0], v[1], v[2]}
}

// WithXYZ returns v with its first three components replaced by w.
func (v V4) WithXYZ(w V3) V4 {
	return V4{w[0], w[1], w[2], v[3]}
}
