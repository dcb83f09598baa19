// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package skinning

import (
	"math"

	"github.com/gogpu/deform/internal/linear"
)

// NormalizeMode selects how skinned normals and tangents are renormalized.
type NormalizeMode uint8

const (
	// NormalizeNone leaves transformed vectors as they are.
	NormalizeNone NormalizeMode = iota

	// NormalizeFast uses a reciprocal square root estimate refined with two
	// Newton-Raphson steps (relative error below 1e-5).
	NormalizeFast

	// NormalizeFastest uses a single Newton-Raphson step
	// (relative error below 2e-3).
	NormalizeFastest
)

// String returns the mode name.
func (m NormalizeMode) String() string {
	switch m {
	case NormalizeNone:
		return "none"
	case NormalizeFast:
		return "fast"
	case NormalizeFastest:
		return "fastest"
	default:
		return "unknown"
	}
}

const rsqrtMagic = 0x5f375a86

// invLength returns an approximation of 1/sqrt(lenSq) for the given mode.
// A zero length yields zero so zero vectors stay zero.
func invLength(lenSq float32, mode NormalizeMode) float32 {
	if lenSq == 0 {
		return 0
	}
	half := 0.5 * lenSq
	y := math.Float32frombits(rsqrtMagic - math.Float32bits(lenSq)>>1)
	y *= 1.5 - float32(half*y*y)
	if mode == NormalizeFast {
		y *= 1.5 - float32(half*y*y)
	}
	return y
}

func lengthSq(x, y, z float32) float32 {
	return float32(x*x) + float32(y*y) + float32(z*z)
}

func normalize(v linear.V3, mode NormalizeMode) linear.V3 {
	if mode == NormalizeNone {
		return v
	}
	s := invLength(lengthSq(v[0], v[1], v[2]), mode)
	return linear.V3{v[0] * s, v[1] * s, v[2] * s}
}
