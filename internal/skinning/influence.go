// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package skinning

import "github.com/gogpu/deform/internal/linear"

// Influence1 binds a vertex rigidly to one bone.
// Weight is carried for completeness; kernels treat it as 1.
type Influence1 struct {
	Index  uint16
	Weight float32
}

// Influence2 blends two bones.
type Influence2 struct {
	Index  [2]uint16
	Weight [2]float32
}

// Influence4 blends four bones.
type Influence4 struct {
	Index  [4]uint16
	Weight [4]float32
}

func (Influence1) slots() int { return 1 }
func (Influence2) slots() int { return 2 }
func (Influence4) slots() int { return 4 }

func (in Influence1) slot(int) (uint16, float32)   { return in.Index, 1 }
func (in Influence2) slot(k int) (uint16, float32) { return in.Index[k], in.Weight[k] }
func (in Influence4) slot(k int) (uint16, float32) { return in.Index[k], in.Weight[k] }

// influence is the constraint the kernels are instantiated over.
type influence interface {
	Influence1 | Influence2 | Influence4
	slots() int
	slot(k int) (uint16, float32)
}

// affine holds the top three rows of a bone matrix, column by column:
// a[c*3+r] is row r of column c. Column 3 is the translation.
type affine [12]float32

// affineIndex maps affine element e to its index in a column-major M4.
var affineIndex = [12]int{0, 1, 2, 4, 5, 6, 8, 9, 10, 12, 13, 14}

// blend computes the weighted sum of the bones referenced by in.
// A single-bone influence returns the bone unchanged.
func blend[I influence](bones []linear.M4, in I) affine {
	var a affine
	idx, w := in.slot(0)
	b := &bones[idx]
	n := in.slots()
	if n == 1 {
		for e := range a {
			a[e] = b[affineIndex[e]]
		}
		return a
	}
	for e := range a {
		a[e] = float32(b[affineIndex[e]] * w)
	}
	for k := 1; k < n; k++ {
		idx, w = in.slot(k)
		b = &bones[idx]
		for e := range a {
			a[e] += float32(b[affineIndex[e]] * w)
		}
	}
	return a
}

// point and vector round every product before adding, in the same order as
// the lane kernels, so no backend can fuse a multiply-add the others do not.
func (a *affine) point(p linear.V3) linear.V3 {
	return linear.V3{
		float32(a[0]*p[0]) + float32(a[3]*p[1]) + float32(a[6]*p[2]) + a[9],
		float32(a[1]*p[0]) + float32(a[4]*p[1]) + float32(a[7]*p[2]) + a[10],
		float32(a[2]*p[0]) + float32(a[5]*p[1]) + float32(a[8]*p[2]) + a[11],
	}
}

func (a *affine) vector(v linear.V3) linear.V3 {
	return linear.V3{
		float32(a[0]*v[0]) + float32(a[3]*v[1]) + float32(a[6]*v[2]),
		float32(a[1]*v[0]) + float32(a[4]*v[1]) + float32(a[7]*v[2]),
		float32(a[2]*v[0]) + float32(a[5]*v[1]) + float32(a[8]*v[2]),
	}
}
