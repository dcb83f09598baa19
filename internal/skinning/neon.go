// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package skinning

import (
	"github.com/gogpu/deform/internal/linear"
	"github.com/gogpu/deform/internal/vbuf"
	"github.com/gogpu/deform/internal/wide"
)

// neonWidth is the number of vertices per NEON batch.
const neonWidth = 4

// NEON kernels work array-of-structures: the blended matrix is four column
// registers and a vertex is transformed with a chain of multiply-accumulates
// (vmlaq_n_f32), one column per input coordinate.

var neonTable = &variantTable{
	{neonKernel[Influence1, attrP], neonKernel[Influence1, attrPN], neonKernel[Influence1, attrPNT]},
	{neonKernel[Influence2, attrP], neonKernel[Influence2, attrPN], neonKernel[Influence2, attrPNT]},
	{neonKernel[Influence4, attrP], neonKernel[Influence4, attrPN], neonKernel[Influence4, attrPNT]},
}

func neonKernel[I influence, A attributes](j *Job) {
	inf := influencesOf[I](j)
	n := j.Count - j.Count%neonWidth
	for i := 0; i < n; i += neonWidth {
		batch := inf[i : i+neonWidth : i+neonWidth]
		for lane := range batch {
			cols := blendColumns(j.Bones, batch[lane])
			neonVertex[A](j, i+lane, &cols)
		}
	}
	genericRun(j, inf, n, j.Count)
}

// columns holds the four columns of a blended bone matrix.
type columns [4]wide.F32x4

func column(m *linear.M4, c int) wide.F32x4 {
	return wide.F32x4{m[c*4], m[c*4+1], m[c*4+2], m[c*4+3]}
}

func blendColumns[I influence](bones []linear.M4, in I) columns {
	var cols columns
	idx, w := in.slot(0)
	b := &bones[idx]
	n := in.slots()
	for c := range cols {
		if n == 1 {
			cols[c] = column(b, c)
		} else {
			cols[c] = column(b, c).Scale(w)
		}
	}
	for k := 1; k < n; k++ {
		idx, w = in.slot(k)
		b = &bones[idx]
		for c := range cols {
			cols[c] = cols[c].MulAddScalar(column(b, c), w)
		}
	}
	return cols
}

func (cols *columns) apply(v linear.V3, translate bool) wide.F32x4 {
	acc := cols[0].Scale(v[0]).MulAddScalar(cols[1], v[1]).MulAddScalar(cols[2], v[2])
	if translate {
		acc = acc.Add(cols[3])
	}
	return acc
}

func normalizeLanes(v wide.F32x4, mode NormalizeMode) linear.V3 {
	if mode == NormalizeNone {
		return linear.V3{v[0], v[1], v[2]}
	}
	s := invLength(lengthSq(v[0], v[1], v[2]), mode)
	v = v.Scale(s)
	return linear.V3{v[0], v[1], v[2]}
}

func neonVertex[A attributes](j *Job, i int, cols *columns) {
	var a A
	src := j.In.Record(i)
	dst := j.Out.Record(i)

	p := vbuf.V3(src, j.PositionOffset)
	var n linear.V3
	var t linear.V4
	if a.normals() {
		n = vbuf.V3(src, j.NormalOffset)
	}
	if a.tangents() {
		t = vbuf.V4(src, j.TangentOffset)
	}

	copy(dst, src)

	o := cols.apply(p, true)
	vbuf.PutV3(dst, j.PositionOffset, linear.V3{o[0], o[1], o[2]})

	if a.normals() {
		vbuf.PutV3(dst, j.NormalOffset, normalizeLanes(cols.apply(n, false), j.Normalize))
	}
	if a.tangents() {
		x := normalizeLanes(cols.apply(t.XYZ(), false), j.Normalize)
		vbuf.PutV4(dst, j.TangentOffset, t.WithXYZ(x))
	}
}
