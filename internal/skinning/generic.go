// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package skinning

import (
	"github.com/gogpu/deform/internal/linear"
	"github.com/gogpu/deform/internal/vbuf"
)

// Generic is the reference kernel. It supports every attribute combination,
// including tangents without normals, and is the fallback for all backends.
func Generic(j *Job) {
	switch j.BonesPerVertex() {
	case 1:
		genericRun(j, j.Influences1, 0, j.Count)
	case 2:
		genericRun(j, j.Influences2, 0, j.Count)
	case 4:
		genericRun(j, j.Influences4, 0, j.Count)
	}
}

// genericRun skins vertices [from, to) one at a time. The lane kernels use
// it for the tail that does not fill a batch.
func genericRun[I influence](j *Job, inf []I, from, to int) {
	for i := from; i < to; i++ {
		m := blend(j.Bones, inf[i])
		skinVertex(j, i, &m)
	}
}

// skinVertex copies record i from In to Out and writes the transformed
// attributes.
func skinVertex(j *Job, i int, m *affine) {
	src := j.In.Record(i)
	dst := j.Out.Record(i)

	p := vbuf.V3(src, j.PositionOffset)
	var n, t linear.V3
	if j.Normals {
		n = vbuf.V3(src, j.NormalOffset)
	}
	tw := float32(0)
	if j.Tangents {
		t4 := vbuf.V4(src, j.TangentOffset)
		t, tw = t4.XYZ(), t4[3]
	}

	copy(dst, src)

	vbuf.PutV3(dst, j.PositionOffset, m.point(p))
	if j.Normals {
		vbuf.PutV3(dst, j.NormalOffset, normalize(m.vector(n), j.Normalize))
	}
	if j.Tangents {
		x := normalize(m.vector(t), j.Normalize)
		vbuf.PutV4(dst, j.TangentOffset, linear.V4{x[0], x[1], x[2], tw})
	}
}
