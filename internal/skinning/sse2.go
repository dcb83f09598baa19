// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package skinning

import (
	"github.com/gogpu/deform/internal/vbuf"
	"github.com/gogpu/deform/internal/wide"
)

// sse2Width is the number of vertices per SSE2 batch.
const sse2Width = 4

// SSE2 kernels work structure-of-arrays: each of the twelve blended matrix
// elements and each coordinate is an F32x4 holding four vertices.

var sse2Table = &variantTable{
	{sse2Kernel[Influence1, attrP], sse2Kernel[Influence1, attrPN], sse2Kernel[Influence1, attrPNT]},
	{sse2Kernel[Influence2, attrP], sse2Kernel[Influence2, attrPN], sse2Kernel[Influence2, attrPNT]},
	{sse2Kernel[Influence4, attrP], sse2Kernel[Influence4, attrPN], sse2Kernel[Influence4, attrPNT]},
}

func sse2Kernel[I influence, A attributes](j *Job) {
	inf := influencesOf[I](j)
	n := j.Count - j.Count%sse2Width
	for i := 0; i < n; i += sse2Width {
		sse2Batch[I, A](j, inf[i:i+sse2Width:i+sse2Width], i)
	}
	genericRun(j, inf, n, j.Count)
}

// soa4 is a batch of four blended matrices, element-major.
type soa4 [12]wide.F32x4

func blend4[I influence](j *Job, inf []I) soa4 {
	var m soa4
	slots := inf[0].slots()
	for k := 0; k < slots; k++ {
		var g soa4
		var w wide.F32x4
		for lane := 0; lane < sse2Width; lane++ {
			idx, wl := inf[lane].slot(k)
			b := &j.Bones[idx]
			for e := range g {
				g[e][lane] = b[affineIndex[e]]
			}
			w[lane] = wl
		}
		switch {
		case slots == 1:
			m = g
		case k == 0:
			for e := range m {
				m[e] = g[e].Mul(w)
			}
		default:
			for e := range m {
				m[e] = m[e].MulAdd(g[e], w)
			}
		}
	}
	return m
}

// transform4 applies the linear part of m to four vectors; translate adds
// the translation column.
func (m *soa4) transform4(x, y, z wide.F32x4, translate bool) (ox, oy, oz wide.F32x4) {
	ox = m[0].Mul(x).MulAdd(m[3], y).MulAdd(m[6], z)
	oy = m[1].Mul(x).MulAdd(m[4], y).MulAdd(m[7], z)
	oz = m[2].Mul(x).MulAdd(m[5], y).MulAdd(m[8], z)
	if translate {
		ox = ox.Add(m[9])
		oy = oy.Add(m[10])
		oz = oz.Add(m[11])
	}
	return ox, oy, oz
}

func normalize4(x, y, z wide.F32x4, mode NormalizeMode) (wide.F32x4, wide.F32x4, wide.F32x4) {
	if mode == NormalizeNone {
		return x, y, z
	}
	l := x.Mul(x).MulAdd(y, y).MulAdd(z, z)
	var s wide.F32x4
	for lane := range s {
		s[lane] = invLength(l[lane], mode)
	}
	return x.Mul(s), y.Mul(s), z.Mul(s)
}

func load4(recs *[sse2Width][]byte, off int) (x, y, z wide.F32x4) {
	for lane, r := range recs {
		v := vbuf.V3(r, off)
		x[lane], y[lane], z[lane] = v[0], v[1], v[2]
	}
	return x, y, z
}

func store4(recs *[sse2Width][]byte, off int, x, y, z wide.F32x4) {
	for lane, r := range recs {
		vbuf.PutFloat32(r, off, x[lane])
		vbuf.PutFloat32(r, off+4, y[lane])
		vbuf.PutFloat32(r, off+8, z[lane])
	}
}

func sse2Batch[I influence, A attributes](j *Job, inf []I, base int) {
	var a A
	var src, dst [sse2Width][]byte
	for lane := range src {
		src[lane] = j.In.Record(base + lane)
		dst[lane] = j.Out.Record(base + lane)
	}

	m := blend4(j, inf)

	px, py, pz := load4(&src, j.PositionOffset)
	var nx, ny, nz, tx, ty, tz, tw wide.F32x4
	if a.normals() {
		nx, ny, nz = load4(&src, j.NormalOffset)
	}
	if a.tangents() {
		tx, ty, tz = load4(&src, j.TangentOffset)
		for lane, r := range src {
			tw[lane] = vbuf.Float32(r, j.TangentOffset+12)
		}
	}

	for lane := range dst {
		copy(dst[lane], src[lane])
	}

	px, py, pz = m.transform4(px, py, pz, true)
	store4(&dst, j.PositionOffset, px, py, pz)

	if a.normals() {
		nx, ny, nz = m.transform4(nx, ny, nz, false)
		nx, ny, nz = normalize4(nx, ny, nz, j.Normalize)
		store4(&dst, j.NormalOffset, nx, ny, nz)
	}
	if a.tangents() {
		tx, ty, tz = m.transform4(tx, ty, tz, false)
		tx, ty, tz = normalize4(tx, ty, tz, j.Normalize)
		store4(&dst, j.TangentOffset, tx, ty, tz)
		for lane, r := range dst {
			vbuf.PutFloat32(r, j.TangentOffset+12, tw[lane])
		}
	}
}
