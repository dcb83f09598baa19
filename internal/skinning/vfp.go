// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package skinning

import (
	"github.com/gogpu/deform/internal/vbuf"
	"github.com/gogpu/deform/internal/wide"
)

// vfpWidth is the VFP short-vector length.
const vfpWidth = 2

// VFP kernels are the 2-lane counterpart of the SSE2 kernels, matching the
// vector length mode of 32-bit ARM cores without NEON.

var vfpTable = &variantTable{
	{vfpKernel[Influence1, attrP], vfpKernel[Influence1, attrPN], vfpKernel[Influence1, attrPNT]},
	{vfpKernel[Influence2, attrP], vfpKernel[Influence2, attrPN], vfpKernel[Influence2, attrPNT]},
	{vfpKernel[Influence4, attrP], vfpKernel[Influence4, attrPN], vfpKernel[Influence4, attrPNT]},
}

func vfpKernel[I influence, A attributes](j *Job) {
	inf := influencesOf[I](j)
	n := j.Count - j.Count%vfpWidth
	for i := 0; i < n; i += vfpWidth {
		vfpBatch[I, A](j, inf[i:i+vfpWidth:i+vfpWidth], i)
	}
	genericRun(j, inf, n, j.Count)
}

type soa2 [12]wide.F32x2

func blend2[I influence](j *Job, inf []I) soa2 {
	var m soa2
	slots := inf[0].slots()
	for k := 0; k < slots; k++ {
		var g soa2
		var w wide.F32x2
		for lane := 0; lane < vfpWidth; lane++ {
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

func (m *soa2) transform2(x, y, z wide.F32x2, translate bool) (ox, oy, oz wide.F32x2) {
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

func normalize2(x, y, z wide.F32x2, mode NormalizeMode) (wide.F32x2, wide.F32x2, wide.F32x2) {
	if mode == NormalizeNone {
		return x, y, z
	}
	l := x.Mul(x).MulAdd(y, y).MulAdd(z, z)
	s := wide.F32x2{invLength(l[0], mode), invLength(l[1], mode)}
	return x.Mul(s), y.Mul(s), z.Mul(s)
}

func load2(recs *[vfpWidth][]byte, off int) (x, y, z wide.F32x2) {
	for lane, r := range recs {
		v := vbuf.V3(r, off)
		x[lane], y[lane], z[lane] = v[0], v[1], v[2]
	}
	return x, y, z
}

func store2(recs *[vfpWidth][]byte, off int, x, y, z wide.F32x2) {
	for lane, r := range recs {
		vbuf.PutFloat32(r, off, x[lane])
		vbuf.PutFloat32(r, off+4, y[lane])
		vbuf.PutFloat32(r, off+8, z[lane])
	}
}

func vfpBatch[I influence, A attributes](j *Job, inf []I, base int) {
	var a A
	var src, dst [vfpWidth][]byte
	for lane := range src {
		src[lane] = j.In.Record(base + lane)
		dst[lane] = j.Out.Record(base + lane)
	}

	m := blend2(j, inf)

	px, py, pz := load2(&src, j.PositionOffset)
	var nx, ny, nz, tx, ty, tz wide.F32x2
	var tw wide.F32x2
	if a.normals() {
		nx, ny, nz = load2(&src, j.NormalOffset)
	}
	if a.tangents() {
		tx, ty, tz = load2(&src, j.TangentOffset)
		tw = wide.F32x2{vbuf.Float32(src[0], j.TangentOffset+12), vbuf.Float32(src[1], j.TangentOffset+12)}
	}

	for lane := range dst {
		copy(dst[lane], src[lane])
	}

	px, py, pz = m.transform2(px, py, pz, true)
	store2(&dst, j.PositionOffset, px, py, pz)

	if a.normals() {
		nx, ny, nz = m.transform2(nx, ny, nz, false)
		nx, ny, nz = normalize2(nx, ny, nz, j.Normalize)
		store2(&dst, j.NormalOffset, nx, ny, nz)
	}
	if a.tangents() {
		tx, ty, tz = m.transform2(tx, ty, tz, false)
		tx, ty, tz = normalize2(tx, ty, tz, j.Normalize)
		store2(&dst, j.TangentOffset, tx, ty, tz)
		vbuf.PutFloat32(dst[0], j.TangentOffset+12, tw[0])
		vbuf.PutFloat32(dst[1], j.TangentOffset+12, tw[1])
	}
}
