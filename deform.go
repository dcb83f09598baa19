package deform

import (
	"sync"

	"github.com/gogpu/deform/internal/vbuf"
)

// scratchPool recycles the intermediate buffers of blend-then-skin meshes.
var scratchPool = sync.Pool{
	New: func() any { return new([]byte) },
}

func getScratch(n int) *[]byte {
	p := scratchPool.Get().(*[]byte)
	if cap(*p) < n {
		*p = make([]byte, n)
	}
	*p = (*p)[:n]
	return p
}

// Deform runs the full per-mesh pipeline on info.
//
//   - Blend shapes with at least one active channel and skinning: the
//     blended mesh is built in a pooled scratch buffer and skinned into Out.
//   - Blend shapes only: blended straight into Out.
//   - Skinning only: skinned straight into Out.
//   - Neither: the records are copied.
func Deform(info *SkinMeshInfo) error {
	if err := info.check(); err != nil {
		return err
	}
	if err := info.checkOut(info.Out); err != nil {
		return err
	}
	deform(info)
	return nil
}

func deform(info *SkinMeshInfo) {
	n := info.VertexCount
	out := vbuf.View{Data: info.Out[:n*info.OutStride], Stride: info.OutStride}
	blend := info.BlendShapes != nil && active(info.BlendWeights)

	switch {
	case blend && info.skinned():
		p := getScratch(n * info.OutStride)
		defer scratchPool.Put(p)
		scratch := vbuf.View{Data: *p, Stride: info.OutStride}
		if info.OutStride > info.InStride {
			// Bytes past the input record must come out as they were in Out.
			copy(scratch.Data, out.Data)
		}
		applyBlendShapes(info, scratch)
		skin(info, scratch.Data, scratch.Stride)
	case blend:
		applyBlendShapes(info, out)
	case info.skinned():
		skin(info, info.In, info.InStride)
	default:
		vbuf.CopyRecords(out, vbuf.View{Data: info.In[:n*info.InStride], Stride: info.InStride}, n)
	}
}
