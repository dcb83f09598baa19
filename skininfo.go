package deform

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/deform/internal/skinning"
	"github.com/gogpu/deform/internal/vbuf"
)

// NormalizeMode selects how skinned normals and tangents are renormalized.
// It trades precision for speed; it does not change which vectors are
// produced.
type NormalizeMode = skinning.NormalizeMode

// Normalization modes.
const (
	NormalizeNone    = skinning.NormalizeNone
	NormalizeFast    = skinning.NormalizeFast
	NormalizeFastest = skinning.NormalizeFastest
)

// SkinMeshInfo describes one deformation of one mesh.
//
// It borrows every buffer it references: In, Out, the influence table, the
// bone palette and the blend-shape tables stay owned by the caller and must
// not change while the deformation runs. In and Out may be the same buffer
// when the strides are equal.
type SkinMeshInfo struct {
	// In holds VertexCount bind-pose records of InStride bytes.
	In       []byte
	InStride int

	// Out receives VertexCount records of OutStride bytes. Each output
	// record starts as a copy of min(InStride, OutStride) input bytes.
	Out       []byte
	OutStride int

	VertexCount int
	Layout      VertexLayout

	// SkinNormals and SkinTangents select the attributes to transform.
	// Tangents without normals are supported but always use the generic
	// kernel.
	SkinNormals  bool
	SkinTangents bool
	Normalize    NormalizeMode

	// Influences and Bones drive linear-blend skinning. A nil Influences
	// table disables skinning; blend shapes, if any, still apply.
	Influences Influences
	Bones      []Matrix4

	// BlendShapes and BlendWeights (one per channel) are optional.
	BlendShapes  *BlendShapeData
	BlendWeights []float32
}

func (info *SkinMeshInfo) skinned() bool {
	return info.Influences != nil
}

// check performs the constant-time validation Skin and Deform rely on. The
// output buffer is checked separately by checkOut, since a Destination may
// supply it.
func (info *SkinMeshInfo) check() error {
	if info.VertexCount < 0 {
		return fmt.Errorf("%w: negative vertex count %d", ErrBufferTooSmall, info.VertexCount)
	}
	if info.InStride <= 0 || info.OutStride <= 0 {
		return fmt.Errorf("%w: strides in=%d out=%d", ErrInvalidLayout, info.InStride, info.OutStride)
	}
	for _, stride := range []int{info.InStride, info.OutStride} {
		if !info.Layout.fits(stride, info.SkinNormals, info.SkinTangents) {
			return fmt.Errorf("%w: %+v does not fit stride %d", ErrInvalidLayout, info.Layout, stride)
		}
	}
	if need := info.VertexCount * info.InStride; len(info.In) < need {
		return fmt.Errorf("%w: input has %d bytes, need %d", ErrBufferTooSmall, len(info.In), need)
	}
	if info.Influences == nil && len(info.Bones) > 0 {
		return ErrNoInfluences
	}
	if info.skinned() && info.Influences.Len() < info.VertexCount {
		return fmt.Errorf("%w: %d records for %d vertices", ErrNoInfluences, info.Influences.Len(), info.VertexCount)
	}
	if info.BlendShapes != nil && len(info.BlendWeights) != len(info.BlendShapes.Channels) {
		return fmt.Errorf("%w: %d weights for %d channels", ErrBlendWeights, len(info.BlendWeights), len(info.BlendShapes.Channels))
	}
	return nil
}

// checkOut reports whether out holds VertexCount records of OutStride bytes.
func (info *SkinMeshInfo) checkOut(out []byte) error {
	if need := info.VertexCount * info.OutStride; len(out) < need {
		return fmt.Errorf("%w: output has %d bytes, need %d", ErrBufferTooSmall, len(out), need)
	}
	return nil
}

// Validate checks info thoroughly, including every bone index and the
// blend-shape tables. It is meant for asset build or load time; Skin and
// Deform only perform the constant-time checks.
//
// Out is not checked: it may be left nil when a Destination supplies the
// output. Skin, Deform, ApplyBlendShapes and JobGroup.Submit each check the
// buffer they write.
func (info *SkinMeshInfo) Validate() error {
	if err := info.check(); err != nil {
		return err
	}
	if info.skinned() && info.VertexCount > 0 {
		if m := info.Influences.MaxBoneIndex(); m >= len(info.Bones) {
			return fmt.Errorf("%w: index %d, palette has %d bones", ErrBoneIndex, m, len(info.Bones))
		}
	}
	if info.BlendShapes != nil {
		if err := info.BlendShapes.Validate(); err != nil {
			return err
		}
		if m := info.BlendShapes.maxVertexIndex(); m >= info.VertexCount {
			return fmt.Errorf("%w: delta for vertex %d, mesh has %d", ErrShapeRange, m, info.VertexCount)
		}
	}
	return nil
}

// job lowers info to a kernel job reading records from in.
func (info *SkinMeshInfo) job(in []byte, inStride int) *skinning.Job {
	n := info.VertexCount
	j := &skinning.Job{
		In:             vbuf.View{Data: in[:n*inStride], Stride: inStride},
		Out:            vbuf.View{Data: info.Out[:n*info.OutStride], Stride: info.OutStride},
		Count:          n,
		PositionOffset: info.Layout.Position,
		NormalOffset:   info.Layout.Normal,
		TangentOffset:  info.Layout.Tangent,
		Normals:        info.SkinNormals,
		Tangents:       info.SkinTangents,
		Normalize:      info.Normalize,
		Bones:          info.Bones,
	}
	info.Influences.lower(j)
	return j
}

// OutputLayout describes the output buffer for pipeline creation.
func (info *SkinMeshInfo) OutputLayout() gputypes.VertexBufferLayout {
	return info.Layout.BufferLayout(info.OutStride, info.SkinNormals, info.SkinTangents)
}
