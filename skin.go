package deform

import "github.com/gogpu/deform/internal/skinning"

// Skin applies linear-blend skinning to info, reading info.In and writing
// info.Out. Blend shapes are ignored; use Deform to apply both.
//
// For every vertex the referenced bone matrices are blended by weight and
// the result transforms the position (affine), and the normal and tangent
// xyz (linear, then renormalized per info.Normalize). The tangent's w and
// all bytes outside those attributes are copied from the input.
//
// Skin returns an error only for the constant-time checks of
// SkinMeshInfo.Validate. Bone indices are not checked; an index outside
// info.Bones panics.
func Skin(info *SkinMeshInfo) error {
	if err := info.check(); err != nil {
		return err
	}
	if err := info.checkOut(info.Out); err != nil {
		return err
	}
	if !info.skinned() {
		return ErrNoInfluences
	}
	skin(info, info.In, info.InStride)
	return nil
}

// skin runs the active backend over records read from in.
func skin(info *SkinMeshInfo, in []byte, inStride int) {
	if info.VertexCount == 0 {
		return
	}
	j := info.job(in, inStride)
	requested := ActiveBackend()
	kernel, used := skinning.Select(requested, j)
	if used != requested {
		Logger().Debug("skinning: generic fallback",
			"requested", requested.String(),
			"bonesPerVertex", j.BonesPerVertex(),
			"normals", j.Normals,
			"tangents", j.Tangents)
	}
	kernel(j)
}
