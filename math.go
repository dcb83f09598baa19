package deform

import (
	"fmt"

	"github.com/gogpu/deform/internal/linear"
)

// Vec3 is a 3-component float32 vector (position, normal or delta).
type Vec3 = linear.V3

// Vec4 is a 4-component float32 vector. Tangents keep the bitangent sign in W.
type Vec4 = linear.V4

// Matrix4 is a column-major 4x4 float32 matrix.
// Element (row r, column c) is at index c*4+r; the translation is in
// elements 12, 13 and 14. Skinning reads only the top three rows.
type Matrix4 = linear.M4

// Identity returns the identity matrix.
func Identity() Matrix4 { return linear.Identity() }

// Translate returns a translation matrix.
func Translate(x, y, z float32) Matrix4 { return linear.Translate(x, y, z) }

// Scale returns a scaling matrix.
func Scale(x, y, z float32) Matrix4 { return linear.Scale(x, y, z) }

// RotateAxis returns a rotation of angle radians around axis.
func RotateAxis(axis Vec3, angle float32) Matrix4 { return linear.RotateAxis(axis, angle) }

// SkinPalette writes world[i] · bindposes[i] into dst for every bone, the
// skin-space matrices the kernels expect. dst may alias world.
func SkinPalette(dst, world, bindposes []Matrix4) error {
	if len(world) != len(bindposes) {
		return fmt.Errorf("%w: %d world matrices, %d bind poses", ErrPaletteSize, len(world), len(bindposes))
	}
	if len(dst) < len(world) {
		return fmt.Errorf("%w: dst holds %d, need %d", ErrPaletteSize, len(dst), len(world))
	}
	for i := range world {
		dst[i] = world[i].Mul(bindposes[i])
	}
	return nil
}
