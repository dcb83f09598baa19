package deform

import "errors"

// Errors reported by validation. Kernels never return errors: malformed
// data that slips past validation panics on a bounds check.
var (
	// ErrInvalidLayout is returned when a stride is non-positive or an
	// attribute does not fit inside a vertex record.
	ErrInvalidLayout = errors.New("deform: invalid vertex layout")

	// ErrBufferTooSmall is returned when a vertex buffer holds fewer than
	// VertexCount records.
	ErrBufferTooSmall = errors.New("deform: vertex buffer too small")

	// ErrNoInfluences is returned when bones are given without influences
	// or the influence table is shorter than VertexCount.
	ErrNoInfluences = errors.New("deform: missing bone influences")

	// ErrBoneIndex is returned when an influence references a bone outside
	// the palette.
	ErrBoneIndex = errors.New("deform: bone index out of range")

	// ErrBlendWeights is returned when the blend weight slice does not
	// match the channel count.
	ErrBlendWeights = errors.New("deform: blend weight count mismatch")

	// ErrPaletteSize is returned by SkinPalette for mismatched slices.
	ErrPaletteSize = errors.New("deform: palette size mismatch")

	// ErrUnknownBackend is returned by UseBackend for an unknown backend.
	ErrUnknownBackend = errors.New("deform: unknown backend")

	// ErrChannelNoFrames is returned for a blend-shape channel without
	// keyframes.
	ErrChannelNoFrames = errors.New("deform: blend shape channel has no frames")

	// ErrUnsortedFrames is returned when a channel's keyframe weights
	// decrease.
	ErrUnsortedFrames = errors.New("deform: blend shape frame weights not sorted")

	// ErrShapeRange is returned when a channel or shape references data
	// outside the blend-shape tables.
	ErrShapeRange = errors.New("deform: blend shape reference out of range")
)
