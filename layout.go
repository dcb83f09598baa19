package deform

import "github.com/gogpu/gputypes"

// Attribute sizes in bytes.
const (
	positionSize = 12
	normalSize   = 12
	tangentSize  = 16
)

// Shader locations used by Attributes.
const (
	PositionLocation uint32 = 0
	NormalLocation   uint32 = 1
	TangentLocation  uint32 = 2
)

// VertexLayout gives the byte offsets of the deformable attributes inside a
// vertex record. Positions and normals are three float32, tangents four
// (xyz plus handedness). All other bytes of a record are copied unchanged.
type VertexLayout struct {
	Position int
	Normal   int
	Tangent  int
}

// PackedLayout is the layout of a record that starts with position, normal
// and tangent, in that order.
var PackedLayout = VertexLayout{Position: 0, Normal: 12, Tangent: 24}

// fits reports whether the requested attributes lie inside a record of
// stride bytes.
func (l VertexLayout) fits(stride int, normals, tangents bool) bool {
	inside := func(off, size int) bool { return off >= 0 && off+size <= stride }
	if !inside(l.Position, positionSize) {
		return false
	}
	if normals && !inside(l.Normal, normalSize) {
		return false
	}
	if tangents && !inside(l.Tangent, tangentSize) {
		return false
	}
	return true
}

// Attributes describes the deformed attributes for pipeline creation.
func (l VertexLayout) Attributes(normals, tangents bool) []gputypes.VertexAttribute {
	attrs := []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x3, Offset: uint64(l.Position), ShaderLocation: PositionLocation},
	}
	if normals {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format: gputypes.VertexFormatFloat32x3, Offset: uint64(l.Normal), ShaderLocation: NormalLocation,
		})
	}
	if tangents {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format: gputypes.VertexFormatFloat32x4, Offset: uint64(l.Tangent), ShaderLocation: TangentLocation,
		})
	}
	return attrs
}

// BufferLayout describes a vertex buffer of stride-byte records.
func (l VertexLayout) BufferLayout(stride int, normals, tangents bool) gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(stride),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  l.Attributes(normals, tangents),
	}
}
