// Package vbuf provides bounds-checked access to interleaved vertex buffers.
//
// A View pairs a byte slice with a record stride. Every accessor goes through
// ordinary slice indexing, so a record or attribute that does not fit in the
// underlying slice panics instead of touching memory outside it.
//
// Attributes are little-endian float32, which is the layout GPUs consume.
package vbuf

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/deform/internal/linear"
)

// View is a strided window over a vertex buffer.
type View struct {
	Data   []byte
	Stride int
}

// Record returns the bytes of record i.
// The record must lie within len(v.Data); spare capacity past the end of
// the view is never reachable. The returned slice has its capacity clipped
// to the stride so appends cannot spill into the next record.
func (v View) Record(i int) []byte {
	off := i * v.Stride
	_ = v.Data[off+v.Stride-1]
	return v.Data[off : off+v.Stride : off+v.Stride]
}

// Float32 reads a float32 at byte offset off.
func Float32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

// PutFloat32 writes f at byte offset off.
func PutFloat32(b []byte, off int, f float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(f))
}

// V3 reads three consecutive float32 values at byte offset off.
func V3(b []byte, off int) linear.V3 {
	_ = b[off+11]
	return linear.V3{
		Float32(b, off),
		Float32(b, off+4),
		Float32(b, off+8),
	}
}

// PutV3 writes v at byte offset off.
func PutV3(b []byte, off int, v linear.V3) {
	_ = b[off+11]
	PutFloat32(b, off, v[0])
	PutFloat32(b, off+4, v[1])
	PutFloat32(b, off+8, v[2])
}

// V4 reads four consecutive float32 values at byte offset off.
func V4(b []byte, off int) linear.V4 {
	_ = b[off+15]
	return linear.V4{
		Float32(b, off),
		Float32(b, off+4),
		Float32(b, off+8),
		Float32(b, off+12),
	}
}

// PutV4 writes v at byte offset off.
func PutV4(b []byte, off int, v linear.V4) {
	_ = b[off+15]
	PutFloat32(b, off, v[0])
	PutFloat32(b, off+4, v[1])
	PutFloat32(b, off+8, v[2])
	PutFloat32(b, off+12, v[3])
}

// CopyRecords copies count records from src to dst.
// When the strides match the copy is a single block move; otherwise each
// record contributes min(src.Stride, dst.Stride) bytes and the remainder of
// a wider destination record is left untouched.
func CopyRecords(dst, src View, count int) {
	if count <= 0 {
		return
	}
	if dst.Stride == src.Stride {
		n := count * src.Stride
		_, _ = dst.Data[n-1], src.Data[n-1]
		copy(dst.Data[:n], src.Data[:n])
		return
	}
	for i := 0; i < count; i++ {
		copy(dst.Record(i), src.Record(i))
	}
}
