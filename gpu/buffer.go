package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/deform"
	"github.com/gogpu/wgpu/hal"
)

// Buffer errors.
var (
	// ErrBufferDestroyed is returned when operating on a destroyed buffer.
	ErrBufferDestroyed = errors.New("gpu: buffer has been destroyed")

	// ErrInvalidBufferSize is returned when buffer size is invalid.
	ErrInvalidBufferSize = errors.New("gpu: invalid buffer size")

	// ErrBufferAlreadyMapped is returned when mapping an already mapped buffer.
	ErrBufferAlreadyMapped = errors.New("gpu: buffer is already mapped")

	// ErrBufferNotMapped is returned when unmapping a buffer that is not mapped.
	ErrBufferNotMapped = errors.New("gpu: buffer is not mapped")

	// ErrInvalidMapRange is returned when the map range is out of bounds.
	ErrInvalidMapRange = errors.New("gpu: map range out of bounds")
)

// MapState represents the mapping state of a buffer.
type MapState int

const (
	// MapStateUnmapped means the buffer is not mapped.
	MapStateUnmapped MapState = iota
	// MapStateMapped means the buffer is mapped for CPU writes.
	MapStateMapped
)

// String returns the string representation of MapState.
func (s MapState) String() string {
	switch s {
	case MapStateUnmapped:
		return "Unmapped"
	case MapStateMapped:
		return "Mapped"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// VertexBuffer is a GPU vertex buffer with a CPU shadow that deformation
// jobs write into.
//
// Map hands out the front of the shadow; Unmap uploads the mapped range
// with a queue write. The buffer keeps its contents between frames, so a
// mesh that is not resubmitted keeps its last pose.
//
// Thread Safety:
// VertexBuffer is safe for concurrent access. The mapped slice itself must
// only be written by the job that mapped it.
type VertexBuffer struct {
	mu sync.Mutex

	label  string
	buf    hal.Buffer
	device hal.Device
	queue  hal.Queue

	shadow    []byte
	state     MapState
	mapSize   int
	uploads   int
	destroyed bool
}

var _ deform.Destination = (*VertexBuffer)(nil)

// Label returns the buffer's debug label.
func (b *VertexBuffer) Label() string { return b.label }

// Size returns the buffer size in bytes.
func (b *VertexBuffer) Size() int { return len(b.shadow) }

// MapState returns the current mapping state.
func (b *VertexBuffer) MapState() MapState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Uploads returns the number of completed Unmap uploads.
func (b *VertexBuffer) Uploads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads
}

// Raw returns the underlying buffer handle, or nil once destroyed.
func (b *VertexBuffer) Raw() hal.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return nil
	}
	return b.buf
}

// Map returns the first size bytes of the CPU shadow for writing.
func (b *VertexBuffer) Map(size int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.destroyed:
		return nil, ErrBufferDestroyed
	case b.state == MapStateMapped:
		return nil, ErrBufferAlreadyMapped
	case size < 0 || size > len(b.shadow):
		return nil, fmt.Errorf("%w: %d bytes of %d", ErrInvalidMapRange, size, len(b.shadow))
	}
	b.state = MapStateMapped
	b.mapSize = size
	return b.shadow[:size:size], nil
}

// Unmap uploads the mapped range to the GPU buffer.
func (b *VertexBuffer) Unmap() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return ErrBufferDestroyed
	}
	if b.state != MapStateMapped {
		return ErrBufferNotMapped
	}
	if b.mapSize > 0 {
		b.queue.WriteBuffer(b.buf, 0, b.shadow[:b.mapSize])
	}
	b.state = MapStateUnmapped
	b.uploads++
	slogger().Debug("gpu: vertex buffer uploaded", "label", b.label, "bytes", b.mapSize)
	b.mapSize = 0
	return nil
}

// Contents returns a copy of the CPU shadow, the data of the last upload.
func (b *VertexBuffer) Contents() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.shadow))
	copy(out, b.shadow)
	return out
}

// Destroy releases the GPU buffer. It is safe to call more than once.
func (b *VertexBuffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.state = MapStateUnmapped
	if b.device != nil && b.buf != nil {
		b.device.DestroyBuffer(b.buf)
	}
	b.buf = nil
	b.shadow = nil
}
