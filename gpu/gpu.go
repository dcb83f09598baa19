// Package gpu connects deformation jobs to GPU vertex buffers.
//
// A VertexBuffer is a deform.Destination: a JobGroup maps it, deforms a mesh
// into its CPU shadow and unmaps it at End, which uploads the posed vertices
// through the device queue.
//
// The device can be shared with a host application through a
// gpucontext.DeviceProvider that also exposes its HAL objects, or created
// standalone. NewNoopDevice opens the wgpu noop backend for tests and
// headless tools.
//
// Usage:
//
//	dev, err := gpu.DeviceFromProvider(provider)
//	vb, err := dev.NewVertexBuffer("hero", info.VertexCount*info.OutStride)
//
//	g := deform.BeginJobs(1)
//	g.Submit(info, vb)
//	err = g.End() // vertices uploaded
package gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/deform"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// ErrNoHAL is returned when a provider does not expose HAL types.
var ErrNoHAL = errors.New("gpu: provider does not expose HAL device and queue")

// slogger returns the logger shared with package deform.
func slogger() *slog.Logger { return deform.Logger() }

// Device owns or borrows the HAL device and queue that back vertex buffers.
type Device struct {
	device hal.Device
	queue  hal.Queue

	// release is set when Device opened the device itself.
	release func()
}

// NewDevice wraps an already open device and queue. Close does not destroy
// them.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue}
}

// DeviceFromProvider borrows the device of a host application. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func DeviceFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
	}
	slogger().Debug("gpu: using provider device")
	return NewDevice(device, queue), nil
}

// NewNoopDevice opens a device on the wgpu noop backend. Buffers behave
// normally but nothing reaches real hardware.
func NewNoopDevice() (*Device, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("gpu: no adapters found")
	}
	openDev, err := adapters[0].Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}
	slogger().Debug("gpu: noop device opened")
	return &Device{
		device: openDev.Device,
		queue:  openDev.Queue,
		release: func() {
			openDev.Device.Destroy()
			instance.Destroy()
		},
	}, nil
}

// Close destroys the device if Device opened it.
func (d *Device) Close() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

// NewVertexBuffer creates a vertex buffer of size bytes that a JobGroup can
// deform into.
func (d *Device) NewVertexBuffer(label string, size int) (*VertexBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, size)
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	return &VertexBuffer{
		label:  label,
		buf:    buf,
		device: d.device,
		queue:  d.queue,
		shadow: make([]byte, size),
	}, nil
}

// NewMeshBuffer creates a vertex buffer sized for the output of info.
func (d *Device) NewMeshBuffer(label string, info *deform.SkinMeshInfo) (*VertexBuffer, error) {
	return d.NewVertexBuffer(label, info.VertexCount*info.OutStride)
}
