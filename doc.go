// Package deform provides CPU vertex deformation for skinned and morphed
// meshes.
//
// # Overview
//
// deform is a Pure Go engine that turns bind-pose vertex buffers into posed
// ones. It implements linear-blend skinning with one, two or four bones per
// vertex, sparse blend shapes (morph targets) with multi-keyframe channels,
// and a job group that deforms every mesh of a frame in parallel, writing
// straight into mapped GPU vertex buffers.
//
// # Quick Start
//
//	import "github.com/gogpu/deform"
//
//	info := &deform.SkinMeshInfo{
//		In: bindPose, InStride: 48,
//		Out: posed, OutStride: 48,
//		VertexCount: n,
//		Layout:      deform.PackedLayout,
//		SkinNormals: true,
//		Normalize:   deform.NormalizeFast,
//		Influences:  deform.Influences4(weights),
//		Bones:       palette,
//	}
//	if err := info.Validate(); err != nil { // once, at load time
//		return err
//	}
//
//	// Every frame
//	g := deform.BeginJobs(len(meshes))
//	for _, m := range meshes {
//		g.Submit(m.info, m.vertexBuffer)
//	}
//	if err := g.End(); err != nil {
//		log.Print(err)
//	}
//
// # Vertex Records
//
// Vertex buffers are interleaved records of a fixed stride. VertexLayout
// names the byte offsets of position (float32x3), normal (float32x3) and
// tangent (float32x4, handedness in w). Every other byte of a record, such
// as texture coordinates or colors, is copied through unchanged, so the
// output buffer can be bound directly with the layout OutputLayout returns.
//
// # Bone Palettes
//
// Bones are column-major Matrix4 values already multiplied by the inverse
// bind pose; SkinPalette builds them from world and bind-pose matrices.
// Only the top three rows are read.
//
// # Kernels
//
// Skinning runs on one of four kernel backends: a generic per-vertex kernel
// and lane kernels shaped after SSE2 and NEON (four vertices per step) and
// VFP (two). All are portable Go and produce the same results within
// floating-point rounding. The backend is chosen from CPU features at start
// up (see DetectBackend) and can be forced with UseBackend.
//
// # Logging
//
// The package is silent by default. Call SetLogger to route its
// diagnostics to any slog.Handler.
package deform

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
