// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package skinning

import "golang.org/x/sys/cpu"

// Backend identifies a kernel family.
type Backend uint8

const (
	BackendGeneric Backend = iota
	BackendSSE2
	BackendNEON
	BackendVFP
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendGeneric:
		return "generic"
	case BackendSSE2:
		return "sse2"
	case BackendNEON:
		return "neon"
	case BackendVFP:
		return "vfp"
	default:
		return "unknown"
	}
}

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	return b <= BackendVFP
}

// Backends lists every backend in preference order, generic last.
func Backends() []Backend {
	return []Backend{BackendSSE2, BackendNEON, BackendVFP, BackendGeneric}
}

// Detect returns the preferred backend for the running CPU.
func Detect() Backend {
	switch {
	case cpu.X86.HasSSE2:
		return BackendSSE2
	case cpu.ARM64.HasASIMD, cpu.ARM.HasNEON:
		return BackendNEON
	case cpu.ARM.HasVFP:
		return BackendVFP
	default:
		return BackendGeneric
	}
}

func table(b Backend) *variantTable {
	switch b {
	case BackendSSE2:
		return sse2Table
	case BackendNEON:
		return neonTable
	case BackendVFP:
		return vfpTable
	default:
		return nil
	}
}

// Select returns the kernel backend b provides for j, and the backend that
// will actually run. Combinations b has no variant for resolve to Generic.
func Select(b Backend, j *Job) (Kernel, Backend) {
	t := table(b)
	if t == nil {
		return Generic, BackendGeneric
	}
	f, ok := FeatureOf(j.Normals, j.Tangents)
	if !ok {
		return Generic, BackendGeneric
	}
	s := bonesSlot(j.BonesPerVertex())
	if s < 0 {
		return Generic, BackendGeneric
	}
	return t[s][f], b
}
