package deform

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/deform/internal/skinning"
)

// Backend identifies a skinning kernel family.
type Backend = skinning.Backend

// Kernel backends. All of them are portable Go; the lane backends are shaped
// after the instruction sets they are named for and are chosen on matching
// CPUs.
const (
	BackendGeneric = skinning.BackendGeneric
	BackendSSE2    = skinning.BackendSSE2
	BackendNEON    = skinning.BackendNEON
	BackendVFP     = skinning.BackendVFP
)

// activeBackend holds the Backend used by Skin. It is resolved once from
// CPU features and only changes through UseBackend.
var activeBackend atomic.Uint32

func init() {
	activeBackend.Store(uint32(DetectBackend()))
}

// DetectBackend returns the preferred backend for the running CPU:
// SSE2 on x86, NEON on ARM64 or ARM with NEON, VFP on other ARM cores with
// VFP, and Generic otherwise.
func DetectBackend() Backend {
	return skinning.Detect()
}

// Backends lists every backend in preference order, Generic last.
func Backends() []Backend {
	return skinning.Backends()
}

// ActiveBackend returns the backend Skin currently uses.
func ActiveBackend() Backend {
	return Backend(activeBackend.Load())
}

// UseBackend forces the backend used by Skin, for example to compare
// kernels or to pin the reference kernel while debugging.
// Combinations the backend has no variant for still run on Generic.
func UseBackend(b Backend) error {
	if !b.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownBackend, b)
	}
	activeBackend.Store(uint32(b))
	Logger().Info("skinning: backend selected", "backend", b.String(), "detected", DetectBackend().String())
	return nil
}
